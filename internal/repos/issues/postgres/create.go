package issues

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fastprodman/auctionhouse/internal/infra/pgutils"
	"github.com/fastprodman/auctionhouse/internal/repos/issues"
)

func (r *issuesRepo) Create(ctx context.Context, q pgutils.Querier, i *issues.Issue) (bool, error) {
	if q == nil {
		q = r.db
	}

	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}

	if i.Status == "" {
		i.Status = issues.StatusDetected
	}

	details := []byte("{}")
	if len(i.Details) > 0 {
		var err error

		details, err = json.Marshal(i.Details)
		if err != nil {
			return false, fmt.Errorf("encode details: %w", err)
		}
	}

	err := q.QueryRowContext(ctx, `
		INSERT INTO reconcile_issues (id, type, status, participant_id, currency, auction_id, details, fingerprint)
		VALUES ($1::uuid, $2, $3, $4, $5, $6::uuid, $7::jsonb, $8)
		ON CONFLICT (fingerprint) WHERE status <> 'resolved' DO NOTHING
		RETURNING created_at, updated_at
	`, i.ID.String(), i.Type, i.Status, i.ParticipantID, i.Currency,
		pgutils.NullIfEmpty(i.AuctionID), string(details), i.Fingerprint,
	).Scan(&i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}

		return false, fmt.Errorf("create reconcile issue: %w", err)
	}

	return true, nil
}
