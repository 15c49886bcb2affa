package bids

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fastprodman/auctionhouse/internal/infra/pgutils"
	"github.com/fastprodman/auctionhouse/internal/repos/bids"
)

func (r *bidsRepo) StandingFor(ctx context.Context, q pgutils.Querier, auctionID uuid.UUID, participantID string) (bids.Standing, bool, error) {
	if q == nil {
		q = r.db
	}

	s := bids.Standing{ParticipantID: participantID}

	err := q.QueryRowContext(ctx, `
		SELECT amount::text, id, created_at
		FROM bids
		WHERE auction_id = $1::uuid AND participant_id = $2 AND status = 'placed'
		ORDER BY amount DESC, created_at ASC, id ASC
		LIMIT 1
	`, auctionID.String(), participantID).Scan(&s.Amount, &s.BidID, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return bids.Standing{}, false, nil
		}

		return bids.Standing{}, false, fmt.Errorf("standing for participant: %w", err)
	}

	return s, true, nil
}

func (r *bidsRepo) Standings(ctx context.Context, q pgutils.Querier, auctionID uuid.UUID, exclude []string, limit int) ([]bids.Standing, error) {
	if q == nil {
		q = r.db
	}

	var lim any
	if limit > 0 {
		lim = limit
	}

	rows, err := q.QueryContext(ctx, `
		SELECT participant_id, amount::text, id, created_at
		FROM (
			SELECT DISTINCT ON (participant_id) participant_id, amount, id, created_at
			FROM bids
			WHERE auction_id = $1::uuid
			  AND status = 'placed'
			  AND participant_id <> ALL($2::text[])
			ORDER BY participant_id, amount DESC, created_at ASC, id ASC
		) s
		ORDER BY amount DESC, created_at ASC, id ASC
		LIMIT $3
	`, auctionID.String(), pgutils.TextArray(exclude), lim)
	if err != nil {
		return nil, fmt.Errorf("list standings: %w", err)
	}
	defer rows.Close()

	var out []bids.Standing
	for rows.Next() {
		var s bids.Standing

		err = rows.Scan(&s.ParticipantID, &s.Amount, &s.BidID, &s.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan standing: %w", err)
		}

		out = append(out, s)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate standings: %w", err)
	}

	return out, nil
}
