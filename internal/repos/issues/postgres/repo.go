package issues

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/fastprodman/auctionhouse/internal/repos/issues"
)

var _ issues.Issues = (*issuesRepo)(nil)

type issuesRepo struct{ db *sql.DB }

func New(db *sql.DB) *issuesRepo {
	return &issuesRepo{db: db}
}

const issueColumns = `id::text, type, status, participant_id, currency, COALESCE(auction_id::text, ''),
	details::text, fingerprint, auto_fix_attempts, last_auto_fix_at, resolved_at,
	COALESCE(resolved_by, ''), COALESCE(resolution, ''), created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanIssue(s scanner) (issues.Issue, error) {
	var (
		i       issues.Issue
		details []byte
	)

	err := s.Scan(&i.ID, &i.Type, &i.Status, &i.ParticipantID, &i.Currency, &i.AuctionID,
		&details, &i.Fingerprint, &i.AutoFixAttempts, &i.LastAutoFixAt, &i.ResolvedAt,
		&i.ResolvedBy, &i.Resolution, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return i, err
	}

	if len(details) > 0 {
		err = json.Unmarshal(details, &i.Details)
		if err != nil {
			return i, fmt.Errorf("decode details: %w", err)
		}
	}

	return i, nil
}
