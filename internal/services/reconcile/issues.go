package reconcile

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fastprodman/auctionhouse/internal/infra/pgutils"
	"github.com/fastprodman/auctionhouse/internal/repos/issues"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

type IssueView struct {
	ID              string         `json:"id"`
	Type            issues.Type    `json:"type"`
	Status          issues.Status  `json:"status"`
	ParticipantID   string         `json:"participantId"`
	Currency        string         `json:"currency"`
	AuctionID       string         `json:"auctionId,omitempty"`
	Details         map[string]any `json:"details"`
	AutoFixAttempts int            `json:"autoFixAttempts"`
	LastAutoFixAt   *time.Time     `json:"lastAutoFixAt,omitempty"`
	ResolvedAt      *time.Time     `json:"resolvedAt,omitempty"`
	ResolvedBy      string         `json:"resolvedBy,omitempty"`
	Resolution      string         `json:"resolution,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
}

func viewOf(i issues.Issue) IssueView {
	return IssueView{
		ID:              i.ID.String(),
		Type:            i.Type,
		Status:          i.Status,
		ParticipantID:   i.ParticipantID,
		Currency:        i.Currency,
		AuctionID:       i.AuctionID,
		Details:         i.Details,
		AutoFixAttempts: i.AutoFixAttempts,
		LastAutoFixAt:   i.LastAutoFixAt,
		ResolvedAt:      i.ResolvedAt,
		ResolvedBy:      i.ResolvedBy,
		Resolution:      i.Resolution,
		CreatedAt:       i.CreatedAt,
	}
}

func parseUUID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed id %q", ErrInvalidArgument, id)
	}

	return parsed, nil
}

func parseStatus(s string) (issues.Status, error) {
	switch st := issues.Status(strings.TrimSpace(s)); st {
	case "":
		return issues.StatusDetected, nil
	case issues.StatusDetected, issues.StatusResolved, issues.StatusManualReview:
		return st, nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, s)
	}
}

// ListIssues returns issues in the given status, detected when empty.
func (s *Service) ListIssues(ctx context.Context, status string, limit int) ([]IssueView, error) {
	st, err := parseStatus(status)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)

	list, err := s.issues.ListByStatus(ctx, st, nil, limit)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}

	out := make([]IssueView, 0, len(list))
	for _, i := range list {
		out = append(out, viewOf(i))
	}

	return out, nil
}

// ResolveIssue closes an issue by hand.
func (s *Service) ResolveIssue(ctx context.Context, id, by, resolution string) (IssueView, error) {
	issueID, err := parseUUID(id)
	if err != nil {
		return IssueView{}, ErrIssueNotFound
	}

	by = strings.TrimSpace(by)
	resolution = strings.TrimSpace(resolution)
	if by == "" || resolution == "" {
		return IssueView{}, fmt.Errorf("%w: resolvedBy and resolution are required", ErrInvalidArgument)
	}

	var view IssueView

	err = pgutils.RunInTx(ctx, s.db, s.policy, func(tx *sql.Tx) error {
		cur, err := s.issues.GetForUpdate(ctx, tx, issueID)
		if err != nil {
			return err
		}

		if cur.Status == issues.StatusResolved {
			return ErrAlreadyResolved
		}

		err = s.issues.Resolve(ctx, tx, issueID, by, resolution)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		cur.Status = issues.StatusResolved
		cur.ResolvedAt = &now
		cur.ResolvedBy = by
		cur.Resolution = resolution
		view = viewOf(cur)

		return nil
	})
	if err != nil {
		return IssueView{}, fmt.Errorf("resolve issue: %w", err)
	}

	s.logger.InfoContext(ctx, "reconcile issue resolved", "issue_id", id, "resolved_by", by)

	return view, nil
}
