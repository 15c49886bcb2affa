package issues

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fastprodman/auctionhouse/internal/infra/pgutils"
)

var ErrIssueNotFound = errors.New("reconcile issue not found")

type Type string

const (
	TypeBalanceMismatch Type = "balance_mismatch"
	TypeOrphanedHold    Type = "orphaned_hold"
	TypeCaptureFailed   Type = "capture_failed"
	TypeReleaseFailed   Type = "release_failed"
)

type Status string

const (
	StatusDetected     Status = "detected"
	StatusResolved     Status = "resolved"
	StatusManualReview Status = "manual_review"
)

type Issue struct {
	ID              uuid.UUID
	Type            Type
	Status          Status
	ParticipantID   string
	Currency        string
	AuctionID       string
	Details         map[string]any
	Fingerprint     string
	AutoFixAttempts int
	LastAutoFixAt   *time.Time
	ResolvedAt      *time.Time
	ResolvedBy      string
	Resolution      string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Issues interface {
	// Create stores i unless an unresolved issue with the same fingerprint
	// exists; created is false in that case.
	Create(ctx context.Context, q pgutils.Querier, i *Issue) (created bool, err error)
	Get(ctx context.Context, id uuid.UUID) (Issue, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (Issue, error)
	ListByStatus(ctx context.Context, status Status, types []Type, limit int) ([]Issue, error)
	// MarkAutoFixAttempt bumps the attempt counter and returns the new value.
	MarkAutoFixAttempt(ctx context.Context, tx *sql.Tx, id uuid.UUID) (int, error)
	Resolve(ctx context.Context, q pgutils.Querier, id uuid.UUID, by, resolution string) error
	SetStatus(ctx context.Context, q pgutils.Querier, id uuid.UUID, status Status) error
}
