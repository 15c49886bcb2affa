package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/fastprodman/auctionhouse/internal/infra/pgutils"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

type Event struct {
	ID          uuid.UUID
	Topic       string
	Key         string
	Payload     json.RawMessage
	Status      Status
	AvailableAt time.Time
	Attempts    int
	LastError   string
	CreatedAt   time.Time
}

type Outbox interface {
	// Enqueue stores an event once per (topic, key); enqueued is false on a repeat.
	Enqueue(ctx context.Context, q pgutils.Querier, topic, key string, payload any) (enqueued bool, err error)
	// ClaimPending locks due pending events, skipping rows other relays hold.
	ClaimPending(ctx context.Context, tx *sql.Tx, now time.Time, limit int) ([]Event, error)
	MarkDone(ctx context.Context, q pgutils.Querier, id uuid.UUID) error
	// MarkFailed records a publish failure. The event is retried at retryAt
	// until maxAttempts is reached, then parked as failed.
	MarkFailed(ctx context.Context, q pgutils.Querier, id uuid.UUID, cause string, retryAt time.Time, maxAttempts int) error
}
