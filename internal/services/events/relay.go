package events

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/fastprodman/auctionhouse/internal/infra/pgutils"
	"github.com/fastprodman/auctionhouse/internal/repos/outbox"
	pgoutbox "github.com/fastprodman/auctionhouse/internal/repos/outbox/postgres"
)

const (
	DefaultMaxAttempts = 10
	defaultBatch       = 100
	baseRetryDelay     = time.Second
	maxRetryDelay      = 5 * time.Minute
)

// Relay publishes pending outbox events. Claimed rows stay locked until the
// batch commits, so several relays can run side by side.
type Relay struct {
	db          *sql.DB
	outbox      outbox.Outbox
	publisher   Publisher
	batch       int
	maxAttempts int
	logger      *slog.Logger
	now         func() time.Time
}

func NewRelay(db *sql.DB, publisher Publisher, batch int, logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	if batch <= 0 {
		batch = defaultBatch
	}

	return &Relay{
		db:          db,
		outbox:      pgoutbox.New(db),
		publisher:   publisher,
		batch:       batch,
		maxAttempts: DefaultMaxAttempts,
		logger:      logger.With(slog.String("component", "outbox_relay")),
		now:         time.Now,
	}
}

// Stats counts one relay pass.
type Stats struct {
	Published int
	Failed    int
}

// RunOnce claims one batch and publishes it.
func (r *Relay) RunOnce(ctx context.Context) (Stats, error) {
	var stats Stats

	err := pgutils.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		now := r.now()

		claimed, err := r.outbox.ClaimPending(ctx, tx, now, r.batch)
		if err != nil {
			return err
		}

		for _, e := range claimed {
			err = r.publisher.Publish(ctx, Message{
				ID:      e.ID.String(),
				Topic:   e.Topic,
				Key:     e.Key,
				Payload: e.Payload,
			})
			if err != nil {
				stats.Failed++

				r.logger.WarnContext(ctx, "publish failed",
					"event_id", e.ID.String(), "topic", e.Topic,
					"attempt", e.Attempts+1, "error", err)

				err = r.outbox.MarkFailed(ctx, tx, e.ID, err.Error(), now.Add(retryDelay(e.Attempts+1)), r.maxAttempts)
				if err != nil {
					return err
				}

				continue
			}

			err = r.outbox.MarkDone(ctx, tx, e.ID)
			if err != nil {
				return err
			}

			stats.Published++
		}

		return nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("relay outbox: %w", err)
	}

	if stats.Published > 0 || stats.Failed > 0 {
		r.logger.DebugContext(ctx, "outbox relayed", "published", stats.Published, "failed", stats.Failed)
	}

	return stats, nil
}

// retryDelay doubles per attempt: 1s, 2s, 4s, ... capped at maxRetryDelay.
func retryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	d := baseRetryDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= maxRetryDelay {
			return maxRetryDelay
		}
	}

	return d
}
