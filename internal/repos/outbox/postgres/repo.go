package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fastprodman/auctionhouse/internal/infra/pgutils"
	"github.com/fastprodman/auctionhouse/internal/repos/outbox"
)

var _ outbox.Outbox = (*outboxRepo)(nil)

type outboxRepo struct{ db *sql.DB }

func New(db *sql.DB) *outboxRepo {
	return &outboxRepo{db: db}
}

func (r *outboxRepo) Enqueue(ctx context.Context, q pgutils.Querier, topic, key string, payload any) (bool, error) {
	if q == nil {
		q = r.db
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("encode outbox payload: %w", err)
	}

	var id string

	err = q.QueryRowContext(ctx, `
		INSERT INTO outbox_events (id, topic, key, payload)
		VALUES ($1::uuid, $2, $3, $4::jsonb)
		ON CONFLICT (topic, key) DO NOTHING
		RETURNING id::text
	`, uuid.NewString(), topic, key, string(body)).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}

		return false, fmt.Errorf("enqueue outbox event: %w", err)
	}

	return true, nil
}

func (r *outboxRepo) ClaimPending(ctx context.Context, tx *sql.Tx, now time.Time, limit int) ([]outbox.Event, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id::text, topic, key, payload::text, status, available_at, attempts, COALESCE(last_error, ''), created_at
		FROM outbox_events
		WHERE status = 'pending' AND available_at <= $1
		ORDER BY available_at, created_at
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	`, now, limit)
	if err != nil {
		return nil, fmt.Errorf("claim outbox events: %w", err)
	}
	defer rows.Close()

	var out []outbox.Event
	for rows.Next() {
		var (
			e       outbox.Event
			payload []byte
		)

		err = rows.Scan(&e.ID, &e.Topic, &e.Key, &payload, &e.Status, &e.AvailableAt, &e.Attempts, &e.LastError, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}

		e.Payload = json.RawMessage(payload)
		out = append(out, e)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate outbox events: %w", err)
	}

	return out, nil
}

func (r *outboxRepo) MarkDone(ctx context.Context, q pgutils.Querier, id uuid.UUID) error {
	if q == nil {
		q = r.db
	}

	_, err := q.ExecContext(ctx, `
		UPDATE outbox_events SET status = 'done', updated_at = now()
		WHERE id = $1::uuid
	`, id.String())
	if err != nil {
		return fmt.Errorf("mark outbox event done: %w", err)
	}

	return nil
}

func (r *outboxRepo) MarkFailed(ctx context.Context, q pgutils.Querier, id uuid.UUID, cause string, retryAt time.Time, maxAttempts int) error {
	if q == nil {
		q = r.db
	}

	_, err := q.ExecContext(ctx, `
		UPDATE outbox_events
		SET attempts = attempts + 1,
		    last_error = $2,
		    available_at = $3,
		    status = CASE WHEN attempts + 1 >= $4::int THEN 'failed' ELSE 'pending' END,
		    updated_at = now()
		WHERE id = $1::uuid
	`, id.String(), cause, retryAt, maxAttempts)
	if err != nil {
		return fmt.Errorf("mark outbox event failed: %w", err)
	}

	return nil
}
