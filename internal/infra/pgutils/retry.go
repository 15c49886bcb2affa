package pgutils

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

var ErrRetriesExhausted = errors.New("transaction retries exhausted")

// RetryPolicy bounds how often a transaction is re-run after a transient failure.
type RetryPolicy struct {
	MaxAttempts int
	// BackoffStep is multiplied by the attempt number before the next try.
	BackoffStep time.Duration
	// Logger receives one warning per retry. Nil means slog.Default().
	Logger *slog.Logger
}

// DefaultRetryPolicy is five attempts with 10ms linear backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 5, BackoffStep: 10 * time.Millisecond}
}

// Backoff returns the pause after the given failed attempt (1-based).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	return time.Duration(attempt) * p.BackoffStep
}

func (p RetryPolicy) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}

	return slog.Default()
}

// RunInTx runs fn as one transaction and re-runs it when it fails with a
// transient error. fn may be called several times and must not keep state
// between calls. Non-transient errors are returned on first sight.
func RunInTx(ctx context.Context, db *sql.DB, policy RetryPolicy, fn func(*sql.Tx) error) error {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = WithTx(ctx, db, fn)
		if err == nil {
			return nil
		}

		if !IsTransient(err) {
			return err
		}

		if attempt == attempts {
			break
		}

		backoff := policy.Backoff(attempt)
		policy.logger().WarnContext(ctx, "transaction retry",
			"attempt", attempt, "max_attempts", attempts,
			"sqlstate", SQLState(err), "backoff", backoff, "error", err)

		t := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("retry wait: %w (last err: %w)", ctx.Err(), err)
		case <-t.C:
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempts, err)
}
