package pgutils_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastprodman/auctionhouse/internal/infra/logging"
	"github.com/fastprodman/auctionhouse/internal/infra/pgtestutil"
	"github.com/fastprodman/auctionhouse/internal/infra/pgutils"
)

func TestRunInTx_RetriesTransientThenCommits(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	policy := pgutils.RetryPolicy{MaxAttempts: 5, BackoffStep: time.Millisecond}

	calls := 0
	err := pgutils.RunInTx(t.Context(), db, policy, func(tx *sql.Tx) error {
		calls++

		_, err := tx.Exec(`INSERT INTO accounts (subject_id, currency, balance) VALUES ('retry', 'RUB', $1)`, calls)
		if err != nil {
			return err
		}

		if calls < 3 {
			return &pgconn.PgError{Code: pgutils.CodeSerializationFailure}
		}

		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	var balance string
	err = db.QueryRow(`SELECT balance::text FROM accounts WHERE subject_id = 'retry'`).Scan(&balance)
	require.NoError(t, err)
	assert.Equal(t, "3", balance, "only the committed attempt's row must survive")
}

func TestRunInTx_LogsEachRetry(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	var buf bytes.Buffer

	policy := pgutils.RetryPolicy{
		MaxAttempts: 3,
		BackoffStep: time.Millisecond,
		Logger:      logging.NewJSON(&buf, slog.LevelDebug),
	}

	calls := 0
	err := pgutils.RunInTx(t.Context(), db, policy, func(*sql.Tx) error {
		calls++
		if calls == 1 {
			return &pgconn.PgError{Code: pgutils.CodeDeadlockDetected}
		}

		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1, "one retry, one line")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "transaction retry", entry["msg"])
	assert.Equal(t, pgutils.CodeDeadlockDetected, entry["sqlstate"])
	assert.EqualValues(t, 1, entry["attempt"])
	assert.EqualValues(t, 3, entry["max_attempts"])
}

func TestRunInTx_FatalErrorIsNotRetried(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	errFatal := errors.New("business rule")

	calls := 0
	err := pgutils.RunInTx(t.Context(), db, pgutils.DefaultRetryPolicy(), func(tx *sql.Tx) error {
		calls++
		return errFatal
	})

	require.ErrorIs(t, err, errFatal)
	assert.Equal(t, 1, calls)
}

func TestRunInTx_ExhaustsAttempts(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	policy := pgutils.RetryPolicy{MaxAttempts: 3, BackoffStep: time.Millisecond}

	calls := 0
	err := pgutils.RunInTx(t.Context(), db, policy, func(tx *sql.Tx) error {
		calls++
		return &pgconn.PgError{Code: pgutils.CodeDeadlockDetected}
	})

	require.ErrorIs(t, err, pgutils.ErrRetriesExhausted)
	assert.True(t, pgutils.IsTransient(err))
	assert.Equal(t, 3, calls)
}

func TestWithSavepoint_RollsBackOnlyInnerWork(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	err := pgutils.WithTx(ctx, db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO accounts (subject_id, currency) VALUES ('outer', 'RUB')`)
		if err != nil {
			return err
		}

		inner := pgutils.WithSavepoint(ctx, tx, "inner_step", func() error {
			_, err := tx.ExecContext(ctx, `INSERT INTO accounts (subject_id, currency) VALUES ('inner', 'RUB')`)
			if err != nil {
				return err
			}
			// duplicate key aborts the statement; the savepoint keeps the tx usable
			_, err = tx.ExecContext(ctx, `INSERT INTO accounts (subject_id, currency) VALUES ('inner', 'RUB')`)
			return err
		})
		if !pgutils.IsUniqueViolation(inner) {
			t.Errorf("want unique violation from inner step, got %v", inner)
		}

		return nil
	})
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT count(*) FROM accounts`).Scan(&n))
	assert.Equal(t, 1, n)
}
