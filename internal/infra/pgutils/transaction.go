package pgutils

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrIndeterminateCommit means COMMIT failed without a server answer, so the
// transaction may or may not have been applied.
var ErrIndeterminateCommit = errors.New("commit outcome unknown")

// WithTx runs fn inside a transaction.
// It commits if fn returns nil, otherwise it rolls back.
func WithTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil) // read committed
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	err = fn(tx)
	if err != nil {
		rbErr := tx.Rollback()
		if rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("rollback after fn error: %v (fn err: %w)", rbErr, err)
		}
		return fmt.Errorf("fn: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		var pgErr *pgconn.PgError
		if !errors.As(err, &pgErr) {
			return fmt.Errorf("commit tx: %w: %w", ErrIndeterminateCommit, err)
		}
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// WithSavepoint runs fn between SAVEPOINT and RELEASE. When fn fails the
// transaction is rolled back to the savepoint and stays usable.
func WithSavepoint(ctx context.Context, tx *sql.Tx, name string, fn func() error) error {
	_, err := tx.ExecContext(ctx, "SAVEPOINT "+name)
	if err != nil {
		return fmt.Errorf("savepoint %s: %w", name, err)
	}

	err = fn()
	if err != nil {
		_, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name)
		if rbErr != nil {
			return fmt.Errorf("rollback to savepoint %s: %v (fn err: %w)", name, rbErr, err)
		}
		return err
	}

	_, err = tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name)
	if err != nil {
		return fmt.Errorf("release savepoint %s: %w", name, err)
	}

	return nil
}

// WithSnapshot runs fn in a read-only REPEATABLE READ transaction, so every
// statement in fn sees the same committed state.
func WithSnapshot(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	return fn(tx)
}
