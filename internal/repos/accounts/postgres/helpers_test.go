package accounts

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
)

func seedAccount(t *testing.T, db *sql.DB, subject string, balance, hold string) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO accounts (subject_id, currency, balance, hold) VALUES ($1, 'RUB', $2::numeric, $3::numeric)
		ON CONFLICT (subject_id, currency) DO UPDATE SET balance = EXCLUDED.balance, hold = EXCLUDED.hold
	`, subject, balance, hold)
	if err != nil {
		t.Fatalf("seed account(%s): %v", subject, err)
	}
}

func inTx(t *testing.T, db *sql.DB, fn func(tx *sql.Tx) error) error {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}

	err = fn(tx)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	err = tx.Commit()
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	return nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
