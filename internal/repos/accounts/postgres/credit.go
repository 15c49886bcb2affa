package accounts

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fastprodman/auctionhouse/internal/repos/accounts"
)

func (r *accountsRepo) Credit(ctx context.Context, tx *sql.Tx, subjectID, currency string, amount decimal.Decimal) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET balance = balance + $3::numeric, updated_at = now()
		WHERE subject_id = $1 AND currency = $2
	`, subjectID, currency, amount)
	if err != nil {
		return fmt.Errorf("credit balance: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return accounts.ErrAccountNotFound
	}

	return nil
}
