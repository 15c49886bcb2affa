package accounts

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fastprodman/auctionhouse/internal/repos/accounts"
)

func (r *accountsRepo) CaptureHold(ctx context.Context, tx *sql.Tx, subjectID, currency string, amount decimal.Decimal) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET hold = hold - $3::numeric,
		    balance = balance - $3::numeric,
		    updated_at = now()
		WHERE subject_id = $1
		  AND currency = $2
		  AND hold >= $3::numeric
		  AND balance >= $3::numeric
	`, subjectID, currency, amount)
	if err != nil {
		return fmt.Errorf("capture hold: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return accounts.ErrCapturePrecondition
	}

	return nil
}
