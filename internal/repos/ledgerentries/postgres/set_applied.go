package ledgerentries

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fastprodman/auctionhouse/internal/repos/ledgerentries"
)

func (r *entriesRepo) SetApplied(ctx context.Context, tx *sql.Tx, txID string, applied decimal.Decimal) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE ledger_entries SET applied = $2::numeric WHERE tx_id = $1
	`, txID, applied)
	if err != nil {
		return fmt.Errorf("set applied: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return ledgerentries.ErrEntryNotFound
	}

	return nil
}
