package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fastprodman/auctionhouse/internal/repos/accounts"
)

func (r *accountsRepo) ReleaseHold(ctx context.Context, tx *sql.Tx, subjectID, currency string, amount decimal.Decimal) (decimal.Decimal, error) {
	var released decimal.Decimal

	err := tx.QueryRowContext(ctx, `
		WITH prev AS (
			SELECT hold
			FROM accounts
			WHERE subject_id = $1 AND currency = $2
			FOR UPDATE
		)
		UPDATE accounts a
		SET hold = a.hold - LEAST(prev.hold, $3::numeric), updated_at = now()
		FROM prev
		WHERE a.subject_id = $1 AND a.currency = $2
		RETURNING LEAST(prev.hold, $3::numeric)::text
	`, subjectID, currency, amount).Scan(&released)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, accounts.ErrAccountNotFound
		}

		return decimal.Zero, fmt.Errorf("release hold: %w", err)
	}

	return released, nil
}
