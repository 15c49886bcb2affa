package accounts

import (
	"context"
	"fmt"

	"github.com/fastprodman/auctionhouse/internal/repos/accounts"
)

// List pages through accounts in (subject_id, currency) order, starting after
// the given key.
func (r *accountsRepo) List(ctx context.Context, afterSubject, afterCurrency string, limit int) ([]accounts.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE (subject_id, currency) > ($1, $2)
		ORDER BY subject_id, currency
		LIMIT $3
	`, afterSubject, afterCurrency, limit)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	out := make([]accounts.Account, 0, limit)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}

		out = append(out, a)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}

	return out, nil
}
