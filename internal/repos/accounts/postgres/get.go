package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/auctionhouse/internal/infra/pgutils"
	"github.com/fastprodman/auctionhouse/internal/repos/accounts"
)

func (r *accountsRepo) Get(ctx context.Context, q pgutils.Querier, subjectID, currency string) (accounts.Account, error) {
	if q == nil {
		q = r.db
	}

	row := q.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE subject_id = $1 AND currency = $2
	`, subjectID, currency)

	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return accounts.Account{}, accounts.ErrAccountNotFound
		}

		return accounts.Account{}, fmt.Errorf("get account: %w", err)
	}

	return a, nil
}
