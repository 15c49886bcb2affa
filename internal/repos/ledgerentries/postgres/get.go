package ledgerentries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/auctionhouse/internal/infra/pgutils"
	"github.com/fastprodman/auctionhouse/internal/repos/ledgerentries"
)

func (r *entriesRepo) Get(ctx context.Context, q pgutils.Querier, txID string) (ledgerentries.Entry, error) {
	if q == nil {
		q = r.db
	}

	e, err := scanEntry(q.QueryRowContext(ctx, `
		SELECT `+entryColumns+`
		FROM ledger_entries
		WHERE tx_id = $1
	`, txID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledgerentries.Entry{}, ledgerentries.ErrEntryNotFound
		}

		return ledgerentries.Entry{}, fmt.Errorf("get ledger entry: %w", err)
	}

	return e, nil
}
