package ledgerentries

import (
	"context"
	"fmt"

	"github.com/fastprodman/auctionhouse/internal/infra/pgutils"
	"github.com/fastprodman/auctionhouse/internal/repos/ledgerentries"
)

func (r *entriesRepo) SumsByAccount(ctx context.Context, q pgutils.Querier, subjectID, currency string) (ledgerentries.Sums, error) {
	if q == nil {
		q = r.db
	}

	var s ledgerentries.Sums

	err := q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(applied) FILTER (WHERE kind = 'deposit'), 0)::text,
		       COALESCE(SUM(applied) FILTER (WHERE kind = 'hold'), 0)::text,
		       COALESCE(SUM(applied) FILTER (WHERE kind = 'release'), 0)::text,
		       COALESCE(SUM(applied) FILTER (WHERE kind = 'capture'), 0)::text
		FROM ledger_entries
		WHERE subject_id = $1 AND currency = $2
	`, subjectID, currency).Scan(&s.Deposited, &s.Held, &s.Released, &s.Captured)
	if err != nil {
		return ledgerentries.Sums{}, fmt.Errorf("sum ledger entries: %w", err)
	}

	return s, nil
}
