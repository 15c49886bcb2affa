package ledgerentries

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fastprodman/auctionhouse/internal/infra/pgutils"
)

func (r *entriesRepo) NetHeldByAuction(ctx context.Context, q pgutils.Querier, auctionID string) (map[string]decimal.Decimal, error) {
	if q == nil {
		q = r.db
	}

	rows, err := q.QueryContext(ctx, `
		SELECT subject_id,
		       SUM(CASE kind WHEN 'hold' THEN applied ELSE -applied END)::text
		FROM ledger_entries
		WHERE auction_id = $1::uuid
		  AND kind IN ('hold', 'release', 'capture')
		GROUP BY subject_id
	`, auctionID)
	if err != nil {
		return nil, fmt.Errorf("net held by auction: %w", err)
	}
	defer rows.Close()

	out := make(map[string]decimal.Decimal)
	for rows.Next() {
		var (
			subject string
			net     decimal.Decimal
		)

		err = rows.Scan(&subject, &net)
		if err != nil {
			return nil, fmt.Errorf("scan net held: %w", err)
		}

		out[subject] = net
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate net held: %w", err)
	}

	return out, nil
}
