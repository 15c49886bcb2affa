package ledgerentries

import (
	"context"
	"fmt"

	"github.com/fastprodman/auctionhouse/internal/repos/ledgerentries"
)

func (r *entriesRepo) ListByAccount(ctx context.Context, subjectID, currency string, limit int) ([]ledgerentries.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM ledger_entries
		WHERE subject_id = $1 AND currency = $2
		ORDER BY created_at DESC, tx_id
		LIMIT $3
	`, subjectID, currency, limit)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var out []ledgerentries.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}

		out = append(out, e)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate ledger entries: %w", err)
	}

	return out, nil
}
