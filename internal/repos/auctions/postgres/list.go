package auctions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fastprodman/auctionhouse/internal/infra/pgutils"
	"github.com/fastprodman/auctionhouse/internal/repos/auctions"
)

// ListDue returns active auctions whose current round deadline has passed,
// oldest deadline first.
func (r *auctionsRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id::text
		FROM auctions
		WHERE status = 'active'
		  AND current_round_ends_at <= $1
		ORDER BY current_round_ends_at
		LIMIT $2
	`, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list due auctions: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID

		err = rows.Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("scan auction id: %w", err)
		}

		ids = append(ids, id)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate due auctions: %w", err)
	}

	return ids, nil
}

func (r *auctionsRepo) ListByStatus(ctx context.Context, statuses []auctions.Status, after uuid.UUID, limit int) ([]*auctions.Auction, error) {
	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		names = append(names, string(s))
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+auctionColumns+`
		FROM auctions
		WHERE status = ANY($1::text[]) AND id > $2
		ORDER BY id
		LIMIT $3
	`, pgutils.TextArray(names), after, limit)
	if err != nil {
		return nil, fmt.Errorf("list auctions: %w", err)
	}
	defer rows.Close()

	var out []*auctions.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan auction: %w", err)
		}

		out = append(out, a)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate auctions: %w", err)
	}

	return out, nil
}
