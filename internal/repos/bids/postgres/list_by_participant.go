package bids

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/fastprodman/auctionhouse/internal/repos/bids"
)

func (r *bidsRepo) ListByParticipant(ctx context.Context, auctionID uuid.UUID, participantID string, limit int) ([]bids.Bid, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+bidColumns+`
		FROM bids
		WHERE auction_id = $1::uuid AND participant_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`, auctionID.String(), participantID, limit)
	if err != nil {
		return nil, fmt.Errorf("list participant bids: %w", err)
	}
	defer rows.Close()

	var out []bids.Bid
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bid: %w", err)
		}

		out = append(out, b)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate bids: %w", err)
	}

	return out, nil
}
