package bids

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fastprodman/auctionhouse/internal/infra/pgutils"
	"github.com/fastprodman/auctionhouse/internal/repos/bids"
)

func (r *bidsRepo) GetByKey(ctx context.Context, q pgutils.Querier, auctionID uuid.UUID, roundNo int, participantID, key string) (bids.Bid, error) {
	if q == nil {
		q = r.db
	}

	b, err := scanBid(q.QueryRowContext(ctx, `
		SELECT `+bidColumns+`
		FROM bids
		WHERE auction_id = $1::uuid AND round_no = $2 AND participant_id = $3 AND idempotency_key = $4
	`, auctionID.String(), roundNo, participantID, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return bids.Bid{}, bids.ErrBidNotFound
		}

		return bids.Bid{}, fmt.Errorf("get bid by key: %w", err)
	}

	return b, nil
}
