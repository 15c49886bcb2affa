package bids

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/fastprodman/auctionhouse/internal/infra/pgutils"
)

func (r *bidsRepo) CancelPlaced(ctx context.Context, tx *sql.Tx, auctionID uuid.UUID, participants []string) (int64, error) {
	if len(participants) == 0 {
		return 0, nil
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE bids SET status = 'cancelled'
		WHERE auction_id = $1::uuid
		  AND status = 'placed'
		  AND participant_id = ANY($2::text[])
	`, auctionID.String(), pgutils.TextArray(participants))
	if err != nil {
		return 0, fmt.Errorf("cancel placed bids: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	return n, nil
}
