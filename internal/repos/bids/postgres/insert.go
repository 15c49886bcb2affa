package bids

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/auctionhouse/internal/repos/bids"
)

func (r *bidsRepo) Insert(ctx context.Context, tx *sql.Tx, b *bids.Bid) (bool, error) {
	status := b.Status
	if status == "" {
		status = bids.StatusPlaced
	}

	var created bids.Bid

	err := tx.QueryRowContext(ctx, `
		INSERT INTO bids (auction_id, round_no, participant_id, amount, status, idempotency_key)
		VALUES ($1::uuid, $2, $3, $4::numeric, $5, $6)
		ON CONFLICT (auction_id, round_no, participant_id, idempotency_key) DO NOTHING
		RETURNING id, created_at
	`, b.AuctionID.String(), b.RoundNo, b.ParticipantID, b.Amount, status, b.IdempotencyKey).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}

		return false, fmt.Errorf("insert bid: %w", err)
	}

	b.ID = created.ID
	b.CreatedAt = created.CreatedAt
	b.Status = status

	return true, nil
}
