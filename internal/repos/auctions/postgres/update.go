package auctions

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/auctionhouse/internal/repos/auctions"
)

func (r *auctionsRepo) Update(ctx context.Context, tx *sql.Tx, a *auctions.Auction, g auctions.Guard) error {
	enc, err := encodeAggregate(a)
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE auctions SET
			status = $2,
			current_round_no = $3,
			current_round_ends_at = $4,
			current_round_eligible = $5::jsonb,
			round_winners = $6::jsonb,
			winners = $7::jsonb,
			winning_bids = $8::jsonb,
			rounds = $9::jsonb,
			started_at = $10,
			finished_at = $11,
			updated_at = now()
		WHERE id = $1::uuid
		  AND status = $12
		  AND COALESCE(current_round_no, 0) = $13::int
		  AND (NOT $14::bool OR rounds -> ($13::int - 1) ->> 'status' = 'active')
	`,
		a.ID.String(), a.Status, nullRoundNo(a.CurrentRoundNo), a.CurrentRoundEndsAt,
		enc.eligible, enc.roundWinners, enc.winners, enc.winningBids, enc.rounds,
		a.StartedAt, a.FinishedAt,
		g.Status, g.RoundNo, g.RoundActive,
	)
	if err != nil {
		return fmt.Errorf("update auction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return auctions.ErrStateConflict
	}

	return nil
}
