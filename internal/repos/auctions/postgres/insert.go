package auctions

import (
	"context"
	"fmt"

	"github.com/fastprodman/auctionhouse/internal/infra/pgutils"
	"github.com/fastprodman/auctionhouse/internal/repos/auctions"
)

func (r *auctionsRepo) Insert(ctx context.Context, a *auctions.Auction) error {
	enc, err := encodeAggregate(a)
	if err != nil {
		return err
	}

	err = r.db.QueryRowContext(ctx, `
		INSERT INTO auctions (
			id, code, title, status, currency, min_increment,
			lots_count, total_lots, lots_per_round, max_rounds,
			round_duration_sec, sniping_window_sec, extend_by_sec, max_extensions_per_round,
			current_round_no, current_round_ends_at, current_round_eligible,
			round_winners, winners, winning_bids, rounds
		) VALUES (
			$1::uuid, $2, $3, $4, $5, $6::numeric,
			$7, $8, $9, $10,
			$11, $12, $13, $14,
			$15, $16, $17::jsonb,
			$18::jsonb, $19::jsonb, $20::jsonb, $21::jsonb
		)
		RETURNING created_at, updated_at
	`,
		a.ID.String(), a.Code, a.Title, a.Status, a.Currency, a.MinIncrement,
		a.LotsCount, a.TotalLots, a.LotsPerRound, a.MaxRounds,
		a.RoundDurationSec, a.SnipingWindowSec, a.ExtendBySec, a.MaxExtensionsPerRound,
		nullRoundNo(a.CurrentRoundNo), a.CurrentRoundEndsAt, enc.eligible,
		enc.roundWinners, enc.winners, enc.winningBids, enc.rounds,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if pgutils.IsUniqueViolation(err) {
			return auctions.ErrDuplicateCode
		}

		return fmt.Errorf("insert auction: %w", err)
	}

	return nil
}
