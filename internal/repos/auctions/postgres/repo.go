package auctions

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/fastprodman/auctionhouse/internal/repos/auctions"
)

var _ auctions.Auctions = (*auctionsRepo)(nil)

type auctionsRepo struct{ db *sql.DB }

func New(db *sql.DB) *auctionsRepo {
	return &auctionsRepo{db: db}
}

const auctionColumns = `id::text, code, title, status, currency, min_increment::text,
	lots_count, total_lots, lots_per_round, max_rounds,
	round_duration_sec, sniping_window_sec, extend_by_sec, max_extensions_per_round,
	COALESCE(current_round_no, 0), current_round_ends_at, current_round_eligible::text,
	round_winners::text, winners::text, winning_bids::text, rounds::text,
	started_at, finished_at, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanAuction(s scanner) (*auctions.Auction, error) {
	var (
		a                               auctions.Auction
		eligible, roundWinners, winners []byte
		winningBids, rounds             []byte
	)

	err := s.Scan(
		&a.ID, &a.Code, &a.Title, &a.Status, &a.Currency, &a.MinIncrement,
		&a.LotsCount, &a.TotalLots, &a.LotsPerRound, &a.MaxRounds,
		&a.RoundDurationSec, &a.SnipingWindowSec, &a.ExtendBySec, &a.MaxExtensionsPerRound,
		&a.CurrentRoundNo, &a.CurrentRoundEndsAt, &eligible,
		&roundWinners, &winners, &winningBids, &rounds,
		&a.StartedAt, &a.FinishedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	fields := []struct {
		name string
		raw  []byte
		dst  any
	}{
		{"current_round_eligible", eligible, &a.CurrentRoundEligible},
		{"round_winners", roundWinners, &a.RoundWinners},
		{"winners", winners, &a.Winners},
		{"winning_bids", winningBids, &a.WinningBids},
		{"rounds", rounds, &a.Rounds},
	}

	for _, f := range fields {
		if f.raw == nil {
			continue
		}

		err = json.Unmarshal(f.raw, f.dst)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", f.name, err)
		}
	}

	return &a, nil
}

// jsonArg encodes v for a JSONB parameter; nil slices become SQL NULL when
// nullable is set and an empty array otherwise.
func jsonArg[T any](v []T, nullable bool) (any, error) {
	if v == nil {
		if nullable {
			return nil, nil
		}

		return "[]", nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return string(b), nil
}

type aggregateArgs struct {
	eligible, roundWinners, winners, winningBids, rounds any
}

func encodeAggregate(a *auctions.Auction) (aggregateArgs, error) {
	var (
		out aggregateArgs
		err error
	)

	out.eligible, err = jsonArg(a.CurrentRoundEligible, true)
	if err != nil {
		return out, fmt.Errorf("encode eligible: %w", err)
	}

	out.roundWinners, err = jsonArg(a.RoundWinners, false)
	if err != nil {
		return out, fmt.Errorf("encode round winners: %w", err)
	}

	out.winners, err = jsonArg(a.Winners, true)
	if err != nil {
		return out, fmt.Errorf("encode winners: %w", err)
	}

	out.winningBids, err = jsonArg(a.WinningBids, true)
	if err != nil {
		return out, fmt.Errorf("encode winning bids: %w", err)
	}

	out.rounds, err = jsonArg(a.Rounds, false)
	if err != nil {
		return out, fmt.Errorf("encode rounds: %w", err)
	}

	return out, nil
}

func nullRoundNo(n int) any {
	if n <= 0 {
		return nil
	}

	return n
}
