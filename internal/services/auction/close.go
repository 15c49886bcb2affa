package auction

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/fastprodman/auctionhouse/internal/repos/auctions"
	"github.com/fastprodman/auctionhouse/internal/repos/bids"
)

// CloseCurrentRound settles the open round. Depending on what is left it
// finishes the auction (all lots awarded, early finish, final round), opens
// the next round with the non-winners carried over, or cancels the auction
// when nobody would be left to compete.
func (e *Engine) CloseCurrentRound(ctx context.Context, id string) (CloseResult, error) {
	roundNo, err := e.currentRoundNo(ctx, id)
	if err != nil {
		return CloseResult{}, err
	}

	return e.closeRound(ctx, id, roundNo)
}

// closeRound closes expectedRound; any other state is a lost race.
func (e *Engine) closeRound(ctx context.Context, id string, expectedRound int) (CloseResult, error) {
	var res CloseResult

	err := e.run(ctx, "close round", func(tx *sql.Tx) error {
		a, round, err := e.loadOpenRound(ctx, tx, id, expectedRound)
		if err != nil {
			return err
		}

		guard := auctions.Guard{Status: a.Status, RoundNo: a.CurrentRoundNo, RoundActive: true}
		roundNo := a.CurrentRoundNo
		now := e.clock()

		competitors, err := e.bids.Standings(ctx, tx, a.ID, a.RoundWinnerIDs(), 0)
		if err != nil {
			return err
		}

		lotsRemaining := a.LotsRemaining()
		lotsThisRound := min(a.LotsPerRound, lotsRemaining)

		res = CloseResult{AuctionID: a.ID.String(), ClosedRoundNo: roundNo, Qualified: []string{}}
		s := e.newSettlement(tx, a, "close")

		switch {
		case lotsRemaining <= 0:
			markRoundFinished(round, now)
			err = e.finish(ctx, s, competitors, 0, roundNo, now)

		case len(competitors) <= lotsThisRound:
			// Early finish, includes a round without any bids. This is also the
			// only way the carry-over set can end up empty.
			res.Qualified = participantIDs(competitors)
			markRoundFinished(round, now)
			err = e.finish(ctx, s, competitors, len(competitors), roundNo, now)

		case roundNo >= a.MaxRounds:
			winners, losers := competitors[:lotsThisRound], competitors[lotsThisRound:]
			res.Qualified = participantIDs(winners)

			for _, l := range sortedByParticipant(losers) {
				err = s.release(ctx, l.ParticipantID, l.Amount, fmt.Sprintf("close:%s:%d:%s:release", a.ID, roundNo, l.ParticipantID))
				if err != nil {
					return err
				}
			}

			markRoundFinished(round, now)
			err = e.finish(ctx, s, winners, len(winners), roundNo, now)

		default:
			winners, qualified := competitors[:lotsThisRound], competitors[lotsThisRound:]

			for _, w := range sortedByParticipant(winners) {
				err = s.capture(ctx, w.ParticipantID, w.Amount, fmt.Sprintf("round-win:%s:%d:%s:capture", a.ID, roundNo, w.ParticipantID))
				if err != nil {
					return err
				}
			}

			for _, w := range winners {
				a.RoundWinners = append(a.RoundWinners, auctions.Award{
					RoundNo:       roundNo,
					ParticipantID: w.ParticipantID,
					Amount:        w.Amount,
					AwardedAt:     now,
				})
			}

			markRoundFinished(round, now)
			e.openNextRound(a, now)
			a.CurrentRoundEligible = participantIDs(qualified)

			res.Outcome = OutcomeNextRound
			res.NextRoundNo = a.CurrentRoundNo
			res.RoundEndsAt = a.CurrentRoundEndsAt
			res.Qualified = a.CurrentRoundEligible
			res.NextRoundTargetSize = nextRoundTargetSize(roundNo, a.MaxRounds, lotsThisRound, len(competitors))
		}
		if err != nil {
			return err
		}

		if a.Status == auctions.StatusFinished {
			res.Outcome = OutcomeFinished
			res.Winners = a.Winners
			res.WinningBids = a.WinningBids
			res.FinishedAt = a.FinishedAt
		}

		res.Charged = s.charged
		res.Released = s.released
		res.ReconcileIssues = s.issues

		err = e.auctions.Update(ctx, tx, a, guard)
		if err != nil {
			return err
		}

		return e.emitCloseEvents(ctx, tx, a, TopicRoundClosed, res)
	})
	if err != nil {
		return CloseResult{}, err
	}

	e.logger.InfoContext(ctx, "round closed",
		"auction_id", res.AuctionID, "round_no", res.ClosedRoundNo, "outcome", res.Outcome,
		"charged", len(res.Charged), "released", len(res.Released),
		"qualified", len(res.Qualified), "reconcile_issues", res.ReconcileIssues)

	return res, nil
}

// SkipRoundWithRefund abandons the open round without awarding anything:
// every competitor's hold is released and their bids are cancelled, so they
// re-enter the next round from zero.
func (e *Engine) SkipRoundWithRefund(ctx context.Context, id string) (CloseResult, error) {
	expectedRound, err := e.currentRoundNo(ctx, id)
	if err != nil {
		return CloseResult{}, err
	}

	var res CloseResult

	err = e.run(ctx, "skip round", func(tx *sql.Tx) error {
		a, round, err := e.loadOpenRound(ctx, tx, id, expectedRound)
		if err != nil {
			return err
		}

		guard := auctions.Guard{Status: a.Status, RoundNo: a.CurrentRoundNo, RoundActive: true}
		roundNo := a.CurrentRoundNo
		now := e.clock()

		competitors, err := e.bids.Standings(ctx, tx, a.ID, a.RoundWinnerIDs(), 0)
		if err != nil {
			return err
		}

		s := e.newSettlement(tx, a, "skip")
		for _, c := range sortedByParticipant(competitors) {
			err = s.release(ctx, c.ParticipantID, c.Amount, fmt.Sprintf("skip-refund:%s:%d:%s:release", a.ID, roundNo, c.ParticipantID))
			if err != nil {
				return err
			}
		}

		ids := participantIDs(competitors)

		_, err = e.bids.CancelPlaced(ctx, tx, a.ID, ids)
		if err != nil {
			return err
		}

		round.Status = auctions.RoundCancelled
		round.ClosedAt = &now

		res = CloseResult{AuctionID: a.ID.String(), ClosedRoundNo: roundNo, Qualified: ids}

		if roundNo >= a.MaxRounds {
			e.markFinished(a, now)

			res.Outcome = OutcomeFinished
			res.Winners = a.Winners
			res.WinningBids = a.WinningBids
			res.FinishedAt = a.FinishedAt
		} else {
			e.openNextRound(a, now)
			a.CurrentRoundEligible = ids

			res.Outcome = OutcomeNextRound
			res.NextRoundNo = a.CurrentRoundNo
			res.RoundEndsAt = a.CurrentRoundEndsAt
		}

		res.Charged = s.charged
		res.Released = s.released
		res.ReconcileIssues = s.issues

		err = e.auctions.Update(ctx, tx, a, guard)
		if err != nil {
			return err
		}

		return e.emitCloseEvents(ctx, tx, a, TopicRoundSkipped, res)
	})
	if err != nil {
		return CloseResult{}, err
	}

	e.logger.InfoContext(ctx, "round skipped",
		"auction_id", res.AuctionID, "round_no", res.ClosedRoundNo, "outcome", res.Outcome,
		"released", len(res.Released), "reconcile_issues", res.ReconcileIssues)

	return res, nil
}

// FinalizeAuction finishes an active auction. Finished auctions return their
// recorded result again.
func (e *Engine) FinalizeAuction(ctx context.Context, id string) (FinalizeResult, error) {
	var res FinalizeResult

	err := e.run(ctx, "finalize auction", func(tx *sql.Tx) error {
		a, err := e.loadForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		if a.Status == auctions.StatusFinished {
			res = finalizeResultOf(a, nil)
			return nil
		}

		if a.Status != auctions.StatusActive {
			return conflict("auction is not active")
		}

		guard := auctions.Guard{Status: a.Status, RoundNo: a.CurrentRoundNo}
		now := e.clock()

		settle, err := e.bids.Standings(ctx, tx, a.ID, a.RoundWinnerIDs(), 0)
		if err != nil {
			return err
		}

		roundNo := a.CurrentRoundNo
		if round := a.CurrentRound(); round != nil && round.Status == auctions.RoundActive {
			markRoundFinished(round, now)
		}

		s := e.newSettlement(tx, a, "finalize")

		err = e.finish(ctx, s, settle, max(a.LotsRemaining(), 0), roundNo, now)
		if err != nil {
			return err
		}

		err = e.auctions.Update(ctx, tx, a, guard)
		if err != nil {
			return err
		}

		err = e.emit(ctx, tx, TopicAuctionFinished, a.ID.String(), finishedPayload(a))
		if err != nil {
			return err
		}

		res = finalizeResultOf(a, s)

		return nil
	})
	if err != nil {
		return FinalizeResult{}, err
	}

	e.logger.InfoContext(ctx, "auction finalized",
		"auction_id", res.AuctionID, "winners", len(res.Winners),
		"charged", len(res.Charged), "released", len(res.Released),
		"reconcile_issues", res.ReconcileIssues)

	return res, nil
}

// currentRoundNo reads the open round without locking. Closers pass it on as
// the round they expect to find, so concurrent closers of one round cannot
// close the following round by accident.
func (e *Engine) currentRoundNo(ctx context.Context, id string) (int, error) {
	a, err := e.load(ctx, id)
	if err != nil {
		return 0, err
	}

	if a.Status != auctions.StatusActive || a.CurrentRoundNo == 0 {
		return 0, conflict("auction is not active")
	}

	return a.CurrentRoundNo, nil
}

func (e *Engine) loadOpenRound(ctx context.Context, tx *sql.Tx, id string, expectedRound int) (*auctions.Auction, *auctions.Round, error) {
	a, err := e.loadForUpdate(ctx, tx, id)
	if err != nil {
		return nil, nil, err
	}

	if a.Status != auctions.StatusActive || a.CurrentRoundNo == 0 {
		return nil, nil, conflict("auction is not active")
	}

	round := a.CurrentRound()
	if a.CurrentRoundNo != expectedRound || round == nil || round.Status != auctions.RoundActive {
		return nil, nil, conflict("round already closed")
	}

	return a, round, nil
}

// finish captures the top lots of ranked (already in ranking order), releases
// the rest, records the captured participants as winners of roundNo and marks
// the auction finished.
func (e *Engine) finish(ctx context.Context, s *settlement, ranked []bids.Standing, lots, roundNo int, now time.Time) error {
	a := s.a
	lots = min(lots, len(ranked))
	winners := ranked[:lots]

	isWinner := make(map[string]bool, len(winners))
	for _, w := range winners {
		isWinner[w.ParticipantID] = true
	}

	for _, p := range sortedByParticipant(ranked) {
		var err error
		if isWinner[p.ParticipantID] {
			err = s.capture(ctx, p.ParticipantID, p.Amount, fmt.Sprintf("finalize:%s:%s:capture", a.ID, p.ParticipantID))
		} else {
			err = s.release(ctx, p.ParticipantID, p.Amount, fmt.Sprintf("finalize:%s:%s:release", a.ID, p.ParticipantID))
		}
		if err != nil {
			return err
		}
	}

	for _, w := range winners {
		a.RoundWinners = append(a.RoundWinners, auctions.Award{
			RoundNo:       roundNo,
			ParticipantID: w.ParticipantID,
			Amount:        w.Amount,
			AwardedAt:     now,
		})
	}

	e.markFinished(a, now)

	return nil
}

func (e *Engine) markFinished(a *auctions.Auction, now time.Time) {
	a.Status = auctions.StatusFinished
	a.CurrentRoundNo = 0
	a.CurrentRoundEndsAt = nil
	a.CurrentRoundEligible = nil
	a.FinishedAt = &now
	a.Winners = a.RoundWinnerIDs()
	a.WinningBids = slices.Clone(a.RoundWinners)
	if a.WinningBids == nil {
		a.WinningBids = []auctions.Award{}
	}
}

func (e *Engine) openNextRound(a *auctions.Auction, now time.Time) {
	endsAt := now.Add(time.Duration(a.RoundDurationSec) * time.Second)
	next := a.CurrentRoundNo + 1

	a.Rounds = append(a.Rounds, auctions.Round{
		RoundNo:        next,
		Status:         auctions.RoundActive,
		StartedAt:      now,
		EndsAt:         endsAt,
		ScheduledEndAt: endsAt,
	})
	a.CurrentRoundNo = next
	a.CurrentRoundEndsAt = &endsAt
}

func markRoundFinished(r *auctions.Round, now time.Time) {
	r.Status = auctions.RoundFinished
	r.ClosedAt = &now
}

func (e *Engine) emitCloseEvents(ctx context.Context, tx *sql.Tx, a *auctions.Auction, topic string, res CloseResult) error {
	err := e.emit(ctx, tx, topic, fmt.Sprintf("%s:%d", a.ID, res.ClosedRoundNo), map[string]any{
		"auctionId":     a.ID.String(),
		"closedRoundNo": res.ClosedRoundNo,
		"outcome":       res.Outcome,
		"nextRoundNo":   res.NextRoundNo,
		"qualified":     res.Qualified,
	})
	if err != nil {
		return err
	}

	if a.Status == auctions.StatusFinished {
		return e.emit(ctx, tx, TopicAuctionFinished, a.ID.String(), finishedPayload(a))
	}

	return nil
}

func finishedPayload(a *auctions.Auction) map[string]any {
	return map[string]any{
		"auctionId":   a.ID.String(),
		"winners":     a.Winners,
		"winningBids": a.WinningBids,
		"finishedAt":  a.FinishedAt,
	}
}

func finalizeResultOf(a *auctions.Auction, s *settlement) FinalizeResult {
	res := FinalizeResult{
		AuctionID:   a.ID.String(),
		Winners:     a.Winners,
		WinningBids: a.WinningBids,
		Charged:     []Movement{},
		Released:    []Movement{},
	}

	if res.Winners == nil {
		res.Winners = []string{}
	}
	if res.WinningBids == nil {
		res.WinningBids = []auctions.Award{}
	}
	if a.FinishedAt != nil {
		res.FinishedAt = *a.FinishedAt
	}

	if s != nil {
		res.Charged = s.charged
		res.Released = s.released
		res.ReconcileIssues = s.issues
	}

	return res
}

// nextRoundTargetSize narrows the field smoothly towards the last round:
// count^(roundsLeft/maxRounds), clamped to [lots, count]. Display only.
func nextRoundTargetSize(roundNo, maxRounds, lots, count int) int {
	left := maxRounds - roundNo
	if left <= 0 || maxRounds <= 0 {
		return min(lots, count)
	}

	target := int(math.Ceil(math.Pow(float64(count), float64(left)/float64(maxRounds))))

	return min(count, max(lots, target))
}
