package auction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fastprodman/auctionhouse/internal/money"
	"github.com/fastprodman/auctionhouse/internal/repos/auctions"
	"github.com/fastprodman/auctionhouse/internal/repos/bids"
	"github.com/fastprodman/auctionhouse/internal/services/ledger"
)

// PlaceBid raises the participant's standing bid. Only the difference to the
// previous standing bid is held. A competitive bid inside the sniping window
// pushes the round deadline out.
func (e *Engine) PlaceBid(ctx context.Context, auctionID string, in BidInput) (BidResult, error) {
	participantID := strings.TrimSpace(in.ParticipantID)
	if participantID == "" {
		return BidResult{}, badRequest("participantId is required")
	}

	amount, err := money.ParsePositive(in.Amount)
	if err != nil {
		return BidResult{}, badRequest(fmt.Sprintf("invalid amount: %v", err))
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" {
		key = amount.String()
	}

	id, err := parseID(auctionID)
	if err != nil {
		return BidResult{}, err
	}

	var res BidResult

	// A lost insert rolls the attempt back; the second attempt finds the
	// stored bid and answers with its replay.
	for attempt := 1; ; attempt++ {
		err = e.placeBidTx(ctx, id, participantID, amount, key, &res)
		if !errors.Is(err, errBidRecordedConcurrently) {
			break
		}
		if attempt == 2 {
			return BidResult{}, conflict("bid with this idempotency key is being recorded concurrently")
		}
	}
	if err != nil {
		return BidResult{}, err
	}

	e.logger.DebugContext(ctx, "bid accepted",
		"auction_id", res.AuctionID, "participant_id", res.ParticipantID,
		"round_no", res.RoundNo, "amount", res.Amount.String(),
		"extended", res.Extended, "replayed", res.Replayed)

	return res, nil
}

func (e *Engine) placeBidTx(ctx context.Context, id uuid.UUID, participantID string, amount decimal.Decimal, key string, out *BidResult) error {
	return e.run(ctx, "place bid", func(tx *sql.Tx) error {
		// 1) Lock the auction against state transitions, not against other bids.
		a, err := e.auctions.GetForBid(ctx, tx, id)
		if err != nil {
			if errors.Is(err, auctions.ErrNotFound) {
				return notFound("auction not found")
			}
			return err
		}

		if a.Status != auctions.StatusActive || a.CurrentRoundNo == 0 || a.CurrentRoundEndsAt == nil {
			return conflict("auction is not accepting bids")
		}

		if win, ok := a.WonBy(participantID); ok {
			return &Error{
				Code:    http.StatusForbidden,
				Message: fmt.Sprintf("participant already won a prize in round %d", win.RoundNo),
				Details: map[string]any{
					"wonInRound":  win.RoundNo,
					"prizeAmount": win.Amount.String(),
				},
			}
		}

		now := e.clock()
		if !now.Before(*a.CurrentRoundEndsAt) {
			return conflict("round is already closed")
		}

		roundNo := a.CurrentRoundNo

		// 2) Serialize this participant's bids on this auction.
		_, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1), hashtext($2))`, a.ID.String(), participantID)
		if err != nil {
			return fmt.Errorf("lock participant: %w", err)
		}

		prev, err := e.bids.GetByKey(ctx, tx, a.ID, roundNo, participantID, key)
		switch {
		case err == nil:
			acc, err := e.ledger.GetAccountTx(ctx, tx, participantID, a.Currency)
			if err != nil {
				return err
			}

			*out = BidResult{
				AuctionID:     a.ID.String(),
				RoundNo:       roundNo,
				ParticipantID: participantID,
				Accepted:      true,
				Amount:        prev.Amount,
				RoundEndsAt:   *a.CurrentRoundEndsAt,
				Replayed:      true,
				Account:       acc,
			}

			return nil
		case !errors.Is(err, bids.ErrBidNotFound):
			return err
		}

		// 3) Minimum increment is measured from the participant's own standing bid.
		priorMax := decimal.Zero

		standing, ok, err := e.bids.StandingFor(ctx, tx, a.ID, participantID)
		if err != nil {
			return err
		}
		if ok {
			priorMax = standing.Amount
		}

		requiredMin := priorMax.Add(a.MinIncrement)
		if amount.LessThan(requiredMin) {
			return &Error{
				Code:    http.StatusUnprocessableEntity,
				Message: fmt.Sprintf("bid must be at least %s", requiredMin),
				Details: map[string]any{
					"currentAmount": priorMax.String(),
					"minIncrement":  a.MinIncrement.String(),
					"requiredMin":   requiredMin.String(),
				},
			}
		}

		// 4) Hold the delta only.
		var account ledger.View

		delta := amount.Sub(priorMax)
		if delta.IsPositive() {
			held, err := e.ledger.ApplyTx(ctx, tx, ledger.KindHold, ledger.Op{
				SubjectID: participantID,
				Currency:  a.Currency,
				Amount:    delta,
				TxID:      fmt.Sprintf("hold:%s:%d:%s:%s", a.ID, roundNo, participantID, key),
				AuctionID: a.ID.String(),
				Metadata:  map[string]any{"roundNo": roundNo, "bidAmount": amount.String()},
			})
			if err != nil {
				if errors.Is(err, ledger.ErrInsufficientFunds) {
					return e.insufficientFunds(ctx, tx, participantID, a.Currency, delta)
				}
				return err
			}

			account = held.View
		} else {
			account, err = e.ledger.GetAccountTx(ctx, tx, participantID, a.Currency)
			if err != nil {
				return err
			}
		}

		// 5) Anti-sniping, competitive bids only.
		endsAt := *a.CurrentRoundEndsAt
		extended := false

		if a.SnipingWindowSec > 0 && a.ExtendBySec > 0 && a.MaxExtensionsPerRound > 0 {
			leaders, err := e.bids.Standings(ctx, tx, a.ID, a.RoundWinnerIDs(), 1)
			if err != nil {
				return err
			}

			leaderAmount := decimal.Zero
			if len(leaders) > 0 {
				leaderAmount = leaders[0].Amount
			}

			if amount.GreaterThan(leaderAmount) {
				newEnd, ok, err := e.auctions.ExtendRound(ctx, tx, a.ID, roundNo, now)
				if err != nil {
					return err
				}
				if ok {
					endsAt = newEnd
					extended = true
				}
			}
		}

		// 6) Record the bid.
		inserted, err := e.bids.Insert(ctx, tx, &bids.Bid{
			AuctionID:      a.ID,
			RoundNo:        roundNo,
			ParticipantID:  participantID,
			Amount:         amount,
			Status:         bids.StatusPlaced,
			IdempotencyKey: key,
		})
		if err != nil {
			return err
		}
		if !inserted {
			return errBidRecordedConcurrently
		}

		*out = BidResult{
			AuctionID:     a.ID.String(),
			RoundNo:       roundNo,
			ParticipantID: participantID,
			Accepted:      true,
			Amount:        amount,
			RoundEndsAt:   endsAt,
			Extended:      extended,
			Account:       account,
		}

		return nil
	})
}

func (e *Engine) insufficientFunds(ctx context.Context, tx *sql.Tx, participantID, currency string, required decimal.Decimal) error {
	acc, err := e.ledger.GetAccountTx(ctx, tx, participantID, currency)
	if err != nil {
		return err
	}

	return &Error{
		Code:    http.StatusPaymentRequired,
		Message: "insufficient funds to place the bid",
		Details: map[string]any{
			"required":  required.String(),
			"available": acc.Available.String(),
			"currency":  currency,
		},
	}
}
