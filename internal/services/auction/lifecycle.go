package auction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fastprodman/auctionhouse/internal/money"
	"github.com/fastprodman/auctionhouse/internal/repos/auctions"
)

const (
	defaultCurrency              = "RUB"
	defaultRoundDurationSec      = 60
	defaultMaxRounds             = 5
	defaultSnipingWindowSec      = 10
	defaultExtendBySec           = 10
	defaultMaxExtensionsPerRound = 10
)

// parseID maps malformed ids to 404, like ids that do not exist.
func parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, notFound("auction not found")
	}

	return parsed, nil
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}

	return *v
}

// CreateAuction stores a draft. Each round awards LotsCount prizes, so the
// auction holds LotsCount*MaxRounds lots in total.
func (e *Engine) CreateAuction(ctx context.Context, in CreateInput) (AuctionView, error) {
	in.Code = strings.TrimSpace(in.Code)
	in.Title = strings.TrimSpace(in.Title)

	if in.Code == "" || in.Title == "" {
		return AuctionView{}, badRequest("code and title are required")
	}

	if in.LotsCount < 1 {
		return AuctionView{}, badRequest("lotsCount must be >= 1")
	}

	minIncrement := decimal.NewFromInt(1)
	if in.MinIncrement != "" {
		var err error

		minIncrement, err = money.ParsePositive(in.MinIncrement)
		if err != nil {
			return AuctionView{}, badRequest(fmt.Sprintf("minIncrement: %v", err))
		}
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	a := &auctions.Auction{
		ID:                    uuid.New(),
		Code:                  in.Code,
		Title:                 in.Title,
		Status:                auctions.StatusDraft,
		Currency:              currency,
		MinIncrement:          minIncrement,
		LotsCount:             in.LotsCount,
		RoundDurationSec:      intOr(in.RoundDurationSec, defaultRoundDurationSec),
		MaxRounds:             intOr(in.MaxRounds, defaultMaxRounds),
		SnipingWindowSec:      intOr(in.SnipingWindowSec, defaultSnipingWindowSec),
		ExtendBySec:           intOr(in.ExtendBySec, defaultExtendBySec),
		MaxExtensionsPerRound: intOr(in.MaxExtensionsPerRound, defaultMaxExtensionsPerRound),
	}

	switch {
	case a.RoundDurationSec < 1:
		return AuctionView{}, badRequest("roundDurationSec must be >= 1")
	case a.MaxRounds < 1:
		return AuctionView{}, badRequest("maxRounds must be >= 1")
	case a.SnipingWindowSec < 0 || a.ExtendBySec < 0 || a.MaxExtensionsPerRound < 0:
		return AuctionView{}, badRequest("anti-sniping parameters must not be negative")
	}

	a.LotsPerRound = a.LotsCount
	a.TotalLots = a.LotsCount * a.MaxRounds

	err := e.auctions.Insert(ctx, a)
	if err != nil {
		if errors.Is(err, auctions.ErrDuplicateCode) {
			return AuctionView{}, conflict("auction code already exists")
		}

		return AuctionView{}, fmt.Errorf("create auction: %w", err)
	}

	e.logger.InfoContext(ctx, "auction created", "auction_id", a.ID.String(), "code", a.Code)

	return viewOf(a), nil
}

// StartAuction opens round 1. Only drafts can start.
func (e *Engine) StartAuction(ctx context.Context, id string) (AuctionView, error) {
	var view AuctionView

	err := e.run(ctx, "start auction", func(tx *sql.Tx) error {
		a, err := e.loadForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		if a.Status != auctions.StatusDraft {
			return conflict("auction already started")
		}

		guard := auctions.Guard{Status: a.Status}
		now := e.clock()
		endsAt := now.Add(time.Duration(a.RoundDurationSec) * time.Second)

		a.Status = auctions.StatusActive
		a.StartedAt = &now
		a.CurrentRoundNo = 1
		a.CurrentRoundEndsAt = &endsAt
		a.CurrentRoundEligible = nil
		a.Rounds = []auctions.Round{{
			RoundNo:        1,
			Status:         auctions.RoundActive,
			StartedAt:      now,
			EndsAt:         endsAt,
			ScheduledEndAt: endsAt,
		}}

		err = e.auctions.Update(ctx, tx, a, guard)
		if err != nil {
			return err
		}

		err = e.emit(ctx, tx, TopicAuctionStarted, a.ID.String(), map[string]any{
			"auctionId":   a.ID.String(),
			"roundNo":     1,
			"roundEndsAt": endsAt,
		})
		if err != nil {
			return err
		}

		view = viewOf(a)

		return nil
	})
	if err != nil {
		return AuctionView{}, err
	}

	e.logger.InfoContext(ctx, "auction started", "auction_id", view.ID, "round_ends_at", view.RoundEndsAt)

	return view, nil
}

// CancelAuction releases the holds of everyone still competing and marks the
// auction cancelled. Prizes already captured stay captured. Cancelling a
// cancelled auction succeeds without releasing anything.
func (e *Engine) CancelAuction(ctx context.Context, id string) (CancelResult, error) {
	var res CancelResult

	err := e.run(ctx, "cancel auction", func(tx *sql.Tx) error {
		a, err := e.loadForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		res = CancelResult{AuctionID: a.ID.String(), Status: auctions.StatusCancelled, Released: []Movement{}}

		if a.Status == auctions.StatusCancelled {
			return nil
		}

		if a.Status != auctions.StatusActive && a.Status != auctions.StatusDraft {
			return conflict("auction is already finished")
		}

		guard := auctions.Guard{Status: a.Status, RoundNo: a.CurrentRoundNo}

		competitors, err := e.bids.Standings(ctx, tx, a.ID, a.RoundWinnerIDs(), 0)
		if err != nil {
			return err
		}

		s := e.newSettlement(tx, a, "cancel")
		for _, c := range sortedByParticipant(competitors) {
			err = s.release(ctx, c.ParticipantID, c.Amount, fmt.Sprintf("cancel:%s:%s:release", a.ID, c.ParticipantID))
			if err != nil {
				return err
			}
		}

		now := e.clock()
		if r := a.CurrentRound(); r != nil && r.Status == auctions.RoundActive {
			r.Status = auctions.RoundCancelled
			r.ClosedAt = &now
		}

		a.Status = auctions.StatusCancelled
		a.CurrentRoundNo = 0
		a.CurrentRoundEndsAt = nil
		a.CurrentRoundEligible = nil
		a.FinishedAt = &now

		err = e.auctions.Update(ctx, tx, a, guard)
		if err != nil {
			return err
		}

		err = e.emit(ctx, tx, TopicAuctionCancelled, a.ID.String(), map[string]any{
			"auctionId": a.ID.String(),
			"released":  len(s.released),
		})
		if err != nil {
			return err
		}

		res.Released = s.released
		res.ReconcileIssues = s.issues

		return nil
	})
	if err != nil {
		return CancelResult{}, err
	}

	e.logger.InfoContext(ctx, "auction cancelled", "auction_id", res.AuctionID,
		"released", len(res.Released), "reconcile_issues", res.ReconcileIssues)

	return res, nil
}
