package auction

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/fastprodman/auctionhouse/internal/repos/auctions"
	"github.com/fastprodman/auctionhouse/internal/repos/bids"
)

const (
	defaultLeaders = 10
	maxLeaders     = 100
	maxBidHistory  = 500
)

func clampLimit(limit, def, hi int) int {
	if limit <= 0 {
		return def
	}

	return min(limit, hi)
}

func (e *Engine) load(ctx context.Context, id string) (*auctions.Auction, error) {
	auctionID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	a, err := e.auctions.Get(ctx, nil, auctionID)
	if err != nil {
		if errors.Is(err, auctions.ErrNotFound) {
			return nil, notFound("auction not found")
		}

		return nil, fmt.Errorf("get auction: %w", err)
	}

	return a, nil
}

// GetAuctionStatus returns the auction with the live leaderboard of the open
// round. Permanent winners never appear on it.
func (e *Engine) GetAuctionStatus(ctx context.Context, id string, leadersLimit int) (AuctionView, error) {
	a, err := e.load(ctx, id)
	if err != nil {
		return AuctionView{}, err
	}

	view := viewOf(a)

	if a.Status == auctions.StatusActive && a.CurrentRoundNo > 0 {
		view.Leaders, err = e.leaders(ctx, a, clampLimit(leadersLimit, defaultLeaders, maxLeaders))
		if err != nil {
			return AuctionView{}, err
		}
	}

	return view, nil
}

// GetRoundLeaderboard ranks standing bids for a round. Bids carry over
// between rounds, so the ranking spans the whole auction.
func (e *Engine) GetRoundLeaderboard(ctx context.Context, id string, roundNo, limit int) (RoundLeaderboard, error) {
	a, err := e.load(ctx, id)
	if err != nil {
		return RoundLeaderboard{}, err
	}

	if roundNo < 1 || roundNo > len(a.Rounds) {
		return RoundLeaderboard{}, notFound("round not found")
	}

	leaders, err := e.leaders(ctx, a, clampLimit(limit, defaultLeaders, maxLeaders))
	if err != nil {
		return RoundLeaderboard{}, err
	}

	return RoundLeaderboard{AuctionID: a.ID.String(), RoundNo: roundNo, Leaders: leaders}, nil
}

func (e *Engine) leaders(ctx context.Context, a *auctions.Auction, limit int) ([]Leader, error) {
	standings, err := e.bids.Standings(ctx, nil, a.ID, a.RoundWinnerIDs(), limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}

	out := make([]Leader, 0, len(standings))
	for _, s := range standings {
		out = append(out, Leader{ParticipantID: s.ParticipantID, Amount: s.Amount, CommittedAt: s.CreatedAt})
	}

	return out, nil
}

// GetParticipantWins lists every prize the participant has been awarded.
func (e *Engine) GetParticipantWins(ctx context.Context, participantID string) ([]Win, error) {
	participantID = strings.TrimSpace(participantID)
	if participantID == "" {
		return nil, badRequest("participantId is required")
	}

	wins, err := e.auctions.ListWins(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("participant wins: %w", err)
	}

	out := make([]Win, 0, len(wins))
	for _, w := range wins {
		out = append(out, Win{
			AuctionID:    w.AuctionID.String(),
			AuctionCode:  w.AuctionCode,
			AuctionTitle: w.AuctionTitle,
			Currency:     w.Currency,
			RoundNo:      w.RoundNo,
			Amount:       w.Amount,
			WonAt:        w.AwardedAt,
		})
	}

	return out, nil
}

// ListParticipantBids returns the participant's bids in an auction, newest first.
func (e *Engine) ListParticipantBids(ctx context.Context, id, participantID string, limit int) ([]BidView, error) {
	participantID = strings.TrimSpace(participantID)
	if participantID == "" {
		return nil, badRequest("participantId is required")
	}

	auctionID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	_, err = e.auctions.Get(ctx, nil, auctionID)
	if err != nil {
		if errors.Is(err, auctions.ErrNotFound) {
			return nil, notFound("auction not found")
		}

		return nil, fmt.Errorf("get auction: %w", err)
	}

	list, err := e.bids.ListByParticipant(ctx, auctionID, participantID, clampLimit(limit, maxBidHistory, maxBidHistory))
	if err != nil {
		return nil, fmt.Errorf("participant bids: %w", err)
	}

	return bidViews(list), nil
}

func bidViews(list []bids.Bid) []BidView {
	out := make([]BidView, 0, len(list))
	for _, b := range list {
		out = append(out, BidView{
			ID:             b.ID,
			RoundNo:        b.RoundNo,
			Amount:         b.Amount,
			Status:         string(b.Status),
			IdempotencyKey: b.IdempotencyKey,
			CreatedAt:      b.CreatedAt,
		})
	}

	return out
}

// DueAuctions lists active auctions whose round deadline has passed.
func (e *Engine) DueAuctions(ctx context.Context, limit int) ([]uuid.UUID, error) {
	ids, err := e.auctions.ListDue(ctx, e.clock(), limit)
	if err != nil {
		return nil, fmt.Errorf("due auctions: %w", err)
	}

	return ids, nil
}
