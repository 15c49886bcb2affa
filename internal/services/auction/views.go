package auction

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fastprodman/auctionhouse/internal/repos/auctions"
	"github.com/fastprodman/auctionhouse/internal/services/ledger"
)

// CreateInput describes a new auction. Nil optional fields take defaults.
type CreateInput struct {
	Code                  string `json:"code"`
	Title                 string `json:"title"`
	LotsCount             int    `json:"lotsCount"`
	Currency              string `json:"currency,omitempty"`
	MinIncrement          string `json:"minIncrement,omitempty"`
	RoundDurationSec      *int   `json:"roundDurationSec,omitempty"`
	MaxRounds             *int   `json:"maxRounds,omitempty"`
	SnipingWindowSec      *int   `json:"snipingWindowSec,omitempty"`
	ExtendBySec           *int   `json:"extendBySec,omitempty"`
	MaxExtensionsPerRound *int   `json:"maxExtensionsPerRound,omitempty"`
}

type BidInput struct {
	ParticipantID  string `json:"participantId"`
	Amount         string `json:"amount"`
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

type Leader struct {
	ParticipantID string          `json:"participantId"`
	Amount        decimal.Decimal `json:"amount"`
	CommittedAt   time.Time       `json:"committedAt"`
}

type AuctionView struct {
	ID                    string           `json:"id"`
	Code                  string           `json:"code"`
	Title                 string           `json:"title"`
	Status                auctions.Status  `json:"status"`
	Currency              string           `json:"currency"`
	MinIncrement          decimal.Decimal  `json:"minIncrement"`
	LotsCount             int              `json:"lotsCount"`
	LotsPerRound          int              `json:"lotsPerRound"`
	TotalLots             int              `json:"totalLots"`
	MaxRounds             int              `json:"maxRounds"`
	RoundDurationSec      int              `json:"roundDurationSec"`
	SnipingWindowSec      int              `json:"snipingWindowSec"`
	ExtendBySec           int              `json:"extendBySec"`
	MaxExtensionsPerRound int              `json:"maxExtensionsPerRound"`
	CurrentRoundNo        int              `json:"currentRoundNo,omitempty"`
	RoundEndsAt           *time.Time       `json:"roundEndsAt,omitempty"`
	Rounds                []auctions.Round `json:"rounds"`
	RoundWinners          []auctions.Award `json:"roundWinners"`
	Leaders               []Leader         `json:"leaders,omitempty"`
	Winners               []string         `json:"winners,omitempty"`
	WinningBids           []auctions.Award `json:"winningBids,omitempty"`
	StartedAt             *time.Time       `json:"startedAt,omitempty"`
	FinishedAt            *time.Time       `json:"finishedAt,omitempty"`
	CreatedAt             time.Time        `json:"createdAt"`
}

func viewOf(a *auctions.Auction) AuctionView {
	rounds := a.Rounds
	if rounds == nil {
		rounds = []auctions.Round{}
	}

	roundWinners := a.RoundWinners
	if roundWinners == nil {
		roundWinners = []auctions.Award{}
	}

	return AuctionView{
		ID:                    a.ID.String(),
		Code:                  a.Code,
		Title:                 a.Title,
		Status:                a.Status,
		Currency:              a.Currency,
		MinIncrement:          a.MinIncrement,
		LotsCount:             a.LotsCount,
		LotsPerRound:          a.LotsPerRound,
		TotalLots:             a.TotalLots,
		MaxRounds:             a.MaxRounds,
		RoundDurationSec:      a.RoundDurationSec,
		SnipingWindowSec:      a.SnipingWindowSec,
		ExtendBySec:           a.ExtendBySec,
		MaxExtensionsPerRound: a.MaxExtensionsPerRound,
		CurrentRoundNo:        a.CurrentRoundNo,
		RoundEndsAt:           a.CurrentRoundEndsAt,
		Rounds:                rounds,
		RoundWinners:          roundWinners,
		Winners:               a.Winners,
		WinningBids:           a.WinningBids,
		StartedAt:             a.StartedAt,
		FinishedAt:            a.FinishedAt,
		CreatedAt:             a.CreatedAt,
	}
}

type BidResult struct {
	AuctionID     string          `json:"auctionId"`
	RoundNo       int             `json:"roundNo"`
	ParticipantID string          `json:"participantId"`
	Accepted      bool            `json:"accepted"`
	Amount        decimal.Decimal `json:"amount"`
	RoundEndsAt   time.Time       `json:"roundEndsAt"`
	Extended      bool            `json:"extended"`
	Replayed      bool            `json:"replayed,omitempty"`
	Account       ledger.View     `json:"account"`
}

// Movement is one settled capture or release.
type Movement struct {
	ParticipantID string          `json:"participantId"`
	Amount        decimal.Decimal `json:"amount"`
	Account       ledger.View     `json:"account"`
}

type Outcome string

const (
	OutcomeNextRound Outcome = "next_round"
	OutcomeFinished  Outcome = "finished"
)

// CloseResult reports a round close or skip. NextRoundNo and RoundEndsAt are
// set when a new round was opened; Winners and FinishedAt when the auction
// finished.
type CloseResult struct {
	AuctionID     string  `json:"auctionId"`
	Outcome       Outcome `json:"outcome"`
	ClosedRoundNo int     `json:"closedRoundNo"`
	NextRoundNo   int     `json:"nextRoundNo,omitempty"`
	// NextRoundTargetSize is advisory; elimination never depends on it.
	NextRoundTargetSize int              `json:"nextRoundTargetSize,omitempty"`
	RoundEndsAt         *time.Time       `json:"roundEndsAt,omitempty"`
	Qualified           []string         `json:"qualified"`
	Charged             []Movement       `json:"charged"`
	Released            []Movement       `json:"released"`
	Winners             []string         `json:"winners,omitempty"`
	WinningBids         []auctions.Award `json:"winningBids,omitempty"`
	FinishedAt          *time.Time       `json:"finishedAt,omitempty"`
	ReconcileIssues     int              `json:"reconcileIssues"`
}

type FinalizeResult struct {
	AuctionID       string           `json:"auctionId"`
	Winners         []string         `json:"winners"`
	WinningBids     []auctions.Award `json:"winningBids"`
	FinishedAt      time.Time        `json:"finishedAt"`
	Charged         []Movement       `json:"charged"`
	Released        []Movement       `json:"released"`
	ReconcileIssues int              `json:"reconcileIssues"`
}

type CancelResult struct {
	AuctionID       string          `json:"auctionId"`
	Status          auctions.Status `json:"status"`
	Released        []Movement      `json:"released"`
	ReconcileIssues int             `json:"reconcileIssues"`
}

type RoundLeaderboard struct {
	AuctionID string   `json:"auctionId"`
	RoundNo   int      `json:"roundNo"`
	Leaders   []Leader `json:"leaders"`
}

type Win struct {
	AuctionID    string          `json:"auctionId"`
	AuctionCode  string          `json:"auctionCode"`
	AuctionTitle string          `json:"auctionTitle"`
	Currency     string          `json:"currency"`
	RoundNo      int             `json:"roundNo"`
	Amount       decimal.Decimal `json:"amount"`
	WonAt        time.Time       `json:"wonAt"`
}

type BidView struct {
	ID             int64           `json:"id"`
	RoundNo        int             `json:"roundNo"`
	Amount         decimal.Decimal `json:"amount"`
	Status         string          `json:"status"`
	IdempotencyKey string          `json:"idempotencyKey"`
	CreatedAt      time.Time       `json:"createdAt"`
}
