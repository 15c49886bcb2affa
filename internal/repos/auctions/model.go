package auctions

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusFinished  Status = "finished"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusFinished || s == StatusCancelled
}

type RoundStatus string

const (
	RoundScheduled RoundStatus = "scheduled"
	RoundActive    RoundStatus = "active"
	RoundFinished  RoundStatus = "finished"
	RoundCancelled RoundStatus = "cancelled"
)

// Round is embedded in its auction and stored inside the auction row.
type Round struct {
	RoundNo         int         `json:"roundNo"`
	Status          RoundStatus `json:"status"`
	StartedAt       time.Time   `json:"startedAt"`
	EndsAt          time.Time   `json:"endsAt"`
	ScheduledEndAt  time.Time   `json:"scheduledEndAt"`
	ExtensionsCount int         `json:"extensionsCount"`
	ClosedAt        *time.Time  `json:"closedAt,omitempty"`
}

// Award is one captured prize.
type Award struct {
	RoundNo       int             `json:"roundNo"`
	ParticipantID string          `json:"participantId"`
	Amount        decimal.Decimal `json:"amount"`
	AwardedAt     time.Time       `json:"awardedAt"`
}

type Auction struct {
	ID           uuid.UUID
	Code         string
	Title        string
	Status       Status
	Currency     string
	MinIncrement decimal.Decimal

	LotsCount    int
	TotalLots    int
	LotsPerRound int
	MaxRounds    int

	RoundDurationSec      int
	SnipingWindowSec      int
	ExtendBySec           int
	MaxExtensionsPerRound int

	// CurrentRoundNo is 0 when no round is open.
	CurrentRoundNo     int
	CurrentRoundEndsAt *time.Time
	// CurrentRoundEligible is nil unless set across a round-close boundary.
	CurrentRoundEligible []string

	RoundWinners []Award
	Winners      []string
	WinningBids  []Award
	Rounds       []Round

	StartedAt  *time.Time
	FinishedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CurrentRound returns the open round record, or nil.
func (a *Auction) CurrentRound() *Round {
	if a.CurrentRoundNo <= 0 || a.CurrentRoundNo > len(a.Rounds) {
		return nil
	}

	r := &a.Rounds[a.CurrentRoundNo-1]
	if r.RoundNo != a.CurrentRoundNo {
		return nil
	}

	return r
}

// RoundWinnerIDs lists permanent winners in award order.
func (a *Auction) RoundWinnerIDs() []string {
	ids := make([]string, 0, len(a.RoundWinners))
	for _, w := range a.RoundWinners {
		ids = append(ids, w.ParticipantID)
	}

	return ids
}

// WonBy returns the award of participantID, if any.
func (a *Auction) WonBy(participantID string) (Award, bool) {
	i := slices.IndexFunc(a.RoundWinners, func(w Award) bool { return w.ParticipantID == participantID })
	if i < 0 {
		return Award{}, false
	}

	return a.RoundWinners[i], true
}

// LotsRemaining is TotalLots minus prizes already awarded.
func (a *Auction) LotsRemaining() int {
	return a.TotalLots - len(a.RoundWinners)
}
