package bids

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fastprodman/auctionhouse/internal/infra/pgutils"
)

var ErrBidNotFound = errors.New("bid not found")

type Status string

const (
	StatusPlaced    Status = "placed"
	StatusVoid      Status = "void"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

type Bid struct {
	ID             int64
	AuctionID      uuid.UUID
	RoundNo        int
	ParticipantID  string
	Amount         decimal.Decimal
	Status         Status
	IdempotencyKey string
	CreatedAt      time.Time
}

// Standing is the highest placed bid of one participant across all rounds.
// Ties between a participant's own bids go to the earliest one.
type Standing struct {
	ParticipantID string
	Amount        decimal.Decimal
	BidID         int64
	CreatedAt     time.Time
}

type Bids interface {
	// Insert appends b; inserted is false when the idempotency key was
	// already used, in which case b is left untouched.
	Insert(ctx context.Context, tx *sql.Tx, b *Bid) (inserted bool, err error)
	GetByKey(ctx context.Context, q pgutils.Querier, auctionID uuid.UUID, roundNo int, participantID, key string) (Bid, error)
	// StandingFor returns ok=false when the participant has no placed bid.
	StandingFor(ctx context.Context, q pgutils.Querier, auctionID uuid.UUID, participantID string) (s Standing, ok bool, err error)
	// Standings ranks participants by amount desc, then earliest bid, then
	// bid id. limit <= 0 means all of them.
	Standings(ctx context.Context, q pgutils.Querier, auctionID uuid.UUID, exclude []string, limit int) ([]Standing, error)
	// CancelPlaced moves every placed bid of the given participants to cancelled.
	CancelPlaced(ctx context.Context, tx *sql.Tx, auctionID uuid.UUID, participants []string) (int64, error)
	ListByParticipant(ctx context.Context, auctionID uuid.UUID, participantID string, limit int) ([]Bid, error)
}
