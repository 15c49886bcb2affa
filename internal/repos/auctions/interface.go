package auctions

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fastprodman/auctionhouse/internal/infra/pgutils"
)

var (
	ErrNotFound      = errors.New("auction not found")
	ErrDuplicateCode = errors.New("auction code already exists")
	// ErrStateConflict means the guarded state changed under the writer.
	ErrStateConflict = errors.New("auction state changed concurrently")
)

// Guard is the state an Update expects to find before writing.
type Guard struct {
	Status  Status
	RoundNo int
	// RoundActive additionally requires rounds[RoundNo] to be active.
	RoundActive bool
}

// Win is one prize of a participant across auctions.
type Win struct {
	AuctionID    uuid.UUID
	AuctionCode  string
	AuctionTitle string
	Currency     string
	RoundNo      int
	Amount       decimal.Decimal
	AwardedAt    time.Time
}

type Auctions interface {
	Insert(ctx context.Context, a *Auction) error
	Get(ctx context.Context, q pgutils.Querier, id uuid.UUID) (*Auction, error)
	// GetForBid locks the row FOR KEY SHARE: bids run concurrently but wait for
	// state transitions.
	GetForBid(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*Auction, error)
	// GetForUpdate locks the row exclusively for a state transition.
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*Auction, error)
	// Update writes the whole aggregate if the row still matches g.
	Update(ctx context.Context, tx *sql.Tx, a *Auction, g Guard) error
	// ExtendRound pushes the current round's end by the auction's extend_by_sec
	// if every anti-sniping condition still holds at now.
	ExtendRound(ctx context.Context, tx *sql.Tx, id uuid.UUID, roundNo int, now time.Time) (newEnd time.Time, extended bool, err error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
	// ListByStatus pages by id: pass the last id of the previous page, or
	// uuid.Nil for the first one.
	ListByStatus(ctx context.Context, statuses []Status, after uuid.UUID, limit int) ([]*Auction, error)
	ListWins(ctx context.Context, participantID string) ([]Win, error)
}
