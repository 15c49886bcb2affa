package ledgerentries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fastprodman/auctionhouse/internal/infra/pgutils"
)

var ErrEntryNotFound = errors.New("ledger entry not found")

type Kind string

const (
	KindDeposit Kind = "deposit"
	KindHold    Kind = "hold"
	KindRelease Kind = "release"
	KindCapture Kind = "capture"
)

// Entry is one applied ledger operation keyed by its caller supplied TxID.
// Applied is the effective amount, which is below Amount for clamped releases.
type Entry struct {
	TxID      string
	Kind      Kind
	SubjectID string
	Currency  string
	Amount    decimal.Decimal
	Applied   decimal.Decimal
	AuctionID string
	Metadata  map[string]any
	CreatedAt time.Time
}

// Sums are the applied amounts of one account per kind.
type Sums struct {
	Deposited decimal.Decimal
	Held      decimal.Decimal
	Released  decimal.Decimal
	Captured  decimal.Decimal
}

// Balance is what the account balance should be according to its entries.
func (s Sums) Balance() decimal.Decimal {
	return s.Deposited.Sub(s.Captured)
}

// Hold is what the account hold should be according to its entries.
func (s Sums) Hold() decimal.Decimal {
	return s.Held.Sub(s.Released).Sub(s.Captured)
}

type Entries interface {
	// Insert records e unless its TxID already exists; inserted is false on replay.
	Insert(ctx context.Context, tx *sql.Tx, e Entry) (inserted bool, err error)
	SetApplied(ctx context.Context, tx *sql.Tx, txID string, applied decimal.Decimal) error
	Get(ctx context.Context, q pgutils.Querier, txID string) (Entry, error)
	ListByAccount(ctx context.Context, subjectID, currency string, limit int) ([]Entry, error)
	// NetHeldByAuction sums applied hold minus release and capture per
	// participant for entries tagged with auctionID.
	NetHeldByAuction(ctx context.Context, q pgutils.Querier, auctionID string) (map[string]decimal.Decimal, error)
	SumsByAccount(ctx context.Context, q pgutils.Querier, subjectID, currency string) (Sums, error)
}
