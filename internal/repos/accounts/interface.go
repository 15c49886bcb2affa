package accounts

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fastprodman/auctionhouse/internal/infra/pgutils"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrCapturePrecondition means hold or balance is below the capture amount.
	ErrCapturePrecondition = errors.New("capture precondition failed")
	ErrAccountNotFound     = errors.New("account not found")
)

// Account is the per (subject, currency) money record. 0 <= Hold <= Balance.
type Account struct {
	SubjectID string
	Currency  string
	Balance   decimal.Decimal
	Hold      decimal.Decimal
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Available is the part of Balance not reserved by holds.
func (a Account) Available() decimal.Decimal {
	return a.Balance.Sub(a.Hold)
}

type Accounts interface {
	// Ensure creates the account with zero balance if it does not exist.
	Ensure(ctx context.Context, tx *sql.Tx, subjectID, currency string) error
	// Get reads through q, or through the pool when q is nil.
	Get(ctx context.Context, q pgutils.Querier, subjectID, currency string) (Account, error)
	List(ctx context.Context, afterSubject, afterCurrency string, limit int) ([]Account, error)
	Credit(ctx context.Context, tx *sql.Tx, subjectID, currency string, amount decimal.Decimal) error
	PlaceHold(ctx context.Context, tx *sql.Tx, subjectID, currency string, amount decimal.Decimal) error
	// ReleaseHold lowers hold by min(hold, amount) and returns what was released.
	ReleaseHold(ctx context.Context, tx *sql.Tx, subjectID, currency string, amount decimal.Decimal) (decimal.Decimal, error)
	CaptureHold(ctx context.Context, tx *sql.Tx, subjectID, currency string, amount decimal.Decimal) error
}
