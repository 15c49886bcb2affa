package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fastprodman/auctionhouse/internal/repos/accounts"
	"github.com/fastprodman/auctionhouse/internal/repos/ledgerentries"
)

type Kind = ledgerentries.Kind

const (
	KindDeposit = ledgerentries.KindDeposit
	KindHold    = ledgerentries.KindHold
	KindRelease = ledgerentries.KindRelease
	KindCapture = ledgerentries.KindCapture
)

var (
	ErrInvalidOp         = errors.New("invalid ledger operation")
	ErrInsufficientFunds = accounts.ErrInsufficientFunds
	// ErrCaptureFailed is a broken invariant: the hold being captured is not there.
	ErrCaptureFailed = accounts.ErrCapturePrecondition
	// ErrTxIDConflict means a txId was replayed for a different operation.
	ErrTxIDConflict = errors.New("tx id already used by a different operation")
)

// Op is one ledger mutation request.
type Op struct {
	SubjectID string
	Currency  string
	Amount    decimal.Decimal
	TxID      string
	// AuctionID tags hold/release/capture entries so they can be attributed.
	AuctionID string
	Metadata  map[string]any
}

func (o Op) validate() error {
	switch {
	case o.SubjectID == "":
		return fmt.Errorf("%w: subject required", ErrInvalidOp)
	case o.Currency == "":
		return fmt.Errorf("%w: currency required", ErrInvalidOp)
	case o.TxID == "":
		return fmt.Errorf("%w: txId required", ErrInvalidOp)
	case !o.Amount.IsPositive():
		return fmt.Errorf("%w: amount must be > 0", ErrInvalidOp)
	}

	return nil
}

// View is the read model of an account.
type View struct {
	SubjectID string          `json:"subjectId"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	Hold      decimal.Decimal `json:"hold"`
	Available decimal.Decimal `json:"available"`
}

func viewOf(a accounts.Account) View {
	return View{
		SubjectID: a.SubjectID,
		Currency:  a.Currency,
		Balance:   a.Balance,
		Hold:      a.Hold,
		Available: a.Available(),
	}
}

// Result is a View plus whether the call was an idempotent replay.
type Result struct {
	View
	Replayed bool `json:"replayed"`
	// Applied is the effective amount; releases may apply less than requested.
	Applied decimal.Decimal `json:"applied"`
}
