package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/fastprodman/auctionhouse/internal/infra/pgutils"
	"github.com/fastprodman/auctionhouse/internal/repos/accounts"
	pgaccounts "github.com/fastprodman/auctionhouse/internal/repos/accounts/postgres"
	"github.com/fastprodman/auctionhouse/internal/repos/ledgerentries"
	pgentries "github.com/fastprodman/auctionhouse/internal/repos/ledgerentries/postgres"
)

// Ledger moves money between balance and hold. Every mutation is idempotent by
// TxID and applied with a single conditional account update.
type Ledger struct {
	db       *sql.DB
	accounts accounts.Accounts
	entries  ledgerentries.Entries
	policy   pgutils.RetryPolicy
	logger   *slog.Logger
}

func New(db *sql.DB, policy pgutils.RetryPolicy, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}

	return &Ledger{
		db:       db,
		accounts: pgaccounts.New(db),
		entries:  pgentries.New(db),
		policy:   policy,
		logger:   logger.With(slog.String("component", "ledger")),
	}
}

func (l *Ledger) Deposit(ctx context.Context, op Op) (Result, error) {
	return l.run(ctx, KindDeposit, op)
}

func (l *Ledger) PlaceHold(ctx context.Context, op Op) (Result, error) {
	return l.run(ctx, KindHold, op)
}

func (l *Ledger) ReleaseHold(ctx context.Context, op Op) (Result, error) {
	return l.run(ctx, KindRelease, op)
}

func (l *Ledger) CaptureHold(ctx context.Context, op Op) (Result, error) {
	return l.run(ctx, KindCapture, op)
}

func (l *Ledger) run(ctx context.Context, kind Kind, op Op) (Result, error) {
	var res Result

	err := pgutils.RunInTx(ctx, l.db, l.policy, func(tx *sql.Tx) error {
		var err error

		res, err = l.ApplyTx(ctx, tx, kind, op)

		return err
	})
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", kind, err)
	}

	return res, nil
}

// ApplyTx performs one ledger operation inside the caller's transaction. The
// work is wrapped in a savepoint, so a rejected operation leaves tx usable.
func (l *Ledger) ApplyTx(ctx context.Context, tx *sql.Tx, kind Kind, op Op) (Result, error) {
	err := op.validate()
	if err != nil {
		return Result{}, err
	}

	var res Result

	err = pgutils.WithSavepoint(ctx, tx, "ledger_op", func() error {
		err := l.accounts.Ensure(ctx, tx, op.SubjectID, op.Currency)
		if err != nil {
			return err
		}

		inserted, err := l.entries.Insert(ctx, tx, ledgerentries.Entry{
			TxID:      op.TxID,
			Kind:      kind,
			SubjectID: op.SubjectID,
			Currency:  op.Currency,
			Amount:    op.Amount,
			Applied:   op.Amount,
			AuctionID: op.AuctionID,
			Metadata:  op.Metadata,
		})
		if err != nil {
			return err
		}

		if !inserted {
			res, err = l.replay(ctx, tx, kind, op)
			return err
		}

		applied, err := l.applyEffect(ctx, tx, kind, op)
		if err != nil {
			return err
		}

		acc, err := l.accounts.Get(ctx, tx, op.SubjectID, op.Currency)
		if err != nil {
			return err
		}

		res = Result{View: viewOf(acc), Applied: applied}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCaptureFailed) {
			l.logger.WarnContext(ctx, "capture precondition failed",
				"subject_id", op.SubjectID, "currency", op.Currency,
				"amount", op.Amount.String(), "tx_id", op.TxID)
		}

		return Result{}, err
	}

	l.logger.DebugContext(ctx, "ledger op",
		"kind", kind, "subject_id", op.SubjectID, "currency", op.Currency,
		"amount", op.Amount.String(), "tx_id", op.TxID, "replayed", res.Replayed)

	return res, nil
}

func (l *Ledger) applyEffect(ctx context.Context, tx *sql.Tx, kind Kind, op Op) (decimal.Decimal, error) {
	switch kind {
	case KindDeposit:
		return op.Amount, l.accounts.Credit(ctx, tx, op.SubjectID, op.Currency, op.Amount)
	case KindHold:
		return op.Amount, l.accounts.PlaceHold(ctx, tx, op.SubjectID, op.Currency, op.Amount)
	case KindCapture:
		return op.Amount, l.accounts.CaptureHold(ctx, tx, op.SubjectID, op.Currency, op.Amount)
	case KindRelease:
		released, err := l.accounts.ReleaseHold(ctx, tx, op.SubjectID, op.Currency, op.Amount)
		if err != nil {
			return decimal.Zero, err
		}

		if !released.Equal(op.Amount) {
			err = l.entries.SetApplied(ctx, tx, op.TxID, released)
			if err != nil {
				return decimal.Zero, err
			}
		}

		return released, nil
	default:
		return decimal.Zero, fmt.Errorf("%w: unknown kind %q", ErrInvalidOp, kind)
	}
}

func (l *Ledger) replay(ctx context.Context, tx *sql.Tx, kind Kind, op Op) (Result, error) {
	prev, err := l.entries.Get(ctx, tx, op.TxID)
	if err != nil {
		return Result{}, err
	}

	if prev.Kind != kind || prev.SubjectID != op.SubjectID || prev.Currency != op.Currency || !prev.Amount.Equal(op.Amount) {
		return Result{}, fmt.Errorf("%w: %s", ErrTxIDConflict, op.TxID)
	}

	acc, err := l.accounts.Get(ctx, tx, op.SubjectID, op.Currency)
	if err != nil {
		return Result{}, err
	}

	return Result{View: viewOf(acc), Replayed: true, Applied: prev.Applied}, nil
}

// GetAccount returns the account view; unknown accounts read as all zeros.
func (l *Ledger) GetAccount(ctx context.Context, subjectID, currency string) (View, error) {
	return l.GetAccountTx(ctx, nil, subjectID, currency)
}

// GetAccountTx is GetAccount through q.
func (l *Ledger) GetAccountTx(ctx context.Context, q pgutils.Querier, subjectID, currency string) (View, error) {
	acc, err := l.accounts.Get(ctx, q, subjectID, currency)
	if err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			return View{SubjectID: subjectID, Currency: currency}, nil
		}

		return View{}, fmt.Errorf("get account: %w", err)
	}

	return viewOf(acc), nil
}

// ListEntries returns the newest ledger entries of an account.
func (l *Ledger) ListEntries(ctx context.Context, subjectID, currency string, limit int) ([]ledgerentries.Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	entries, err := l.entries.ListByAccount(ctx, subjectID, currency, limit)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	return entries, nil
}

// NetHeldByAuction attributes holds to an auction using tagged ledger entries.
func (l *Ledger) NetHeldByAuction(ctx context.Context, q pgutils.Querier, auctionID string) (map[string]decimal.Decimal, error) {
	net, err := l.entries.NetHeldByAuction(ctx, q, auctionID)
	if err != nil {
		return nil, fmt.Errorf("net held by auction: %w", err)
	}

	return net, nil
}

// Audit is an account next to the balance and hold replayed from its entries.
type Audit struct {
	Account       View
	LedgerBalance decimal.Decimal
	LedgerHold    decimal.Decimal
}

// Consistent reports whether the stored account matches its entries.
func (a Audit) Consistent() bool {
	return a.Account.Balance.Equal(a.LedgerBalance) && a.Account.Hold.Equal(a.LedgerHold)
}

// AuditAccount reads the account and its entry sums through q. Pass a
// snapshot transaction to compare both at one point in time.
func (l *Ledger) AuditAccount(ctx context.Context, q pgutils.Querier, subjectID, currency string) (Audit, error) {
	acc, err := l.GetAccountTx(ctx, q, subjectID, currency)
	if err != nil {
		return Audit{}, err
	}

	sums, err := l.entries.SumsByAccount(ctx, q, subjectID, currency)
	if err != nil {
		return Audit{}, fmt.Errorf("audit account: %w", err)
	}

	return Audit{Account: acc, LedgerBalance: sums.Balance(), LedgerHold: sums.Hold()}, nil
}

// ListAccounts pages through accounts in (subject, currency) order.
func (l *Ledger) ListAccounts(ctx context.Context, afterSubject, afterCurrency string, limit int) ([]View, error) {
	list, err := l.accounts.List(ctx, afterSubject, afterCurrency, limit)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	out := make([]View, 0, len(list))
	for _, a := range list {
		out = append(out, viewOf(a))
	}

	return out, nil
}
