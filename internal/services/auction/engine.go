package auction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fastprodman/auctionhouse/internal/infra/pgutils"
	"github.com/fastprodman/auctionhouse/internal/repos/auctions"
	pgauctions "github.com/fastprodman/auctionhouse/internal/repos/auctions/postgres"
	"github.com/fastprodman/auctionhouse/internal/repos/bids"
	pgbids "github.com/fastprodman/auctionhouse/internal/repos/bids/postgres"
	"github.com/fastprodman/auctionhouse/internal/repos/issues"
	pgissues "github.com/fastprodman/auctionhouse/internal/repos/issues/postgres"
	"github.com/fastprodman/auctionhouse/internal/repos/outbox"
	pgoutbox "github.com/fastprodman/auctionhouse/internal/repos/outbox/postgres"
	"github.com/fastprodman/auctionhouse/internal/services/ledger"
)

// Outbox topics written by the engine.
const (
	TopicAuctionStarted   = "auction.started"
	TopicRoundClosed      = "round.closed"
	TopicRoundSkipped     = "round.skipped"
	TopicAuctionFinished  = "auction.finished"
	TopicAuctionCancelled = "auction.cancelled"
)

// Engine is the auction round state machine. Every mutating operation is a
// single retried transaction that locks the auction row first.
type Engine struct {
	db       *sql.DB
	ledger   *ledger.Ledger
	auctions auctions.Auctions
	bids     bids.Bids
	issues   issues.Issues
	outbox   outbox.Outbox
	policy   pgutils.RetryPolicy
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Engine)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(db *sql.DB, led *ledger.Ledger, policy pgutils.RetryPolicy, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		db:       db,
		ledger:   led,
		auctions: pgauctions.New(db),
		bids:     pgbids.New(db),
		issues:   pgissues.New(db),
		outbox:   pgoutbox.New(db),
		policy:   policy,
		logger:   logger.With(slog.String("component", "auction")),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// run executes fn as one unit of work. An *Error returned by fn rolls the
// unit back and reaches the caller unchanged.
func (e *Engine) run(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	err := pgutils.RunInTx(ctx, e.db, e.policy, fn)
	if err == nil {
		return nil
	}

	if ae, ok := AsError(err); ok {
		return ae
	}

	if errors.Is(err, auctions.ErrStateConflict) {
		e.logger.WarnContext(ctx, "auction version conflict", "op", op)
		return conflict("auction state changed concurrently")
	}

	return fmt.Errorf("%s: %w", op, err)
}

// clock returns the current time at the store's precision.
func (e *Engine) clock() time.Time {
	return e.now().UTC().Truncate(time.Microsecond)
}

func (e *Engine) loadForUpdate(ctx context.Context, tx *sql.Tx, id string) (*auctions.Auction, error) {
	auctionID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	a, err := e.auctions.GetForUpdate(ctx, tx, auctionID)
	if err != nil {
		if errors.Is(err, auctions.ErrNotFound) {
			return nil, notFound("auction not found")
		}

		return nil, err
	}

	return a, nil
}

func (e *Engine) emit(ctx context.Context, tx *sql.Tx, topic, key string, payload any) error {
	_, err := e.outbox.Enqueue(ctx, tx, topic, key, payload)
	if err != nil {
		return fmt.Errorf("emit %s: %w", topic, err)
	}

	return nil
}
