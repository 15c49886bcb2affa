// Package reconcile audits the ledger against auctions and bids, records what
// does not add up as issues and repairs orphaned holds.
package reconcile

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
	"github.com/fastprodman/auctionhouse/internal/services/ledger"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrIssueNotFound   = issues.ErrIssueNotFound
	ErrAlreadyResolved = errors.New("issue already resolved")
)

const (
	// MaxAutoFixAttempts bounds automatic repair of one orphaned hold.
	MaxAutoFixAttempts = 3

	accountPage     = 200
	defaultPageSize = 200
	defaultFixLimit = 100
)

type Config struct {
	// AuctionPageSize is how many auctions are loaded per page; every
	// auction is still inspected on each pass.
	AuctionPageSize int
	// AutoFixLimit caps how many detected issues a pass handles.
	AutoFixLimit int
}

type Service struct {
	db       *sql.DB
	ledger   *ledger.Ledger
	auctions auctions.Auctions
	bids     bids.Bids
	issues   issues.Issues
	policy   pgutils.RetryPolicy
	cfg      Config
	logger   *slog.Logger
}

func New(db *sql.DB, led *ledger.Ledger, policy pgutils.RetryPolicy, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.AuctionPageSize <= 0 {
		cfg.AuctionPageSize = defaultPageSize
	}
	if cfg.AutoFixLimit <= 0 {
		cfg.AutoFixLimit = defaultFixLimit
	}

	return &Service{
		db:       db,
		ledger:   led,
		auctions: pgauctions.New(db),
		bids:     pgbids.New(db),
		issues:   pgissues.New(db),
		policy:   policy,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "reconcile")),
	}
}

// Result counts what one pass found and repaired. Issues that were already
// open are not counted again.
type Result struct {
	BalanceMismatches int           `json:"balanceMismatches"`
	OrphanedHolds     int           `json:"orphanedHolds"`
	UnderHolds        int           `json:"underHolds"`
	AutoFixed         int           `json:"autoFixed"`
	ManualReview      int           `json:"manualReview"`
	Duration          time.Duration `json:"durationNs"`
}

// RunOnce runs every check and then the auto-fix step.
func (s *Service) RunOnce(ctx context.Context) (Result, error) {
	started := time.Now()

	var (
		res Result
		err error
	)

	res.BalanceMismatches, err = s.checkBalances(ctx)
	if err != nil {
		return res, err
	}

	res.OrphanedHolds, err = s.checkOrphanedHolds(ctx)
	if err != nil {
		return res, err
	}

	res.UnderHolds, err = s.checkUnderHolds(ctx)
	if err != nil {
		return res, err
	}

	res.AutoFixed, res.ManualReview, err = s.autoFix(ctx)
	if err != nil {
		return res, err
	}

	res.Duration = time.Since(started)

	s.logger.InfoContext(ctx, "reconcile pass done",
		"balance_mismatches", res.BalanceMismatches,
		"orphaned_holds", res.OrphanedHolds,
		"under_holds", res.UnderHolds,
		"auto_fixed", res.AutoFixed,
		"manual_review", res.ManualReview,
		"duration", res.Duration)

	return res, nil
}

func (s *Service) record(ctx context.Context, i *issues.Issue) (bool, error) {
	created, err := s.issues.Create(ctx, nil, i)
	if err != nil {
		return false, fmt.Errorf("record %s: %w", i.Type, err)
	}

	if created {
		s.logger.WarnContext(ctx, "reconcile issue detected",
			"issue_id", i.ID.String(), "type", string(i.Type),
			"participant_id", i.ParticipantID, "auction_id", i.AuctionID)
	}

	return created, nil
}
