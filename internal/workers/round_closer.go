package workers

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fastprodman/auctionhouse/internal/services/auction"
)

const maxCloseBatch = 200

type RoundCloserService interface {
	DueAuctions(ctx context.Context, limit int) ([]uuid.UUID, error)
	CloseCurrentRound(ctx context.Context, id string) (auction.CloseResult, error)
}

type backoff struct {
	fails int
	until time.Time
}

// RoundCloser closes rounds whose deadline has passed. An auction whose close
// keeps failing is retried with exponential backoff; a conflict means another
// closer got there first and is not a failure.
type RoundCloser struct {
	svc        RoundCloserService
	interval   time.Duration
	maxBackoff time.Duration
	batch      int
	logger     *slog.Logger
	now        func() time.Time

	mu      sync.Mutex
	backoff map[uuid.UUID]backoff
}

func NewRoundCloser(svc RoundCloserService, interval, maxBackoff time.Duration, batch int, logger *slog.Logger) *RoundCloser {
	if logger == nil {
		logger = slog.Default()
	}
	if batch <= 0 {
		batch = 50
	}

	return &RoundCloser{
		svc:        svc,
		interval:   interval,
		maxBackoff: maxBackoff,
		batch:      min(batch, maxCloseBatch),
		logger:     logger.With(slog.String("component", "round_closer")),
		now:        time.Now,
		backoff:    make(map[uuid.UUID]backoff),
	}
}

// Run is one tick.
func (c *RoundCloser) Run(ctx context.Context) error {
	due, err := c.svc.DueAuctions(ctx, c.batch)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.forgetNotDue(due)

	for _, id := range due {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if b, ok := c.backoff[id]; ok && c.now().Before(b.until) {
			continue
		}

		res, err := c.svc.CloseCurrentRound(ctx, id.String())
		if err == nil {
			delete(c.backoff, id)
			c.logger.InfoContext(ctx, "round closed by worker",
				"auction_id", id.String(), "round_no", res.ClosedRoundNo, "outcome", res.Outcome)

			continue
		}

		if ae, ok := auction.AsError(err); ok && ae.Code == http.StatusConflict {
			c.logger.DebugContext(ctx, "round close lost race", "auction_id", id.String(), "reason", ae.Message)
			continue
		}

		b := c.backoff[id]
		b.fails++
		delay := c.delay(b.fails)
		b.until = c.now().Add(delay)
		c.backoff[id] = b

		c.logger.WarnContext(ctx, "round close failed",
			"auction_id", id.String(), "fails", b.fails, "retry_in", delay, "error", err)
	}

	return nil
}

// delay is interval*2^fails, capped at maxBackoff.
func (c *RoundCloser) delay(fails int) time.Duration {
	d := c.interval
	for range fails {
		d *= 2
		if c.maxBackoff > 0 && d >= c.maxBackoff {
			return c.maxBackoff
		}
	}

	return d
}

func (c *RoundCloser) forgetNotDue(due []uuid.UUID) {
	if len(c.backoff) == 0 {
		return
	}

	still := make(map[uuid.UUID]struct{}, len(due))
	for _, id := range due {
		still[id] = struct{}{}
	}

	for id := range c.backoff {
		if _, ok := still[id]; !ok {
			delete(c.backoff, id)
		}
	}
}
