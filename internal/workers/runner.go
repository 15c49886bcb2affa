// Package workers runs the periodic background jobs of the auction house.
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Runner schedules jobs on fixed intervals. A job that is still running when
// its next tick arrives skips that tick.
type Runner struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger
}

func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}

	cl := cronLogger{logger: logger.With(slog.String("component", "cron"))}
	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
}

// Every registers fn to run every interval. Intervals below one second are
// rounded up by the scheduler.
func (r *Runner) Every(name string, interval time.Duration, fn func(ctx context.Context) error) error {
	if interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive", name)
	}

	_, err := r.cron.AddFunc("@every "+interval.String(), func() {
		started := time.Now()

		err := fn(r.ctx)
		if err != nil && r.ctx.Err() == nil {
			r.logger.ErrorContext(r.ctx, "job failed", "job", name, "error", err, "duration", time.Since(started))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule job %s: %w", name, err)
	}

	r.logger.Info("job scheduled", "job", name, "interval", interval.String())

	return nil
}

func (r *Runner) Start() {
	r.cron.Start()
}

// Stop cancels the jobs' context and waits for running jobs to return or for
// ctx to expire.
func (r *Runner) Stop(ctx context.Context) error {
	r.cancel()
	done := r.cron.Stop()

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("stop workers: %w", ctx.Err())
	}
}

type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
