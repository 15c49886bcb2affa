package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"

	"github.com/fastprodman/auctionhouse/internal/config"
	"github.com/fastprodman/auctionhouse/internal/infra/logging"
	"github.com/fastprodman/auctionhouse/internal/infra/pgutils"
	"github.com/fastprodman/auctionhouse/internal/services/auction"
	"github.com/fastprodman/auctionhouse/internal/services/events"
	"github.com/fastprodman/auctionhouse/internal/services/ledger"
	"github.com/fastprodman/auctionhouse/internal/services/reconcile"
	"github.com/fastprodman/auctionhouse/internal/workers"
	"github.com/fastprodman/auctionhouse/pkg/envconf"
	"github.com/fastprodman/auctionhouse/pkg/shutdownqueue"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running worker: %v\n", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	_ = godotenv.Load()

	cfg := new(workerConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logger := logging.SetupJSON(cfg.LogLevel, "worker")
	sq := shutdownqueue.New()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := sq.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	db, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	sq.AddNamed("postgres", func(context.Context) error {
		return db.Close()
	})

	publisher, err := newPublisher(ctx, cfg.Outbox, logger)
	if err != nil {
		return err
	}

	policy := pgutils.RetryPolicy{MaxAttempts: cfg.Tx.MaxAttempts, BackoffStep: cfg.Tx.BackoffStep, Logger: logger}

	led := ledger.New(db, policy, logger)
	engine := auction.New(db, led, policy, logger)
	rec := reconcile.New(db, led, policy, reconcile.Config{
		AuctionPageSize: cfg.Reconcile.AuctionPage,
		AutoFixLimit:    cfg.Reconcile.AutoFixLimit,
	}, logger)
	relay := events.NewRelay(db, publisher, cfg.Outbox.BatchSize, logger)
	closer := workers.NewRoundCloser(engine, cfg.RoundCloser.Interval, cfg.RoundCloser.MaxBackoff, cfg.RoundCloser.BatchSize, logger)

	runner := workers.NewRunner(logger)

	err = errors.Join(
		runner.Every("round-closer", cfg.RoundCloser.Interval, closer.Run),
		runner.Every("reconcile", cfg.Reconcile.Interval, workers.ReconcileJob(rec)),
		runner.Every("outbox-relay", cfg.Outbox.Interval, workers.OutboxJob(relay)),
	)
	if err != nil {
		return fmt.Errorf("schedule jobs: %w", err)
	}

	runner.Start()
	sq.AddNamed("runner", runner.Stop)

	logger.Info("worker started",
		slog.Duration("round_closer_interval", cfg.RoundCloser.Interval),
		slog.Duration("reconcile_interval", cfg.Reconcile.Interval),
		slog.Duration("outbox_interval", cfg.Outbox.Interval),
		slog.Bool("sqs", cfg.Outbox.QueueURL != ""),
	)

	<-ctx.Done()

	return nil
}

func newPublisher(ctx context.Context, cfg config.OutboxConfig, logger *slog.Logger) (events.Publisher, error) {
	if cfg.QueueURL == "" {
		return &events.LogPublisher{Logger: logger}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return events.NewSQSPublisher(sqs.NewFromConfig(awsCfg), cfg.QueueURL), nil
}
