package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/fastprodman/auctionhouse/internal/api"
	"github.com/fastprodman/auctionhouse/internal/infra/logging"
	"github.com/fastprodman/auctionhouse/internal/infra/pgutils"
	"github.com/fastprodman/auctionhouse/internal/services/auction"
	"github.com/fastprodman/auctionhouse/internal/services/ledger"
	"github.com/fastprodman/auctionhouse/internal/services/reconcile"
	"github.com/fastprodman/auctionhouse/pkg/envconf"
	"github.com/fastprodman/auctionhouse/pkg/shutdownqueue"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v\n", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := new(apiConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logger := logging.SetupJSON(cfg.LogLevel, "api")
	sq := shutdownqueue.New()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := sq.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	db, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	sq.AddNamed("postgres", func(context.Context) error {
		return db.Close()
	})

	policy := pgutils.RetryPolicy{MaxAttempts: cfg.Tx.MaxAttempts, BackoffStep: cfg.Tx.BackoffStep, Logger: logger}

	// --- Services ---
	led := ledger.New(db, policy, logger)
	engine := auction.New(db, led, policy, logger)
	rec := reconcile.New(db, led, policy, reconcile.Config{
		AuctionPageSize: cfg.Reconcile.AuctionPage,
		AutoFixLimit:    cfg.Reconcile.AutoFixLimit,
	}, logger)

	// --- HTTP server ---
	handler := api.NewRouter(api.NewHandler(engine, led, rec, logger), logger)
	srv := api.NewServer(cfg.Port, handler)

	// LIFO: the server drains before the pool closes.
	sq.AddNamed("http", func(c context.Context) error {
		logger.Info("shut down server")

		err := srv.Shutdown(c)
		if err != nil {
			return fmt.Errorf("shutdown srv: %w", err)
		}

		return nil
	})

	errCh := make(chan error, 1)

	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}

		errCh <- nil
	}()

	logger.Info("api started", slog.Int("port", int(cfg.Port)), slog.String("env", cfg.Env))

	select {
	case <-ctx.Done():
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}
