package workers

import (
	"context"

	"github.com/fastprodman/auctionhouse/internal/services/events"
	"github.com/fastprodman/auctionhouse/internal/services/reconcile"
)

type Reconciler interface {
	RunOnce(ctx context.Context) (reconcile.Result, error)
}

type OutboxRelay interface {
	RunOnce(ctx context.Context) (events.Stats, error)
}

func ReconcileJob(r Reconciler) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := r.RunOnce(ctx)
		return err
	}
}

func OutboxJob(r OutboxRelay) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := r.RunOnce(ctx)
		return err
	}
}
