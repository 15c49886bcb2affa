package main

import "github.com/fastprodman/auctionhouse/internal/config"

type workerConfig struct {
	config.AppConfig
	Postgres    config.PostgresConfig
	Tx          config.TxConfig
	RoundCloser config.RoundCloserConfig
	Reconcile   config.ReconcileConfig
	Outbox      config.OutboxConfig
}
