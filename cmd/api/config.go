package main

import "github.com/fastprodman/auctionhouse/internal/config"

type apiConfig struct {
	config.AppConfig
	config.APIConfig
	Postgres  config.PostgresConfig
	Tx        config.TxConfig
	Reconcile config.ReconcileConfig
}
