package config

import (
	"log/slog"
	"time"
)

type PostgresConfig struct {
	DSN             string        `env:"PG_DSN"`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS" envDefault:"20"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS" envDefault:"10"`
	ConnMaxIdleTime time.Duration `env:"PG_CONN_MAX_IDLE_TIME" envDefault:"5m"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME" envDefault:"30m"`
}

// AppConfig is shared by every long-running process.
type AppConfig struct {
	LogLevel        slog.Level    `env:"APP_LOG_LEVEL" envDefault:"INFO"`
	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT" envDefault:"15s"`
	Env             string        `env:"APP_ENV" envDefault:"PROD"`
}

// TxConfig drives the retry discipline around store transactions.
type TxConfig struct {
	MaxAttempts int           `env:"TX_MAX_ATTEMPTS" envDefault:"5"`
	BackoffStep time.Duration `env:"TX_BACKOFF_STEP" envDefault:"10ms"`
}

type RoundCloserConfig struct {
	Interval   time.Duration `env:"ROUND_CLOSER_INTERVAL" envDefault:"1s"`
	BatchSize  int           `env:"ROUND_CLOSER_BATCH" envDefault:"50"`
	MaxBackoff time.Duration `env:"ROUND_CLOSER_MAX_BACKOFF" envDefault:"60s"`
}

type ReconcileConfig struct {
	Interval     time.Duration `env:"RECONCILE_INTERVAL" envDefault:"5m"`
	AutoFixLimit int           `env:"RECONCILE_AUTOFIX_LIMIT" envDefault:"100"`
	AuctionPage  int           `env:"RECONCILE_AUCTION_PAGE" envDefault:"200"`
}

type OutboxConfig struct {
	Interval  time.Duration `env:"OUTBOX_INTERVAL" envDefault:"2s"`
	BatchSize int           `env:"OUTBOX_BATCH" envDefault:"100"`
	// QueueURL selects the SQS publisher; empty publishes to the log.
	QueueURL string `env:"SQS_QUEUE_URL" envDefault:""`
}

type APIConfig struct {
	Port uint16 `env:"APP_PORT" envDefault:"8080"`
}
