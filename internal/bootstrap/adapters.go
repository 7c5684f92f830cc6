package bootstrap

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/intervue/intervue-api/config"
	"github.com/intervue/intervue-api/internal/adapters/expirysweeper"
	"github.com/intervue/intervue-api/internal/observability/statsd"
)

// ExpirySweeperConfig contains the dependencies for the expiry-sweeper service mode.
type ExpirySweeperConfig struct {
	DB      *sql.DB
	Logger  *slog.Logger
	Config  config.ExpirySweeperConfig
	Metrics statsd.Sink
}

// RunExpirySweeper blocks until ctx is cancelled, expiring overdue interviews on every tick.
func RunExpirySweeper(ctx context.Context, cfg ExpirySweeperConfig) error {
	runner, err := expirysweeper.NewRunner(expirysweeper.RunnerOptions{
		DB:      cfg.DB,
		Config:  cfg.Config,
		Logger:  cfg.Logger,
		Metrics: cfg.Metrics,
	})
	if err != nil {
		return err
	}
	return runner.Run(ctx)
}
