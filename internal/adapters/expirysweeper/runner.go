// Package expirysweeper runs the interview expiry sweeper as a service mode.
package expirysweeper

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/intervue/intervue-api/config"
	"github.com/intervue/intervue-api/internal/core"
	"github.com/intervue/intervue-api/internal/data"
	"github.com/intervue/intervue-api/internal/observability/statsd"
	"github.com/intervue/intervue-api/internal/service"
)

// RunnerOptions holds the dependencies for creating a Runner.
// Either DB or Repo must be set; Repo wins when both are.
type RunnerOptions struct {
	DB      *sql.DB
	Repo    core.InterviewExpiryRepository
	Config  config.ExpirySweeperConfig
	Logger  *slog.Logger
	Metrics statsd.Sink
}

// Runner owns an ExpirySweeperService and runs it until shutdown.
type Runner struct {
	sweeper *service.ExpirySweeperService
	logger  *slog.Logger
}

// NewRunner wires the sweeper against Postgres or the supplied repository.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	repo := opts.Repo
	if repo == nil {
		if opts.DB == nil {
			return nil, errors.New("database connection is required")
		}
		repo = data.NewInterviewRepo(opts.DB)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sweeper, err := service.NewExpirySweeperService(service.ExpirySweeperServiceOptions{
		Repo:    repo,
		Config:  opts.Config,
		Logger:  logger,
		Metrics: opts.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("wire expiry sweeper: %w", err)
	}
	return &Runner{sweeper: sweeper, logger: logger}, nil
}

// Run blocks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting expiry sweeper runner")
	return r.sweeper.Run(ctx)
}

// SweepOnce runs a single sweep, for the admin CLI.
func (r *Runner) SweepOnce(ctx context.Context) (int64, error) {
	return r.sweeper.SweepOnce(ctx)
}
