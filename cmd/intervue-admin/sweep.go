package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/intervue/intervue-api/internal/adapters/expirysweeper"
)

type sweepOptions struct {
	Timeout   time.Duration
	BatchSize int
}

func parseSweepFlags(args []string, defaultBatch int) (sweepOptions, error) {
	fs := flag.NewFlagSet("sweep-expired", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := sweepOptions{Timeout: defaultMigrationTimeout, BatchSize: defaultBatch}
	fs.DurationVar(&opts.Timeout, "timeout", defaultMigrationTimeout, "Maximum duration for the sweep")
	fs.IntVar(&opts.BatchSize, "batch-size", defaultBatch, "Interviews expired per statement")

	if err := fs.Parse(args); err != nil {
		return sweepOptions{}, err
	}
	if opts.Timeout <= 0 {
		return sweepOptions{}, errors.New("--timeout must be greater than zero")
	}
	if opts.BatchSize <= 0 {
		return sweepOptions{}, errors.New("--batch-size must be greater than zero")
	}
	return opts, nil
}

func runSweepExpired(cmdCtx *commandContext, args []string) error {
	opts, err := parseSweepFlags(args, cmdCtx.Config.ExpirySweeper.BatchSize)
	if err != nil {
		return err
	}

	sweepCfg := cmdCtx.Config.ExpirySweeper
	sweepCfg.BatchSize = opts.BatchSize

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		runner, runErr := expirysweeper.NewRunner(expirysweeper.RunnerOptions{
			DB:     db,
			Config: sweepCfg,
			Logger: cmdCtx.Logger,
		})
		if runErr != nil {
			return runErr
		}
		n, sweepErr := runner.SweepOnce(ctx)
		if sweepErr != nil {
			return fmt.Errorf("sweep: %w", sweepErr)
		}
		return writef(cmdCtx.Out, "Expired %d interview(s).\n", n)
	})
}
