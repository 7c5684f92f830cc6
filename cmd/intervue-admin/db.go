package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/intervue/intervue-api/internal/bootstrap"
	"github.com/intervue/intervue-api/internal/data"
	"github.com/intervue/intervue-api/internal/devseed"
)

type migrateOptions struct {
	Timeout time.Duration
}

type dbResetOptions struct {
	Timeout     time.Duration
	Yes         bool
	AllowRemote bool
}

func parseMigrateFlags(name string, args []string) (migrateOptions, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := migrateOptions{Timeout: defaultMigrationTimeout}
	fs.DurationVar(&opts.Timeout, "timeout", defaultMigrationTimeout, "Maximum duration to wait for migrations to complete")

	if err := fs.Parse(args); err != nil {
		return migrateOptions{}, err
	}
	if opts.Timeout <= 0 {
		return migrateOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func parseDBResetFlags(args []string) (dbResetOptions, error) {
	fs := flag.NewFlagSet("db-reset", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := dbResetOptions{Timeout: defaultMigrationTimeout}
	fs.DurationVar(&opts.Timeout, "timeout", defaultMigrationTimeout, "Maximum duration to wait for reset operations to complete")
	fs.BoolVar(&opts.Yes, "yes", false, "Skip confirmation prompt")
	fs.BoolVar(&opts.AllowRemote, "allow-remote", false, "Permit running against database hosts that do not look local")

	if err := fs.Parse(args); err != nil {
		return dbResetOptions{}, err
	}
	if opts.Timeout <= 0 {
		return dbResetOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags("migrate", args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		cmdCtx.Logger.InfoContext(ctx, "running database migrations")
		if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
			return migrateErr
		}
		return writeln(cmdCtx.Out, "Migrations applied.")
	})
}

func runMigrateStatus(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags("migrate-status", args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		pending, pendErr := data.PendingMigrations(ctx, db)
		if pendErr != nil {
			return fmt.Errorf("list pending migrations: %w", pendErr)
		}
		return printPendingMigrations(cmdCtx, pending)
	})
}

func printPendingMigrations(cmdCtx *commandContext, pending []string) error {
	if len(pending) == 0 {
		return writeln(cmdCtx.Out, "Schema is up to date.")
	}
	if err := writef(cmdCtx.Out, "%d pending migration(s):\n", len(pending)); err != nil {
		return err
	}
	for _, v := range pending {
		if err := writef(cmdCtx.Out, "  %s\n", v); err != nil {
			return err
		}
	}
	return nil
}

func runDBReset(cmdCtx *commandContext, args []string) error {
	opts, err := parseDBResetFlags(args)
	if err != nil {
		return err
	}

	host := cmdCtx.Config.Postgres.Host
	remote := isLikelyRemoteHost(host)
	if remote && !opts.AllowRemote {
		return fmt.Errorf(
			"refusing to reset potentially remote database host %q; re-run with --allow-remote if this is intentional",
			host,
		)
	}
	// A remote host always prompts, even with --yes.
	if remote || !opts.Yes {
		prompt := fmt.Sprintf("Drop and recreate the public schema of %q on %s?", cmdCtx.Config.Postgres.Name, host)
		if err = confirm(cmdCtx, prompt); err != nil {
			return err
		}
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		for _, stmt := range resetStatements(cmdCtx.Config.Postgres.User) {
			cmdCtx.Logger.DebugContext(ctx, "executing reset statement", "sql", stmt)
			if _, execErr := db.ExecContext(ctx, stmt); execErr != nil {
				return fmt.Errorf("exec %q: %w", stmt, execErr)
			}
		}
		if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
			return migrateErr
		}
		return writeln(cmdCtx.Out, "Database reset complete.")
	})
}

func runDBSeed(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags("db-seed", args)
	if err != nil {
		return err
	}
	if !cmdCtx.Config.IsDev && isLikelyRemoteHost(cmdCtx.Config.Postgres.Host) {
		return fmt.Errorf("refusing to seed %q outside dev mode", cmdCtx.Config.Postgres.Host)
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
			return migrateErr
		}
		res, seedErr := devseed.Run(ctx, devseed.NewServices(db), devseed.Options{
			RecruiterSubject: cmdCtx.Config.Auth.DevAuth.Subject,
		}, cmdCtx.Logger)
		if seedErr != nil {
			return seedErr
		}
		return writef(cmdCtx.Out, "Seeded %d user(s), %d interview(s) created, %d already present.\n",
			res.Users, res.InterviewsCreated, res.InterviewsSkipped)
	})
}

func resetStatements(user string) []string {
	statements := []string{
		"DROP SCHEMA public CASCADE",
		"CREATE SCHEMA public",
		"GRANT ALL ON SCHEMA public TO public",
	}
	if u := strings.TrimSpace(user); u != "" && !strings.EqualFold(u, "public") {
		statements = append(statements, "GRANT ALL ON SCHEMA public TO "+quoteIdentifier(u))
	}
	return statements
}

func quoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
