package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	redisadapter "github.com/intervue/intervue-api/internal/adapters/redis"
	"github.com/intervue/intervue-api/internal/bootstrap"
)

type revokeOptions struct {
	Timeout time.Duration
	Subject string
}

// subjectSessionRevoker is the part of the session store revoke-sessions needs.
type subjectSessionRevoker interface {
	DeleteAllForSubject(ctx context.Context, subject string) (int64, error)
}

func parseRevokeFlags(args []string) (revokeOptions, error) {
	fs := flag.NewFlagSet("revoke-sessions", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := revokeOptions{Timeout: defaultCommandTimeout}
	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Maximum duration for the revocation")
	fs.StringVar(&opts.Subject, "subject", "", "Identity provider subject whose sessions are revoked (required)")

	if err := fs.Parse(args); err != nil {
		return revokeOptions{}, err
	}
	opts.Subject = strings.TrimSpace(opts.Subject)
	if opts.Subject == "" {
		return revokeOptions{}, errors.New("--subject is required")
	}
	return opts, nil
}

func runRevokeSessions(cmdCtx *commandContext, args []string) error {
	opts, err := parseRevokeFlags(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	client, err := bootstrap.ConnectRedis(bootstrap.DatabaseConfig{
		RedisConfig: cmdCtx.Config.Redis,
		Logger:      cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			cmdCtx.Logger.Warn("redis close failed", "error", cerr)
		}
	}()

	store, err := redisadapter.NewSessionStore(redisadapter.SessionStoreOptions{Client: client})
	if err != nil {
		return err
	}
	return revokeSessions(ctx, cmdCtx, store, opts.Subject)
}

func revokeSessions(ctx context.Context, cmdCtx *commandContext, store subjectSessionRevoker, subject string) error {
	n, err := store.DeleteAllForSubject(ctx, subject)
	if err != nil {
		return fmt.Errorf("revoke sessions for %q: %w", subject, err)
	}
	cmdCtx.Logger.InfoContext(ctx, "sessions revoked", "subject", subject, "count", n)
	return writef(cmdCtx.Out, "Revoked %d session(s) for %s.\n", n, subject)
}
