package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/intervue/intervue-api/internal/data"
	"github.com/intervue/intervue-api/internal/domain/model"
)

type attemptsOptions struct {
	Timeout     time.Duration
	InterviewID string
	Subject     string
	JSON        bool
}

func parseAttemptsFlags(args []string) (attemptsOptions, error) {
	fs := flag.NewFlagSet("attempts", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := attemptsOptions{Timeout: defaultCommandTimeout}
	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Maximum duration for the lookup")
	fs.StringVar(&opts.InterviewID, "interview", "", "Interview ID (required)")
	fs.StringVar(&opts.Subject, "subject", "", "Identity provider subject of the user (required)")
	fs.BoolVar(&opts.JSON, "json", false, "Print attempts as JSON")

	if err := fs.Parse(args); err != nil {
		return attemptsOptions{}, err
	}
	opts.InterviewID = strings.TrimSpace(opts.InterviewID)
	opts.Subject = strings.TrimSpace(opts.Subject)
	if opts.InterviewID == "" || opts.Subject == "" {
		return attemptsOptions{}, errors.New("--interview and --subject are required")
	}
	return opts, nil
}

func runListAttempts(cmdCtx *commandContext, args []string) error {
	opts, err := parseAttemptsFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		user, userErr := data.NewUserRepo(db).GetBySubject(ctx, opts.Subject)
		if userErr != nil {
			return fmt.Errorf("look up user %q: %w", opts.Subject, userErr)
		}
		attempts, listErr := data.NewAttemptRepo(db).ListByInterviewAndUser(ctx, opts.InterviewID, user.ID)
		if listErr != nil {
			return fmt.Errorf("list attempts: %w", listErr)
		}
		if opts.JSON {
			return printAttemptsJSON(cmdCtx, attempts)
		}
		return printAttempts(cmdCtx, attempts)
	})
}

func printAttemptsJSON(cmdCtx *commandContext, attempts []model.Attempt) error {
	if attempts == nil {
		attempts = []model.Attempt{}
	}
	enc := json.NewEncoder(cmdCtx.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(attempts)
}

func printAttempts(cmdCtx *commandContext, attempts []model.Attempt) error {
	if len(attempts) == 0 {
		return writeln(cmdCtx.Out, "No attempts found.")
	}

	tw := tabwriter.NewWriter(cmdCtx.Out, 0, 4, 2, ' ', 0)
	if err := writeln(tw, "ID\tSTATUS\tSTARTED\tCOMPLETED\tFEEDBACK"); err != nil {
		return err
	}
	for _, a := range attempts {
		completed := "-"
		if a.CompletedAt != nil {
			completed = a.CompletedAt.UTC().Format(time.RFC3339)
		}
		feedback := "-"
		if a.Feedback != nil {
			feedback = truncate(*a.Feedback, 40)
		}
		if err := writef(tw, "%s\t%s\t%s\t%s\t%s\n",
			a.ID, a.Status, a.StartedAt.UTC().Format(time.RFC3339), completed, feedback); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
