package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intervue/intervue-api/config"
	redisadapter "github.com/intervue/intervue-api/internal/adapters/redis"
	domainauth "github.com/intervue/intervue-api/internal/domain/auth"
	"github.com/intervue/intervue-api/internal/domain/model"
	"github.com/intervue/intervue-api/internal/testutil"
)

func newTestContext(input string) (*commandContext, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &commandContext{
		Ctx:    context.Background(),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Out:    out,
		In:     strings.NewReader(input),
	}, out
}

func TestPrintUsageListsCommands(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printUsage(&buf))

	out := buf.String()
	for name := range commands() {
		assert.Contains(t, out, name)
	}
	assert.Less(t, strings.Index(out, "attempts"), strings.Index(out, "sweep-expired"))
}

func TestIsLikelyRemoteHost(t *testing.T) {
	cases := map[string]bool{
		"":                       false,
		"localhost":              false,
		"127.0.0.1":              false,
		"::1":                    false,
		"postgres.local":         false,
		"127.0.0.2":              false,
		"10.0.0.5":               true,
		"db.prod.example.com":    true,
		"  LOCALHOST  ":          false,
		"intervue.postgres.host": true,
	}
	for host, want := range cases {
		assert.Equal(t, want, isLikelyRemoteHost(host), host)
	}
}

func TestParseFlags(t *testing.T) {
	t.Run("migrate rejects non-positive timeout", func(t *testing.T) {
		_, err := parseMigrateFlags("migrate", []string{"--timeout", "0s"})
		require.Error(t, err)

		opts, err := parseMigrateFlags("migrate", nil)
		require.NoError(t, err)
		assert.Equal(t, defaultMigrationTimeout, opts.Timeout)
	})

	t.Run("sweep defaults batch from config", func(t *testing.T) {
		opts, err := parseSweepFlags(nil, 250)
		require.NoError(t, err)
		assert.Equal(t, 250, opts.BatchSize)

		opts, err = parseSweepFlags([]string{"--batch-size", "10"}, 250)
		require.NoError(t, err)
		assert.Equal(t, 10, opts.BatchSize)

		_, err = parseSweepFlags([]string{"--batch-size", "-1"}, 250)
		require.Error(t, err)
	})

	t.Run("attempts requires interview and subject", func(t *testing.T) {
		_, err := parseAttemptsFlags([]string{"--interview", "iv-1"})
		require.Error(t, err)

		opts, err := parseAttemptsFlags([]string{"--interview", " iv-1 ", "--subject", "idp|u1", "--json"})
		require.NoError(t, err)
		assert.Equal(t, "iv-1", opts.InterviewID)
		assert.Equal(t, "idp|u1", opts.Subject)
		assert.True(t, opts.JSON)
	})

	t.Run("revoke requires subject", func(t *testing.T) {
		_, err := parseRevokeFlags([]string{"--subject", "  "})
		require.Error(t, err)
	})
}

func TestResetStatements(t *testing.T) {
	stmts := resetStatements(`odd"user`)
	require.Len(t, stmts, 4)
	assert.Equal(t, `GRANT ALL ON SCHEMA public TO "odd""user"`, stmts[3])

	assert.Len(t, resetStatements("public"), 3)
	assert.Len(t, resetStatements(""), 3)
}

func TestConfirm(t *testing.T) {
	for input, wantErr := range map[string]bool{
		"y\n":   false,
		"YES\n": false,
		"n\n":   true,
		"\n":    true,
		"":      true,
	} {
		cmdCtx, out := newTestContext(input)
		err := confirm(cmdCtx, "Proceed?")
		assert.Equal(t, wantErr, err != nil, "input %q", input)
		assert.Contains(t, out.String(), "Proceed? [y/N]: ")
	}
}

func TestRunDBReset_RemoteGuard(t *testing.T) {
	t.Run("refuses remote host without flag", func(t *testing.T) {
		cmdCtx, _ := newTestContext("")
		cmdCtx.Config = config.AppConfig{Postgres: config.DBConfig{Host: "db.prod.example.com", Name: "intervue"}}

		err := runDBReset(cmdCtx, []string{"--yes"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--allow-remote")
	})

	t.Run("remote host still prompts with --yes", func(t *testing.T) {
		cmdCtx, out := newTestContext("n\n")
		cmdCtx.Config = config.AppConfig{Postgres: config.DBConfig{Host: "db.prod.example.com", Name: "intervue"}}

		err := runDBReset(cmdCtx, []string{"--yes", "--allow-remote"})
		require.EqualError(t, err, "aborted by user")
		assert.Contains(t, out.String(), `"intervue" on db.prod.example.com`)
	})
}

func TestPrintAttempts(t *testing.T) {
	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	completed := started.Add(45 * time.Minute)
	feedback := "Strong on\nsystem design"
	attempts := []model.Attempt{
		{ID: "a2", Status: model.AttemptStatusCompleted, StartedAt: started, CompletedAt: &completed, Feedback: &feedback},
		{ID: "a1", Status: model.AttemptStatusPending, StartedAt: started},
	}

	cmdCtx, out := newTestContext("")
	require.NoError(t, printAttempts(cmdCtx, attempts))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "2026-03-01T09:45:00Z")
	assert.Contains(t, lines[1], "Strong on system design")
	assert.Contains(t, lines[2], "pending")
	assert.True(t, strings.HasSuffix(lines[2], "-"))

	cmdCtx, out = newTestContext("")
	require.NoError(t, printAttempts(cmdCtx, nil))
	assert.Equal(t, "No attempts found.\n", out.String())
}

func TestPrintAttemptsJSON_Empty(t *testing.T) {
	cmdCtx, out := newTestContext("")
	require.NoError(t, printAttemptsJSON(cmdCtx, nil))

	var got []model.Attempt
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}

func TestPrintPendingMigrations(t *testing.T) {
	cmdCtx, out := newTestContext("")
	require.NoError(t, printPendingMigrations(cmdCtx, nil))
	assert.Equal(t, "Schema is up to date.\n", out.String())

	cmdCtx, out = newTestContext("")
	require.NoError(t, printPendingMigrations(cmdCtx, []string{"0002_attempt_feedback"}))
	assert.Equal(t, "1 pending migration(s):\n  0002_attempt_feedback\n", out.String())
}

func TestRevokeSessions(t *testing.T) {
	client, _ := testutil.SetupTestRedis(t)
	store, err := redisadapter.NewSessionStore(redisadapter.SessionStoreOptions{Client: client})
	require.NoError(t, err)

	ctx := context.Background()
	for _, id := range []string{"s1", "s2"} {
		require.NoError(t, store.Save(ctx, domainauth.Session{
			ID:        id,
			Subject:   "idp|u1",
			ExpiresAt: time.Now().Add(time.Hour),
		}))
	}
	require.NoError(t, store.Save(ctx, domainauth.Session{ID: "s3", Subject: "idp|u2", ExpiresAt: time.Now().Add(time.Hour)}))

	cmdCtx, out := newTestContext("")
	require.NoError(t, revokeSessions(ctx, cmdCtx, store, "idp|u1"))
	assert.Equal(t, "Revoked 2 session(s) for idp|u1.\n", out.String())

	_, err = store.Get(ctx, "s1")
	require.Error(t, err)
	_, err = store.Get(ctx, "s3")
	require.NoError(t, err)
}

type failingRevoker struct{}

func (failingRevoker) DeleteAllForSubject(context.Context, string) (int64, error) {
	return 0, errors.New("redis down")
}

func TestRevokeSessions_Error(t *testing.T) {
	cmdCtx, out := newTestContext("")
	err := revokeSessions(context.Background(), cmdCtx, failingRevoker{}, "idp|u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
	assert.Empty(t, out.String())
}

func TestRunDBSeed_RefusesRemoteOutsideDev(t *testing.T) {
	cmdCtx, _ := newTestContext("")
	cmdCtx.Config = config.AppConfig{Postgres: config.DBConfig{Host: "db.prod.example.com"}}

	err := runDBSeed(cmdCtx, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside dev mode")
}
