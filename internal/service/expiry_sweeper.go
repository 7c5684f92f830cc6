package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/intervue/intervue-api/config"
	"github.com/intervue/intervue-api/internal/core"
	obserrors "github.com/intervue/intervue-api/internal/observability/errors"
	"github.com/intervue/intervue-api/internal/observability/metrics"
	"github.com/intervue/intervue-api/internal/observability/statsd"
)

// ExpirySweeperServiceOptions groups dependencies for ExpirySweeperService.
type ExpirySweeperServiceOptions struct {
	Repo    core.InterviewExpiryRepository // Required
	Config  config.ExpirySweeperConfig     // Required
	Logger  *slog.Logger                   // Optional
	Metrics statsd.Sink                    // Optional
}

// ExpirySweeperService periodically marks interviews past their validate_till as expired,
// so listings and reports agree with what the participation flow enforces lazily.
type ExpirySweeperService struct {
	repo    core.InterviewExpiryRepository
	config  config.ExpirySweeperConfig
	logger  *slog.Logger
	metrics statsd.Sink
	now     func() time.Time
}

// NewExpirySweeperService constructs a new ExpirySweeperService.
func NewExpirySweeperService(opts ExpirySweeperServiceOptions) (*ExpirySweeperService, error) {
	if opts.Repo == nil {
		return nil, errors.New("InterviewExpiryRepository is required")
	}
	if opts.Config.Interval <= 0 {
		return nil, errors.New("expiry sweeper interval must be positive")
	}
	if opts.Config.BatchSize <= 0 {
		return nil, errors.New("expiry sweeper batch size must be positive")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "expiry_sweeper")
	logger.Debug("ExpirySweeperService initialized",
		"interval", opts.Config.Interval,
		"batch_size", opts.Config.BatchSize,
	)
	return &ExpirySweeperService{
		repo:    opts.Repo,
		config:  opts.Config,
		logger:  logger,
		metrics: opts.Metrics,
		now:     time.Now,
	}, nil
}

// Run sweeps at the configured interval until ctx is cancelled.
// Returns nil on graceful shutdown (context.Canceled), error otherwise.
func (s *ExpirySweeperService) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "starting expiry sweeper", "interval", s.config.Interval)

	// Spread instances that start together.
	s.waitWithJitter(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	if _, err := s.SweepOnce(ctx); err != nil {
		s.logSweepError(ctx, err, "initial sweep")
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "expiry sweeper stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				s.logSweepError(ctx, err, "sweep")
			}
		}
	}
}

// SweepOnce expires overdue interviews in batches until a batch comes back empty and
// returns the total number expired.
func (s *ExpirySweeperService) SweepOnce(ctx context.Context) (int64, error) {
	start := time.Now()
	now := s.now()

	var total int64
	var err error
	for {
		var n int64
		n, err = s.repo.ExpireOverdue(ctx, core.ExpireOverdueParams{Now: now, BatchSize: s.config.BatchSize})
		if err != nil {
			err = fmt.Errorf("expire overdue interviews: %w", err)
			break
		}
		total += n
		if n < int64(s.config.BatchSize) {
			break
		}
		if ctx.Err() != nil {
			err = ctx.Err()
			break
		}
	}

	s.emitSweepMetrics(total, err, time.Since(start))
	if total > 0 {
		s.logger.InfoContext(ctx, "expired overdue interviews", "count", total)
	}
	return total, err
}

// waitWithJitter sleeps up to 10% of the interval.
func (s *ExpirySweeperService) waitWithJitter(ctx context.Context) {
	maxJitter := int64(s.config.Interval / 10)
	if maxJitter <= 0 {
		return
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		s.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		return
	}
	jitter := time.Duration(int64(binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter))) // #nosec G115 - bounded by maxJitter
	select {
	case <-time.After(jitter):
	case <-ctx.Done():
	}
}

func (s *ExpirySweeperService) emitSweepMetrics(count int64, err error, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	result := metrics.ResultSuccess
	switch {
	case err != nil && !isContextCancellation(err):
		result = metrics.ResultError
	case count == 0:
		result = metrics.ResultNoop
	}
	tags := map[string]string{"result": result}
	if result == metrics.ResultError {
		if class := obserrors.Classify(err); class != "" {
			tags["error_class"] = class
		}
	}

	s.metrics.Count(metrics.ExpirySweep, 1, tags)
	s.metrics.Timing(metrics.ExpirySweepDuration, elapsed, metrics.CloneTags(tags))
	metrics.EmitInterviewsExpired(s.metrics, "sweeper", count)
	if err == nil {
		s.metrics.Gauge(metrics.ExpiryLastSuccess, float64(time.Now().Unix()), nil)
	}
}

func (s *ExpirySweeperService) logSweepError(ctx context.Context, err error, label string) {
	if isContextCancellation(err) {
		s.logger.DebugContext(ctx, label+" cancelled by context", "error", err)
		return
	}
	s.logger.ErrorContext(ctx, label+" failed", "error", err)
}

func isContextCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
