package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/intervue/intervue-api/internal/core"
	"github.com/intervue/intervue-api/internal/domain/model"
	"github.com/intervue/intervue-api/internal/domain/participation"
	"github.com/intervue/intervue-api/internal/observability/metrics"
	"github.com/intervue/intervue-api/internal/observability/statsd"
)

// ExpiryPolicyOptions groups dependencies for ExpiryPolicy.
type ExpiryPolicyOptions struct {
	Interviews core.InterviewRepository // Required
	Now        func() time.Time         // Optional: defaults to time.Now
	Logger     *slog.Logger             // Optional
	Metrics    statsd.Sink              // Optional
}

// ExpiryPolicy decides whether an interview can still be attempted and persists
// the expired status the first time it is observed.
type ExpiryPolicy struct {
	interviews core.InterviewRepository
	now        func() time.Time
	logger     *slog.Logger
	metrics    statsd.Sink
}

// ExpiryResult is what CheckExpiry observed. Interview reflects the persisted
// status when this call wrote it.
type ExpiryResult struct {
	Expired   bool
	Interview *model.Interview
}

// NewExpiryPolicy constructs a new ExpiryPolicy.
func NewExpiryPolicy(opts ExpiryPolicyOptions) (*ExpiryPolicy, error) {
	if opts.Interviews == nil {
		return nil, errors.New("InterviewRepository is required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ExpiryPolicy{
		interviews: opts.Interviews,
		now:        now,
		logger:     logger.With("component", "expiry_policy"),
		metrics:    opts.Metrics,
	}, nil
}

// CheckExpiry reports whether iv is expired. When it is expired by deadline but not yet
// marked, it issues one conditional write. A failed write is logged and does not change
// the answer.
func (p *ExpiryPolicy) CheckExpiry(ctx context.Context, iv *model.Interview) ExpiryResult {
	now := p.now()
	if !participation.IsExpired(iv, now) {
		return ExpiryResult{Interview: iv}
	}
	if !participation.NeedsExpiryWrite(iv, now) {
		return ExpiryResult{Expired: true, Interview: iv}
	}

	changed, err := p.interviews.MarkExpired(ctx, iv.ID)
	if err != nil {
		p.logger.WarnContext(ctx, "failed to persist interview expiry",
			"interview_id", iv.ID,
			"error", err,
		)
		return ExpiryResult{Expired: true, Interview: iv}
	}
	if changed {
		metrics.EmitInterviewsExpired(p.metrics, "policy", 1)
		p.logger.InfoContext(ctx, "interview expired", "interview_id", iv.ID)
	}

	marked := *iv
	marked.Status = model.InterviewStatusExpired
	return ExpiryResult{Expired: true, Interview: &marked}
}
