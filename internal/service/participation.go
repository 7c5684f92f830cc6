package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/intervue/intervue-api/config"
	"github.com/intervue/intervue-api/internal/core"
	"github.com/intervue/intervue-api/internal/domain/model"
	"github.com/intervue/intervue-api/internal/domain/participation"
	apperrors "github.com/intervue/intervue-api/internal/errors"
	"github.com/intervue/intervue-api/internal/observability/metrics"
	"github.com/intervue/intervue-api/internal/observability/statsd"
)

// ParticipationRepos groups the stores the participation flow reads and writes.
type ParticipationRepos struct {
	Users      core.UserRepository
	Interviews core.InterviewRepository
	Attempts   core.AttemptRepository
}

// ParticipationServiceOptions groups dependencies for ParticipationService.
type ParticipationServiceOptions struct {
	Repos   ParticipationRepos         // Required
	Expiry  *ExpiryPolicy              // Required
	Config  config.ParticipationConfig // Optional: zero value disables coalescing
	Logger  *slog.Logger               // Optional
	Metrics statsd.Sink                // Optional
}

// ParticipationService decides whether a caller may enter an interview and hands back
// the attempt to use.
type ParticipationService struct {
	users      core.UserRepository
	interviews core.InterviewRepository
	attempts   core.AttemptRepository
	expiry     *ExpiryPolicy
	cfg        config.ParticipationConfig
	logger     *slog.Logger
	metrics    statsd.Sink

	group singleflight.Group
}

// NewParticipationService constructs a new ParticipationService.
func NewParticipationService(opts ParticipationServiceOptions) (*ParticipationService, error) {
	switch {
	case opts.Repos.Users == nil:
		return nil, errors.New("UserRepository is required")
	case opts.Repos.Interviews == nil:
		return nil, errors.New("InterviewRepository is required")
	case opts.Repos.Attempts == nil:
		return nil, errors.New("AttemptRepository is required")
	case opts.Expiry == nil:
		return nil, errors.New("ExpiryPolicy is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ParticipationService{
		users:      opts.Repos.Users,
		interviews: opts.Repos.Interviews,
		attempts:   opts.Repos.Attempts,
		expiry:     opts.Expiry,
		cfg:        opts.Config,
		logger:     logger.With("component", "participation_service"),
		metrics:    opts.Metrics,
	}, nil
}

// Initiate runs the participation rules for subject against interviewID, in order:
// identity, interview lookup, expiry, attempt history, retake policy.
// Store failures are returned as errors; every business answer is an Outcome.
func (s *ParticipationService) Initiate(
	ctx context.Context,
	interviewID, subject string,
) (*participation.Outcome, error) {
	start := time.Now()
	subject = strings.TrimSpace(subject)
	interviewID = strings.TrimSpace(interviewID)

	var (
		out participation.Outcome
		err error
	)
	if subject == "" {
		out = participation.Unauthorized()
	} else if s.cfg.CoalesceInFlight {
		out, err = s.coalesced(ctx, interviewID, subject)
	} else {
		out, err = s.run(ctx, interviewID, subject)
	}

	s.emit(out, err, time.Since(start))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// coalesced collapses concurrent identical calls in this process into one evaluation.
// The shared call is detached from the first caller's cancellation and bounded by
// RequestTimeout instead; each caller still stops waiting when its own ctx ends.
func (s *ParticipationService) coalesced(
	ctx context.Context,
	interviewID, subject string,
) (participation.Outcome, error) {
	key := interviewID + "\x00" + subject
	// Set only by the caller whose closure ran; read after the result is received.
	var leader bool
	ch := s.group.DoChan(key, func() (any, error) {
		leader = true
		callCtx := context.WithoutCancel(ctx)
		if s.cfg.RequestTimeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(callCtx, s.cfg.RequestTimeout)
			defer cancel()
		}
		return s.run(callCtx, interviewID, subject)
	})

	select {
	case <-ctx.Done():
		return participation.Outcome{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return participation.Outcome{}, res.Err
		}
		out, _ := res.Val.(participation.Outcome)
		if res.Shared && !leader {
			// Only the caller that ran the insert reports the attempt as new.
			out.Created = false
			s.logger.DebugContext(ctx, "participation call coalesced",
				"interview_id", interviewID, "outcome", out.Kind)
		}
		return out, nil
	}
}

func (s *ParticipationService) run(ctx context.Context, interviewID, subject string) (participation.Outcome, error) {
	user, err := s.users.GetBySubject(ctx, subject)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return participation.Unauthorized(), nil
		}
		return participation.Outcome{}, fmt.Errorf("find user: %w", err)
	}

	iv, err := s.interviews.GetByID(ctx, interviewID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return participation.NotFound(), nil
		}
		return participation.Outcome{}, fmt.Errorf("find interview: %w", err)
	}

	if res := s.expiry.CheckExpiry(ctx, iv); res.Expired {
		return participation.Expired(res.Interview), nil
	}

	history, err := s.attempts.ListByInterviewAndUser(ctx, iv.ID, user.ID)
	if err != nil {
		return participation.Outcome{}, fmt.Errorf("list attempts: %w", err)
	}

	decision := participation.Decide(iv.Category, history)
	switch decision.Action {
	case participation.ActionBlock:
		return participation.AlreadyAttempted(iv), nil
	case participation.ActionResume:
		return participation.Success(decision.AttemptID, iv, false), nil
	default:
		return s.create(ctx, iv, user)
	}
}

// create inserts a pending attempt. A conflict means another caller opened one first;
// the history is re-read and that attempt is resumed.
func (s *ParticipationService) create(
	ctx context.Context,
	iv *model.Interview,
	user *model.User,
) (participation.Outcome, error) {
	attempt, err := s.attempts.CreatePending(ctx, core.CreateAttemptParams{
		InterviewID: iv.ID,
		UserID:      user.ID,
	})
	switch {
	case err == nil:
		s.logger.InfoContext(ctx, "attempt created",
			"attempt_id", attempt.ID, "interview_id", iv.ID, "user_id", user.ID)
		return participation.Success(attempt.ID, iv, true), nil
	case apperrors.IsForeignKey(err):
		// Interview deleted between lookup and insert.
		return participation.NotFound(), nil
	case !apperrors.IsConflict(err):
		return participation.Outcome{}, fmt.Errorf("create attempt: %w", err)
	}

	history, listErr := s.attempts.ListByInterviewAndUser(ctx, iv.ID, user.ID)
	if listErr != nil {
		return participation.Outcome{}, fmt.Errorf("reload attempts: %w", listErr)
	}
	if open, ok := participation.FindOpen(history); ok {
		s.logger.DebugContext(ctx, "resumed concurrently created attempt",
			"attempt_id", open.ID, "interview_id", iv.ID)
		return participation.Success(open.ID, iv, false), nil
	}
	if participation.Decide(iv.Category, history).Action == participation.ActionBlock {
		return participation.AlreadyAttempted(iv), nil
	}
	return participation.Outcome{}, fmt.Errorf("create attempt: %w", err)
}

func (s *ParticipationService) emit(out participation.Outcome, err error, elapsed time.Duration) {
	m := metrics.ParticipationMetric{
		Outcome:  string(out.Kind),
		Created:  out.Created,
		Duration: elapsed,
		Err:      err,
	}
	if out.Interview != nil {
		m.Category = string(out.Interview.Category)
	}
	metrics.EmitParticipation(s.metrics, m)
}
