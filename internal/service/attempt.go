package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/intervue/intervue-api/internal/core"
	"github.com/intervue/intervue-api/internal/domain/model"
	apperrors "github.com/intervue/intervue-api/internal/errors"
	"github.com/intervue/intervue-api/internal/observability/metrics"
	"github.com/intervue/intervue-api/internal/observability/statsd"
)

const maxFeedbackLen = 10000

// ErrAttemptNotOwned is returned when the caller asks for an attempt that belongs to someone else.
var ErrAttemptNotOwned = apperrors.NotFound("attempt not found")

// AttemptServiceOptions groups dependencies for AttemptService.
type AttemptServiceOptions struct {
	Repo    core.AttemptRepository // Required
	Logger  *slog.Logger           // Optional
	Metrics statsd.Sink            // Optional
}

// AttemptService moves attempts through pending -> in_progress -> completed.
type AttemptService struct {
	repo    core.AttemptRepository
	logger  *slog.Logger
	metrics statsd.Sink
}

// NewAttemptService constructs a new AttemptService.
func NewAttemptService(opts AttemptServiceOptions) (*AttemptService, error) {
	if opts.Repo == nil {
		return nil, errors.New("AttemptRepository is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AttemptService{
		repo:    opts.Repo,
		logger:  logger.With("component", "attempt_service"),
		metrics: opts.Metrics,
	}, nil
}

// Start records that the candidate joined the interview.
func (s *AttemptService) Start(ctx context.Context, attemptID, userID string) (*model.Attempt, error) {
	a, err := s.repo.Transition(ctx, core.TransitionAttemptParams{
		AttemptID: attemptID,
		UserID:    userID,
		From:      model.AttemptStatusPending,
		To:        model.AttemptStatusInProgress,
	})
	metrics.EmitAttemptTransition(s.metrics, string(model.AttemptStatusInProgress), err)
	if err != nil {
		return nil, fmt.Errorf("start attempt: %w", err)
	}
	s.logger.InfoContext(ctx, "attempt started", "attempt_id", a.ID, "interview_id", a.InterviewID)
	return a, nil
}

// Complete stores feedback and closes the attempt. Blank feedback is stored as absent.
func (s *AttemptService) Complete(ctx context.Context, attemptID, userID, feedback string) (*model.Attempt, error) {
	feedback = strings.TrimSpace(feedback)
	if utf8.RuneCountInString(feedback) > maxFeedbackLen {
		return nil, apperrors.ValidationField("feedback", "feedback cannot exceed 10000 characters")
	}
	var fb *string
	if feedback != "" {
		fb = &feedback
	}

	a, err := s.repo.Transition(ctx, core.TransitionAttemptParams{
		AttemptID: attemptID,
		UserID:    userID,
		From:      model.AttemptStatusInProgress,
		To:        model.AttemptStatusCompleted,
		Feedback:  fb,
	})
	metrics.EmitAttemptTransition(s.metrics, string(model.AttemptStatusCompleted), err)
	if err != nil {
		return nil, fmt.Errorf("complete attempt: %w", err)
	}
	s.logger.InfoContext(ctx, "attempt completed", "attempt_id", a.ID, "interview_id", a.InterviewID)
	return a, nil
}

// Get returns the attempt when it belongs to userID.
func (s *AttemptService) Get(ctx context.Context, attemptID, userID string) (*model.Attempt, error) {
	a, err := s.repo.GetByID(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	if a.UserID != userID {
		return nil, ErrAttemptNotOwned
	}
	return a, nil
}

// ListHistory returns the caller's attempts at an interview, newest first.
func (s *AttemptService) ListHistory(ctx context.Context, interviewID, userID string) ([]model.Attempt, error) {
	history, err := s.repo.ListByInterviewAndUser(ctx, interviewID, userID)
	if err != nil {
		return nil, fmt.Errorf("list attempt history: %w", err)
	}
	return history, nil
}
