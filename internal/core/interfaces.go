// Package core defines the ports (repository interfaces) that services depend on.
// The data layer provides implementations; services never import it directly.
package core

import (
	"context"
	"time"

	"github.com/intervue/intervue-api/internal/domain/model"
)

// UserRepository resolves identity-provider subjects to internal users.
type UserRepository interface {
	// GetBySubject returns the user linked to subject or a not-found AppError.
	GetBySubject(ctx context.Context, subject string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	// UpsertBySubject creates the user on first sight and refreshes email/name afterwards.
	UpsertBySubject(ctx context.Context, req *model.UpsertUserRequest) (*model.User, error)
}

// InterviewRepository defines the interface for interview data operations.
type InterviewRepository interface {
	Create(ctx context.Context, req *model.CreateInterviewRequest) (*model.Interview, error)
	GetByID(ctx context.Context, id string) (*model.Interview, error)
	// MarkExpired flips status to expired unless it already is. It reports whether a row changed,
	// so concurrent callers observe exactly one write.
	MarkExpired(ctx context.Context, id string) (bool, error)
	// CountCreatedSince counts interviews owned by ownerID created at or after since.
	CountCreatedSince(ctx context.Context, ownerID string, since time.Time) (int, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*model.Interview, error)
}

// ExpireOverdueParams groups parameters for InterviewExpiryRepository.ExpireOverdue.
type ExpireOverdueParams struct {
	Now       time.Time
	BatchSize int
}

// InterviewExpiryRepository defines bulk expiry used by the background sweeper.
type InterviewExpiryRepository interface {
	// ExpireOverdue marks up to BatchSize interviews whose validate_till is before Now as expired
	// and returns how many rows changed.
	ExpireOverdue(ctx context.Context, params ExpireOverdueParams) (int64, error)
}

// CreateAttemptParams groups parameters for AttemptRepository.CreatePending.
type CreateAttemptParams struct {
	InterviewID string
	UserID      string
	StartedAt   time.Time
}

// TransitionAttemptParams groups parameters for AttemptRepository.Transition.
type TransitionAttemptParams struct {
	AttemptID string
	UserID    string
	From      model.AttemptStatus
	To        model.AttemptStatus
	// Feedback is stored when To is completed.
	Feedback *string
	At       time.Time
}

// AttemptRepository defines the interface for attempt (participant) data operations.
type AttemptRepository interface {
	// ListByInterviewAndUser returns the attempt history for the pair, newest first.
	ListByInterviewAndUser(ctx context.Context, interviewID, userID string) ([]model.Attempt, error)
	// CreatePending inserts a pending attempt. When another open attempt already exists for
	// the pair it returns a conflict AppError and writes nothing.
	CreatePending(ctx context.Context, params CreateAttemptParams) (*model.Attempt, error)
	GetByID(ctx context.Context, id string) (*model.Attempt, error)
	// Transition moves an attempt owned by UserID from From to To. It returns a conflict
	// AppError when the attempt is no longer in From.
	Transition(ctx context.Context, params TransitionAttemptParams) (*model.Attempt, error)
}
