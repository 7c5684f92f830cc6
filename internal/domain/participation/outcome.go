package participation

import "github.com/intervue/intervue-api/internal/domain/model"

// OutcomeKind tags the result of a participation request.
type OutcomeKind string

const (
	OutcomeUnauthorized     OutcomeKind = "unauthorized"
	OutcomeNotFound         OutcomeKind = "not_found"
	OutcomeExpired          OutcomeKind = "expired"
	OutcomeAlreadyAttempted OutcomeKind = "already_attempted"
	OutcomeSuccess          OutcomeKind = "success"
)

// Outcome is the tagged result handed to the caller. AttemptID and Interview
// are set only for OutcomeSuccess; Interview is also set for OutcomeExpired and
// OutcomeAlreadyAttempted so callers can render context.
type Outcome struct {
	Kind      OutcomeKind
	AttemptID string
	Interview *model.Interview
	// Created reports whether this call created the attempt rather than resuming one.
	Created bool
}

// Succeeded reports whether the caller may proceed into the interview.
func (o Outcome) Succeeded() bool { return o.Kind == OutcomeSuccess }

// Unauthorized builds an OutcomeUnauthorized.
func Unauthorized() Outcome { return Outcome{Kind: OutcomeUnauthorized} }

// NotFound builds an OutcomeNotFound.
func NotFound() Outcome { return Outcome{Kind: OutcomeNotFound} }

// Expired builds an OutcomeExpired.
func Expired(iv *model.Interview) Outcome { return Outcome{Kind: OutcomeExpired, Interview: iv} }

// AlreadyAttempted builds an OutcomeAlreadyAttempted.
func AlreadyAttempted(iv *model.Interview) Outcome {
	return Outcome{Kind: OutcomeAlreadyAttempted, Interview: iv}
}

// Success builds an OutcomeSuccess.
func Success(attemptID string, iv *model.Interview, created bool) Outcome {
	return Outcome{Kind: OutcomeSuccess, AttemptID: attemptID, Interview: iv, Created: created}
}
