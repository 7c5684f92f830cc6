//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "time"

// AttemptStatus is the per-attempt lifecycle state.
type AttemptStatus string

const (
	// AttemptStatusPending means the attempt was created but the candidate has not joined yet.
	AttemptStatusPending AttemptStatus = "pending"
	// AttemptStatusInProgress means the candidate joined the interview.
	AttemptStatusInProgress AttemptStatus = "in_progress"
	// AttemptStatusCompleted means feedback was recorded. Terminal.
	AttemptStatusCompleted AttemptStatus = "completed"
)

// Valid reports whether the status is supported.
func (s AttemptStatus) Valid() bool {
	switch s {
	case AttemptStatusPending, AttemptStatusInProgress, AttemptStatusCompleted:
		return true
	default:
		return false
	}
}

// IsOpen reports whether the attempt still counts against the one-open-attempt limit.
func (s AttemptStatus) IsOpen() bool {
	return s == AttemptStatusPending || s == AttemptStatusInProgress
}

// CanTransitionTo reports whether moving from s to next is allowed.
// The lifecycle only moves forward: pending -> in_progress -> completed.
func (s AttemptStatus) CanTransitionTo(next AttemptStatus) bool {
	switch s {
	case AttemptStatusPending:
		return next == AttemptStatusInProgress
	case AttemptStatusInProgress:
		return next == AttemptStatusCompleted
	default:
		return false
	}
}

// Attempt is one candidate's run at an interview (a "participant" record).
type Attempt struct {
	ID          string        `json:"id"                     db:"id"`
	InterviewID string        `json:"interview_id"           db:"interview_id"`
	UserID      string        `json:"user_id"                db:"user_id"`
	Status      AttemptStatus `json:"status"                 db:"status"`
	StartedAt   time.Time     `json:"started_at"             db:"started_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty" db:"completed_at"`
	Feedback    *string       `json:"feedback,omitempty"     db:"feedback"`
	CreatedAt   time.Time     `json:"created_at"             db:"created_at"`
}
