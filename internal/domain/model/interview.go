//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxInterviewTitleLen = 255
)

// InterviewCategory determines the retake policy of an interview.
type InterviewCategory string

const (
	// InterviewCategoryMock is a self-practice interview that candidates may retake.
	InterviewCategoryMock InterviewCategory = "mock"
	// InterviewCategoryJob is a recruiter-assigned interview allowing a single completed attempt.
	InterviewCategoryJob InterviewCategory = "job"
)

// Valid reports whether the category is supported.
func (c InterviewCategory) Valid() bool {
	switch c {
	case InterviewCategoryMock, InterviewCategoryJob:
		return true
	default:
		return false
	}
}

// ParseInterviewCategory normalizes a category string and reports whether it is supported.
func ParseInterviewCategory(value string) (InterviewCategory, bool) {
	c := InterviewCategory(strings.ToLower(strings.TrimSpace(value)))
	if c.Valid() {
		return c, true
	}
	return "", false
}

// InterviewKind describes how the candidate answers: spoken (voice) or multiple choice (mcq).
type InterviewKind string

const (
	InterviewKindVoice InterviewKind = "voice"
	InterviewKindMCQ   InterviewKind = "mcq"
)

// Valid reports whether the kind is supported.
func (k InterviewKind) Valid() bool {
	return k == InterviewKindVoice || k == InterviewKindMCQ
}

// InterviewStatus is the authoring lifecycle state of an interview.
type InterviewStatus string

const (
	InterviewStatusPending   InterviewStatus = "pending"
	InterviewStatusCreated   InterviewStatus = "created"
	InterviewStatusScheduled InterviewStatus = "scheduled"
	InterviewStatusExpired   InterviewStatus = "expired"
)

// Valid reports whether the status is supported.
func (s InterviewStatus) Valid() bool {
	switch s {
	case InterviewStatusPending, InterviewStatusCreated, InterviewStatusScheduled, InterviewStatusExpired:
		return true
	default:
		return false
	}
}

// Interview is a set of questions a candidate is invited to attempt.
type Interview struct {
	ID           string            `json:"id"                      db:"id"`
	OwnerID      string            `json:"owner_id"                db:"owner_id"`
	Title        string            `json:"title"                   db:"title"`
	Category     InterviewCategory `json:"category"                db:"category"`
	Kind         InterviewKind     `json:"kind"                    db:"kind"`
	Status       InterviewStatus   `json:"status"                  db:"status"`
	ValidateTill *time.Time        `json:"validate_till,omitempty" db:"validate_till"`
	CreatedAt    time.Time         `json:"created_at"              db:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"              db:"updated_at"`
}

// CreateInterviewRequest represents parameters to create an Interview.
type CreateInterviewRequest struct {
	OwnerID      string            `json:"-"`
	Title        string            `json:"title"`
	Category     InterviewCategory `json:"category"`
	Kind         InterviewKind     `json:"kind,omitempty"`
	Status       InterviewStatus   `json:"status,omitempty"`
	ValidateTill *time.Time        `json:"validate_till,omitempty"`
}

// Validate validates CreateInterviewRequest and fills defaults for optional enums.
func (r *CreateInterviewRequest) Validate() error {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return errors.New("title is required and cannot be empty")
	}
	if utf8.RuneCountInString(title) > maxInterviewTitleLen {
		return errors.New("title cannot exceed 255 characters")
	}
	if strings.TrimSpace(r.OwnerID) == "" {
		return errors.New("owner_id is required")
	}
	if !r.Category.Valid() {
		return errors.New("category must be one of: mock, job")
	}
	if r.Kind == "" {
		r.Kind = InterviewKindVoice
	}
	if !r.Kind.Valid() {
		return errors.New("kind must be one of: voice, mcq")
	}
	if r.Status == "" {
		r.Status = InterviewStatusCreated
	}
	if r.Status == InterviewStatusExpired || !r.Status.Valid() {
		return errors.New("status must be one of: pending, created, scheduled")
	}
	r.Title = title
	return nil
}
