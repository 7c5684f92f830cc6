package data

import (
	"errors"

	"github.com/google/uuid"

	apperrors "github.com/intervue/intervue-api/internal/errors"
)

// Shared sentinel errors for data-layer repositories. They are AppErrors so
// services can classify them with apperrors.IsNotFound / IsConflict.
var (
	ErrUserNotFound      = apperrors.NotFound("user not found")
	ErrInterviewNotFound = apperrors.NotFound("interview not found")
	ErrAttemptNotFound   = apperrors.NotFound("attempt not found")

	// ErrOpenAttemptExists is returned when a pending or in-progress attempt already exists for the pair.
	ErrOpenAttemptExists = apperrors.Conflict("an open attempt already exists for this interview")
	// ErrAttemptStateChanged is returned when a transition finds the attempt in an unexpected status.
	ErrAttemptStateChanged = apperrors.Conflict("attempt is not in the expected status")

	errNilRequest = errors.New("request is required")
)

// validID reports whether id can be compared against a UUID column.
// Malformed ids are treated as missing rows instead of driver errors.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
