// Package participation holds the pure decision rules that govern whether a
// candidate may start, resume or retake an interview. Nothing here touches a
// store; services feed it records and act on the result.
package participation

import (
	"time"

	"github.com/intervue/intervue-api/internal/domain/model"
)

// IsExpired reports whether iv can no longer be attempted at now.
// An interview already marked expired stays expired. Otherwise it expires once
// ValidateTill is strictly before now; a nil ValidateTill never expires.
func IsExpired(iv *model.Interview, now time.Time) bool {
	if iv == nil {
		return false
	}
	if iv.Status == model.InterviewStatusExpired {
		return true
	}
	return iv.ValidateTill != nil && iv.ValidateTill.Before(now)
}

// NeedsExpiryWrite reports whether an expired interview still has to be
// persisted as expired. Callers that observe an already expired status must not write again.
func NeedsExpiryWrite(iv *model.Interview, now time.Time) bool {
	return IsExpired(iv, now) && iv.Status != model.InterviewStatusExpired
}
