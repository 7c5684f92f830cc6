package participation

import (
	"github.com/intervue/intervue-api/internal/domain/model"
)

// Action is what the caller must do after a decision.
type Action string

const (
	// ActionCreate means a fresh pending attempt must be created.
	ActionCreate Action = "create"
	// ActionResume means an existing open attempt (AttemptID) must be handed back.
	ActionResume Action = "resume"
	// ActionBlock means the candidate may not attempt the interview again.
	ActionBlock Action = "block"
)

// Decision is the result of evaluating attempt history against the retake policy.
type Decision struct {
	Action    Action
	AttemptID string
}

// Decide applies the retake policy of category to history, which must be ordered newest first.
//
//   - no history: create.
//   - latest pending or in_progress: resume it (both categories).
//   - job, latest completed: block; a job interview allows one completed attempt ever.
//   - mock, latest completed: resume any pending attempt found anywhere in history, else create.
func Decide(category model.InterviewCategory, history []model.Attempt) Decision {
	if len(history) == 0 {
		return Decision{Action: ActionCreate}
	}

	latest := history[0]
	if latest.Status.IsOpen() {
		return Decision{Action: ActionResume, AttemptID: latest.ID}
	}

	if category == model.InterviewCategoryJob {
		return Decision{Action: ActionBlock}
	}

	if pending, ok := FindOpen(history); ok {
		return Decision{Action: ActionResume, AttemptID: pending.ID}
	}
	return Decision{Action: ActionCreate}
}

// FindOpen returns the newest pending attempt in history, falling back to the
// newest in-progress one.
func FindOpen(history []model.Attempt) (model.Attempt, bool) {
	for _, a := range history {
		if a.Status == model.AttemptStatusPending {
			return a, true
		}
	}
	for _, a := range history {
		if a.Status == model.AttemptStatusInProgress {
			return a, true
		}
	}
	return model.Attempt{}, false
}
