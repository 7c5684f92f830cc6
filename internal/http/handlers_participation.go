package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/intervue/intervue-api/internal/domain/model"
	"github.com/intervue/intervue-api/internal/domain/participation"
)

// ParticipationInitiator decides whether the caller may enter an interview.
type ParticipationInitiator interface {
	Initiate(ctx context.Context, interviewID, subject string) (*participation.Outcome, error)
}

// ParticipationHandlers exposes the participation flow over HTTP.
type ParticipationHandlers struct {
	Svc ParticipationInitiator
	// BaseURL prefixes the login link returned to anonymous callers.
	BaseURL string
	Logger  *slog.Logger
}

type participationResponse struct {
	Outcome   participation.OutcomeKind `json:"outcome"`
	AttemptID string                    `json:"attempt_id,omitempty"`
	Created   *bool                     `json:"created,omitempty"`
	Interview *model.Interview          `json:"interview,omitempty"`
	LoginURL  string                    `json:"login_url,omitempty"`
}

// outcomeStatus maps each outcome to its HTTP status.
var outcomeStatus = map[participation.OutcomeKind]int{
	participation.OutcomeSuccess:          http.StatusOK,
	participation.OutcomeUnauthorized:     http.StatusUnauthorized,
	participation.OutcomeNotFound:         http.StatusNotFound,
	participation.OutcomeExpired:          http.StatusGone,
	participation.OutcomeAlreadyAttempted: http.StatusConflict,
}

// Initiate handles POST /api/interviews/{id}/participation.
// Business outcomes are rendered with their own status; only store failures are 5xx.
func (h *ParticipationHandlers) Initiate(w http.ResponseWriter, r *http.Request) {
	interviewID := r.PathValue("id")

	out, err := h.Svc.Initiate(r.Context(), interviewID, callerSubject(r.Context()))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}

	resp := participationResponse{Outcome: out.Kind}
	switch out.Kind {
	case participation.OutcomeSuccess:
		created := out.Created
		resp.AttemptID = out.AttemptID
		resp.Created = &created
		resp.Interview = out.Interview
	case participation.OutcomeUnauthorized:
		resp.LoginURL = loginURL(h.BaseURL, "/interviews/"+interviewID)
	case participation.OutcomeExpired, participation.OutcomeAlreadyAttempted:
		resp.Interview = out.Interview
	}

	status, ok := outcomeStatus[out.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	WriteJSON(w, status, resp)
}
