package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/intervue/intervue-api/internal/domain/model"
)

// AttemptManager moves a caller's attempts through their lifecycle.
type AttemptManager interface {
	Start(ctx context.Context, attemptID, userID string) (*model.Attempt, error)
	Complete(ctx context.Context, attemptID, userID, feedback string) (*model.Attempt, error)
	Get(ctx context.Context, attemptID, userID string) (*model.Attempt, error)
	ListHistory(ctx context.Context, interviewID, userID string) ([]model.Attempt, error)
}

// AttemptHandlers serves /api/attempts and the per-interview attempt history.
// Every route runs behind RequireUser.
type AttemptHandlers struct {
	Svc    AttemptManager
	Logger *slog.Logger
}

type completeAttemptRequest struct {
	Feedback string `json:"feedback"`
}

func sessionUserID(r *http.Request) string {
	s, _ := GetUserSessionFromContext(r.Context())
	if s == nil {
		return ""
	}
	return s.UserID
}

// Get handles GET /api/attempts/{id}.
func (h *AttemptHandlers) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.Svc.Get(r.Context(), r.PathValue("id"), sessionUserID(r))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, a)
}

// Start handles POST /api/attempts/{id}/start.
func (h *AttemptHandlers) Start(w http.ResponseWriter, r *http.Request) {
	a, err := h.Svc.Start(r.Context(), r.PathValue("id"), sessionUserID(r))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, a)
}

// Complete handles POST /api/attempts/{id}/complete with an optional {"feedback": "..."} body.
func (h *AttemptHandlers) Complete(w http.ResponseWriter, r *http.Request) {
	var req completeAttemptRequest
	if !DecodeOptionalJSON(w, r, &req) {
		return
	}
	a, err := h.Svc.Complete(r.Context(), r.PathValue("id"), sessionUserID(r), req.Feedback)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, a)
}

// ListForInterview handles GET /api/interviews/{id}/attempts, newest first.
func (h *AttemptHandlers) ListForInterview(w http.ResponseWriter, r *http.Request) {
	list, err := h.Svc.ListHistory(r.Context(), r.PathValue("id"), sessionUserID(r))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	if list == nil {
		list = []model.Attempt{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"attempts": list})
}
