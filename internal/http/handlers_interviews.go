package httpx

import (
	"context"
	"log/slog"
	"net/http"

	domainauth "github.com/intervue/intervue-api/internal/domain/auth"
	"github.com/intervue/intervue-api/internal/domain/model"
)

const (
	defaultInterviewPage = 50
	maxInterviewPage     = 200
)

// InterviewManager authors and looks up interviews.
type InterviewManager interface {
	Create(ctx context.Context, owner domainauth.Session, req *model.CreateInterviewRequest) (*model.Interview, error)
	GetByID(ctx context.Context, id string) (*model.Interview, error)
	ListMine(ctx context.Context, ownerID string, limit, offset int) ([]*model.Interview, error)
	Remaining(ctx context.Context, ownerID string) (int, error)
}

// InterviewHandlers serves /api/interviews. Every route runs behind RequireUser.
type InterviewHandlers struct {
	Svc    InterviewManager
	Logger *slog.Logger
}

// Create handles POST /api/interviews.
func (h *InterviewHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateInterviewRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	session, _ := GetUserSessionFromContext(r.Context())
	if session == nil {
		session = &domainauth.Session{}
	}
	iv, err := h.Svc.Create(r.Context(), *session, &req)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	w.Header().Set("Location", "/api/interviews/"+iv.ID)
	WriteJSON(w, http.StatusCreated, iv)
}

// GetByID handles GET /api/interviews/{id}.
func (h *InterviewHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	iv, err := h.Svc.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, iv)
}

// ListMine handles GET /api/interviews?limit=&offset=.
func (h *InterviewHandlers) ListMine(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, defaultInterviewPage, maxInterviewPage)
	list, err := h.Svc.ListMine(r.Context(), sessionUserID(r), limit, offset)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	if list == nil {
		list = []*model.Interview{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"interviews": list, "limit": limit, "offset": offset})
}

type usageResponse struct {
	Unlimited bool `json:"unlimited"`
	Remaining int  `json:"remaining"`
}

// Usage handles GET /api/usage.
func (h *InterviewHandlers) Usage(w http.ResponseWriter, r *http.Request) {
	left, err := h.Svc.Remaining(r.Context(), sessionUserID(r))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	if left < 0 {
		WriteJSON(w, http.StatusOK, usageResponse{Unlimited: true})
		return
	}
	WriteJSON(w, http.StatusOK, usageResponse{Remaining: left})
}
