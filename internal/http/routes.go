package httpx

import (
	"log/slog"
	"net/http"
	"strings"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Participation ParticipationInitiator
	Attempts      AttemptManager
	Interviews    InterviewManager
	// Auth is optional; without it only public routes are served and
	// participation always answers unauthorized.
	Auth AuthServiceInterface

	// BaseURL is the externally visible origin, e.g. https://app.example.com.
	BaseURL      string
	CookieDomain string
	// Readiness checks exposed on GET /readyz, keyed by dependency name.
	Readiness map[string]ReadinessCheck
	Logger    *slog.Logger
}

// NewRouter creates and configures the HTTP router with logging and panic recovery.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "http")

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", healthHandler)
	mux.HandleFunc("HEAD /healthz", healthHandler)
	mux.Handle("GET /readyz", readinessHandler(services.Readiness))

	var sessions SessionReader
	if services.Auth != nil {
		sessions = services.Auth
		registerAuthRoutes(mux, &AuthHandlers{
			Svc:          services.Auth,
			CallbackURL:  strings.TrimSuffix(services.BaseURL, "/") + "/auth/callback",
			CookieDomain: services.CookieDomain,
			Logger:       logger,
		})
	}

	if services.Participation != nil {
		h := &ParticipationHandlers{Svc: services.Participation, BaseURL: services.BaseURL, Logger: logger}
		mux.Handle("POST /api/interviews/{id}/participation", OptionalAuth(sessions)(http.HandlerFunc(h.Initiate)))
	}
	if services.Attempts != nil {
		registerAttemptRoutes(mux, &AttemptHandlers{Svc: services.Attempts, Logger: logger}, RequireUser(sessions))
	}
	if services.Interviews != nil {
		registerInterviewRoutes(mux, &InterviewHandlers{Svc: services.Interviews, Logger: logger}, RequireUser(sessions))
	}

	return Chain(mux, Recover(logger), Logging(logger))
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("GET /auth/login", h.Login)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("GET /auth/status", h.Status)
	mux.HandleFunc("POST /auth/logout", h.Logout)
}

func registerAttemptRoutes(mux *http.ServeMux, h *AttemptHandlers, mw func(http.Handler) http.Handler) {
	mux.Handle("GET /api/attempts/{id}", mw(http.HandlerFunc(h.Get)))
	mux.Handle("POST /api/attempts/{id}/start", mw(http.HandlerFunc(h.Start)))
	mux.Handle("POST /api/attempts/{id}/complete", mw(http.HandlerFunc(h.Complete)))
	mux.Handle("GET /api/interviews/{id}/attempts", mw(http.HandlerFunc(h.ListForInterview)))
}

func registerInterviewRoutes(mux *http.ServeMux, h *InterviewHandlers, mw func(http.Handler) http.Handler) {
	mux.Handle("POST /api/interviews", mw(http.HandlerFunc(h.Create)))
	mux.Handle("GET /api/interviews", mw(http.HandlerFunc(h.ListMine)))
	mux.Handle("GET /api/interviews/{id}", mw(http.HandlerFunc(h.GetByID)))
	mux.Handle("GET /api/usage", mw(http.HandlerFunc(h.Usage)))
}
