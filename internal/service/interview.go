package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/intervue/intervue-api/config"
	"github.com/intervue/intervue-api/internal/core"
	domainauth "github.com/intervue/intervue-api/internal/domain/auth"
	"github.com/intervue/intervue-api/internal/domain/model"
	apperrors "github.com/intervue/intervue-api/internal/errors"
)

var (
	// ErrQuotaExceeded is returned when the owner has used every interview credit in the current period.
	ErrQuotaExceeded = apperrors.QuotaExceeded("interview credits exhausted for this period")
	// ErrJobInterviewForbidden is returned when a non-recruiter tries to author a job interview.
	ErrJobInterviewForbidden = apperrors.Forbidden("only recruiters may create job interviews")
)

// UsagePolicy gates interview creation with a per-owner credit quota over a rolling period.
type UsagePolicy struct {
	repo core.InterviewRepository
	cfg  config.UsageConfig
	now  func() time.Time
}

// NewUsagePolicy constructs a UsagePolicy. A disabled config always allows creation.
func NewUsagePolicy(repo core.InterviewRepository, cfg config.UsageConfig, now func() time.Time) *UsagePolicy {
	if now == nil {
		now = time.Now
	}
	return &UsagePolicy{repo: repo, cfg: cfg, now: now}
}

// Remaining returns how many interviews ownerID may still create in the current period.
// It returns -1 when the quota is disabled.
func (p *UsagePolicy) Remaining(ctx context.Context, ownerID string) (int, error) {
	if p == nil || !p.cfg.Enabled() {
		return -1, nil
	}
	used, err := p.repo.CountCreatedSince(ctx, ownerID, p.now().Add(-p.cfg.Period))
	if err != nil {
		return 0, fmt.Errorf("count interviews: %w", err)
	}
	return max(p.cfg.InterviewCredits-used, 0), nil
}

// Check returns ErrQuotaExceeded when ownerID has no credits left.
func (p *UsagePolicy) Check(ctx context.Context, ownerID string) error {
	left, err := p.Remaining(ctx, ownerID)
	if err != nil {
		return err
	}
	if left == 0 {
		return ErrQuotaExceeded
	}
	return nil
}

// InterviewServiceOptions groups dependencies for InterviewService.
type InterviewServiceOptions struct {
	Repo   core.InterviewRepository // Required
	Usage  *UsagePolicy             // Optional: nil disables the quota
	Logger *slog.Logger             // Optional
}

// InterviewService provides interview authoring and lookup.
type InterviewService struct {
	repo   core.InterviewRepository
	usage  *UsagePolicy
	logger *slog.Logger
}

// NewInterviewService constructs a new InterviewService.
func NewInterviewService(opts InterviewServiceOptions) (*InterviewService, error) {
	if opts.Repo == nil {
		return nil, errors.New("InterviewRepository is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &InterviewService{
		repo:   opts.Repo,
		usage:  opts.Usage,
		logger: logger.With("component", "interview_service"),
	}, nil
}

// Create authors an interview owned by the session's user.
func (s *InterviewService) Create(
	ctx context.Context,
	owner domainauth.Session,
	req *model.CreateInterviewRequest,
) (*model.Interview, error) {
	if req == nil {
		return nil, apperrors.Validation("request body is required")
	}
	if owner.UserID == "" {
		return nil, apperrors.Forbidden("session is not linked to a user")
	}
	req.OwnerID = owner.UserID
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid interview")
	}
	if req.Category == model.InterviewCategoryJob && !owner.CanAuthorJobInterviews() {
		return nil, ErrJobInterviewForbidden
	}
	if err := s.usage.Check(ctx, owner.UserID); err != nil {
		return nil, fmt.Errorf("check usage: %w", err)
	}

	iv, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create interview: %w", err)
	}
	s.logger.InfoContext(ctx, "interview created",
		"interview_id", iv.ID, "owner_id", iv.OwnerID, "category", iv.Category)
	return iv, nil
}

// GetByID retrieves an interview by ID.
func (s *InterviewService) GetByID(ctx context.Context, id string) (*model.Interview, error) {
	iv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get interview: %w", err)
	}
	return iv, nil
}

// ListMine lists interviews authored by ownerID.
func (s *InterviewService) ListMine(ctx context.Context, ownerID string, limit, offset int) ([]*model.Interview, error) {
	if limit > 200 {
		limit = 200
	}
	list, err := s.repo.ListByOwner(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list interviews: %w", err)
	}
	return list, nil
}

// Remaining reports the caller's interview credits left this period, -1 when unlimited.
func (s *InterviewService) Remaining(ctx context.Context, ownerID string) (int, error) {
	return s.usage.Remaining(ctx, ownerID)
}
