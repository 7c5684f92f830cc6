// Package devseed loads a small, repeatable data set for local development.
package devseed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/intervue/intervue-api/internal/core"
	"github.com/intervue/intervue-api/internal/data"
	"github.com/intervue/intervue-api/internal/domain/model"
)

// DefaultRecruiterSubject matches the default dev auth subject, so a mock login owns the seeded interviews.
const DefaultRecruiterSubject = "dev-user"

// Services bundles the repositories needed for development seeding.
type Services struct {
	Users      core.UserRepository
	Interviews core.InterviewRepository
	now        func() time.Time
}

// NewServices constructs seeding dependencies backed by db.
func NewServices(db *sql.DB) Services {
	return Services{
		Users:      data.NewUserRepo(db),
		Interviews: data.NewInterviewRepo(db),
	}
}

// Options controls who owns the seeded interviews.
type Options struct {
	RecruiterSubject string
	CandidateSubject string
}

// Result reports what a seed run changed.
type Result struct {
	Users             int
	InterviewsCreated int
	InterviewsSkipped int
}

// Run seeds a recruiter, a candidate and one interview per interesting participation path.
// Existing interviews are matched by title and left alone, so Run can be repeated.
func Run(ctx context.Context, svcs Services, opts Options, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	now := time.Now
	if svcs.now != nil {
		now = svcs.now
	}
	if opts.RecruiterSubject == "" {
		opts.RecruiterSubject = DefaultRecruiterSubject
	}
	if opts.CandidateSubject == "" {
		opts.CandidateSubject = "dev-candidate"
	}

	var res Result
	recruiter, err := svcs.Users.UpsertBySubject(ctx, &model.UpsertUserRequest{
		Subject: opts.RecruiterSubject,
		Email:   opts.RecruiterSubject + "@example.com",
		Name:    "Dev Recruiter",
	})
	if err != nil {
		return res, fmt.Errorf("seed recruiter: %w", err)
	}
	if _, err = svcs.Users.UpsertBySubject(ctx, &model.UpsertUserRequest{
		Subject: opts.CandidateSubject,
		Email:   opts.CandidateSubject + "@example.com",
		Name:    "Dev Candidate",
	}); err != nil {
		return res, fmt.Errorf("seed candidate: %w", err)
	}
	res.Users = 2

	existing, err := existingTitles(ctx, svcs.Interviews, recruiter.ID)
	if err != nil {
		return res, err
	}

	for _, req := range defaultInterviews(recruiter.ID, now()) {
		if existing[req.Title] {
			res.InterviewsSkipped++
			logger.InfoContext(ctx, "interview already exists", "title", req.Title)
			continue
		}
		iv, createErr := svcs.Interviews.Create(ctx, req)
		if createErr != nil {
			return res, fmt.Errorf("seed interview %q: %w", req.Title, createErr)
		}
		res.InterviewsCreated++
		logger.InfoContext(ctx, "created interview", "id", iv.ID, "title", iv.Title, "category", iv.Category)
	}
	return res, nil
}

func existingTitles(ctx context.Context, repo core.InterviewRepository, ownerID string) (map[string]bool, error) {
	const page = 100
	titles := make(map[string]bool)
	for offset := 0; ; offset += page {
		ivs, err := repo.ListByOwner(ctx, ownerID, page, offset)
		if err != nil {
			return nil, fmt.Errorf("list seeded interviews: %w", err)
		}
		for _, iv := range ivs {
			titles[iv.Title] = true
		}
		if len(ivs) < page {
			return titles, nil
		}
	}
}

func defaultInterviews(ownerID string, now time.Time) []*model.CreateInterviewRequest {
	nextWeek := now.Add(7 * 24 * time.Hour)
	// Already past its window; the first participation call or sweep flips it to expired.
	lapsed := now.Add(-time.Hour)
	return []*model.CreateInterviewRequest{
		{
			OwnerID:  ownerID,
			Title:    "Practice: behavioral round",
			Category: model.InterviewCategoryMock,
			Kind:     model.InterviewKindVoice,
		},
		{
			OwnerID:  ownerID,
			Title:    "Practice: SQL fundamentals",
			Category: model.InterviewCategoryMock,
			Kind:     model.InterviewKindMCQ,
		},
		{
			OwnerID:      ownerID,
			Title:        "Backend engineer phone screen",
			Category:     model.InterviewCategoryJob,
			Kind:         model.InterviewKindVoice,
			Status:       model.InterviewStatusScheduled,
			ValidateTill: &nextWeek,
		},
		{
			OwnerID:      ownerID,
			Title:        "Data engineer screen (closed)",
			Category:     model.InterviewCategoryJob,
			Kind:         model.InterviewKindVoice,
			ValidateTill: &lapsed,
		},
	}
}
