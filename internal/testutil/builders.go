package testutil

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/intervue/intervue-api/internal/domain/model"
)

// InterviewRequestBuilder provides a fluent interface for building CreateInterviewRequest values.
type InterviewRequestBuilder struct {
	req *model.CreateInterviewRequest
}

// NewInterviewRequest creates a builder for a mock voice interview owned by ownerID.
func NewInterviewRequest(ownerID string) *InterviewRequestBuilder {
	return &InterviewRequestBuilder{
		req: &model.CreateInterviewRequest{
			OwnerID:  ownerID,
			Title:    "Backend fundamentals",
			Category: model.InterviewCategoryMock,
			Kind:     model.InterviewKindVoice,
		},
	}
}

// WithTitle sets the title.
func (b *InterviewRequestBuilder) WithTitle(title string) *InterviewRequestBuilder {
	b.req.Title = title
	return b
}

// WithCategory sets the category.
func (b *InterviewRequestBuilder) WithCategory(c model.InterviewCategory) *InterviewRequestBuilder {
	b.req.Category = c
	return b
}

// WithKind sets the kind.
func (b *InterviewRequestBuilder) WithKind(k model.InterviewKind) *InterviewRequestBuilder {
	b.req.Kind = k
	return b
}

// WithStatus sets the authoring status.
func (b *InterviewRequestBuilder) WithStatus(s model.InterviewStatus) *InterviewRequestBuilder {
	b.req.Status = s
	return b
}

// WithValidateTill sets the expiry deadline.
func (b *InterviewRequestBuilder) WithValidateTill(t time.Time) *InterviewRequestBuilder {
	b.req.ValidateTill = &t
	return b
}

// Build returns the request.
func (b *InterviewRequestBuilder) Build() *model.CreateInterviewRequest {
	return b.req
}

// SeedUser inserts a user with a random subject and returns its id.
func SeedUser(t TestingTB, db *sql.DB) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var id string
	subject := "subject-" + uuid.NewString()
	err := db.QueryRowContext(ctx,
		`INSERT INTO users (subject, email, name) VALUES ($1, $2, $3) RETURNING id`,
		subject, subject+"@example.com", "Test User",
	).Scan(&id)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return id
}

// SeedInterview inserts an interview owned by ownerID, bypassing request validation so tests
// can create rows in any status.
func SeedInterview(
	t TestingTB,
	db *sql.DB,
	ownerID string,
	category model.InterviewCategory,
	status model.InterviewStatus,
	validateTill *time.Time,
) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var id string
	err := db.QueryRowContext(ctx, `
		INSERT INTO interviews (owner_id, title, category, kind, status, validate_till)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		ownerID, "Seeded interview", string(category), string(model.InterviewKindVoice), string(status), validateTill,
	).Scan(&id)
	if err != nil {
		t.Fatalf("seed interview: %v", err)
	}
	return id
}
