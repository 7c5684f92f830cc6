package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/intervue/intervue-api/internal/data/pgxutil"
	"github.com/intervue/intervue-api/internal/domain/model"
	apperrors "github.com/intervue/intervue-api/internal/errors"
)

const (
	userColumns = `id, subject, email, name, created_at, updated_at`

	userGetBySubjectQuery = `SELECT ` + userColumns + ` FROM users WHERE subject = $1`
	userGetByIDQuery      = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	userUpsertQuery = `
		INSERT INTO users (subject, email, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (subject) DO UPDATE
		SET email = EXCLUDED.email,
		    name = EXCLUDED.name,
		    updated_at = EXCLUDED.updated_at
		RETURNING ` + userColumns
)

// UserRepo provides database operations for users.
type UserRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewUserRepo creates a new UserRepo with real time provider.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db, timeProvider: RealTimeProvider{}}
}

// NewUserRepoWithTimeProvider creates a new UserRepo with a custom time provider (useful for tests).
func NewUserRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *UserRepo {
	return &UserRepo{DB: db, timeProvider: tp}
}

// GetBySubject retrieves a user by identity-provider subject.
func (r *UserRepo) GetBySubject(ctx context.Context, subject string) (*model.User, error) {
	if subject == "" {
		return nil, ErrUserNotFound
	}
	return r.getOne(ctx, userGetBySubjectQuery, subject)
}

// GetByID retrieves a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	if !validID(id) {
		return nil, ErrUserNotFound
	}
	return r.getOne(ctx, userGetByIDQuery, id)
}

// UpsertBySubject inserts the user or refreshes email and name when the subject is known.
func (r *UserRepo) UpsertBySubject(ctx context.Context, req *model.UpsertUserRequest) (*model.User, error) {
	if req == nil {
		return nil, errNilRequest
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid user")
	}

	u, err := pgxutil.QueryOne[model.User](ctx, r.DB, userUpsertQuery,
		req.Subject, req.Email, req.Name, r.timeProvider.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", apperrors.MapDBError(err))
	}
	return &u, nil
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg string) (*model.User, error) {
	u, err := pgxutil.QueryOne[model.User](ctx, r.DB, q, arg)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", apperrors.MapDBError(err))
	}
	return &u, nil
}
