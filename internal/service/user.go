package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/intervue/intervue-api/internal/core"
	domainauth "github.com/intervue/intervue-api/internal/domain/auth"
	"github.com/intervue/intervue-api/internal/domain/model"
	"github.com/intervue/intervue-api/internal/ports"
)

// UserServiceOptions groups dependencies for UserService.
type UserServiceOptions struct {
	Repo   core.UserRepository // Required
	Logger *slog.Logger        // Optional
}

// UserService links identity-provider subjects to internal users.
type UserService struct {
	repo   core.UserRepository
	logger *slog.Logger
}

var _ ports.UserProvisioner = (*UserService)(nil)

// NewUserService constructs a new UserService.
func NewUserService(opts UserServiceOptions) (*UserService, error) {
	if opts.Repo == nil {
		return nil, errors.New("UserRepository is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{repo: opts.Repo, logger: logger.With("component", "user_service")}, nil
}

// Provision creates the user for id.Subject on first login and refreshes email and name afterwards.
func (s *UserService) Provision(ctx context.Context, id domainauth.Identity) (*model.User, error) {
	u, err := s.repo.UpsertBySubject(ctx, &model.UpsertUserRequest{
		Subject: id.Subject,
		Email:   id.Email,
		Name:    id.DisplayName(),
	})
	if err != nil {
		return nil, fmt.Errorf("provision user: %w", err)
	}
	s.logger.DebugContext(ctx, "user provisioned", "user_id", u.ID)
	return u, nil
}

// GetBySubject resolves an identity token to its user.
func (s *UserService) GetBySubject(ctx context.Context, subject string) (*model.User, error) {
	u, err := s.repo.GetBySubject(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}
