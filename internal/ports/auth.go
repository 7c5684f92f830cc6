// Package ports defines interfaces (hexagonal ports) for identity and session behavior.
// Implementations live in internal/adapters and internal/service; orchestration in internal/service.
package ports

import (
	"context"

	domainauth "github.com/intervue/intervue-api/internal/domain/auth"
	"github.com/intervue/intervue-api/internal/domain/model"
)

// BeginInput carries inputs for initiating a login.
type BeginInput struct {
	RedirectURL string
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// AuthProvider initiates and completes a login against an identity provider.
type AuthProvider interface {
	// Begin returns the provider auth URL plus the opaque state and nonce to verify on callback.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange verifies state and nonce, redeems the code and returns the identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// SessionStore persists and retrieves user sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// RoleMapper maps provider groups to application roles.
type RoleMapper interface {
	Map(groups []string) domainauth.Role
}

// UserProvisioner links an identity-provider subject to an internal User,
// creating the account on first login.
type UserProvisioner interface {
	Provision(ctx context.Context, id domainauth.Identity) (*model.User, error)
}
