package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/intervue/intervue-api/internal/domain/auth"
	mocks "github.com/intervue/intervue-api/internal/mocks/auth"
	"github.com/intervue/intervue-api/internal/ports"
)

// failingSessionStore is a test helper for session store errors.
type failingSessionStore struct {
	saveErr   error
	getFunc   func(context.Context, string) (domainauth.Session, error)
	deleteErr error
}

func (m *failingSessionStore) Save(context.Context, domainauth.Session) error { return m.saveErr }

func (m *failingSessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return domainauth.Session{}, nil
}

func (m *failingSessionStore) Delete(context.Context, string) error { return m.deleteErr }

func roleMapper() mocks.StaticRoleMapper {
	return mocks.StaticRoleMapper{RecruiterGroup: "recruiters", CandidateGroup: "candidates"}
}

func TestAuthService_BeginLogin(t *testing.T) {
	svc := NewAuthService(AuthServiceOptions{
		Provider: mocks.NewMockAuthProvider(),
		Sessions: mocks.NewMemorySessionStore(),
		Roles:    roleMapper(),
	})

	res, err := svc.BeginLogin(context.Background(), "http://localhost:8080/auth/callback")
	require.NoError(t, err)
	assert.Equal(t, "https://mock-idp/auth", res.AuthURL)
	assert.Equal(t, "state-1", res.State)
	assert.Equal(t, "nonce-1", res.Nonce)

	_, err = svc.BeginLogin(context.Background(), "")
	assert.Error(t, err)
}

func TestAuthService_CompleteLogin(t *testing.T) {
	t.Run("provisions user and stores session", func(t *testing.T) {
		sessions := mocks.NewMemorySessionStore()
		users := mocks.NewMemoryProvisioner()
		svc := NewAuthService(AuthServiceOptions{
			Provider: mocks.NewMockAuthProvider(),
			Sessions: sessions,
			Roles:    roleMapper(),
			Users:    users,
		})

		sess, err := svc.CompleteLogin(context.Background(), CompleteLoginInput{Code: "c", State: "s", Nonce: "n"})
		require.NoError(t, err)
		assert.NotEmpty(t, sess.ID)
		assert.Equal(t, "mock-candidate-1", sess.Subject)
		assert.Equal(t, domainauth.RoleCandidate, sess.Role)

		u, ok := users.Lookup("mock-candidate-1")
		require.True(t, ok)
		assert.Equal(t, u.ID, sess.UserID)
		assert.Equal(t, "Mock Candidate", u.Name)
		assert.Equal(t, 1, sessions.Len())
	})

	t.Run("missing parameters", func(t *testing.T) {
		svc := NewAuthService(AuthServiceOptions{Provider: mocks.NewMockAuthProvider(), Roles: roleMapper()})
		for _, in := range []CompleteLoginInput{
			{State: "s", Nonce: "n"},
			{Code: "c", Nonce: "n"},
			{Code: "c", State: "s"},
		} {
			_, err := svc.CompleteLogin(context.Background(), in)
			assert.Error(t, err)
		}
	})

	t.Run("identity without subject rejected", func(t *testing.T) {
		provider := mocks.NewMockAuthProvider()
		provider.ExchangeFunc = func(context.Context, ports.ExchangeInput) (domainauth.Identity, error) {
			return domainauth.Identity{Email: "x@example.com"}, nil
		}
		svc := NewAuthService(AuthServiceOptions{Provider: provider, Sessions: mocks.NewMemorySessionStore(), Roles: roleMapper()})
		_, err := svc.CompleteLogin(context.Background(), CompleteLoginInput{Code: "c", State: "s", Nonce: "n"})
		assert.Error(t, err)
	})

	t.Run("provisioning failure", func(t *testing.T) {
		users := mocks.NewMemoryProvisioner()
		users.Err = errors.New("db down")
		sessions := mocks.NewMemorySessionStore()
		svc := NewAuthService(AuthServiceOptions{
			Provider: mocks.NewMockAuthProvider(), Sessions: sessions, Roles: roleMapper(), Users: users,
		})
		_, err := svc.CompleteLogin(context.Background(), CompleteLoginInput{Code: "c", State: "s", Nonce: "n"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "provision user")
		assert.Zero(t, sessions.Len())
	})

	t.Run("session save failure", func(t *testing.T) {
		svc := NewAuthService(AuthServiceOptions{
			Provider: mocks.NewMockAuthProvider(),
			Sessions: &failingSessionStore{saveErr: errors.New("redis down")},
			Roles:    roleMapper(),
		})
		_, err := svc.CompleteLogin(context.Background(), CompleteLoginInput{Code: "c", State: "s", Nonce: "n"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "save session")
	})
}

func TestAuthService_GetSession(t *testing.T) {
	t.Run("live session", func(t *testing.T) {
		sessions := mocks.NewMemorySessionStore()
		require.NoError(t, sessions.Save(context.Background(), domainauth.Session{ID: "s1", ExpiresAt: time.Now().Add(time.Hour)}))
		svc := NewAuthService(AuthServiceOptions{Sessions: sessions})

		sess, err := svc.GetSession(context.Background(), "s1")
		require.NoError(t, err)
		assert.Equal(t, "s1", sess.ID)
	})

	t.Run("expired session is deleted", func(t *testing.T) {
		sessions := mocks.NewMemorySessionStore()
		require.NoError(t, sessions.Save(context.Background(), domainauth.Session{ID: "s1", ExpiresAt: time.Now().Add(-time.Minute)}))
		svc := NewAuthService(AuthServiceOptions{Sessions: sessions})

		_, err := svc.GetSession(context.Background(), "s1")
		require.ErrorIs(t, err, ErrSessionExpired)
		assert.Zero(t, sessions.Len())
	})

	t.Run("expired session delete failure joins errors", func(t *testing.T) {
		svc := NewAuthService(AuthServiceOptions{Sessions: &failingSessionStore{
			getFunc: func(context.Context, string) (domainauth.Session, error) {
				return domainauth.Session{ID: "s1", ExpiresAt: time.Now().Add(-time.Minute)}, nil
			},
			deleteErr: errors.New("redis down"),
		}})
		_, err := svc.GetSession(context.Background(), "s1")
		require.ErrorIs(t, err, ErrSessionExpired)
		assert.Contains(t, err.Error(), "delete session")
	})

	t.Run("empty id", func(t *testing.T) {
		svc := NewAuthService(AuthServiceOptions{Sessions: mocks.NewMemorySessionStore()})
		_, err := svc.GetSession(context.Background(), "")
		assert.Error(t, err)
	})
}

func TestAuthService_Logout(t *testing.T) {
	sessions := mocks.NewMemorySessionStore()
	require.NoError(t, sessions.Save(context.Background(), domainauth.Session{ID: "s1", ExpiresAt: time.Now().Add(time.Hour)}))
	svc := NewAuthService(AuthServiceOptions{Sessions: sessions})

	require.NoError(t, svc.Logout(context.Background(), ""))
	require.NoError(t, svc.Logout(context.Background(), "s1"))
	assert.Zero(t, sessions.Len())

	failing := NewAuthService(AuthServiceOptions{Sessions: &failingSessionStore{deleteErr: errors.New("x")}})
	assert.Error(t, failing.Logout(context.Background(), "s1"))
}
