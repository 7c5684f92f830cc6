package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/intervue/intervue-api/internal/domain/auth"
	"github.com/intervue/intervue-api/internal/ports"
)

func TestMockAuthProvider_Begin_Defaults(t *testing.T) {
	provider := NewMockAuthProvider()
	ctx := context.Background()
	input := ports.BeginInput{RedirectURL: "http://localhost:8080/auth/callback"}

	authURL, state, nonce, err := provider.Begin(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "https://mock-idp/auth", authURL)
	assert.Equal(t, "state-1", state)
	assert.Equal(t, "nonce-1", nonce)

	_, state2, nonce2, err := provider.Begin(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "state-2", state2)
	assert.Equal(t, "nonce-2", nonce2)
}

func TestMockAuthProvider_Begin_CustomFunc(t *testing.T) {
	provider := &MockAuthProvider{
		BeginFunc: func(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
			return "custom-url", "custom-state", "custom-nonce", nil
		},
	}

	authURL, state, nonce, err := provider.Begin(context.Background(), ports.BeginInput{})
	require.NoError(t, err)
	assert.Equal(t, "custom-url", authURL)
	assert.Equal(t, "custom-state", state)
	assert.Equal(t, "custom-nonce", nonce)
}

func TestMockAuthProvider_Exchange_Defaults(t *testing.T) {
	provider := &MockAuthProvider{}

	identity, err := provider.Exchange(context.Background(), ports.ExchangeInput{Code: "c"})
	require.NoError(t, err)
	assert.Equal(t, "mock-candidate-1", identity.Subject)
	assert.Equal(t, []string{"candidates"}, identity.Groups)
	assert.True(t, identity.ExpiresAt.After(time.Now()))
}

func TestMemorySessionStore_Lifecycle(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	sess := domainauth.Session{
		ID:        "s1",
		Subject:   "sub-1",
		Role:      domainauth.RoleCandidate,
		ExpiresAt: time.Now().Add(30 * time.Minute),
	}
	require.NoError(t, store.Save(ctx, sess))
	assert.Equal(t, 1, store.Len())

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, sess.Subject, got.Subject)

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Get(ctx, "s1")
	assert.Equal(t, ErrNotFound, err)

	assert.Error(t, store.Save(ctx, domainauth.Session{}))
	assert.NoError(t, store.Delete(ctx, ""))
}

func TestMemoryProvisioner_ProvisionIsIdempotentPerSubject(t *testing.T) {
	p := NewMemoryProvisioner()
	ctx := context.Background()

	first, err := p.Provision(ctx, domainauth.Identity{Subject: "sub-1", FirstName: "Ada", Email: "a@example.com"})
	require.NoError(t, err)
	second, err := p.Provision(ctx, domainauth.Identity{Subject: "sub-1", FirstName: "Ada", LastName: "L", Email: "b@example.com"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "b@example.com", second.Email)
	assert.Equal(t, "Ada L", second.Name)

	u, ok := p.Lookup("sub-1")
	require.True(t, ok)
	assert.Equal(t, first.ID, u.ID)
}

func TestMemoryProvisioner_Err(t *testing.T) {
	p := &MemoryProvisioner{Err: errors.New("boom")}
	_, err := p.Provision(context.Background(), domainauth.Identity{Subject: "s"})
	assert.EqualError(t, err, "boom")
}
