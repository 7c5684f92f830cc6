// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domainauth "github.com/intervue/intervue-api/internal/domain/auth"
	"github.com/intervue/intervue-api/internal/domain/model"
	"github.com/intervue/intervue-api/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider    = (*MockAuthProvider)(nil)
	_ ports.SessionStore    = (*MemorySessionStore)(nil)
	_ ports.RoleMapper      = (*StaticRoleMapper)(nil)
	_ ports.UserProvisioner = (*MemoryProvisioner)(nil)
)

func defaultIdentity() domainauth.Identity {
	return domainauth.Identity{
		Subject:   "mock-candidate-1",
		FirstName: "Mock",
		LastName:  "Candidate",
		Email:     "mock.candidate@example.com",
		Groups:    []string{"candidates"},
	}
}

// MockAuthProvider simulates an IdP for tests with deterministic state/nonce handling.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)

	AuthURL     string
	StatePrefix string
	NoncePrefix string
	DefaultUser domainauth.Identity

	mu        sync.Mutex
	callCount int
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	id := defaultIdentity()
	id.ExpiresAt = time.Now().Add(time.Hour)
	return &MockAuthProvider{
		AuthURL:     "https://mock-idp/auth",
		StatePrefix: "state",
		NoncePrefix: "nonce",
		DefaultUser: id,
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}

	m.mu.Lock()
	m.callCount++
	n := m.callCount
	m.mu.Unlock()

	authURL := m.AuthURL
	if authURL == "" {
		authURL = "https://mock-idp/auth"
	}
	statePrefix := m.StatePrefix
	if statePrefix == "" {
		statePrefix = "state"
	}
	noncePrefix := m.NoncePrefix
	if noncePrefix == "" {
		noncePrefix = "nonce"
	}

	return authURL, fmt.Sprintf("%s-%d", statePrefix, n), fmt.Sprintf("%s-%d", noncePrefix, n), nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}

	id := m.DefaultUser
	if id.Subject == "" {
		id = defaultIdentity()
	}
	id.ExpiresAt = time.Now().Add(time.Hour)
	return id, nil
}

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]domainauth.Session)}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	if id == "" || !ok {
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	if id == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len returns the number of stored sessions.
func (m *MemorySessionStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

type notFoundError struct{}

func (notFoundError) Error() string { return "not found" }

// ErrNotFound is returned by doubles when an entity is not present.
var ErrNotFound error = notFoundError{}

// StaticRoleMapper maps groups by simple string membership rules.
type StaticRoleMapper struct {
	RecruiterGroup string
	CandidateGroup string
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	for _, g := range groups {
		if m.RecruiterGroup != "" && g == m.RecruiterGroup {
			return domainauth.RoleRecruiter
		}
	}
	for _, g := range groups {
		if m.CandidateGroup != "" && g == m.CandidateGroup {
			return domainauth.RoleCandidate
		}
	}
	return domainauth.RoleGuest
}

// MemoryProvisioner keeps provisioned users in memory, keyed by subject.
type MemoryProvisioner struct {
	Err error

	mu    sync.Mutex
	users map[string]*model.User
}

// NewMemoryProvisioner creates an empty MemoryProvisioner.
func NewMemoryProvisioner() *MemoryProvisioner {
	return &MemoryProvisioner{users: make(map[string]*model.User)}
}

func (p *MemoryProvisioner) Provision(_ context.Context, id domainauth.Identity) (*model.User, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.users == nil {
		p.users = make(map[string]*model.User)
	}
	now := time.Now()
	u, ok := p.users[id.Subject]
	if !ok {
		u = &model.User{ID: fmt.Sprintf("user-%d", len(p.users)+1), Subject: id.Subject, CreatedAt: now}
		p.users[id.Subject] = u
	}
	u.Email = id.Email
	u.Name = id.DisplayName()
	u.UpdatedAt = now
	out := *u
	return &out, nil
}

// Lookup returns the provisioned user for subject, if any.
func (p *MemoryProvisioner) Lookup(subject string) (*model.User, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	u, ok := p.users[subject]
	if !ok {
		return nil, false
	}
	out := *u
	return &out, true
}
