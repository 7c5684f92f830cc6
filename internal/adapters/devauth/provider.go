// Package devauth provides a config-driven AuthProvider for local development.
package devauth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	domainauth "github.com/intervue/intervue-api/internal/domain/auth"
	"github.com/intervue/intervue-api/internal/ports"
)

const (
	// devCode is the authorization code handed back to the callback.
	devCode = "dev"
	// subjectCodePrefix lets a local caller log in as another subject: code=as:<subject>.
	subjectCodePrefix = "as:"

	defaultSessionDuration = 8 * time.Hour
)

var _ ports.AuthProvider = (*Provider)(nil)

// Config controls the dev auth provider. Subject and Email are required.
type Config struct {
	Subject         string
	Email           string
	FirstName       string
	LastName        string
	Groups          []string
	SessionDuration time.Duration // defaults to 8h
}

// Provider skips the IdP round trip: Begin points straight back at the callback and
// Exchange returns the configured identity.
type Provider struct {
	base     domainauth.Identity
	duration time.Duration
	now      func() time.Time
}

// NewProvider constructs a dev auth provider from cfg.
func NewProvider(cfg Config) (*Provider, error) {
	if strings.TrimSpace(cfg.Subject) == "" {
		return nil, errors.New("dev auth: subject is required")
	}
	if strings.TrimSpace(cfg.Email) == "" {
		return nil, errors.New("dev auth: email is required")
	}
	dur := cfg.SessionDuration
	if dur <= 0 {
		dur = defaultSessionDuration
	}
	return &Provider{
		base: domainauth.Identity{
			Subject:   cfg.Subject,
			FirstName: cfg.FirstName,
			LastName:  cfg.LastName,
			Email:     cfg.Email,
			Groups:    slices.Clone(cfg.Groups),
		},
		duration: dur,
		now:      time.Now,
	}, nil
}

// Begin returns the callback URL with a dev code and fresh state, plus a nonce.
func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	if in.RedirectURL == "" {
		return "", "", "", errors.New("redirect URL is required")
	}
	cb, err := url.Parse(in.RedirectURL)
	if err != nil {
		return "", "", "", fmt.Errorf("parse redirect URL: %w", err)
	}
	state, err := randomHex(16)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomHex(16)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}

	q := cb.Query()
	q.Set("code", devCode)
	q.Set("state", state)
	cb.RawQuery = q.Encode()
	return cb.String(), state, nonce, nil
}

// Exchange returns the configured identity with a fresh expiry. A code of the form
// "as:<subject>" swaps in that subject, which makes multi-user flows testable locally.
func (p *Provider) Exchange(_ context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if in.Code == "" {
		return domainauth.Identity{}, errors.New("authorization code is required")
	}
	id := p.base
	id.Groups = slices.Clone(p.base.Groups)
	if subject, ok := strings.CutPrefix(in.Code, subjectCodePrefix); ok {
		if subject == "" {
			return domainauth.Identity{}, errors.New("dev auth: empty subject override")
		}
		id.Subject = subject
	}
	id.ExpiresAt = p.now().Add(p.duration)
	return id, nil
}

func randomHex(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
