// Package oidc adapts an OpenID Connect identity provider to ports.AuthProvider.
package oidc

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/intervue/intervue-api/internal/domain/auth"
	"github.com/intervue/intervue-api/internal/ports"
)

const (
	defaultGroupsClaim = "groups"
	randomTokenLength  = 32
)

var _ ports.AuthProvider = (*Provider)(nil)

// Provider implements ports.AuthProvider against an OIDC issuer.
type Provider struct {
	oauth       *oauth2.Config
	op          *gooidc.Provider
	verifier    *gooidc.IDTokenVerifier
	httpClient  *http.Client
	groupsClaim string
	logoutURL   string
}

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	DiscoveryURL string
	LogoutURL    string
	// GroupsClaim names the claim carrying group membership. Defaults to "groups".
	GroupsClaim string
	HTTPClient  *http.Client // Optional
}

func (c ProviderConfig) validate() error {
	switch {
	case c.ClientID == "":
		return errors.New("client ID is required")
	case c.ClientSecret == "":
		return errors.New("client secret is required")
	case c.RedirectURL == "":
		return errors.New("redirect URL is required")
	case c.DiscoveryURL == "":
		return errors.New("discovery URL is required")
	}
	return nil
}

// issuerFromDiscovery accepts either the issuer or its well-known document URL.
func issuerFromDiscovery(discoveryURL string) string {
	issuer := strings.TrimSuffix(discoveryURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	return strings.TrimSuffix(issuer, "/")
}

// NewProvider fetches the issuer's discovery document and builds a Provider.
func NewProvider(ctx context.Context, cfg ProviderConfig) (*Provider, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	ctx = gooidc.ClientContext(ctx, client)

	op, err := gooidc.NewProvider(ctx, issuerFromDiscovery(cfg.DiscoveryURL))
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}

	groupsClaim := cfg.GroupsClaim
	if groupsClaim == "" {
		groupsClaim = defaultGroupsClaim
	}

	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       strings.Fields(cfg.Scope),
			Endpoint:     op.Endpoint(),
		},
		op:          op,
		verifier:    op.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
		httpClient:  client,
		groupsClaim: groupsClaim,
		logoutURL:   cfg.LogoutURL,
	}, nil
}

// LogoutURL returns the configured end-session URL, if any.
func (p *Provider) LogoutURL() string { return p.logoutURL }

func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	if in.RedirectURL == "" {
		return "", "", "", errors.New("redirect URL is required")
	}
	state, err := randomToken(randomTokenLength)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomToken(randomTokenLength)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}

	// redirect_uri comes from the oauth2 config and must match the registered client.
	authURL := p.oauth.AuthCodeURL(state,
		gooidc.Nonce(nonce),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
	return authURL, state, nonce, nil
}

func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	switch {
	case in.Code == "":
		return domainauth.Identity{}, errors.New("authorization code is required")
	case in.State == "":
		return domainauth.Identity{}, errors.New("state is required")
	case in.Nonce == "":
		return domainauth.Identity{}, errors.New("nonce is required")
	}

	ctx = gooidc.ClientContext(ctx, p.httpClient)
	token, err := p.oauth.Exchange(ctx, in.Code)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("exchange code for token: %w", err)
	}

	var c claims
	if slices.Contains(p.oauth.Scopes, gooidc.ScopeOpenID) {
		if c, err = p.idTokenClaims(ctx, token, in.Nonce); err != nil {
			return domainauth.Identity{}, err
		}
	}
	if c.incomplete() {
		ui, uiErr := p.userInfoClaims(ctx, token)
		if uiErr != nil {
			return domainauth.Identity{}, fmt.Errorf("get user info: %w", uiErr)
		}
		c.merge(ui)
	}
	if c.Subject == "" {
		return domainauth.Identity{}, errors.New("identity provider returned no subject")
	}

	expiresAt := token.Expiry
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(time.Hour)
	}
	return c.identity(expiresAt), nil
}

func (p *Provider) idTokenClaims(ctx context.Context, token *oauth2.Token, nonce string) (claims, error) {
	raw, err := rawIDToken(token)
	if err != nil {
		return claims{}, err
	}
	idTok, err := p.verifier.Verify(ctx, raw)
	if err != nil {
		return claims{}, fmt.Errorf("verify id_token: %w", err)
	}
	if idTok.Nonce != nonce {
		return claims{}, errors.New("id_token nonce mismatch")
	}
	var doc map[string]json.RawMessage
	if err := idTok.Claims(&doc); err != nil {
		return claims{}, fmt.Errorf("parse id_token claims: %w", err)
	}
	return parseClaims(doc, p.groupsClaim)
}

func (p *Provider) userInfoClaims(ctx context.Context, token *oauth2.Token) (claims, error) {
	ui, err := p.op.UserInfo(ctx, oauth2.StaticTokenSource(token))
	if err != nil {
		return claims{}, err
	}
	var doc map[string]json.RawMessage
	if err := ui.Claims(&doc); err != nil {
		return claims{}, fmt.Errorf("decode user info: %w", err)
	}
	return parseClaims(doc, p.groupsClaim)
}

// claims is the subset of standard OIDC claims mapped into an Identity.
type claims struct {
	Subject    string   `json:"sub"`
	Email      string   `json:"email"`
	GivenName  string   `json:"given_name"`
	FamilyName string   `json:"family_name"`
	Name       string   `json:"name"`
	Groups     []string `json:"-"`
}

// parseClaims decodes standard claims plus the configured groups claim, which may be
// a list or a single string.
func parseClaims(doc map[string]json.RawMessage, groupsClaim string) (claims, error) {
	var c claims
	buf, err := json.Marshal(doc)
	if err != nil {
		return c, err
	}
	if err := json.Unmarshal(buf, &c); err != nil {
		return c, fmt.Errorf("decode claims: %w", err)
	}
	raw, ok := doc[groupsClaim]
	if !ok {
		return c, nil
	}
	if err := json.Unmarshal(raw, &c.Groups); err == nil {
		return c, nil
	}
	var single string
	if err := json.Unmarshal(raw, &single); err != nil {
		return c, fmt.Errorf("decode %s claim: %w", groupsClaim, err)
	}
	if single != "" {
		c.Groups = []string{single}
	}
	return c, nil
}

func (c claims) incomplete() bool {
	return c.Subject == "" || c.Email == ""
}

// merge fills blank fields from o without overwriting.
func (c *claims) merge(o claims) {
	if c.Subject == "" {
		c.Subject = o.Subject
	}
	if c.Email == "" {
		c.Email = o.Email
	}
	if c.GivenName == "" {
		c.GivenName = o.GivenName
	}
	if c.FamilyName == "" {
		c.FamilyName = o.FamilyName
	}
	if c.Name == "" {
		c.Name = o.Name
	}
	if len(c.Groups) == 0 {
		c.Groups = o.Groups
	}
}

func (c claims) identity(expiresAt time.Time) domainauth.Identity {
	first, last := c.GivenName, c.FamilyName
	if first == "" && last == "" && c.Name != "" {
		first, last, _ = strings.Cut(c.Name, " ")
	}
	return domainauth.Identity{
		Subject:   c.Subject,
		FirstName: first,
		LastName:  last,
		Email:     c.Email,
		Groups:    c.Groups,
		ExpiresAt: expiresAt,
	}
}

func rawIDToken(tok *oauth2.Token) (string, error) {
	if tok == nil {
		return "", errors.New("nil token")
	}
	s, ok := tok.Extra("id_token").(string)
	if !ok || s == "" {
		return "", errors.New("missing id_token in token response")
	}
	return s, nil
}

// randomToken returns a URL-safe random string of exactly n characters.
func randomToken(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	b := make([]byte, base64.RawURLEncoding.DecodedLen(n)+1)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}
