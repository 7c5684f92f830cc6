package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/intervue/intervue-api/config"
	"github.com/intervue/intervue-api/internal/adapters/authroles"
	"github.com/intervue/intervue-api/internal/adapters/devauth"
	"github.com/intervue/intervue-api/internal/adapters/oidc"
	redisadapter "github.com/intervue/intervue-api/internal/adapters/redis"
	"github.com/intervue/intervue-api/internal/ports"
	"github.com/intervue/intervue-api/internal/service"
)

// oidcDiscoveryTimeout bounds provider discovery at startup.
const oidcDiscoveryTimeout = 10 * time.Second

// AuthConfig contains configuration for auth service.
type AuthConfig struct {
	Auth        config.AuthConfig
	RedisClient redis.UniversalClient
	// Users provisions internal users on login. Optional.
	Users  ports.UserProvisioner
	Logger *slog.Logger
}

func (c AuthConfig) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// BuildAuthService creates an auth service based on the configured auth mode.
// Returns nil if auth is not configured or configuration is invalid; the HTTP
// layer then treats every caller as anonymous.
func BuildAuthService(ctx context.Context, cfg AuthConfig) *service.AuthService {
	if cfg.RedisClient == nil {
		cfg.logger().Warn("auth service disabled: redis client not configured", "mode", cfg.Auth.Mode)
		return nil
	}

	sessionStore, err := redisadapter.NewSessionStore(redisadapter.SessionStoreOptions{Client: cfg.RedisClient})
	if err != nil {
		cfg.logger().Warn("auth service disabled: session store", "error", err)
		return nil
	}

	roleMapper := authroles.StaticRoleMapper{
		RecruiterGroup: cfg.Auth.RecruiterGroup,
		CandidateGroup: cfg.Auth.CandidateGroup,
	}

	var provider ports.AuthProvider
	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		provider = buildDevAuthProvider(cfg)
	case config.AuthModeOAuth:
		provider = buildOIDCProvider(ctx, cfg)
	}
	if provider == nil {
		return nil
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Provider: provider,
		Sessions: sessionStore,
		Roles:    roleMapper,
		Users:    cfg.Users,
	})
}

//nolint:ireturn // nil interface signals a disabled provider.
func buildDevAuthProvider(cfg AuthConfig) ports.AuthProvider {
	prov, err := devauth.NewProvider(devauth.Config{
		Subject:   cfg.Auth.DevAuth.Subject,
		Email:     cfg.Auth.DevAuth.Email,
		FirstName: cfg.Auth.DevAuth.FirstName,
		LastName:  cfg.Auth.DevAuth.LastName,
		Groups:    cfg.Auth.DevAuth.Groups,
	})
	if err != nil {
		cfg.logger().Warn("failed to create dev auth provider, auth disabled", "error", err)
		return nil
	}
	cfg.logger().Warn("dev auth enabled; every login is accepted", "subject", cfg.Auth.DevAuth.Subject)
	return prov
}

//nolint:ireturn // nil interface signals a disabled provider.
func buildOIDCProvider(ctx context.Context, cfg AuthConfig) ports.AuthProvider {
	oauth := cfg.Auth.OAuth
	if oauth.DiscoveryURL == "" || oauth.ClientID == "" || oauth.ClientSecret == "" {
		cfg.logger().Warn("AuthModeOAuth selected but required config missing; auth disabled",
			"discovery_url_empty", oauth.DiscoveryURL == "",
			"client_id_empty", oauth.ClientID == "",
			"client_secret_empty", oauth.ClientSecret == "",
		)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, oidcDiscoveryTimeout)
	defer cancel()
	prov, err := oidc.NewProvider(ctx, oidc.ProviderConfig{
		ClientID:     oauth.ClientID,
		ClientSecret: oauth.ClientSecret,
		RedirectURL:  oauth.RedirectURL,
		Scope:        oauth.Scope,
		DiscoveryURL: oauth.DiscoveryURL,
		LogoutURL:    oauth.LogoutURL,
	})
	if err != nil {
		cfg.logger().Warn("failed to create OIDC provider, auth disabled", "error", err)
		return nil
	}
	return prov
}
