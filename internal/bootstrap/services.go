package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/intervue/intervue-api/config"
	"github.com/intervue/intervue-api/internal/data"
	"github.com/intervue/intervue-api/internal/observability/statsd"
	"github.com/intervue/intervue-api/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Users         *service.UserService
	Interviews    *service.InterviewService
	Attempts      *service.AttemptService
	Participation *service.ParticipationService
	Auth          *service.AuthService
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	// MetricsSink is nil when metrics are disabled.
	MetricsSink   statsd.Sink
	MetricsConfig config.ObservabilityMetricsConfig

	client *statsd.Client
}

// Close releases the metrics connection, if any.
func (o ObservabilityContainer) Close() error {
	return o.client.Close()
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	Users      *data.UserRepo
	Interviews *data.InterviewRepo
	Attempts   *data.AttemptRepo
}

// buildObservability configures the metrics sink. A statsd failure disables metrics
// rather than failing startup.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	out := ObservabilityContainer{MetricsConfig: cfg.Metrics}
	if !cfg.Metrics.IsEnabled() {
		return out
	}

	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.Metrics.StatsdAddress,
		Prefix:  cfg.Metrics.Prefix,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		return out
	}
	out.client = client
	out.MetricsSink = client
	return out
}

// buildRepositories builds repositories backing service ports; no business rules here.
func buildRepositories(db *sql.DB) serviceRepositories {
	return serviceRepositories{
		Users:      data.NewUserRepo(db),
		Interviews: data.NewInterviewRepo(db),
		Attempts:   data.NewAttemptRepo(db),
	}
}

// NewServices wires repositories, policies and services for the HTTP surface.
func NewServices(ctx context.Context, deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil || deps.DB == nil {
		return ServiceContainer{}, errors.New("service deps require config and database")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config
	obs := buildObservability(logger, cfg.Observability)
	repos := buildRepositories(deps.DB)

	users, err := service.NewUserService(service.UserServiceOptions{Repo: repos.Users, Logger: logger})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("user service: %w", err)
	}

	var usage *service.UsagePolicy
	if cfg.Usage.Enabled() {
		usage = service.NewUsagePolicy(repos.Interviews, cfg.Usage, nil)
	}
	interviews, err := service.NewInterviewService(service.InterviewServiceOptions{
		Repo:   repos.Interviews,
		Usage:  usage,
		Logger: logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("interview service: %w", err)
	}

	attempts, err := service.NewAttemptService(service.AttemptServiceOptions{
		Repo:    repos.Attempts,
		Logger:  logger,
		Metrics: obs.MetricsSink,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("attempt service: %w", err)
	}

	expiry, err := service.NewExpiryPolicy(service.ExpiryPolicyOptions{
		Interviews: repos.Interviews,
		Logger:     logger,
		Metrics:    obs.MetricsSink,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("expiry policy: %w", err)
	}

	participation, err := service.NewParticipationService(service.ParticipationServiceOptions{
		Repos: service.ParticipationRepos{
			Users:      repos.Users,
			Interviews: repos.Interviews,
			Attempts:   repos.Attempts,
		},
		Expiry:  expiry,
		Config:  cfg.Participation,
		Logger:  logger,
		Metrics: obs.MetricsSink,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("participation service: %w", err)
	}

	return ServiceContainer{
		Users:         users,
		Interviews:    interviews,
		Attempts:      attempts,
		Participation: participation,
		Auth: BuildAuthService(ctx, AuthConfig{
			Auth:        cfg.Auth,
			RedisClient: deps.RedisClient,
			Users:       users,
			Logger:      logger,
		}),
		Observability: obs,
	}, nil
}

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config      *config.AppConfig
	Services    ServiceContainer
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// backgroundService describes a startable background component.
type backgroundService struct {
	mode  config.ServiceMode
	name  string
	start func(context.Context) error
}

func newExpirySweeperBackgroundService(cfg *ServiceOrchestrationConfig, logger *slog.Logger) backgroundService {
	return backgroundService{
		mode: config.ServiceModeExpirySweeper,
		name: "expiry sweeper",
		start: func(ctx context.Context) error {
			return RunExpirySweeper(ctx, ExpirySweeperConfig{
				DB:      cfg.DB,
				Logger:  logger,
				Config:  cfg.Config.ExpirySweeper,
				Metrics: cfg.Services.Observability.MetricsSink,
			})
		},
	}
}

// buildBackgroundServices returns the background services enabled in the config.
func buildBackgroundServices(cfg *ServiceOrchestrationConfig, logger *slog.Logger, enabled map[config.ServiceMode]bool) []backgroundService {
	all := []backgroundService{
		newExpirySweeperBackgroundService(cfg, logger),
	}
	out := make([]backgroundService, 0, len(all))
	for _, svc := range all {
		if enabled[svc.mode] {
			out = append(out, svc)
		}
	}
	return out
}

// RunServicesWithShutdown starts all enabled services and manages their lifecycle.
// This function blocks until a shutdown signal is received or a service fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabled, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}

	var server *http.Server
	if enabled[config.ServiceModeHTTP] {
		server = NewHTTPServer(&HTTPServerConfig{
			Config:    cfg.Config,
			Services:  cfg.Services,
			Readiness: PingChecks(cfg.DB, cfg.RedisClient),
			Logger:    logger,
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return runServices(ctx, runServicesConfig{
		server:          server,
		shutdownTimeout: cfg.Config.HTTP.ShutdownTimeout,
		background:      buildBackgroundServices(cfg, logger, enabled),
		logger:          logger,
	})
}

type runServicesConfig struct {
	server          *http.Server
	shutdownTimeout time.Duration
	background      []backgroundService
	logger          *slog.Logger
}

// runServices runs the server and background services until ctx ends or one of them
// fails, then stops the rest. The first failure is returned.
func runServices(ctx context.Context, cfg runServicesConfig) error {
	g, gctx := errgroup.WithContext(ctx)

	if cfg.server != nil {
		g.Go(func() error { return serveHTTP(cfg.server, cfg.logger) })
		g.Go(func() error {
			<-gctx.Done()
			return ShutdownHTTPServer(ShutdownConfig{
				Server:  cfg.server,
				Timeout: cfg.shutdownTimeout,
				Logger:  cfg.logger,
			})
		})
	}

	for _, svc := range cfg.background {
		g.Go(func() error {
			cfg.logger.InfoContext(gctx, "background service started", "service", svc.name, "mode", svc.mode)
			if err := svc.start(gctx); err != nil {
				return fmt.Errorf("%s failed: %w", svc.name, err)
			}
			cfg.logger.Info(svc.name + " stopped")
			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		cfg.logger.Error("service error", "error", err)
		return err
	}
	cfg.logger.Info("services stopped")
	return nil
}
