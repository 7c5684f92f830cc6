package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ServiceMode represents the available service modes.
type ServiceMode string

const (
	// ServiceModeHTTP runs the HTTP server.
	ServiceModeHTTP ServiceMode = "http"
	// ServiceModeExpirySweeper runs the background loop that expires overdue interviews.
	ServiceModeExpirySweeper ServiceMode = "expiry-sweeper"
)

// ValidServiceModes returns all valid service mode names.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{
		ServiceModeHTTP,
		ServiceModeExpirySweeper,
	}
}

// ParseServices parses a comma-delimited string of service names and returns the enabled services.
// It validates that all service names are valid and returns an error if any are invalid.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)

	if servicesStr == "" {
		return services, errors.New("at least one service must be specified")
	}

	for _, part := range strings.Split(servicesStr, ",") {
		serviceName := strings.TrimSpace(part)
		if serviceName == "" {
			continue
		}

		mode := ServiceMode(serviceName)
		switch mode {
		case ServiceModeHTTP, ServiceModeExpirySweeper:
			services[mode] = true
		default:
			return nil, fmt.Errorf(
				"invalid service name: %q (valid options: http, expiry-sweeper)",
				serviceName,
			)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}

	return services, nil
}

// ParticipationConfig tunes the participation engine.
type ParticipationConfig struct {
	// CoalesceInFlight merges concurrent identical join requests handled by this process.
	CoalesceInFlight bool `env:"PARTICIPATION_COALESCE_IN_FLIGHT" envDefault:"true"`

	// RequestTimeout bounds the store work done for a single join request.
	RequestTimeout time.Duration `env:"PARTICIPATION_REQUEST_TIMEOUT" envDefault:"10s"`
}

// Sanitize applies guardrails to participation configuration values.
func (p *ParticipationConfig) Sanitize() {
	if p.RequestTimeout < time.Second {
		p.RequestTimeout = time.Second
	}
}

// ExpirySweeperConfig contains expiry sweeper service configuration.
type ExpirySweeperConfig struct {
	// Interval is the sweeper tick interval.
	Interval time.Duration `env:"EXPIRY_SWEEPER_INTERVAL" envDefault:"1m"`

	// BatchSize is the maximum number of interviews to expire per statement.
	// Batching prevents long locks on large tables.
	BatchSize int `env:"EXPIRY_SWEEPER_BATCH_SIZE" envDefault:"500"`
}

// Sanitize applies guardrails to expiry sweeper configuration values.
func (e *ExpirySweeperConfig) Sanitize() {
	if e.Interval < 10*time.Second {
		e.Interval = 10 * time.Second
	}
	if e.BatchSize < 1 {
		e.BatchSize = 1
	}
	if e.BatchSize > 10000 {
		e.BatchSize = 10000
	}
}
