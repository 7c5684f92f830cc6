package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/redis/go-redis/v9"

	"github.com/intervue/intervue-api/config"
	"github.com/intervue/intervue-api/internal/data"
	httpx "github.com/intervue/intervue-api/internal/http"
)

// DatabaseConfig contains configuration for database connections.
type DatabaseConfig struct {
	DBConfig    config.DBConfig
	RedisConfig config.RedisConfig
	Logger      *slog.Logger
}

// postgresDSN builds a URL-form DSN so credentials with special characters survive.
func postgresDSN(cfg config.DBConfig) string {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   "/" + cfg.Name,
	}
	q := u.Query()
	q.Set("sslmode", cfg.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// ConnectDB establishes a connection to the PostgreSQL database.
func ConnectDB(cfg DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", postgresDSN(cfg.DBConfig))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		if closeErr := db.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close database connection: %w", closeErr))
		}
		return nil, fmt.Errorf("ping database: %w", pingErr)
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("database connected",
			"host", cfg.DBConfig.Host,
			"port", cfg.DBConfig.Port,
			"database", cfg.DBConfig.Name,
		)
	}

	return db, nil
}

// Redis deployment modes, chosen by RedisConfig.UseCluster and UseSentinel.
const (
	redisModeDirect   = "direct"
	redisModeSentinel = "sentinel"
	redisModeCluster  = "cluster"
)

// ConnectRedis connects to Redis in one of three modes:
//   - cluster: ClusterNodes, or the single host in URI when no nodes are listed
//   - sentinel: SentinelNodes plus SentinelMasterName
//   - direct (default): URI, either a redis:// or rediss:// URL or a bare host:port
//
//nolint:ireturn // the concrete client type depends on the configured mode.
func ConnectRedis(cfg DatabaseConfig) (redis.UniversalClient, error) {
	mode, opts, err := redisOptions(cfg.RedisConfig)
	if err != nil {
		return nil, err
	}

	var client redis.UniversalClient
	switch mode {
	case redisModeCluster:
		client = redis.NewClusterClient(opts.Cluster())
	case redisModeSentinel:
		client = redis.NewFailoverClient(opts.Failover())
	default:
		client = redis.NewClient(opts.Simple())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if pingErr := client.Ping(ctx).Err(); pingErr != nil {
		if closeErr := client.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close redis client: %w", closeErr))
		}
		return nil, fmt.Errorf("ping redis (%s): %w", mode, pingErr)
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("redis connected", "mode", mode, "addrs", opts.Addrs, "master", opts.MasterName)
	}
	return client, nil
}

// redisOptions resolves cfg into a mode and the options for it. Credentials in a URL
// take precedence over RedisConfig.Password.
func redisOptions(cfg config.RedisConfig) (string, *redis.UniversalOptions, error) {
	opts := &redis.UniversalOptions{Password: cfg.Password}

	uri := strings.TrimSpace(cfg.URI)
	var uriAddr string
	switch {
	case strings.HasPrefix(uri, "redis://"), strings.HasPrefix(uri, "rediss://"):
		parsed, err := redis.ParseURL(uri)
		if err != nil {
			return "", nil, fmt.Errorf("parse redis url: %w", err)
		}
		uriAddr = parsed.Addr
		opts.Username = parsed.Username
		if parsed.Password != "" {
			opts.Password = parsed.Password
		}
		opts.DB = parsed.DB
		opts.TLSConfig = parsed.TLSConfig
	case uri != "":
		uriAddr = uri
	}

	switch {
	case cfg.UseCluster:
		opts.Addrs = nonEmpty(cfg.ClusterNodes)
		if len(opts.Addrs) == 0 && uriAddr != "" {
			opts.Addrs = []string{uriAddr}
		}
		if len(opts.Addrs) == 0 {
			return "", nil, errors.New("redis cluster mode needs CLUSTER_NODES or URI")
		}
		// Cluster nodes only serve DB 0.
		opts.DB = 0
		return redisModeCluster, opts, nil
	case cfg.UseSentinel:
		opts.Addrs = nonEmpty(cfg.SentinelNodes)
		opts.MasterName = strings.TrimSpace(cfg.SentinelMasterName)
		opts.SentinelPassword = cfg.SentinelPassword
		if len(opts.Addrs) == 0 || opts.MasterName == "" {
			return "", nil, errors.New("redis sentinel mode needs SENTINEL_NODES and SENTINEL_MASTER_NAME")
		}
		return redisModeSentinel, opts, nil
	default:
		if uriAddr == "" {
			return "", nil, errors.New("redis direct mode needs URI")
		}
		opts.Addrs = []string{uriAddr}
		return redisModeDirect, opts, nil
	}
}

func nonEmpty(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// RunMigrations runs database migrations.
func RunMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if err := data.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	if logger != nil {
		logger.InfoContext(ctx, "database migrations completed")
	}

	return nil
}

// PingChecks returns readiness checks for the connected stores. A nil store is skipped.
func PingChecks(db *sql.DB, rdb redis.UniversalClient) map[string]httpx.ReadinessCheck {
	checks := make(map[string]httpx.ReadinessCheck, 2)
	if db != nil {
		checks["postgres"] = db.PingContext
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	return checks
}
