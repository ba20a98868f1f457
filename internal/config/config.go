// Package config defines service configuration structures and loading hooks.
package config

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Random sources.
const (
	RandomLocal     = "local"
	RandomRandomOrg = "randomorg"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is "text" or "json".
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":5000".
	Addr string `koanf:"addr"`

	// StoreDriver selects the meal store backend.
	StoreDriver string `koanf:"store_driver"`
	SQLitePath  string `koanf:"sqlite_path"`

	PostgresDSN           string `koanf:"postgres_dsn"`
	PostgresMaxConns      int    `koanf:"postgres_max_conns"`
	PostgresRunMigrations bool   `koanf:"postgres_run_migrations"`

	// RedisAddr enables the leaderboard cache when non-empty.
	RedisAddr            string `koanf:"redis_addr"`
	RedisPassword        string `koanf:"redis_password"`
	RedisDB              int    `koanf:"redis_db"`
	LeaderboardCacheTTLMS int   `koanf:"leaderboard_cache_ttl_ms"`

	// RandomSource selects where battle draws come from.
	RandomSource    string `koanf:"random_source"`
	RandomOrgURL    string `koanf:"random_org_url"`
	RandomTimeoutMS int    `koanf:"random_timeout_ms"`
	RandomRetries   int    `koanf:"random_retries"`
	RandomBackoffMS int    `koanf:"random_backoff_ms"`

	// OutcomeQueueSize bounds the in-memory battle outcome queue.
	OutcomeQueueSize int `koanf:"outcome_queue_size"`

	// WorkerCount sets the number of outcome workers.
	WorkerCount int `koanf:"worker_count"`

	MetricsEnabled   bool   `koanf:"metrics_enabled"`
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`
	MetricsPrefix    string `koanf:"metrics_prefix"`
	MetricsRefreshMS int    `koanf:"metrics_refresh_ms"`
	// MetricsBucketsMS lists latency histogram bounds, e.g. "1,5,25,100".
	// Empty keeps the Prometheus defaults.
	MetricsBucketsMS string `koanf:"metrics_buckets_ms"`
	// MetricsLabels holds constant labels as "key=value" pairs separated by commas.
	MetricsLabels string `koanf:"metrics_labels"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":5000",
		StoreDriver:           DriverSQLite,
		SQLitePath:            "mealmax.db",
		PostgresMaxConns:      10,
		PostgresRunMigrations: true,
		LeaderboardCacheTTLMS: 30_000,
		RandomSource:          RandomLocal,
		RandomOrgURL:          "https://www.random.org/decimal-fractions/?num=1&dec=2&col=1&format=plain&rnd=new",
		RandomTimeoutMS:       5_000,
		RandomRetries:         3,
		RandomBackoffMS:       200,
		OutcomeQueueSize:      1024,
		WorkerCount:           runtime.NumCPU(),
		MetricsEnabled:        true,
		MetricsNamespace:      "mealmax",
		MetricsSubsystem:      "arena",
		MetricsRefreshMS:      10_000,
	}
}

// Validate checks the combination of settings.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.StoreDriver {
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%w: sqlite_path must not be empty", ErrInvalidConfig)
		}
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("%w: postgres_dsn must not be empty", ErrInvalidConfig)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	}
	switch c.RandomSource {
	case RandomLocal:
	case RandomRandomOrg:
		if c.RandomOrgURL == "" {
			return fmt.Errorf("%w: random_org_url must not be empty", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown random_source %q", ErrInvalidConfig, c.RandomSource)
	}
	if c.OutcomeQueueSize <= 0 {
		return fmt.Errorf("%w: outcome_queue_size must be positive", ErrInvalidConfig)
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	}
	if c.RandomRetries < 1 {
		return fmt.Errorf("%w: random_retries must be at least 1", ErrInvalidConfig)
	}
	if c.MetricsRefreshMS <= 0 {
		return fmt.Errorf("%w: metrics_refresh_ms must be positive", ErrInvalidConfig)
	}
	if _, err := c.MetricsBuckets(); err != nil {
		return err
	}
	if _, err := c.MetricsConstLabels(); err != nil {
		return err
	}
	return nil
}

// LeaderboardCacheTTL returns the cache TTL as a duration.
func (c *Config) LeaderboardCacheTTL() time.Duration {
	return time.Duration(c.LeaderboardCacheTTLMS) * time.Millisecond
}

func (c *Config) RandomTimeout() time.Duration {
	return time.Duration(c.RandomTimeoutMS) * time.Millisecond
}

func (c *Config) RandomBackoff() time.Duration {
	return time.Duration(c.RandomBackoffMS) * time.Millisecond
}

func (c *Config) MetricsRefresh() time.Duration {
	return time.Duration(c.MetricsRefreshMS) * time.Millisecond
}

// MetricsBuckets parses MetricsBucketsMS. Bounds must be positive and strictly
// increasing. An empty setting yields nil.
func (c *Config) MetricsBuckets() ([]float64, error) {
	if strings.TrimSpace(c.MetricsBucketsMS) == "" {
		return nil, nil
	}
	parts := strings.Split(c.MetricsBucketsMS, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: metrics_buckets_ms: %w", ErrInvalidConfig, err)
		}
		if v <= 0 || (len(out) > 0 && v <= out[len(out)-1]) {
			return nil, fmt.Errorf("%w: metrics_buckets_ms must be positive and increasing", ErrInvalidConfig)
		}
		out = append(out, v)
	}
	return out, nil
}

// MetricsConstLabels parses MetricsLabels into a map. An empty setting yields nil.
func (c *Config) MetricsConstLabels() (map[string]string, error) {
	if strings.TrimSpace(c.MetricsLabels) == "" {
		return nil, nil
	}
	out := make(map[string]string)
	for _, pair := range strings.Split(c.MetricsLabels, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: metrics_labels entry %q is not key=value", ErrInvalidConfig, pair)
		}
		out[k] = strings.TrimSpace(v)
	}
	return out, nil
}
