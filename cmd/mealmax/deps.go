package main

import (
	"context"
	"fmt"

	"github.com/nicolelin19/mealmax/internal/adapters/cache/redis"
	"github.com/nicolelin19/mealmax/internal/adapters/random"
	"github.com/nicolelin19/mealmax/internal/adapters/repository"
	"github.com/nicolelin19/mealmax/internal/adapters/repository/postgres"
	"github.com/nicolelin19/mealmax/internal/adapters/repository/sqlite"
	"github.com/nicolelin19/mealmax/internal/config"
	"github.com/nicolelin19/mealmax/internal/domain/leaderboard"
	"github.com/nicolelin19/mealmax/pkg/logger"
	"github.com/nicolelin19/mealmax/pkg/metrics"
)

// initMetrics rebuilds the global metrics manager from cfg.
func initMetrics(cfg *config.Config) error {
	buckets, err := cfg.MetricsBuckets()
	if err != nil {
		return err
	}
	labels, err := cfg.MetricsConstLabels()
	if err != nil {
		return err
	}
	metrics.Init(
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithMetricPrefix(cfg.MetricsPrefix),
		metrics.WithHistogramBuckets(buckets),
		metrics.WithCustomLabels(labels),
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithRefreshInterval(cfg.MetricsRefresh()),
	)
	return nil
}

// openStore opens the configured meal store, applying migrations, and wraps
// it with store metrics.
func openStore(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.MealStore, error) {
	var (
		store repository.MealStore
		err   error
	)
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		store, err = postgres.Open(ctx, postgres.Config{
			DSN:           cfg.PostgresDSN,
			MaxConns:      cfg.PostgresMaxConns,
			RunMigrations: cfg.PostgresRunMigrations,
		})
	case config.DriverMemory:
		store = repository.NewMemoryStore()
	default:
		store, err = sqlite.Open(ctx, cfg.SQLitePath)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	log.Info(ctx, "meal store ready", logger.String("driver", cfg.StoreDriver))
	return repository.Instrument(store), nil
}

// openCache connects the Redis leaderboard cache when redis_addr is set.
// The returned close func is always safe to call.
func openCache(ctx context.Context, cfg *config.Config, log logger.Logger) (leaderboard.Cache, func(), error) {
	if cfg.RedisAddr == "" {
		return nil, func() {}, nil
	}
	client, err := redis.New(ctx, redis.ClientConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open leaderboard cache: %w", err)
	}
	log.Info(ctx, "leaderboard cache enabled",
		logger.String("addr", cfg.RedisAddr),
		logger.String("ttl", cfg.LeaderboardCacheTTL().String()))
	closeFn := func() {
		if err := client.Close(); err != nil {
			log.Warn(context.Background(), "closing redis client", logger.Error(err))
		}
	}
	return redis.NewLeaderboardCache(client, cfg.LeaderboardCacheTTL()), closeFn, nil
}

// newRandomSource builds the battle draw source. Remote sources are retried.
func newRandomSource(cfg *config.Config, log logger.Logger) (random.Source, error) {
	switch cfg.RandomSource {
	case config.RandomRandomOrg:
		remote := random.NewRandomOrg(
			random.WithURL(cfg.RandomOrgURL),
			random.WithTimeout(cfg.RandomTimeout()),
		)
		return random.WithRetry(remote, log.Named("random"), cfg.RandomRetries, cfg.RandomBackoff()), nil
	default:
		src, err := random.NewLocal()
		if err != nil {
			return nil, fmt.Errorf("seed local random source: %w", err)
		}
		return src, nil
	}
}
