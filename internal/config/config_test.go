package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/nicolelin19/mealmax/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":5000")
			convey.So(cfg.StoreDriver, convey.ShouldEqual, config.DriverSQLite)
			convey.So(cfg.RandomSource, convey.ShouldEqual, config.RandomLocal)
			convey.So(cfg.OutcomeQueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.LeaderboardCacheTTL(), convey.ShouldEqual, 30*time.Second)
			convey.So(cfg.RandomTimeout(), convey.ShouldEqual, 5*time.Second)
			convey.So(cfg.RandomBackoff(), convey.ShouldEqual, 200*time.Millisecond)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		msg    string
	}{
		{"empty addr", func(c *config.Config) { c.Addr = " " }, "addr must not be empty"},
		{"unknown driver", func(c *config.Config) { c.StoreDriver = "mongo" }, "unknown store_driver"},
		{"postgres without dsn", func(c *config.Config) { c.StoreDriver = config.DriverPostgres }, "postgres_dsn"},
		{"sqlite without path", func(c *config.Config) { c.SQLitePath = "" }, "sqlite_path"},
		{"unknown random source", func(c *config.Config) { c.RandomSource = "dice" }, "unknown random_source"},
		{"zero queue", func(c *config.Config) { c.OutcomeQueueSize = 0 }, "outcome_queue_size"},
		{"negative workers", func(c *config.Config) { c.WorkerCount = -1 }, "worker_count"},
		{"no retries", func(c *config.Config) { c.RandomRetries = 0 }, "random_retries"},
		{"zero metrics refresh", func(c *config.Config) { c.MetricsRefreshMS = 0 }, "metrics_refresh_ms"},
		{"unparsable buckets", func(c *config.Config) { c.MetricsBucketsMS = "1,x" }, "metrics_buckets_ms"},
		{"decreasing buckets", func(c *config.Config) { c.MetricsBucketsMS = "5,1" }, "positive and increasing"},
		{"label without value separator", func(c *config.Config) { c.MetricsLabels = "region" }, "metrics_labels"},
	}

	convey.Convey("Given configs with one invalid setting", t, func() {
		for _, tc := range cases {
			convey.Convey("When "+tc.name, func() {
				cfg := config.New()
				tc.mutate(cfg)
				err := cfg.Validate()

				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, tc.msg)
			})
		}

		convey.Convey("When the memory driver is chosen", func() {
			cfg := config.New()
			cfg.StoreDriver = config.DriverMemory
			cfg.SQLitePath = ""

			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Metrics(t *testing.T) {
	convey.Convey("Given metrics settings", t, func() {
		cfg := config.New()

		convey.Convey("When nothing is set", func() {
			buckets, errB := cfg.MetricsBuckets()
			labels, errL := cfg.MetricsConstLabels()

			convey.Convey("Then defaults should apply", func() {
				convey.So(errB, convey.ShouldBeNil)
				convey.So(errL, convey.ShouldBeNil)
				convey.So(buckets, convey.ShouldBeNil)
				convey.So(labels, convey.ShouldBeNil)
				convey.So(cfg.MetricsEnabled, convey.ShouldBeTrue)
				convey.So(cfg.MetricsRefresh(), convey.ShouldEqual, 10*time.Second)
			})
		})

		convey.Convey("When buckets and labels are set", func() {
			cfg.MetricsBucketsMS = " 0.5, 2,10 "
			cfg.MetricsLabels = "region=eu, tier = gold"
			buckets, errB := cfg.MetricsBuckets()
			labels, errL := cfg.MetricsConstLabels()

			convey.Convey("Then they should be parsed", func() {
				convey.So(errB, convey.ShouldBeNil)
				convey.So(errL, convey.ShouldBeNil)
				convey.So(buckets, convey.ShouldResemble, []float64{0.5, 2, 10})
				convey.So(labels, convey.ShouldResemble, map[string]string{"region": "eu", "tier": "gold"})
				convey.So(cfg.Validate(), convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":5000")
				convey.So(cfg.OutcomeQueueSize, convey.ShouldEqual, 1024)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("MEALMAX_ADDR", ":8080")
			_ = os.Setenv("MEALMAX_STORE_DRIVER", "memory")
			_ = os.Setenv("MEALMAX_WORKER_COUNT", "16")
			_ = os.Setenv("MEALMAX_RANDOM_RETRIES", "5")
			_ = os.Setenv("MEALMAX_POSTGRES_RUN_MIGRATIONS", "false")
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.StoreDriver, convey.ShouldEqual, config.DriverMemory)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 16)
				convey.So(cfg.RandomRetries, convey.ShouldEqual, 5)
				convey.So(cfg.PostgresRunMigrations, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
outcome_queue_size: 300
worker_count: 24
random_source: randomorg
redis_addr: "localhost:6379"
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("MEALMAX_CONFIG", tmpFile)
			_ = os.Setenv("MEALMAX_WORKER_COUNT", "32")
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.OutcomeQueueSize, convey.ShouldEqual, 300)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 32)
				convey.So(cfg.RandomSource, convey.ShouldEqual, config.RandomRandomOrg)
				convey.So(cfg.RedisAddr, convey.ShouldEqual, "localhost:6379")
				convey.So(cfg.SQLitePath, convey.ShouldEqual, "mealmax.db")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(t, `invalid: yaml: content: [`)
			_ = os.Setenv("MEALMAX_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("MEALMAX_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("MEALMAX_WORKER_COUNT", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the loaded values fail validation", func() {
			_ = os.Setenv("MEALMAX_STORE_DRIVER", "mongo")
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func createTempConfigFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearConfigEnvVars() {
	for _, key := range []string{
		"MEALMAX_CONFIG",
		"MEALMAX_ADDR",
		"MEALMAX_STORE_DRIVER",
		"MEALMAX_WORKER_COUNT",
		"MEALMAX_RANDOM_RETRIES",
		"MEALMAX_POSTGRES_RUN_MIGRATIONS",
	} {
		_ = os.Unsetenv(key)
	}
}
