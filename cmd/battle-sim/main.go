package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/nicolelin19/mealmax/internal/battlesim"
	"github.com/nicolelin19/mealmax/pkg/logger"
)

// Default configuration constants.
const (
	defaultMeals       = 8
	defaultBattles     = 100
	defaultTimeout     = 10 * time.Second
	defaultTestTimeout = 5 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:5000", "Base URL of the service")
		meals   = flag.Int("meals", defaultMeals, "Number of meals to create")
		battles = flag.Int("battles", defaultBattles, "Number of battles to fight")
		workers = flag.Int("workers", runtime.NumCPU(), "Concurrent requests while seeding meals")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		cleanup = flag.Bool("cleanup", false, "Delete the created meals afterwards")
		format  = flag.String("log-format", "text", "Log format: text or json")
		verbose = flag.Bool("verbose", false, "Log every battle")
	)
	flag.Parse()

	if err := logger.Init(logger.WithFormat(*format)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	cfg := &battlesim.Config{
		BaseURL: *baseURL,
		Meals:   *meals,
		Battles: *battles,
		Workers: *workers,
		Timeout: *timeout,
		Cleanup: *cleanup,
		Verbose: *verbose,
	}
	if _, err := battlesim.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "simulation failed", logger.Error(err))
		cancel()
		os.Exit(1)
	}
}
