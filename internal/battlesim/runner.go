// Package battlesim drives a running meal arena over HTTP and checks that
// battles keep the roster and the leaderboard consistent.
package battlesim

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nicolelin19/mealmax/pkg/logger"
)

var (
	cuisines     = []string{"Italian", "Thai", "Mexican", "Japanese", "Ethiopian", "French", "Peruvian"}
	difficulties = []string{"LOW", "MED", "HIGH"}
)

// Run seeds meals, fights king-of-the-hill battles and verifies the results.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if cfg.Meals < 2 {
		return nil, fmt.Errorf("need at least 2 meals, got %d", cfg.Meals)
	}
	log := logger.Get().Named("battlesim")
	stats := &Stats{StartTime: time.Now()}
	client := NewClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting battle simulation",
		logger.String("base_url", cfg.BaseURL),
		logger.Int("meals", cfg.Meals),
		logger.Int("battles", cfg.Battles),
		logger.Int("workers", cfg.Workers))

	if err := client.Health(ctx); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}
	if err := client.Clear(ctx); err != nil {
		return nil, fmt.Errorf("clear roster: %w", err)
	}

	meals, err := seedMeals(ctx, client, cfg)
	if err != nil {
		return nil, fmt.Errorf("seed meals: %w", err)
	}
	stats.MealsCreated = len(meals)

	if err := fight(ctx, client, cfg, meals, stats); err != nil {
		return stats, fmt.Errorf("battles: %w", err)
	}
	if err := verifyLeaderboard(ctx, client, meals, stats); err != nil {
		return stats, fmt.Errorf("verification: %w", err)
	}

	if cfg.Cleanup {
		cleanup(ctx, client, meals, log)
	}

	stats.Duration = time.Since(stats.StartTime)
	log.Info(ctx, "simulation completed",
		logger.Int("meals_created", stats.MealsCreated),
		logger.Int("battles_fought", stats.BattlesFought),
		logger.Int("upsets", stats.Upsets),
		logger.String("champion", stats.Champion),
		logger.String("duration", stats.Duration.String()))
	return stats, nil
}

// seedMeals creates uniquely named meals concurrently.
func seedMeals(ctx context.Context, client *Client, cfg *Config) ([]Meal, error) {
	meals := make([]Meal, cfg.Meals)
	prefix := uuid.NewString()[:8]

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for i := range meals {
		g.Go(func() error {
			m, err := client.CreateMeal(ctx, Meal{
				Name:       fmt.Sprintf("sim-%s-%03d", prefix, i),
				Cuisine:    cuisines[rand.IntN(len(cuisines))],
				Price:      float64(rand.IntN(2000)+100) / 100,
				Difficulty: difficulties[rand.IntN(len(difficulties))],
			})
			if err != nil {
				return err
			}
			meals[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return meals, nil
}

// fight keeps the reigning winner staged and sends challengers at it in turn.
func fight(ctx context.Context, client *Client, cfg *Config, meals []Meal, stats *Stats) error {
	log := logger.Get().Named("battlesim")
	champion := meals[0]
	if _, err := client.Prep(ctx, champion.Name); err != nil {
		return err
	}

	next := 1
	for i := 0; i < cfg.Battles; i++ {
		challenger := meals[next%len(meals)]
		if challenger.ID == champion.ID {
			next++
			challenger = meals[next%len(meals)]
		}
		next++

		staged, err := client.Prep(ctx, challenger.Name)
		if err != nil {
			return err
		}
		if len(staged) != 2 {
			return fmt.Errorf("battle %d: expected 2 staged combatants, got %v", i, staged)
		}

		out, err := client.Battle(ctx)
		if err != nil {
			return err
		}
		stats.BattlesFought++
		if out.WinnerScore < out.LoserScore {
			stats.Upsets++
		}

		left, err := client.Combatants(ctx)
		if err != nil {
			return err
		}
		if len(left) != 1 || left[0].ID != out.WinnerID {
			return fmt.Errorf("battle %d: expected only winner %d staged, got %+v", i, out.WinnerID, left)
		}
		champion = left[0]

		if cfg.Verbose {
			log.Info(ctx, "battle",
				logger.Int("n", i+1),
				logger.String("winner", out.Winner),
				logger.Float64("winner_score", out.WinnerScore),
				logger.String("loser", out.Loser),
				logger.Float64("loser_score", out.LoserScore))
		}
	}
	stats.Champion = champion.Name
	return client.Clear(ctx)
}

func cleanup(ctx context.Context, client *Client, meals []Meal, log logger.Logger) {
	for _, m := range meals {
		if err := client.DeleteMeal(ctx, m.ID); err != nil {
			log.Warn(ctx, "failed to delete simulated meal", logger.Int64("meal_id", m.ID), logger.Error(err))
		}
	}
}
