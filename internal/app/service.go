// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	eventqueue "github.com/nicolelin19/mealmax/internal/adapters/mq/queue"
	workerpool "github.com/nicolelin19/mealmax/internal/adapters/mq/worker"
	"github.com/nicolelin19/mealmax/internal/adapters/random"
	"github.com/nicolelin19/mealmax/internal/adapters/repository"
	"github.com/nicolelin19/mealmax/internal/domain/battle"
	"github.com/nicolelin19/mealmax/internal/domain/leaderboard"
	"github.com/nicolelin19/mealmax/internal/domain/meal"
	"github.com/nicolelin19/mealmax/pkg/logger"
	"github.com/nicolelin19/mealmax/pkg/metrics"
)

// Service wires the meal store, battle engine and leaderboard together.
type Service struct {
	mu sync.RWMutex

	// Core components
	store  repository.MealStore
	engine *battle.Engine
	board  *leaderboard.Board
	queue  *eventqueue.InMemoryQueue
	pool   *workerpool.Pool

	// Configuration
	source      random.Source
	cache       leaderboard.Cache
	workerCount int
	queueSize   int

	// State
	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the meal store. Defaults to an in-memory store.
func WithStore(store repository.MealStore) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithRandomSource sets where battle draws come from.
func WithRandomSource(src random.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithLeaderboardCache enables leaderboard caching.
func WithLeaderboardCache(c leaderboard.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithWorkerCount sets the number of outcome workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the outcome queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. The global logger must be initialized unless
// WithLogger is given.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   1024,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.source == nil {
		src, err := random.NewLocal()
		if err != nil {
			return nil, fmt.Errorf("random source: %w", err)
		}
		s.source = src
	}

	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	boardOpts := []leaderboard.Option{leaderboard.WithLogger(s.logger.Named("leaderboard"))}
	if s.cache != nil {
		boardOpts = append(boardOpts, leaderboard.WithCache(s.cache))
	}
	s.board = leaderboard.New(s.store, boardOpts...)
	s.engine = battle.NewEngine(s.store, s.source,
		battle.WithPublisher(s.queue),
		battle.WithLogger(s.logger.Named("battle")),
	)
	return s, nil
}

// Start launches the outcome workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.board)
	s.pool.Start(ctx)
	s.started = true

	s.refreshActiveMeals(ctx)
	s.logger.Info(ctx, "meal arena service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Bool("cache", s.cache != nil),
	)
	return nil
}

// Stop drains the outcome queue and closes the store.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping meal arena service...")

	var firstErr error
	if err := s.pool.Shutdown(ctx); err != nil {
		firstErr = err
	}
	if err := s.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	s.started = false
	s.logger.Info(ctx, "meal arena service stopped")
	return firstErr
}

// CreateMeal adds a meal to the catalog.
func (s *Service) CreateMeal(ctx context.Context, m meal.Meal) (meal.Meal, error) {
	created, err := s.store.CreateMeal(ctx, m)
	if err != nil {
		return meal.Meal{}, err
	}
	s.logger.Info(ctx, "meal created",
		logger.Int64("meal_id", created.ID),
		logger.String("meal", created.Name))
	s.invalidate(ctx)
	s.refreshActiveMeals(ctx)
	return created, nil
}

// DeleteMeal soft-deletes a meal. A staged copy stays on the roster until
// cleared; it can no longer fight.
func (s *Service) DeleteMeal(ctx context.Context, id int64) error {
	if err := s.store.DeleteMeal(ctx, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "meal deleted", logger.Int64("meal_id", id))
	s.invalidate(ctx)
	s.refreshActiveMeals(ctx)
	return nil
}

func (s *Service) GetMealByID(ctx context.Context, id int64) (meal.Meal, error) {
	return s.store.GetMealByID(ctx, id)
}

func (s *Service) GetMealByName(ctx context.Context, name string) (meal.Meal, error) {
	return s.store.GetMealByName(ctx, name)
}

// PrepCombatant stages the meal with the given name and returns the names of
// all staged combatants.
func (s *Service) PrepCombatant(ctx context.Context, name string) ([]string, error) {
	m, err := s.store.GetMealByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Stage(ctx, m.ID); err != nil {
		return nil, err
	}
	staged, err := s.engine.Combatants(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(staged))
	for i, c := range staged {
		names[i] = c.Name
	}
	return names, nil
}

// Combatants returns the staged meals in staging order.
func (s *Service) Combatants(ctx context.Context) ([]meal.Meal, error) {
	return s.engine.Combatants(ctx)
}

// ClearCombatants empties the roster.
func (s *Service) ClearCombatants(ctx context.Context) {
	s.engine.Clear(ctx)
}

// Battle resolves a battle between the two staged combatants.
func (s *Service) Battle(ctx context.Context) (battle.Outcome, error) {
	out, err := s.engine.Resolve(ctx)
	if err != nil {
		return battle.Outcome{}, err
	}
	s.invalidate(ctx)
	return out, nil
}

// Leaderboard returns ranked meals.
func (s *Service) Leaderboard(ctx context.Context, q leaderboard.Query) ([]leaderboard.Entry, error) {
	return s.board.Query(ctx, q)
}

// Health reports whether the service is accepting work.
func (s *Service) Health(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// DBCheck pings the meal store.
func (s *Service) DBCheck(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":        s.started,
		"worker_count":   s.workerCount,
		"queue_capacity": s.queueSize,
		"queue_length":   s.queue.Len(ctx),
		"roster_size":    s.engine.RosterSize(),
		"cache_enabled":  s.cache != nil,
	}
	if s.pool != nil {
		stats["outcomes_processed"] = s.pool.Processed()
	}
	if meals, err := s.store.ListMeals(ctx); err == nil {
		stats["active_meals"] = len(meals)
		metrics.UpdateActiveMeals(len(meals))
	}
	return stats
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.board.Invalidate(ctx); err != nil {
		s.logger.Warn(ctx, "leaderboard cache invalidation failed", logger.Error(err))
	}
}

func (s *Service) refreshActiveMeals(ctx context.Context) {
	meals, err := s.store.ListMeals(ctx)
	if err != nil {
		s.logger.Warn(ctx, "could not count active meals", logger.Error(err))
		return
	}
	metrics.UpdateActiveMeals(len(meals))
}
