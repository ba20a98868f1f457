package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/nicolelin19/mealmax/internal/domain/meal"
)

// MemoryStore keeps meals in a map. It is used in tests and with the memory driver.
type MemoryStore struct {
	mu     sync.RWMutex
	meals  map[int64]meal.Meal
	byName map[string]int64
	nextID int64
	closed bool
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		meals:  make(map[int64]meal.Meal),
		byName: make(map[string]int64),
		nextID: 1,
	}
}

// CreateMeal implements MealStore.
func (s *MemoryStore) CreateMeal(_ context.Context, m meal.Meal) (meal.Meal, error) {
	m.Name = strings.TrimSpace(m.Name)
	if err := m.Validate(); err != nil {
		return meal.Meal{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return meal.Meal{}, err
	}
	if _, ok := s.byName[m.Name]; ok {
		return meal.Meal{}, fmt.Errorf("%w: meal with name %q", meal.ErrMealExists, m.Name)
	}

	m.ID = s.nextID
	s.nextID++
	m.Battles, m.Wins, m.Losses, m.Deleted = 0, 0, 0, false
	s.meals[m.ID] = m
	s.byName[m.Name] = m.ID
	return m, nil
}

// GetMealByID implements MealStore.
func (s *MemoryStore) GetMealByID(_ context.Context, id int64) (meal.Meal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return meal.Meal{}, err
	}
	return s.lookup(id)
}

// GetMealByName implements MealStore.
func (s *MemoryStore) GetMealByName(_ context.Context, name string) (meal.Meal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return meal.Meal{}, err
	}
	id, ok := s.byName[strings.TrimSpace(name)]
	if !ok {
		return meal.Meal{}, fmt.Errorf("meal with name %q: %w", name, meal.ErrMealNotFound)
	}
	return s.lookup(id)
}

// DeleteMeal implements MealStore.
func (s *MemoryStore) DeleteMeal(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	m, err := s.lookup(id)
	if err != nil {
		return err
	}
	m.Deleted = true
	s.meals[id] = m
	return nil
}

// ListMeals implements MealStore.
func (s *MemoryStore) ListMeals(context.Context) ([]meal.Meal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	out := make([]meal.Meal, 0, len(s.meals))
	for _, m := range s.meals {
		if !m.Deleted {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// RecordBattle implements MealStore.
func (s *MemoryStore) RecordBattle(_ context.Context, winnerID, loserID int64) error {
	if winnerID == loserID {
		return fmt.Errorf("%w: meal %d cannot battle itself", meal.ErrInvalidMeal, winnerID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	w, err := s.lookup(winnerID)
	if err != nil {
		return err
	}
	l, err := s.lookup(loserID)
	if err != nil {
		return err
	}

	w.Battles++
	w.Wins++
	l.Battles++
	l.Losses++
	s.meals[winnerID] = w
	s.meals[loserID] = l
	return nil
}

// Ping implements MealStore.
func (s *MemoryStore) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkOpen()
}

// Close implements MealStore.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *MemoryStore) lookup(id int64) (meal.Meal, error) {
	m, ok := s.meals[id]
	if !ok {
		return meal.Meal{}, fmt.Errorf("meal %d: %w", id, meal.ErrMealNotFound)
	}
	if m.Deleted {
		return meal.Meal{}, fmt.Errorf("meal %d: %w", id, meal.ErrMealDeleted)
	}
	return m, nil
}

func (s *MemoryStore) checkOpen() error {
	if s.closed {
		return fmt.Errorf("%w: store is closed", ErrStorage)
	}
	return nil
}
