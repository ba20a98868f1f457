package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nicolelin19/mealmax/internal/domain/meal"
	"github.com/nicolelin19/mealmax/pkg/metrics"
)

// Instrument wraps s so that every call records latency and storage failures.
func Instrument(s MealStore) MealStore {
	return &instrumented{inner: s}
}

type instrumented struct {
	inner MealStore
}

func observe(op string, start time.Time, err error) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000)
	if err != nil && errors.Is(err, ErrStorage) {
		metrics.RecordStoreError(op)
	}
}

func (s *instrumented) CreateMeal(ctx context.Context, m meal.Meal) (out meal.Meal, err error) {
	defer func(start time.Time) { observe("create_meal", start, err) }(time.Now())
	return s.inner.CreateMeal(ctx, m)
}

func (s *instrumented) GetMealByID(ctx context.Context, id int64) (out meal.Meal, err error) {
	defer func(start time.Time) { observe("get_meal_by_id", start, err) }(time.Now())
	return s.inner.GetMealByID(ctx, id)
}

func (s *instrumented) GetMealByName(ctx context.Context, name string) (out meal.Meal, err error) {
	defer func(start time.Time) { observe("get_meal_by_name", start, err) }(time.Now())
	return s.inner.GetMealByName(ctx, name)
}

func (s *instrumented) DeleteMeal(ctx context.Context, id int64) (err error) {
	defer func(start time.Time) { observe("delete_meal", start, err) }(time.Now())
	return s.inner.DeleteMeal(ctx, id)
}

func (s *instrumented) ListMeals(ctx context.Context) (out []meal.Meal, err error) {
	defer func(start time.Time) { observe("list_meals", start, err) }(time.Now())
	return s.inner.ListMeals(ctx)
}

func (s *instrumented) RecordBattle(ctx context.Context, winnerID, loserID int64) (err error) {
	defer func(start time.Time) { observe("record_battle", start, err) }(time.Now())
	return s.inner.RecordBattle(ctx, winnerID, loserID)
}

func (s *instrumented) Ping(ctx context.Context) (err error) {
	defer func(start time.Time) { observe("ping", start, err) }(time.Now())
	return s.inner.Ping(ctx)
}

func (s *instrumented) Close() error {
	return s.inner.Close()
}
