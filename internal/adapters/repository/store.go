// Package repository defines the meal store contract and its in-memory implementation.
package repository

import (
	"context"

	"github.com/nicolelin19/mealmax/internal/domain/meal"
)

// MealStore persists meals and their battle records.
//
// Lookups of soft-deleted meals fail with meal.ErrMealDeleted; unknown ids or
// names fail with meal.ErrMealNotFound. Infrastructure faults wrap ErrStorage.
type MealStore interface {
	// CreateMeal validates and inserts m, returning it with its id.
	// Names stay unique even after deletion (meal.ErrMealExists).
	CreateMeal(ctx context.Context, m meal.Meal) (meal.Meal, error)
	GetMealByID(ctx context.Context, id int64) (meal.Meal, error)
	GetMealByName(ctx context.Context, name string) (meal.Meal, error)
	// DeleteMeal soft-deletes a meal. Deleting twice fails with meal.ErrMealDeleted.
	DeleteMeal(ctx context.Context, id int64) error
	// ListMeals returns every non-deleted meal ordered by id.
	ListMeals(ctx context.Context) ([]meal.Meal, error)
	// RecordBattle adds a win to winnerID and a loss to loserID in one
	// transaction. Either both rows change or neither does.
	RecordBattle(ctx context.Context, winnerID, loserID int64) error
	Ping(ctx context.Context) error
	Close() error
}
