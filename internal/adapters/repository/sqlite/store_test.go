package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/nicolelin19/mealmax/internal/adapters/repository"
	"github.com/nicolelin19/mealmax/internal/adapters/repository/storetest"
	"github.com/nicolelin19/mealmax/internal/domain/meal"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meals.db")
	store, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(context.Background(), " "); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) repository.MealStore {
		return openTempStore(t)
	})
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "meals.db")

	first, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	m, err := first.CreateMeal(ctx, meal.Meal{Name: "Ramen", Cuisine: "Japanese", Price: 11, Difficulty: meal.DifficultyHigh})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = second.Close() }()

	got, err := second.GetMealByName(ctx, "Ramen")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != m.ID || got.Difficulty != meal.DifficultyHigh {
		t.Fatalf("got %+v, want id %d", got, m.ID)
	}
}

func TestClosedStoreReportsStorageFailure(t *testing.T) {
	ctx := context.Background()
	store := openTempStore(t)
	_ = store.Close()

	if err := store.Ping(ctx); !errors.Is(err, repository.ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if _, err := store.ListMeals(ctx); !errors.Is(err, repository.ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestExtractUp(t *testing.T) {
	got := extractUp("-- +migrate Up\nCREATE TABLE x (id INT);\n-- +migrate Down\nDROP TABLE x;\n")
	if got != "\nCREATE TABLE x (id INT);\n" {
		t.Fatalf("extractUp = %q", got)
	}
	if got := extractUp("SELECT 1;"); got != "SELECT 1;" {
		t.Fatalf("extractUp without markers = %q", got)
	}
}
