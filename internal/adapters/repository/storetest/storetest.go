// Package storetest holds behaviour checks shared by every MealStore implementation.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/nicolelin19/mealmax/internal/adapters/repository"
	"github.com/nicolelin19/mealmax/internal/domain/meal"
)

// Factory returns an empty store. Cleanup is the caller's business (t.Cleanup).
type Factory func(t *testing.T) repository.MealStore

// Run executes the suite against stores built by open.
func Run(t *testing.T, open Factory) {
	t.Helper()

	t.Run("CreateAndFetch", func(t *testing.T) { testCreateAndFetch(t, open(t)) })
	t.Run("CreateValidation", func(t *testing.T) { testCreateValidation(t, open(t)) })
	t.Run("DuplicateName", func(t *testing.T) { testDuplicateName(t, open(t)) })
	t.Run("SoftDelete", func(t *testing.T) { testSoftDelete(t, open(t)) })
	t.Run("ListMeals", func(t *testing.T) { testListMeals(t, open(t)) })
	t.Run("RecordBattle", func(t *testing.T) { testRecordBattle(t, open(t)) })
	t.Run("RecordBattleAtomic", func(t *testing.T) { testRecordBattleAtomic(t, open(t)) })
	t.Run("ConcurrentRecordBattle", func(t *testing.T) { testConcurrentRecordBattle(t, open(t)) })
	t.Run("Ping", func(t *testing.T) { testPing(t, open(t)) })
}

func newMeal(name string) meal.Meal {
	return meal.Meal{Name: name, Cuisine: "Italian", Price: 12.5, Difficulty: meal.DifficultyMed}
}

func mustCreate(t *testing.T, s repository.MealStore, name string) meal.Meal {
	t.Helper()
	m, err := s.CreateMeal(context.Background(), newMeal(name))
	if err != nil {
		t.Fatalf("create %q: %v", name, err)
	}
	return m
}

func testCreateAndFetch(t *testing.T, s repository.MealStore) {
	ctx := context.Background()
	created := mustCreate(t, s, "Spaghetti")
	if created.ID <= 0 {
		t.Fatalf("expected positive id, got %d", created.ID)
	}

	byID, err := s.GetMealByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if byID.Name != "Spaghetti" || byID.Cuisine != "Italian" || byID.Price != 12.5 || byID.Difficulty != meal.DifficultyMed {
		t.Errorf("unexpected meal %+v", byID)
	}
	if byID.Wins != 0 || byID.Losses != 0 || byID.Battles != 0 || byID.Deleted {
		t.Errorf("new meal should have a clean record, got %+v", byID)
	}

	byName, err := s.GetMealByName(ctx, "Spaghetti")
	if err != nil {
		t.Fatalf("get by name: %v", err)
	}
	if byName.ID != created.ID {
		t.Errorf("expected id %d, got %d", created.ID, byName.ID)
	}

	if _, err := s.GetMealByID(ctx, created.ID+1000); !errors.Is(err, meal.ErrMealNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if _, err := s.GetMealByName(ctx, "Nope"); !errors.Is(err, meal.ErrMealNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func testCreateValidation(t *testing.T, s repository.MealStore) {
	bad := newMeal("Soup")
	bad.Price = -1
	if _, err := s.CreateMeal(context.Background(), bad); !errors.Is(err, meal.ErrInvalidMeal) {
		t.Errorf("expected invalid meal, got %v", err)
	}
	bad = newMeal("Soup")
	bad.Difficulty = "EASY"
	if _, err := s.CreateMeal(context.Background(), bad); !errors.Is(err, meal.ErrInvalidMeal) {
		t.Errorf("expected invalid meal, got %v", err)
	}
}

func testDuplicateName(t *testing.T, s repository.MealStore) {
	ctx := context.Background()
	m := mustCreate(t, s, "Tacos")
	if _, err := s.CreateMeal(ctx, newMeal("Tacos")); !errors.Is(err, meal.ErrMealExists) {
		t.Errorf("expected meal exists, got %v", err)
	}
	if err := s.DeleteMeal(ctx, m.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.CreateMeal(ctx, newMeal("Tacos")); !errors.Is(err, meal.ErrMealExists) {
		t.Errorf("deleted names stay reserved, got %v", err)
	}
}

func testSoftDelete(t *testing.T, s repository.MealStore) {
	ctx := context.Background()
	m := mustCreate(t, s, "Curry")
	if err := s.DeleteMeal(ctx, m.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetMealByID(ctx, m.ID); !errors.Is(err, meal.ErrMealDeleted) {
		t.Errorf("expected deleted, got %v", err)
	}
	if _, err := s.GetMealByName(ctx, "Curry"); !errors.Is(err, meal.ErrMealDeleted) {
		t.Errorf("expected deleted, got %v", err)
	}
	if err := s.DeleteMeal(ctx, m.ID); !errors.Is(err, meal.ErrMealDeleted) {
		t.Errorf("second delete should report deleted, got %v", err)
	}
	if err := s.DeleteMeal(ctx, m.ID+1000); !errors.Is(err, meal.ErrMealNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func testListMeals(t *testing.T, s repository.MealStore) {
	ctx := context.Background()
	a := mustCreate(t, s, "A")
	b := mustCreate(t, s, "B")
	c := mustCreate(t, s, "C")
	if err := s.DeleteMeal(ctx, b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	list, err := s.ListMeals(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != a.ID || list[1].ID != c.ID {
		t.Errorf("expected [%d %d], got %+v", a.ID, c.ID, list)
	}
}

func testRecordBattle(t *testing.T, s repository.MealStore) {
	ctx := context.Background()
	w := mustCreate(t, s, "Winner")
	l := mustCreate(t, s, "Loser")
	other := mustCreate(t, s, "Bystander")

	if err := s.RecordBattle(ctx, w.ID, l.ID); err != nil {
		t.Fatalf("record: %v", err)
	}

	gotW, _ := s.GetMealByID(ctx, w.ID)
	gotL, _ := s.GetMealByID(ctx, l.ID)
	gotO, _ := s.GetMealByID(ctx, other.ID)
	if gotW.Wins != 1 || gotW.Losses != 0 || gotW.Battles != 1 {
		t.Errorf("winner record %+v", gotW)
	}
	if gotL.Wins != 0 || gotL.Losses != 1 || gotL.Battles != 1 {
		t.Errorf("loser record %+v", gotL)
	}
	if gotO.Battles != 0 {
		t.Errorf("bystander should be untouched, got %+v", gotO)
	}
}

func testRecordBattleAtomic(t *testing.T, s repository.MealStore) {
	ctx := context.Background()
	w := mustCreate(t, s, "Survivor")
	l := mustCreate(t, s, "Ghost")
	if err := s.DeleteMeal(ctx, l.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if err := s.RecordBattle(ctx, w.ID, l.ID); !errors.Is(err, meal.ErrMealNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	got, _ := s.GetMealByID(ctx, w.ID)
	if got.Wins != 0 || got.Battles != 0 {
		t.Errorf("winner must be untouched when the loser is gone, got %+v", got)
	}

	if err := s.RecordBattle(ctx, w.ID, w.ID); err == nil {
		t.Error("a meal cannot battle itself")
	}
}

func testConcurrentRecordBattle(t *testing.T, s repository.MealStore) {
	ctx := context.Background()
	a := mustCreate(t, s, "Left")
	b := mustCreate(t, s, "Right")

	const rounds = 20
	var wg sync.WaitGroup
	errs := make(chan error, rounds)
	for i := 0; i < rounds; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w, l := a.ID, b.ID
			if i%2 == 1 {
				w, l = l, w
			}
			if err := s.RecordBattle(ctx, w, l); err != nil {
				errs <- fmt.Errorf("round %d: %w", i, err)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	gotA, _ := s.GetMealByID(ctx, a.ID)
	gotB, _ := s.GetMealByID(ctx, b.ID)
	if gotA.Wins+gotB.Wins != rounds || gotA.Losses+gotB.Losses != rounds {
		t.Errorf("lost updates: a=%+v b=%+v", gotA, gotB)
	}
	if gotA.Wins != gotB.Losses || gotB.Wins != gotA.Losses {
		t.Errorf("wins and losses diverged: a=%+v b=%+v", gotA, gotB)
	}
}

func testPing(t *testing.T, s repository.MealStore) {
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("ping: %v", err)
	}
}
