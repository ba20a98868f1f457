package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/nicolelin19/mealmax/internal/adapters/repository"
	"github.com/nicolelin19/mealmax/internal/adapters/repository/storetest"
)

const dsnEnv = "MEALMAX_TEST_POSTGRES_DSN"

func TestOpenRequiresDSN(t *testing.T) {
	if _, err := Open(context.Background(), Config{}); err == nil {
		t.Fatal("expected empty dsn error")
	}
}

func TestOpenRejectsBadDSN(t *testing.T) {
	if _, err := Open(context.Background(), Config{DSN: "postgres://%zz"}); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	data, err := migrationsFS.ReadFile("migrations/0001_meals.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("migration is empty")
	}
}

func TestStore(t *testing.T) {
	dsn := os.Getenv(dsnEnv)
	if dsn == "" {
		t.Skipf("%s not set", dsnEnv)
	}

	storetest.Run(t, func(t *testing.T) repository.MealStore {
		ctx := context.Background()
		s, err := Open(ctx, Config{DSN: dsn, MaxConns: 8, RunMigrations: true})
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		if _, err := s.pool.Exec(ctx, `TRUNCATE meals RESTART IDENTITY`); err != nil {
			t.Fatalf("truncate: %v", err)
		}
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}
