// Package sqlite provides a SQLite-backed meal store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nicolelin19/mealmax/internal/adapters/repository"
	"github.com/nicolelin19/mealmax/internal/adapters/repository/sqlite/migrations"
	"github.com/nicolelin19/mealmax/internal/domain/meal"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const mealColumns = `id, meal, cuisine, price, difficulty, battles, wins, losses, deleted`

// Store persists meals in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ repository.MealStore = (*Store)(nil)

// Open opens the database at path and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := "file:" + filepath.Clean(path) +
		"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection, so writers never race for the lock.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: ping sqlite: %w", repository.ErrStorage, err)
	}
	return nil
}

// CreateMeal inserts a new meal.
func (s *Store) CreateMeal(ctx context.Context, m meal.Meal) (meal.Meal, error) {
	m.Name = strings.TrimSpace(m.Name)
	if err := m.Validate(); err != nil {
		return meal.Meal{}, err
	}

	res, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO meals (meal, cuisine, price, difficulty) VALUES (?, ?, ?, ?)`,
		m.Name, m.Cuisine, m.Price, string(m.Difficulty),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return meal.Meal{}, fmt.Errorf("%w: meal with name %q", meal.ErrMealExists, m.Name)
		}
		return meal.Meal{}, fmt.Errorf("%w: create meal: %w", repository.ErrStorage, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return meal.Meal{}, fmt.Errorf("%w: create meal id: %w", repository.ErrStorage, err)
	}

	m.ID = id
	m.Battles, m.Wins, m.Losses, m.Deleted = 0, 0, 0, false
	return m, nil
}

// GetMealByID returns a non-deleted meal.
func (s *Store) GetMealByID(ctx context.Context, id int64) (meal.Meal, error) {
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+mealColumns+` FROM meals WHERE id = ?`, id)
	return scanActive(row, fmt.Sprintf("meal %d", id))
}

// GetMealByName returns a non-deleted meal.
func (s *Store) GetMealByName(ctx context.Context, name string) (meal.Meal, error) {
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+mealColumns+` FROM meals WHERE meal = ?`, strings.TrimSpace(name))
	return scanActive(row, fmt.Sprintf("meal with name %q", name))
}

// DeleteMeal soft-deletes a meal.
func (s *Store) DeleteMeal(ctx context.Context, id int64) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin delete: %w", repository.ErrStorage, err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `SELECT `+mealColumns+` FROM meals WHERE id = ?`, id)
	if _, err := scanActive(row, fmt.Sprintf("meal %d", id)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE meals SET deleted = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("%w: delete meal %d: %w", repository.ErrStorage, id, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit delete: %w", repository.ErrStorage, err)
	}
	return nil
}

// ListMeals returns every non-deleted meal ordered by id.
func (s *Store) ListMeals(ctx context.Context) ([]meal.Meal, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT `+mealColumns+` FROM meals WHERE deleted = 0 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: list meals: %w", repository.ErrStorage, err)
	}
	defer func() { _ = rows.Close() }()

	var out []meal.Meal
	for rows.Next() {
		m, err := scanMeal(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan meal: %w", repository.ErrStorage, err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate meals: %w", repository.ErrStorage, err)
	}
	return out, nil
}

// RecordBattle updates both meals in one transaction.
func (s *Store) RecordBattle(ctx context.Context, winnerID, loserID int64) error {
	if winnerID == loserID {
		return fmt.Errorf("%w: meal %d cannot battle itself", meal.ErrInvalidMeal, winnerID)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin battle: %w", repository.ErrStorage, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, id := range []int64{winnerID, loserID} {
		row := tx.QueryRowContext(ctx, `SELECT `+mealColumns+` FROM meals WHERE id = ?`, id)
		if _, err := scanActive(row, fmt.Sprintf("meal %d", id)); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE meals SET battles = battles + 1, wins = wins + 1 WHERE id = ?`, winnerID); err != nil {
		return fmt.Errorf("%w: record win for meal %d: %w", repository.ErrStorage, winnerID, err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE meals SET battles = battles + 1, losses = losses + 1 WHERE id = ?`, loserID); err != nil {
		return fmt.Errorf("%w: record loss for meal %d: %w", repository.ErrStorage, loserID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit battle: %w", repository.ErrStorage, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMeal(row scanner) (meal.Meal, error) {
	var (
		m          meal.Meal
		difficulty string
		deleted    int
	)
	if err := row.Scan(&m.ID, &m.Name, &m.Cuisine, &m.Price, &difficulty, &m.Battles, &m.Wins, &m.Losses, &deleted); err != nil {
		return meal.Meal{}, err
	}
	m.Difficulty = meal.Difficulty(difficulty)
	m.Deleted = deleted != 0
	return m, nil
}

func scanActive(row scanner, what string) (meal.Meal, error) {
	m, err := scanMeal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return meal.Meal{}, fmt.Errorf("%s: %w", what, meal.ErrMealNotFound)
	}
	if err != nil {
		return meal.Meal{}, fmt.Errorf("%w: load %s: %w", repository.ErrStorage, what, err)
	}
	if m.Deleted {
		return meal.Meal{}, fmt.Errorf("%s: %w", what, meal.ErrMealDeleted)
	}
	return m, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
