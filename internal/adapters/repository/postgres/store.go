package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nicolelin19/mealmax/internal/adapters/repository"
	"github.com/nicolelin19/mealmax/internal/domain/meal"
)

const (
	mealColumns        = `id, meal, cuisine, price, difficulty, battles, wins, losses, deleted`
	uniqueViolationSQL = "23505"
)

// Store implements repository.MealStore on a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

var _ repository.MealStore = (*Store)(nil)

// Close shuts down the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Ping checks a pooled connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: postgres: ping: %w", repository.ErrStorage, err)
	}
	return nil
}

// CreateMeal inserts a new meal.
func (s *Store) CreateMeal(ctx context.Context, m meal.Meal) (meal.Meal, error) {
	m.Name = strings.TrimSpace(m.Name)
	if err := m.Validate(); err != nil {
		return meal.Meal{}, err
	}

	const query = `
		INSERT INTO meals (meal, cuisine, price, difficulty)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := s.pool.QueryRow(ctx, query, m.Name, m.Cuisine, m.Price, string(m.Difficulty)).Scan(&m.ID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationSQL {
			return meal.Meal{}, fmt.Errorf("%w: meal with name %q", meal.ErrMealExists, m.Name)
		}
		return meal.Meal{}, fmt.Errorf("%w: postgres: create meal: %w", repository.ErrStorage, err)
	}
	m.Battles, m.Wins, m.Losses, m.Deleted = 0, 0, 0, false
	return m, nil
}

// GetMealByID returns a non-deleted meal.
func (s *Store) GetMealByID(ctx context.Context, id int64) (meal.Meal, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+mealColumns+` FROM meals WHERE id = $1`, id)
	return scanActive(row, fmt.Sprintf("meal %d", id))
}

// GetMealByName returns a non-deleted meal.
func (s *Store) GetMealByName(ctx context.Context, name string) (meal.Meal, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+mealColumns+` FROM meals WHERE meal = $1`, strings.TrimSpace(name))
	return scanActive(row, fmt.Sprintf("meal with name %q", name))
}

// DeleteMeal soft-deletes a meal.
func (s *Store) DeleteMeal(ctx context.Context, id int64) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `SELECT `+mealColumns+` FROM meals WHERE id = $1 FOR UPDATE`, id)
		if _, err := scanActive(row, fmt.Sprintf("meal %d", id)); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE meals SET deleted = TRUE WHERE id = $1`, id); err != nil {
			return fmt.Errorf("%w: postgres: delete meal %d: %w", repository.ErrStorage, id, err)
		}
		return nil
	})
}

// ListMeals returns every non-deleted meal ordered by id.
func (s *Store) ListMeals(ctx context.Context) ([]meal.Meal, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+mealColumns+` FROM meals WHERE NOT deleted ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: postgres: list meals: %w", repository.ErrStorage, err)
	}
	defer rows.Close()

	var out []meal.Meal
	for rows.Next() {
		m, err := scanMeal(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: postgres: scan meal: %w", repository.ErrStorage, err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: postgres: iterate meals: %w", repository.ErrStorage, err)
	}
	return out, nil
}

// RecordBattle locks both rows in id order and updates them in one transaction.
func (s *Store) RecordBattle(ctx context.Context, winnerID, loserID int64) error {
	if winnerID == loserID {
		return fmt.Errorf("%w: meal %d cannot battle itself", meal.ErrInvalidMeal, winnerID)
	}

	ids := []int64{winnerID, loserID}
	if loserID < winnerID {
		ids[0], ids[1] = loserID, winnerID
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for _, id := range ids {
			row := tx.QueryRow(ctx, `SELECT `+mealColumns+` FROM meals WHERE id = $1 FOR UPDATE`, id)
			if _, err := scanActive(row, fmt.Sprintf("meal %d", id)); err != nil {
				return err
			}
		}
		if _, err := tx.Exec(ctx,
			`UPDATE meals SET battles = battles + 1, wins = wins + 1 WHERE id = $1`, winnerID); err != nil {
			return fmt.Errorf("%w: postgres: record win for meal %d: %w", repository.ErrStorage, winnerID, err)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE meals SET battles = battles + 1, losses = losses + 1 WHERE id = $1`, loserID); err != nil {
			return fmt.Errorf("%w: postgres: record loss for meal %d: %w", repository.ErrStorage, loserID, err)
		}
		return nil
	})
}

func scanMeal(row pgx.Row) (meal.Meal, error) {
	var (
		m          meal.Meal
		difficulty string
	)
	if err := row.Scan(&m.ID, &m.Name, &m.Cuisine, &m.Price, &difficulty, &m.Battles, &m.Wins, &m.Losses, &m.Deleted); err != nil {
		return meal.Meal{}, err
	}
	m.Difficulty = meal.Difficulty(difficulty)
	return m, nil
}

func scanActive(row pgx.Row, what string) (meal.Meal, error) {
	m, err := scanMeal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return meal.Meal{}, fmt.Errorf("%s: %w", what, meal.ErrMealNotFound)
	}
	if err != nil {
		return meal.Meal{}, fmt.Errorf("%w: postgres: load %s: %w", repository.ErrStorage, what, err)
	}
	if m.Deleted {
		return meal.Meal{}, fmt.Errorf("%s: %w", what, meal.ErrMealDeleted)
	}
	return m, nil
}
