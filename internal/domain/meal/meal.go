// Package meal contains the meal record shared between the store, the battle
// engine and the leaderboard.
package meal

import (
	"fmt"
	"math"
	"strings"
)

// Difficulty is how hard a meal is to prepare.
type Difficulty string

// Known difficulties.
const (
	DifficultyLow  Difficulty = "LOW"
	DifficultyMed  Difficulty = "MED"
	DifficultyHigh Difficulty = "HIGH"
)

// ParseDifficulty maps a case-insensitive string to a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToUpper(strings.TrimSpace(s))); d {
	case DifficultyLow, DifficultyMed, DifficultyHigh:
		return d, nil
	default:
		return "", fmt.Errorf("%w: difficulty %q must be LOW, MED or HIGH", ErrInvalidMeal, s)
	}
}

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	return d == DifficultyLow || d == DifficultyMed || d == DifficultyHigh
}

// Meal is a catalog entry together with its battle record.
type Meal struct {
	ID         int64      `json:"id"`
	Name       string     `json:"meal"`
	Cuisine    string     `json:"cuisine"`
	Price      float64    `json:"price"`
	Difficulty Difficulty `json:"difficulty"`
	Battles    int        `json:"battles"`
	Wins       int        `json:"wins"`
	Losses     int        `json:"losses"`
	Deleted    bool       `json:"-"`
}

// Validate checks the attributes supplied at creation time.
func (m Meal) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: meal name is required", ErrInvalidMeal)
	}
	if strings.TrimSpace(m.Cuisine) == "" {
		return fmt.Errorf("%w: cuisine is required", ErrInvalidMeal)
	}
	if math.IsNaN(m.Price) || math.IsInf(m.Price, 0) || m.Price <= 0 {
		return fmt.Errorf("%w: price %v must be a positive number", ErrInvalidMeal, m.Price)
	}
	if !m.Difficulty.Valid() {
		return fmt.Errorf("%w: difficulty %q must be LOW, MED or HIGH", ErrInvalidMeal, m.Difficulty)
	}
	return nil
}

// WinRatio returns wins/(wins+losses), or 0 when the meal has never fought.
func (m Meal) WinRatio() float64 {
	total := m.Wins + m.Losses
	if total == 0 {
		return 0
	}
	return float64(m.Wins) / float64(total)
}
