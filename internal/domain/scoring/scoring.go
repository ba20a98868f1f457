// Package scoring computes battle scores and decides battle outcomes.
package scoring

import (
	"math"
	"unicode/utf8"

	"github.com/nicolelin19/mealmax/internal/domain/meal"
)

// deltaScale turns a score gap into a win probability.
const deltaScale = 100

// Modifier is the handicap subtracted from a meal's score. Harder dishes are
// penalized less.
func Modifier(d meal.Difficulty) float64 {
	switch d {
	case meal.DifficultyHigh:
		return 1
	case meal.DifficultyMed:
		return 2
	case meal.DifficultyLow:
		return 3
	default:
		return 0
	}
}

// Score returns price * len(cuisine) - modifier(difficulty). The cuisine
// length is counted in characters, not bytes.
func Score(m meal.Meal) float64 {
	return m.Price*float64(utf8.RuneCountInString(m.Cuisine)) - Modifier(m.Difficulty)
}

// Delta is the probability that the higher-scoring combatant wins.
func Delta(a, b float64) float64 {
	d := math.Abs(a-b) / deltaScale
	return math.Max(0, math.Min(1, d))
}

// Side identifies a combatant by staging position.
type Side int

// Staging positions.
const (
	First Side = iota
	Second
)

// Other returns the opposite side.
func (s Side) Other() Side {
	if s == First {
		return Second
	}
	return First
}

// Decide picks the winning side for the given scores and a draw in [0,1).
// The higher-scoring side wins when draw < Delta; otherwise the lower one does.
// Equal scores count the first side as higher and give Delta 0, so a tie is
// always won by the second side.
func Decide(first, second, draw float64) Side {
	higher := First
	if second > first {
		higher = Second
	}
	if draw < Delta(first, second) {
		return higher
	}
	return higher.Other()
}
