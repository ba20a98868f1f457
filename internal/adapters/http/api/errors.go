package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/nicolelin19/mealmax/internal/adapters/random"
	"github.com/nicolelin19/mealmax/internal/adapters/repository"
	"github.com/nicolelin19/mealmax/internal/domain/battle"
	"github.com/nicolelin19/mealmax/internal/domain/leaderboard"
	"github.com/nicolelin19/mealmax/internal/domain/meal"
	"github.com/nicolelin19/mealmax/internal/domain/roster"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrUnhealthy  = errors.New("unhealthy")
)

// badRequest wraps err as ErrBadRequest for op.
func badRequest(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err)
}

// statusFor maps domain error kinds to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, meal.ErrMealNotFound):
		return http.StatusNotFound
	case errors.Is(err, roster.ErrRosterFull),
		errors.Is(err, roster.ErrDuplicateCombatant),
		errors.Is(err, battle.ErrInsufficientCombatants),
		errors.Is(err, meal.ErrMealExists):
		return http.StatusConflict
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, meal.ErrInvalidMeal),
		errors.Is(err, leaderboard.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrStorage), errors.Is(err, ErrUnhealthy):
		return http.StatusServiceUnavailable
	case errors.Is(err, random.ErrUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with the status its kind maps to.
func fail(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err)
}

var (
	errMissingMealFields = errors.New("meal, cuisine, price and difficulty are required")
	errMissingName       = errors.New("meal name is required")
	errInvalidID         = errors.New("id must be a positive integer")
)
