package meal

import (
	"errors"
	"fmt"
)

// Sentinel errors for meal records.
var (
	ErrMealNotFound = errors.New("meal not found")
	ErrMealDeleted  = fmt.Errorf("%w: meal has been deleted", ErrMealNotFound)
	ErrMealExists   = errors.New("meal already exists")
	ErrInvalidMeal  = errors.New("invalid meal")
)
