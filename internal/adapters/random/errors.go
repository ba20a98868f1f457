package random

import "errors"

// ErrUnavailable is returned when a random value could not be obtained.
var ErrUnavailable = errors.New("random source unavailable")
