package leaderboard

import "errors"

// ErrInvalidArgument is returned for an unknown sort key or a negative limit.
var ErrInvalidArgument = errors.New("invalid leaderboard argument")
