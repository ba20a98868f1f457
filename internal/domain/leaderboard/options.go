package leaderboard

import "github.com/nicolelin19/mealmax/pkg/logger"

// Option applies a configuration option to the Board.
type Option func(*Board)

// WithCache enables caching of computed leaderboards.
func WithCache(c Cache) Option {
	return func(b *Board) {
		b.cache = c
	}
}

// WithLogger sets the board logger.
func WithLogger(l logger.Logger) Option {
	return func(b *Board) {
		if l != nil {
			b.log = l
		}
	}
}
