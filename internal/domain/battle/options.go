package battle

import (
	"time"

	"github.com/nicolelin19/mealmax/pkg/logger"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithPublisher sets where resolved outcomes are sent.
func WithPublisher(p Publisher) Option {
	return func(e *Engine) {
		e.publisher = p
	}
}

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}
