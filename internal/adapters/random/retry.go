package random

import (
	"context"
	"time"

	"github.com/nicolelin19/mealmax/pkg/logger"
)

const (
	defaultRetryAttempts = 3
	defaultBackoff       = 200 * time.Millisecond
)

type retryingSource struct {
	inner       Source
	log         logger.Logger
	maxAttempts int
	backoff     time.Duration
}

// WithRetry wraps inner with linear backoff retries. Non-positive values use defaults.
func WithRetry(inner Source, log logger.Logger, maxAttempts int, backoff time.Duration) Source {
	if maxAttempts <= 0 {
		maxAttempts = defaultRetryAttempts
	}
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	if log == nil {
		log = logger.Nop()
	}
	return &retryingSource{inner: inner, log: log, maxAttempts: maxAttempts, backoff: backoff}
}

func (r *retryingSource) Float64(ctx context.Context) (float64, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		v, err := r.inner.Float64(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if attempt == r.maxAttempts {
			break
		}
		r.log.Warn(ctx, "random draw retry",
			logger.Int("attempt", attempt),
			logger.Int("max_attempts", r.maxAttempts),
			logger.Error(err))

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(time.Duration(attempt) * r.backoff):
		}
	}
	return 0, lastErr
}
