// Package random provides the uniform draws used to resolve battles.
package random

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"
)

// Source yields uniform values in [0,1).
type Source interface {
	Float64(ctx context.Context) (float64, error)
}

// Local draws from a process-local PRNG.
type Local struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewLocal returns a Local seeded from crypto/rand.
func NewLocal() (*Local, error) {
	seed, err := NewSeed()
	if err != nil {
		return nil, err
	}
	return NewLocalWithSeed(seed), nil
}

// NewLocalWithSeed returns a Local with a fixed seed, for reproducible runs.
func NewLocalWithSeed(seed int64) *Local {
	return &Local{rng: rand.New(rand.NewSource(seed))} //nolint:gosec // battle draws are not security sensitive
}

// Float64 implements Source.
func (l *Local) Float64(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Float64(), nil
}

// NewSeed generates a seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Fixed replays a sequence of values, repeating the last one once exhausted.
type Fixed struct {
	mu     sync.Mutex
	values []float64
	next   int
}

// NewFixed returns a Fixed source. With no values it always yields 0.
func NewFixed(values ...float64) *Fixed {
	return &Fixed{values: values}
}

// Float64 implements Source.
func (f *Fixed) Float64(context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.values) == 0 {
		return 0, nil
	}
	v := f.values[f.next]
	if f.next < len(f.values)-1 {
		f.next++
	}
	return v, nil
}
