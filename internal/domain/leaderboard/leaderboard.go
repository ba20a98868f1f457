// Package leaderboard ranks meals by their battle record.
package leaderboard

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nicolelin19/mealmax/internal/domain/meal"
	"github.com/nicolelin19/mealmax/pkg/logger"
	"github.com/nicolelin19/mealmax/pkg/metrics"
)

// Sort keys.
const (
	SortWins     = "wins"
	SortWinRatio = "win_ratio"
)

// Query selects the ranking metric and an optional result size.
// Limit only applies when Limited is set, so the zero Query returns every
// entry and an explicit limit of 0 returns none.
type Query struct {
	SortBy  string
	Limit   int
	Limited bool
}

// Top returns a query for the first n entries by sortBy.
func Top(sortBy string, n int) Query {
	return Query{SortBy: sortBy, Limit: n, Limited: true}
}

// Normalize applies defaults and validates q.
func (q Query) Normalize() (Query, error) {
	q.SortBy = strings.ToLower(strings.TrimSpace(q.SortBy))
	if q.SortBy == "" {
		q.SortBy = SortWins
	}
	if q.SortBy != SortWins && q.SortBy != SortWinRatio {
		return Query{}, fmt.Errorf("%w: unknown sort key %q", ErrInvalidArgument, q.SortBy)
	}
	if q.Limit < 0 {
		return Query{}, fmt.Errorf("%w: limit %d must not be negative", ErrInvalidArgument, q.Limit)
	}
	if !q.Limited {
		q.Limit = 0
	}
	return q, nil
}

// Entry is one leaderboard row.
type Entry struct {
	Rank       int             `json:"rank"`
	ID         int64           `json:"id"`
	Meal       string          `json:"meal"`
	Cuisine    string          `json:"cuisine"`
	Price      float64         `json:"price"`
	Difficulty meal.Difficulty `json:"difficulty"`
	Battles    int             `json:"battles"`
	Wins       int             `json:"wins"`
	Losses     int             `json:"losses"`
	WinRatio   float64         `json:"win_ratio"`
	WinPct     float64         `json:"win_pct"`
}

// Store lists the meals that can be ranked.
type Store interface {
	// ListMeals returns every non-deleted meal.
	ListMeals(ctx context.Context) ([]meal.Meal, error)
}

// Cache keeps computed leaderboards between battles.
type Cache interface {
	Get(ctx context.Context, q Query) ([]Entry, bool, error)
	Set(ctx context.Context, q Query, entries []Entry) error
	Invalidate(ctx context.Context) error
}

// Board answers leaderboard queries.
type Board struct {
	store Store
	cache Cache
	log   logger.Logger
	// generation advances on every Invalidate; a computed board is only
	// cached if no invalidation happened while it was being built.
	generation atomic.Uint64
	// mu makes the generation check and cache write atomic with respect to
	// Invalidate.
	mu sync.Mutex
}

// New creates a Board.
func New(store Store, opts ...Option) *Board {
	b := &Board{store: store, log: logger.Nop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Query returns entries sorted by q.SortBy descending, ties broken by id ascending.
func (b *Board) Query(ctx context.Context, q Query) ([]Entry, error) {
	start := time.Now()
	q, err := q.Normalize()
	if err != nil {
		return nil, err
	}
	defer func() {
		metrics.RecordLeaderboardQuery(q.SortBy, float64(time.Since(start).Microseconds())/1000)
	}()

	if b.cache != nil {
		entries, ok, err := b.cache.Get(ctx, q)
		switch {
		case err != nil:
			metrics.RecordCacheError()
			b.log.Warn(ctx, "leaderboard cache read failed", logger.Error(err))
		case ok:
			metrics.RecordCacheHit()
			return entries, nil
		default:
			metrics.RecordCacheMiss()
		}
	}

	gen := b.generation.Load()
	meals, err := b.store.ListMeals(ctx)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	entries := Rank(meals, q)

	if b.cache != nil {
		b.publish(ctx, q, gen, entries)
	}
	return entries, nil
}

// publish caches entries unless an invalidation happened since gen was read.
func (b *Board) publish(ctx context.Context, q Query, gen uint64, entries []Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.generation.Load() != gen {
		return
	}
	if err := b.cache.Set(ctx, q, entries); err != nil {
		metrics.RecordCacheError()
		b.log.Warn(ctx, "leaderboard cache write failed", logger.Error(err))
	}
}

// Invalidate drops cached leaderboards. It is a no-op without a cache.
func (b *Board) Invalidate(ctx context.Context) error {
	if b.cache == nil {
		b.generation.Add(1)
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.generation.Add(1)
	if err := b.cache.Invalidate(ctx); err != nil {
		metrics.RecordCacheError()
		return fmt.Errorf("invalidate leaderboard cache: %w", err)
	}
	return nil
}

// Rank builds entries for meals in the order requested by q, which must be normalized.
// Deleted meals are skipped.
func Rank(meals []meal.Meal, q Query) []Entry {
	entries := make([]Entry, 0, len(meals))
	for _, m := range meals {
		if m.Deleted {
			continue
		}
		ratio := m.WinRatio()
		entries = append(entries, Entry{
			ID:         m.ID,
			Meal:       m.Name,
			Cuisine:    m.Cuisine,
			Price:      m.Price,
			Difficulty: m.Difficulty,
			Battles:    m.Wins + m.Losses,
			Wins:       m.Wins,
			Losses:     m.Losses,
			WinRatio:   ratio,
			WinPct:     math.Round(ratio*1000) / 10,
		})
	}

	metric := func(e Entry) float64 { return float64(e.Wins) }
	if q.SortBy == SortWinRatio {
		metric = func(e Entry) float64 { return e.WinRatio }
	}
	sort.Slice(entries, func(i, j int) bool {
		return less(metric(entries[i]), entries[i].ID, metric(entries[j]), entries[j].ID)
	})

	if q.Limited && len(entries) > q.Limit {
		entries = entries[:q.Limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

func less(aScore float64, aID int64, bScore float64, bID int64) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aID < bID
}
