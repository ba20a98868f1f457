// Package battle stages combatants and resolves battles between them.
package battle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nicolelin19/mealmax/internal/adapters/random"
	"github.com/nicolelin19/mealmax/internal/domain/meal"
	"github.com/nicolelin19/mealmax/internal/domain/roster"
	"github.com/nicolelin19/mealmax/internal/domain/scoring"
	"github.com/nicolelin19/mealmax/pkg/logger"
	"github.com/nicolelin19/mealmax/pkg/metrics"
)

// Store is the part of the meal store the engine needs.
type Store interface {
	// GetMealByID returns meal.ErrMealNotFound or meal.ErrMealDeleted for
	// ids that cannot fight.
	GetMealByID(ctx context.Context, id int64) (meal.Meal, error)
	// RecordBattle adds a win to winnerID and a loss to loserID atomically.
	RecordBattle(ctx context.Context, winnerID, loserID int64) error
}

// Publisher receives outcomes after they are persisted. Enqueue must not block.
type Publisher interface {
	Enqueue(ctx context.Context, o Outcome) bool
}

// Outcome is the result of a single battle.
type Outcome struct {
	WinnerID         int64           `json:"winner_id"`
	Winner           string          `json:"winner"`
	WinnerScore      float64         `json:"winner_score"`
	LoserID          int64           `json:"loser_id"`
	Loser            string          `json:"loser"`
	LoserScore       float64         `json:"loser_score"`
	WinnerDifficulty meal.Difficulty `json:"-"`
	Draw             float64         `json:"-"`
	ResolvedAt       time.Time       `json:"-"`
	Elapsed          time.Duration   `json:"-"`
}

// Upset reports whether the lower-scoring combatant won.
func (o Outcome) Upset() bool {
	return o.WinnerScore < o.LoserScore
}

// Engine owns the roster. Roster reads and writes, including the persist and
// evict steps of Resolve, run under one lock so staging and resolution never
// interleave.
type Engine struct {
	mu        sync.Mutex
	roster    *roster.Roster
	staged    map[int64]meal.Meal
	store     Store
	source    random.Source
	publisher Publisher
	log       logger.Logger
	now       func() time.Time
}

// NewEngine creates an engine with an empty roster.
func NewEngine(store Store, source random.Source, opts ...Option) *Engine {
	e := &Engine{
		roster: roster.New(),
		staged: make(map[int64]meal.Meal, roster.Capacity),
		store:  store,
		source: source,
		log:    logger.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Stage adds a non-deleted meal to the roster.
func (e *Engine) Stage(ctx context.Context, id int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, err := e.store.GetMealByID(ctx, id)
	if err != nil {
		metrics.RecordStagingRejected(rejectReason(err))
		return fmt.Errorf("stage meal %d: %w", id, err)
	}
	if err := e.roster.Stage(id); err != nil {
		metrics.RecordStagingRejected(rejectReason(err))
		return fmt.Errorf("stage meal %q: %w", m.Name, err)
	}
	e.staged[id] = m
	metrics.UpdateRosterSize(e.roster.Len())

	e.log.Debug(ctx, "combatant staged",
		logger.Int64("meal_id", id),
		logger.String("meal", m.Name),
		logger.Int("roster_size", e.roster.Len()))
	return nil
}

// Combatants returns the staged meals in staging order. Stats are refreshed
// from the store; a meal deleted after staging is returned as staged with
// Deleted set.
func (e *Engine) Combatants(ctx context.Context) ([]meal.Meal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids := e.roster.List()
	out := make([]meal.Meal, 0, len(ids))
	for _, id := range ids {
		m, err := e.store.GetMealByID(ctx, id)
		switch {
		case err == nil:
			out = append(out, m)
		case errors.Is(err, meal.ErrMealNotFound):
			snap := e.staged[id]
			snap.Deleted = true
			out = append(out, snap)
		default:
			return nil, fmt.Errorf("list combatants: %w", err)
		}
	}
	return out, nil
}

// Clear empties the roster.
func (e *Engine) Clear(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.roster.Clear()
	clear(e.staged)
	metrics.UpdateRosterSize(0)
	e.log.Debug(ctx, "combatants cleared")
}

// RosterSize returns the number of staged combatants.
func (e *Engine) RosterSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.roster.Len()
}

// Resolve fights the two staged meals. The loser is evicted only after the
// result has been persisted; on any error the roster and stats are unchanged.
func (e *Engine) Resolve(ctx context.Context) (Outcome, error) {
	start := e.now()

	if n := e.RosterSize(); n < roster.Capacity {
		return Outcome{}, insufficient(n)
	}

	// The draw may be a network call, so it is taken outside the lock. It
	// does not depend on which meals are staged.
	draw, err := e.source.Float64(ctx)
	if err != nil {
		metrics.RecordRandomSourceError()
		metrics.RecordBattleFailure("random_source")
		return Outcome{}, fmt.Errorf("resolve battle: draw: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.roster.Full() {
		return Outcome{}, insufficient(e.roster.Len())
	}

	ids := e.roster.List()
	fighters := make([]meal.Meal, len(ids))
	scores := make([]float64, len(ids))
	for i, id := range ids {
		m, err := e.store.GetMealByID(ctx, id)
		if err != nil {
			metrics.RecordBattleFailure("combatant_lookup")
			return Outcome{}, fmt.Errorf("resolve battle: combatant %d: %w", id, err)
		}
		fighters[i] = m
		scores[i] = scoring.Score(m)
	}

	w := scoring.Decide(scores[0], scores[1], draw)
	l := w.Other()
	winner, loser := fighters[w], fighters[l]

	if err := e.store.RecordBattle(ctx, winner.ID, loser.ID); err != nil {
		metrics.RecordBattleFailure("store")
		return Outcome{}, fmt.Errorf("resolve battle: record %q over %q: %w", winner.Name, loser.Name, err)
	}

	e.roster.Evict(loser.ID)
	delete(e.staged, loser.ID)
	winner.Battles++
	winner.Wins++
	e.staged[winner.ID] = winner
	metrics.UpdateRosterSize(e.roster.Len())

	resolvedAt := e.now()
	out := Outcome{
		WinnerID:         winner.ID,
		Winner:           winner.Name,
		WinnerScore:      scores[w],
		LoserID:          loser.ID,
		Loser:            loser.Name,
		LoserScore:       scores[l],
		WinnerDifficulty: winner.Difficulty,
		Draw:             draw,
		ResolvedAt:       resolvedAt,
		Elapsed:          resolvedAt.Sub(start),
	}

	e.log.Info(ctx, "battle resolved",
		logger.String("winner", out.Winner),
		logger.Float64("winner_score", out.WinnerScore),
		logger.String("loser", out.Loser),
		logger.Float64("loser_score", out.LoserScore),
		logger.Float64("draw", draw))

	if e.publisher != nil && !e.publisher.Enqueue(ctx, out) {
		e.log.Warn(ctx, "battle outcome dropped", logger.Int64("winner_id", out.WinnerID))
	}
	return out, nil
}

func insufficient(staged int) error {
	metrics.RecordBattleFailure("insufficient_combatants")
	return fmt.Errorf("%w: %d of %d staged", ErrInsufficientCombatants, staged, roster.Capacity)
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, meal.ErrMealDeleted):
		return "deleted"
	case errors.Is(err, meal.ErrMealNotFound):
		return "not_found"
	case errors.Is(err, roster.ErrRosterFull):
		return "full"
	case errors.Is(err, roster.ErrDuplicateCombatant):
		return "duplicate"
	default:
		return "store"
	}
}
