// Package roster holds the two-slot staging area for combatants awaiting a battle.
package roster

import "fmt"

// Capacity is the number of combatants a battle needs.
const Capacity = 2

// Roster is an ordered set of at most Capacity meal ids.
// It is not safe for concurrent use; the battle engine guards it.
type Roster struct {
	ids []int64
}

// New returns an empty roster.
func New() *Roster {
	return &Roster{ids: make([]int64, 0, Capacity)}
}

// Stage appends id to the end of the roster.
func (r *Roster) Stage(id int64) error {
	if r.Contains(id) {
		return fmt.Errorf("%w: meal %d", ErrDuplicateCombatant, id)
	}
	if len(r.ids) >= Capacity {
		return fmt.Errorf("%w: %d combatants already staged", ErrRosterFull, len(r.ids))
	}
	r.ids = append(r.ids, id)
	return nil
}

// List returns a copy of the staged ids in staging order.
func (r *Roster) List() []int64 {
	out := make([]int64, len(r.ids))
	copy(out, r.ids)
	return out
}

// Clear empties the roster.
func (r *Roster) Clear() {
	r.ids = r.ids[:0]
}

// Evict removes id, keeping the order of the rest. Absent ids are ignored.
func (r *Roster) Evict(id int64) {
	for i, v := range r.ids {
		if v == id {
			r.ids = append(r.ids[:i], r.ids[i+1:]...)
			return
		}
	}
}

// Contains reports whether id is staged.
func (r *Roster) Contains(id int64) bool {
	for _, v := range r.ids {
		if v == id {
			return true
		}
	}
	return false
}

// Len returns the number of staged combatants.
func (r *Roster) Len() int {
	return len(r.ids)
}

// Full reports whether a battle can be fought.
func (r *Roster) Full() bool {
	return len(r.ids) == Capacity
}
