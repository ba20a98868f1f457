package roster

import "errors"

// Sentinel errors for staging.
var (
	ErrRosterFull         = errors.New("roster is full")
	ErrDuplicateCombatant = errors.New("combatant already staged")
)
