package battle

import "errors"

// ErrInsufficientCombatants is returned by Resolve unless exactly two meals are staged.
var ErrInsufficientCombatants = errors.New("two combatants must be staged")
