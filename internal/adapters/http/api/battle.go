package api

import (
	"context"
	"net/http"

	"github.com/nicolelin19/mealmax/internal/domain/battle"
)

// BattleDependencies resolves battles.
type BattleDependencies interface {
	Battle(ctx context.Context) (battle.Outcome, error)
}

// BattleHandler handles battle requests.
type BattleHandler struct {
	deps BattleDependencies
}

// NewBattleHandler creates a new battle handler.
func NewBattleHandler(deps BattleDependencies) *BattleHandler {
	return &BattleHandler{deps: deps}
}

// HandleBattle handles GET /battle.
func (h *BattleHandler) HandleBattle(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.Battle(r.Context())
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"status": "success", "winner": out.Winner, "outcome": out})
}
