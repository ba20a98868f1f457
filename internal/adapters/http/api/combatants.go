package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/nicolelin19/mealmax/internal/domain/meal"
)

// CombatantDependencies defines roster operations.
type CombatantDependencies interface {
	PrepCombatant(ctx context.Context, name string) ([]string, error)
	Combatants(ctx context.Context) ([]meal.Meal, error)
	ClearCombatants(ctx context.Context)
}

// CombatantHandler handles roster requests.
type CombatantHandler struct {
	deps CombatantDependencies
}

// NewCombatantHandler creates a new combatant handler.
func NewCombatantHandler(deps CombatantDependencies) *CombatantHandler {
	return &CombatantHandler{deps: deps}
}

type prepRequest struct {
	Meal string `json:"meal"`
}

// combatant adds the deleted flag hidden on meal.Meal.
type combatant struct {
	meal.Meal
	Deleted bool `json:"deleted,omitempty"`
}

// HandlePrep handles POST /prep-combatant.
func (h *CombatantHandler) HandlePrep(w http.ResponseWriter, r *http.Request) {
	const op = "api.prep_combatant"
	var req prepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, badRequest(op, err))
		return
	}
	name := strings.TrimSpace(req.Meal)
	if name == "" {
		fail(w, badRequest(op, errMissingName))
		return
	}
	names, err := h.deps.PrepCombatant(r.Context(), name)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"status": "success", "combatants": names})
}

// HandleList handles GET /get-combatants.
func (h *CombatantHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	staged, err := h.deps.Combatants(r.Context())
	if err != nil {
		fail(w, err)
		return
	}
	out := make([]combatant, len(staged))
	for i, m := range staged {
		out[i] = combatant{Meal: m, Deleted: m.Deleted}
	}
	writeJSON(w, http.StatusOK, envelope{"status": "success", "combatants": out})
}

// HandleClear handles POST /clear-combatants.
func (h *CombatantHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	h.deps.ClearCombatants(r.Context())
	writeJSON(w, http.StatusOK, envelope{"status": "success"})
}
