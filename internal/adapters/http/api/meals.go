package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/nicolelin19/mealmax/internal/domain/meal"
)

// MealDependencies defines the catalog operations.
type MealDependencies interface {
	CreateMeal(ctx context.Context, m meal.Meal) (meal.Meal, error)
	DeleteMeal(ctx context.Context, id int64) error
	GetMealByID(ctx context.Context, id int64) (meal.Meal, error)
	GetMealByName(ctx context.Context, name string) (meal.Meal, error)
}

// MealHandler handles catalog requests.
type MealHandler struct {
	deps MealDependencies
}

// NewMealHandler creates a new meal handler.
func NewMealHandler(deps MealDependencies) *MealHandler {
	return &MealHandler{deps: deps}
}

// createMealRequest mirrors the OpenAPI schema for POST /create-meal.
type createMealRequest struct {
	Meal       string   `json:"meal"`
	Cuisine    string   `json:"cuisine"`
	Price      *float64 `json:"price"`
	Difficulty string   `json:"difficulty"`
}

func (r createMealRequest) toMeal() (meal.Meal, error) {
	if strings.TrimSpace(r.Meal) == "" || strings.TrimSpace(r.Cuisine) == "" || r.Price == nil || r.Difficulty == "" {
		return meal.Meal{}, errMissingMealFields
	}
	d, err := meal.ParseDifficulty(r.Difficulty)
	if err != nil {
		return meal.Meal{}, err
	}
	m := meal.Meal{Name: r.Meal, Cuisine: r.Cuisine, Price: *r.Price, Difficulty: d}
	return m, m.Validate()
}

// HandleCreate handles POST /create-meal.
func (h *MealHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_meal"
	var req createMealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, badRequest(op, err))
		return
	}
	m, err := req.toMeal()
	if err != nil {
		fail(w, badRequest(op, err))
		return
	}
	created, err := h.deps.CreateMeal(r.Context(), m)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{"status": "success", "meal": created})
}

// HandleDelete handles DELETE /delete-meal/{id}.
func (h *MealHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "api.delete_meal")
	if err != nil {
		fail(w, err)
		return
	}
	if err := h.deps.DeleteMeal(r.Context(), id); err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"status": "success"})
}

// HandleGetByID handles GET /get-meal-by-id/{id}.
func (h *MealHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "api.get_meal_by_id")
	if err != nil {
		fail(w, err)
		return
	}
	m, err := h.deps.GetMealByID(r.Context(), id)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"status": "success", "meal": m})
}

// HandleGetByName handles GET /get-meal-by-name/{name}.
func (h *MealHandler) HandleGetByName(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PathValue("name"))
	if name == "" {
		fail(w, badRequest("api.get_meal_by_name", errMissingName))
		return
	}
	m, err := h.deps.GetMealByName(r.Context(), name)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"status": "success", "meal": m})
}

func pathID(r *http.Request, op string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, badRequest(op, errInvalidID)
	}
	return id, nil
}
