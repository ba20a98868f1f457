// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/nicolelin19/mealmax/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	MealDependencies
	CombatantDependencies
	BattleDependencies
	LeaderboardDependencies
	HealthDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	mealHandler        *MealHandler
	combatantHandler   *CombatantHandler
	battleHandler      *BattleHandler
	leaderboardHandler *LeaderboardHandler
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler

	logger logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for access logs.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		mealHandler:        NewMealHandler(deps),
		combatantHandler:   NewCombatantHandler(deps),
		battleHandler:      NewBattleHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps),
		healthHandler:      NewHealthHandler(deps),
		statsHandler:       NewStatsHandler(statsProvider),
		logger:             logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	s.handle(mux, "POST /create-meal", "create_meal", s.mealHandler.HandleCreate)
	s.handle(mux, "DELETE /delete-meal/{id}", "delete_meal", s.mealHandler.HandleDelete)
	s.handle(mux, "GET /get-meal-by-id/{id}", "get_meal_by_id", s.mealHandler.HandleGetByID)
	s.handle(mux, "GET /get-meal-by-name/{name}", "get_meal_by_name", s.mealHandler.HandleGetByName)

	s.handle(mux, "POST /prep-combatant", "prep_combatant", s.combatantHandler.HandlePrep)
	s.handle(mux, "GET /get-combatants", "get_combatants", s.combatantHandler.HandleList)
	s.handle(mux, "POST /clear-combatants", "clear_combatants", s.combatantHandler.HandleClear)

	s.handle(mux, "GET /battle", "battle", s.battleHandler.HandleBattle)
	s.handle(mux, "GET /leaderboard", "leaderboard", s.leaderboardHandler.HandleGetLeaderboard)

	s.handle(mux, "GET /health", "health", s.healthHandler.HandleHealth)
	s.handle(mux, "GET /db-check", "db_check", s.healthHandler.HandleDBCheck)
	s.handle(mux, "GET /stats", "stats", s.statsHandler.HandleStats)
	mux.Handle("GET /metrics", s.healthHandler.MetricsHandler())
}

func (s *Server) handle(mux *http.ServeMux, pattern, endpoint string, h http.HandlerFunc) {
	mux.Handle(pattern, RequestID(AccessLog(s.logger, MetricsMiddleware(h, endpoint))))
}

// envelope is a success body: "status" plus payload fields.
type envelope map[string]any

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Status: "error", Message: msg})
}
