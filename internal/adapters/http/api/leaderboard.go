package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/nicolelin19/mealmax/internal/domain/leaderboard"
)

// LeaderboardDependencies defines the interface for leaderboard operations.
type LeaderboardDependencies interface {
	Leaderboard(ctx context.Context, q leaderboard.Query) ([]leaderboard.Entry, error)
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps LeaderboardDependencies
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps}
}

// HandleGetLeaderboard handles GET /leaderboard?sort=wins|win_ratio&limit=N.
// A missing limit returns every meal; limit=0 returns none.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	q := leaderboard.Query{SortBy: r.URL.Query().Get("sort")}
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			fail(w, badRequest(op, err))
			return
		}
		q.Limit, q.Limited = n, true
	}
	entries, err := h.deps.Leaderboard(r.Context(), q)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"status": "success", "leaderboard": entries})
}
