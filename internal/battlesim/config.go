package battlesim

import "time"

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL string        // Base URL of the service
	Meals   int           // Number of meals to create
	Battles int           // Number of battles to fight
	Workers int           // Concurrent requests while seeding meals
	Timeout time.Duration // HTTP request timeout
	Cleanup bool          // Delete the created meals afterwards
	Verbose bool          // Log every battle
}

// Meal mirrors the meal shape returned by the API.
type Meal struct {
	ID         int64   `json:"id"`
	Name       string  `json:"meal"`
	Cuisine    string  `json:"cuisine"`
	Price      float64 `json:"price"`
	Difficulty string  `json:"difficulty"`
	Battles    int     `json:"battles"`
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
	Deleted    bool    `json:"deleted,omitempty"`
}

// Outcome mirrors a battle result.
type Outcome struct {
	WinnerID    int64   `json:"winner_id"`
	Winner      string  `json:"winner"`
	WinnerScore float64 `json:"winner_score"`
	LoserID     int64   `json:"loser_id"`
	Loser       string  `json:"loser"`
	LoserScore  float64 `json:"loser_score"`
}

// Entry mirrors a leaderboard row.
type Entry struct {
	Rank     int     `json:"rank"`
	ID       int64   `json:"id"`
	Name     string  `json:"meal"`
	Battles  int     `json:"battles"`
	Wins     int     `json:"wins"`
	Losses   int     `json:"losses"`
	WinRatio float64 `json:"win_ratio"`
	WinPct   float64 `json:"win_pct"`
}

// Stats holds run statistics.
type Stats struct {
	MealsCreated  int
	BattlesFought int
	Upsets        int
	Champion      string
	StartTime     time.Time
	Duration      time.Duration
}
