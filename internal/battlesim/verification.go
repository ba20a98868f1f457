package battlesim

import (
	"context"
	"fmt"
)

// verifyLeaderboard checks ordering for both sort keys and that the
// simulated meals' wins and losses each add up to the battles fought.
func verifyLeaderboard(ctx context.Context, client *Client, meals []Meal, stats *Stats) error {
	ours := make(map[int64]bool, len(meals))
	for _, m := range meals {
		ours[m.ID] = true
	}

	for _, sortBy := range []string{"wins", "win_ratio"} {
		entries, err := client.Leaderboard(ctx, sortBy)
		if err != nil {
			return err
		}
		if err := verifyOrder(entries, sortBy); err != nil {
			return err
		}

		var wins, losses, seen int
		for _, e := range entries {
			if !ours[e.ID] {
				continue
			}
			seen++
			wins += e.Wins
			losses += e.Losses
			if e.Battles != e.Wins+e.Losses {
				return fmt.Errorf("meal %d: battles %d != wins %d + losses %d", e.ID, e.Battles, e.Wins, e.Losses)
			}
		}
		if seen != len(meals) {
			return fmt.Errorf("leaderboard %s: found %d of %d simulated meals", sortBy, seen, len(meals))
		}
		if wins != stats.BattlesFought || losses != stats.BattlesFought {
			return fmt.Errorf("leaderboard %s: wins %d losses %d, want %d each", sortBy, wins, losses, stats.BattlesFought)
		}
	}
	return nil
}

// verifyOrder checks metric descending with ties broken by id ascending.
func verifyOrder(entries []Entry, sortBy string) error {
	metric := func(e Entry) float64 {
		if sortBy == "win_ratio" {
			return e.WinRatio
		}
		return float64(e.Wins)
	}
	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		if cur.Rank != i+1 {
			return fmt.Errorf("leaderboard %s: entry %d has rank %d", sortBy, i, cur.Rank)
		}
		pm, cm := metric(prev), metric(cur)
		if cm > pm || (cm == pm && cur.ID < prev.ID) {
			return fmt.Errorf("leaderboard %s not sorted at entry %d (%d after %d)", sortBy, i, cur.ID, prev.ID)
		}
	}
	return nil
}
