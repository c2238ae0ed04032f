package main

import (
	"context"
	"sort"
)

const maxLeaderboard = 25

// TopEntry is one row of the bounded top-25 points cache.
type TopEntry struct {
	UserHash string `json:"userHash"`
	Score    int64  `json:"score"`
}

// RankedScore is the display form sent to clients.
type RankedScore struct {
	Display string `json:"display"`
	Score   int64  `json:"score"`
}

// addUserPoints feeds the points ledger. Scores come only from discrete
// rewarded actions (voting, claiming, demo boosts), never raw energy.
func addUserPoints(ctx context.Context, store Store, community, day, userHash, display string, delta int64) error {
	if delta <= 0 {
		return nil
	}

	var current int64
	if _, err := kvGetJSON(ctx, store, keyLeaderboardUser(community, day, userHash), &current); err != nil {
		return err
	}
	nextScore := current + delta
	if err := kvSetJSON(ctx, store, keyLeaderboardUser(community, day, userHash), nextScore); err != nil {
		return err
	}
	if err := kvSetJSON(ctx, store, keyLeaderboardName(community, day, userHash), display); err != nil {
		return err
	}

	top, err := loadLeaderboardTop(ctx, store, community, day)
	if err != nil {
		return err
	}

	updated := false
	for i := range top {
		if top[i].UserHash == userHash {
			top[i].Score = nextScore
			updated = true
			break
		}
	}
	if !updated {
		top = append(top, TopEntry{UserHash: userHash, Score: nextScore})
	}

	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Score > top[j].Score
	})
	if len(top) > maxLeaderboard {
		top = top[:maxLeaderboard]
	}
	return kvSetJSON(ctx, store, keyLeaderboardTop(community, day), top)
}

func loadLeaderboardTop(ctx context.Context, store Store, community, day string) ([]TopEntry, error) {
	var top []TopEntry
	if _, err := kvGetJSON(ctx, store, keyLeaderboardTop(community, day), &top); err != nil {
		return nil, err
	}
	return top, nil
}

// leaderboardDisplay resolves stored display names for the top cache.
func leaderboardDisplay(ctx context.Context, store Store, community, day string, top []TopEntry) []RankedScore {
	out := make([]RankedScore, 0, len(top))
	for _, entry := range top {
		var name string
		_, _ = kvGetJSON(ctx, store, keyLeaderboardName(community, day, entry.UserHash), &name)
		out = append(out, RankedScore{
			Display: formatDisplayName(entry.UserHash, name),
			Score:   entry.Score,
		})
	}
	return out
}
