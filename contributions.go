package main

import (
	"context"
	"math"
	"sort"
)

type EventKind string

const (
	KindComment EventKind = "COMMENT"
	KindUpvote  EventKind = "UPVOTE"
	KindSystem  EventKind = "SYSTEM"
)

type ContributionEvent struct {
	Kind               EventKind `json:"kind"`
	Count              int64     `json:"count"`
	BaseEnergyPerEvent float64   `json:"baseEnergyPerEvent"`
}

type Attribution struct {
	UserHash string
	Display  string
}

type AppliedMultiplier struct {
	Value      float64 `json:"value"`
	DurationMs int64   `json:"durationMs"`
}

type ApplyResult struct {
	DeltaEnergy       int64              `json:"deltaEnergy"`
	AppliedMultiplier *AppliedMultiplier `json:"appliedMultiplier,omitempty"`
}

const maxContributors = 200

// applyContributions is the central mutation: a batch of typed events is
// folded into the day totals under the active multiplier, goal state flips
// exactly once per day, and positive attributed deltas feed the contributor
// tracking.
func applyContributions(ctx context.Context, app *App, community, day string, events []ContributionEvent, source *Attribution) (*ApplyResult, error) {
	lock := app.locks.forDay(community, day)
	lock.Lock()
	defer lock.Unlock()

	state := loadDayState(ctx, app.store, community, day)
	now := nowMs()

	multiplier := 1.0
	var applied *AppliedMultiplier
	if state.ActiveMultiplier != nil {
		if state.ActiveMultiplier.ExpiresAt > now {
			multiplier = state.ActiveMultiplier.Value
			applied = &AppliedMultiplier{
				Value:      multiplier,
				DurationMs: state.ActiveMultiplier.ExpiresAt - now,
			}
		} else {
			// Lazy expiry: no background timer clears multipliers.
			state.ActiveMultiplier = nil
		}
	}

	var totalDelta int64
	for _, event := range events {
		base := float64(event.Count) * event.BaseEnergyPerEvent
		totalDelta += int64(math.Floor(base * multiplier))

		switch event.Kind {
		case KindComment:
			state.Totals.Comments += event.Count
		case KindUpvote:
			state.Totals.Upvotes += event.Count
		}
	}

	state.Totals.Energy += totalDelta

	if !state.DailyGoal.Achieved && state.Totals.Energy >= state.DailyGoal.Target {
		state.DailyGoal.Achieved = true
		// completedAt is written once per day; later crossings keep the
		// original timestamp.
		key := keyCompletedAt(community, day)
		existing, err := app.store.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			if err := kvSetJSON(ctx, app.store, key, nowMs()); err != nil {
				return nil, err
			}
		}
	}

	if err := saveDayState(ctx, app.store, community, state); err != nil {
		return nil, err
	}

	if totalDelta > 0 && source != nil && source.UserHash != "" {
		if err := recordContribution(ctx, app.store, community, day, source.UserHash, totalDelta, source.Display); err != nil {
			return nil, err
		}
	}

	return &ApplyResult{DeltaEnergy: totalDelta, AppliedMultiplier: applied}, nil
}

// recordContribution updates the per-user cumulative contribution, the user
// record, the bounded recency window, and the derived top-3.
func recordContribution(ctx context.Context, store Store, community, day, userHash string, deltaEnergy int64, display string) error {
	if deltaEnergy <= 0 {
		return nil
	}

	var current int64
	if _, err := kvGetJSON(ctx, store, keyContribUser(community, day, userHash), &current); err != nil {
		return err
	}
	nextTotal := current + deltaEnergy
	if err := kvSetJSON(ctx, store, keyContribUser(community, day, userHash), nextTotal); err != nil {
		return err
	}

	users, err := loadUsers(ctx, store, community, day)
	if err != nil {
		return err
	}
	existing := users[userHash]
	if display == "" {
		display = existing.Display
	}
	users[userHash] = UserRecord{
		UserHash:     userHash,
		Contribution: nextTotal,
		LastActiveAt: nowMs(),
		Display:      formatDisplayName(userHash, display),
	}
	if err := kvSetJSON(ctx, store, keyUsers(community, day), users); err != nil {
		return err
	}

	var window []string
	if _, err := kvGetJSON(ctx, store, keyContributors(community, day), &window); err != nil {
		return err
	}
	window = append(window, userHash)
	if len(window) > maxContributors {
		window = window[len(window)-maxContributors:]
	}
	if err := kvSetJSON(ctx, store, keyContributors(community, day), window); err != nil {
		return err
	}

	return recomputeTop3(ctx, store, community, day, window)
}

type TopContributor struct {
	UserHash string `json:"userHash"`
	Score    int64  `json:"score"`
}

// recomputeTop3 dedupes the recency window, looks up each user's cumulative
// contribution, and keeps the best three. O(window) per contributing write,
// acceptable at the 200 bound.
func recomputeTop3(ctx context.Context, store Store, community, day string, window []string) error {
	seen := make(map[string]bool, len(window))
	entries := make([]TopContributor, 0, len(window))
	for _, hash := range window {
		if seen[hash] {
			continue
		}
		seen[hash] = true

		var score int64
		if _, err := kvGetJSON(ctx, store, keyContribUser(community, day, hash), &score); err != nil {
			return err
		}
		if score > 0 {
			entries = append(entries, TopContributor{UserHash: hash, Score: score})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	if len(entries) > 3 {
		entries = entries[:3]
	}
	return kvSetJSON(ctx, store, keyTop3(community, day), entries)
}

func formatDisplayName(userHash, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if userHash == "system" {
		return "System"
	}
	safe := "ANON"
	if userHash != "" {
		end := 4
		if len(userHash) < end {
			end = len(userHash)
		}
		safe = upperASCII(userHash[:end])
	}
	return "Player " + safe + "..."
}

func upperASCII(s string) string {
	buf := []byte(s)
	for i, c := range buf {
		if c >= 'a' && c <= 'z' {
			buf[i] = c - ('a' - 'A')
		}
	}
	return string(buf)
}
