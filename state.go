package main

import (
	"context"
	"log"
)

type RewardState string

const (
	RewardUnclaimed RewardState = "UNCLAIMED"
	RewardClaimed   RewardState = "CLAIMED"
)

type Totals struct {
	Energy   int64 `json:"energy"`
	Comments int64 `json:"comments"`
	Upvotes  int64 `json:"upvotes"`
}

type DailyGoal struct {
	Target      int64       `json:"target"`
	Achieved    bool        `json:"achieved"`
	RewardState RewardState `json:"rewardState"`
}

type ActiveMultiplier struct {
	OptionID   string  `json:"optionId"`
	Value      float64 `json:"value"`
	ExpiresAt  int64   `json:"expiresAt"`
	DurationMs int64   `json:"durationMs"`
}

type DayState struct {
	DayKey           string            `json:"dayKey"`
	StartedAt        int64             `json:"startedAt"`
	Totals           Totals            `json:"totals"`
	DailyGoal        DailyGoal         `json:"dailyGoal"`
	ActiveMultiplier *ActiveMultiplier `json:"activeMultiplier,omitempty"`
}

type UserRecord struct {
	UserHash     string `json:"userHash"`
	Contribution int64  `json:"contribution"`
	LastActiveAt int64  `json:"lastActiveAt"`
	Display      string `json:"display,omitempty"`
}

func freshDayState(day string, cfg GameConfig, startedAt int64) *DayState {
	return &DayState{
		DayKey:    day,
		StartedAt: startedAt,
		Totals:    Totals{},
		DailyGoal: DailyGoal{
			Target:      cfg.DailyGoalEnergy,
			Achieved:    false,
			RewardState: RewardUnclaimed,
		},
	}
}

// loadDayState returns the day's record, creating and persisting a fresh one
// on first access. Like config, the read fails open: on a store outage a
// fresh unpersisted state is returned so the read path stays up.
func loadDayState(ctx context.Context, store Store, community, day string) *DayState {
	var state DayState
	found, err := kvGetJSON(ctx, store, keyState(community, day), &state)
	if err != nil {
		log.Println("day state load failed, using fresh state:", err)
		return freshDayState(day, loadConfig(ctx, store, community), nowMs())
	}
	if found {
		return &state
	}

	fresh := freshDayState(day, loadConfig(ctx, store, community), nowMs())
	if err := kvSetJSON(ctx, store, keyState(community, day), fresh); err != nil {
		log.Println("day state init persist failed:", err)
	}
	return fresh
}

func saveDayState(ctx context.Context, store Store, community string, state *DayState) error {
	return kvSetJSON(ctx, store, keyState(community, state.DayKey), state)
}

func loadUsers(ctx context.Context, store Store, community, day string) (map[string]UserRecord, error) {
	users := make(map[string]UserRecord)
	if _, err := kvGetJSON(ctx, store, keyUsers(community, day), &users); err != nil {
		return nil, err
	}
	return users, nil
}

// claimDailyReward flips UNCLAIMED -> CLAIMED once the goal is achieved.
// The transition is permanent for the day; the bool reports whether this
// call performed it.
func claimDailyReward(ctx context.Context, app *App, community, day string) (*DayState, bool, error) {
	lock := app.locks.forDay(community, day)
	lock.Lock()
	defer lock.Unlock()

	state := loadDayState(ctx, app.store, community, day)
	if !state.DailyGoal.Achieved || state.DailyGoal.RewardState != RewardUnclaimed {
		return state, false, nil
	}

	state.DailyGoal.RewardState = RewardClaimed
	if err := saveDayState(ctx, app.store, community, state); err != nil {
		return nil, false, err
	}

	if err := pushAuditEvent(ctx, app.store, community, day, AuditEvent{
		Type:   AuditRewardClaimed,
		Source: "USER",
		Meta:   map[string]interface{}{"dayKey": day},
	}); err != nil {
		return nil, false, err
	}
	return state, true, nil
}
