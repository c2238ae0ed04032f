package main

import "context"

// applyPenalty subtracts energy for negative community signals, clamped so
// totals never go below zero. The goal un-achieves only while the reward is
// unclaimed; a claimed reward is permanent for the day. Returns the penalty
// actually applied.
func applyPenalty(ctx context.Context, app *App, community, day string, deltaEnergy int64, reason string) (int64, error) {
	lock := app.locks.forDay(community, day)
	lock.Lock()
	defer lock.Unlock()

	state := loadDayState(ctx, app.store, community, day)

	actual := deltaEnergy
	if actual > state.Totals.Energy {
		actual = state.Totals.Energy
	}
	state.Totals.Energy -= actual

	if state.Totals.Energy < state.DailyGoal.Target &&
		state.DailyGoal.Achieved &&
		state.DailyGoal.RewardState == RewardUnclaimed {
		state.DailyGoal.Achieved = false
	}

	if err := saveDayState(ctx, app.store, community, state); err != nil {
		return 0, err
	}
	return actual, nil
}
