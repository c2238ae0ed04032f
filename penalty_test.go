package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPenaltyClampsAtZero(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	setTestConfig(t, app, 1000)
	day := rolloverIfNeeded(ctx, app.store, testCommunity)

	_, err := applyContributions(ctx, app, testCommunity, day, []ContributionEvent{
		{Kind: KindComment, Count: 2, BaseEnergyPerEvent: 10},
	}, nil)
	require.NoError(t, err)

	applied, err := applyPenalty(ctx, app, testCommunity, day, 50, "test")
	require.NoError(t, err)
	assert.Equal(t, int64(20), applied)

	state := loadDayState(ctx, app.store, testCommunity, day)
	assert.Zero(t, state.Totals.Energy)
}

func TestApplyPenaltyUnachievesUnclaimedGoal(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	setTestConfig(t, app, 100)
	day := rolloverIfNeeded(ctx, app.store, testCommunity)

	_, err := applyContributions(ctx, app, testCommunity, day, []ContributionEvent{
		{Kind: KindComment, Count: 12, BaseEnergyPerEvent: 10},
	}, nil)
	require.NoError(t, err)

	state := loadDayState(ctx, app.store, testCommunity, day)
	require.True(t, state.DailyGoal.Achieved)

	applied, err := applyPenalty(ctx, app, testCommunity, day, 30, "test")
	require.NoError(t, err)
	assert.Equal(t, int64(30), applied)

	state = loadDayState(ctx, app.store, testCommunity, day)
	assert.Equal(t, int64(90), state.Totals.Energy)
	assert.False(t, state.DailyGoal.Achieved)
}

func TestApplyPenaltyCannotRevokeClaimedReward(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	setTestConfig(t, app, 100)
	day := rolloverIfNeeded(ctx, app.store, testCommunity)

	_, err := applyContributions(ctx, app, testCommunity, day, []ContributionEvent{
		{Kind: KindComment, Count: 12, BaseEnergyPerEvent: 10},
	}, nil)
	require.NoError(t, err)
	_, claimed, err := claimDailyReward(ctx, app, testCommunity, day)
	require.NoError(t, err)
	require.True(t, claimed)

	_, err = applyPenalty(ctx, app, testCommunity, day, 120, "test")
	require.NoError(t, err)

	state := loadDayState(ctx, app.store, testCommunity, day)
	assert.Zero(t, state.Totals.Energy)
	assert.True(t, state.DailyGoal.Achieved, "claimed goal must stay achieved")
	assert.Equal(t, RewardClaimed, state.DailyGoal.RewardState)
}

func TestApplyPenaltyAboveTargetKeepsGoal(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	setTestConfig(t, app, 100)
	day := rolloverIfNeeded(ctx, app.store, testCommunity)

	_, err := applyContributions(ctx, app, testCommunity, day, []ContributionEvent{
		{Kind: KindComment, Count: 20, BaseEnergyPerEvent: 10},
	}, nil)
	require.NoError(t, err)

	_, err = applyPenalty(ctx, app, testCommunity, day, 50, "test")
	require.NoError(t, err)

	state := loadDayState(ctx, app.store, testCommunity, day)
	assert.Equal(t, int64(150), state.Totals.Energy)
	assert.True(t, state.DailyGoal.Achieved)
}
