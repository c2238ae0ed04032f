package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doRequest(t *testing.T, handler http.HandlerFunc, method, target, body, userID, userName string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, reader)
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	if userName != "" {
		req.Header.Set("X-User-Name", userName)
	}
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHealthHandler(t *testing.T) {
	rec := doRequest(t, healthHandler, http.MethodGet, "/health", "", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestStateHandlerCanDemoFlag(t *testing.T) {
	app := newTestApp(t)

	rec := doRequest(t, stateHandler(app), http.MethodGet, "/api/state", "", "t2_abc", "someone")
	require.Equal(t, http.StatusOK, rec.Code)
	var state StateSyncResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.False(t, state.CanDemo)

	rec = doRequest(t, stateHandler(app), http.MethodGet, "/api/state", "", "t2_mod", "modly")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.True(t, state.CanDemo)
}

func TestVoteHandlerRejectsBadInput(t *testing.T) {
	app := newTestApp(t)

	rec := doRequest(t, voteHandler(app), http.MethodPost, "/api/vote", `{}`, "t2_abc", "alice")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp SimpleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_REQUEST", resp.Error)

	rec = doRequest(t, voteHandler(app), http.MethodPost, "/api/vote", `{"optionId":"nope"}`, "t2_abc", "alice")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_OPTION", resp.Error)
}

func TestVoteHandlerAwardsEnergyAndPoints(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	setTestConfig(t, app, 10000)

	rec := doRequest(t, voteHandler(app), http.MethodPost, "/api/vote", `{"optionId":"boost"}`, "t2_abc", "alice")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp VoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.True(t, resp.UserHasVoted)
	require.NotEmpty(t, resp.DayKey)

	day := resp.DayKey
	state := loadDayState(ctx, app.store, testCommunity, day)
	require.NotNil(t, state.ActiveMultiplier)
	// Vote energy of 5 doubled by the freshly installed boost.
	assert.Equal(t, int64(10), state.Totals.Energy)

	top, err := loadLeaderboardTop(ctx, app.store, testCommunity, day)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, hashUserID("t2_abc"), top[0].UserHash)
	assert.Equal(t, int64(votePoints), top[0].Score)

	display := leaderboardDisplay(ctx, app.store, testCommunity, day, top)
	require.Len(t, display, 1)
	assert.Equal(t, "u/alice", display[0].Display)
}

func TestAdminResetDeniedForNonModerator(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	day := rolloverIfNeeded(ctx, app.store, testCommunity)

	rec := doRequest(t, adminResetDayHandler(app), http.MethodPost, "/api/admin/resetDay", "", "t2_abc", "sneaky")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	var resp SimpleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "FORBIDDEN", resp.Error)

	events, err := getAuditEvents(ctx, app.store, testCommunity, day)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, AuditAdminDenied, events[0].Type)
	assert.Equal(t, hashUserID("t2_abc"), events[0].Source)
	assert.Equal(t, "resetDay", events[0].Meta["action"])
}

func TestAdminResetAllowedForModerator(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	setTestConfig(t, app, 100)
	day := rolloverIfNeeded(ctx, app.store, testCommunity)

	_, err := applyContributions(ctx, app, testCommunity, day, []ContributionEvent{
		{Kind: KindComment, Count: 4, BaseEnergyPerEvent: 10},
	}, nil)
	require.NoError(t, err)

	rec := doRequest(t, adminResetDayHandler(app), http.MethodPost, "/api/admin/resetDay", "", "t2_mod", "modly")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp AdminResetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, day, resp.DayKey)
	assert.NotZero(t, resp.ResetAtMs)

	state := loadDayState(ctx, app.store, testCommunity, day)
	assert.Zero(t, state.Totals.Energy)
}

func TestAdminPenaltyHandler(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	setTestConfig(t, app, 10000)
	day := rolloverIfNeeded(ctx, app.store, testCommunity)

	_, err := applyContributions(ctx, app, testCommunity, day, []ContributionEvent{
		{Kind: KindComment, Count: 10, BaseEnergyPerEvent: 10},
	}, nil)
	require.NoError(t, err)

	rec := doRequest(t, adminPenaltyHandler(app), http.MethodPost, "/api/admin/penalty", `{"deltaEnergy":0}`, "t2_mod", "modly")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, adminPenaltyHandler(app), http.MethodPost, "/api/admin/penalty", `{"deltaEnergy":30,"reason":"spam wave"}`, "t2_mod", "modly")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp AdminPenaltyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, int64(30), resp.DeltaEnergyApplied)

	state := loadDayState(ctx, app.store, testCommunity, day)
	assert.Equal(t, int64(70), state.Totals.Energy)

	events, err := getAuditEvents(ctx, app.store, testCommunity, day)
	require.NoError(t, err)
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, AuditDownvotePressure, last.Type)
	assert.Equal(t, "MOD", last.Source)
}

func TestPollHandlerDemoRequiresModerator(t *testing.T) {
	app := newTestApp(t)

	rec := doRequest(t, pollHandler(app), http.MethodPost, "/api/poll?demo=1", "", "t2_abc", "someone")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, pollHandler(app), http.MethodPost, "/api/poll?demo=1", "", "t2_mod", "modly")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp PollResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.True(t, resp.Demo)
	require.NotNil(t, resp.Boost)
	assert.Equal(t, int64(52), resp.Boost.DeltaEnergy)
}

func TestMethodNotAllowed(t *testing.T) {
	app := newTestApp(t)

	rec := doRequest(t, voteHandler(app), http.MethodGet, "/api/vote", "", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = doRequest(t, adminResetDayHandler(app), http.MethodGet, "/api/admin/resetDay", "", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
