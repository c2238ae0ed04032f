package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testCommunity = "sub1"
	testContent   = "post1"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	return &App{
		store:     newMemoryStore(),
		identity:  newHeaderIdentity("modly"),
		stats:     noStats{},
		locks:     newDayLocks(),
		community: testCommunity,
		contentID: testContent,
	}
}

// setTestConfig stores a per-community config with a small goal so tests can
// cross it with a handful of events.
func setTestConfig(t *testing.T, app *App, target int64) GameConfig {
	t.Helper()
	cfg := DefaultGameConfig()
	cfg.DailyGoalEnergy = target
	require.NoError(t, saveConfig(context.Background(), app.store, testCommunity, cfg))
	return cfg
}

// failingStore simulates a store outage on every call.
type failingStore struct{}

var errStoreDown = errors.New("store down")

func (failingStore) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errStoreDown
}

func (failingStore) Set(ctx context.Context, key string, value []byte) error {
	return errStoreDown
}

func (failingStore) Delete(ctx context.Context, key string) error {
	return errStoreDown
}

// fakeStats returns a scripted snapshot.
type fakeStats struct {
	stats ContentStats
}

func (f *fakeStats) ContentStats(ctx context.Context, contentID string) ContentStats {
	return f.stats
}

func (f *fakeStats) Enabled() bool { return true }
