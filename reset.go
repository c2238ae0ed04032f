package main

import (
	"context"
	"errors"
)

var ErrForbidden = errors.New("FORBIDDEN")

// resetDayState wipes every day-scoped structure back to a fresh state,
// including the per-user ledger keys for every hash the day has seen, then
// records the reset as the sole entry of the now-empty audit log. Caller
// must already have verified the actor is a moderator.
func resetDayState(ctx context.Context, app *App, community, day, actorHash string) (int64, error) {
	lock := app.locks.forDay(community, day)
	lock.Lock()
	defer lock.Unlock()

	store := app.store
	cfg := loadConfig(ctx, store, community)
	resetAt := nowMs()

	// Per-user keys are not enumerable in a plain KV store; collect the
	// hashes the day-scoped structures know about before wiping them.
	hashes := make(map[string]bool)
	users, err := loadUsers(ctx, store, community, day)
	if err != nil {
		return 0, err
	}
	for hash := range users {
		hashes[hash] = true
	}
	top, err := loadLeaderboardTop(ctx, store, community, day)
	if err != nil {
		return 0, err
	}
	for _, entry := range top {
		hashes[entry.UserHash] = true
	}
	var window []string
	if _, err := kvGetJSON(ctx, store, keyContributors(community, day), &window); err != nil {
		return 0, err
	}
	for _, hash := range window {
		hashes[hash] = true
	}

	for hash := range hashes {
		if err := store.Delete(ctx, keyLeaderboardUser(community, day, hash)); err != nil {
			return 0, err
		}
		if err := store.Delete(ctx, keyLeaderboardName(community, day, hash)); err != nil {
			return 0, err
		}
		if err := store.Delete(ctx, keyContribUser(community, day, hash)); err != nil {
			return 0, err
		}
	}

	if err := kvSetJSON(ctx, store, keyState(community, day), freshDayState(day, cfg, resetAt)); err != nil {
		return 0, err
	}
	if err := kvSetJSON(ctx, store, keyVotes(community, day), VoteRecord{}); err != nil {
		return 0, err
	}
	if err := kvSetJSON(ctx, store, keyUsers(community, day), map[string]UserRecord{}); err != nil {
		return 0, err
	}
	if err := kvSetJSON(ctx, store, keyLeaderboardTop(community, day), []TopEntry{}); err != nil {
		return 0, err
	}
	if err := kvSetJSON(ctx, store, keyContributors(community, day), []string{}); err != nil {
		return 0, err
	}
	if err := kvSetJSON(ctx, store, keyTop3(community, day), []TopContributor{}); err != nil {
		return 0, err
	}
	if err := kvSetJSON(ctx, store, keyAudit(community, day), []AuditEvent{}); err != nil {
		return 0, err
	}
	if err := store.Delete(ctx, keyPollCursor(community, day)); err != nil {
		return 0, err
	}
	if err := store.Delete(ctx, keyCompletedAt(community, day)); err != nil {
		return 0, err
	}
	if err := store.Delete(ctx, keyCompletedNotified(community, day)); err != nil {
		return 0, err
	}

	if err := pushAuditEvent(ctx, store, community, day, AuditEvent{
		Type:   AuditAdminReset,
		At:     resetAt,
		Source: actorHash,
		Meta:   map[string]interface{}{"actor": actorHash},
	}); err != nil {
		return 0, err
	}
	return resetAt, nil
}
