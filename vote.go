package main

import (
	"context"
	"errors"
)

var ErrInvalidOption = errors.New("INVALID_OPTION")

type UserVote struct {
	OptionID string `json:"optionId"`
	VotedAt  int64  `json:"votedAt"`
}

// VoteRecord maps userHash to that user's last vote of the day. Re-voting
// overwrites; one-vote-per-day is deliberately not enforced server-side.
type VoteRecord map[string]UserVote

func loadVotes(ctx context.Context, store Store, community, day string) (VoteRecord, error) {
	votes := make(VoteRecord)
	if _, err := kvGetJSON(ctx, store, keyVotes(community, day), &votes); err != nil {
		return nil, err
	}
	return votes, nil
}

// castVote records the vote and installs the option's multiplier
// immediately, replacing any active one. Multiplier selection is "most
// recent vote", not a tally.
func castVote(ctx context.Context, app *App, community, day, userHash, optionID string) error {
	cfg := loadConfig(ctx, app.store, community)
	option := cfg.option(optionID)
	if option == nil {
		return ErrInvalidOption
	}

	lock := app.locks.forDay(community, day)
	lock.Lock()
	defer lock.Unlock()

	votes, err := loadVotes(ctx, app.store, community, day)
	if err != nil {
		return err
	}
	votes[userHash] = UserVote{OptionID: optionID, VotedAt: nowMs()}
	if err := kvSetJSON(ctx, app.store, keyVotes(community, day), votes); err != nil {
		return err
	}

	if option.Effect.EnergyMultiplier > 0 && option.Effect.DurationMs > 0 {
		state := loadDayState(ctx, app.store, community, day)
		state.ActiveMultiplier = &ActiveMultiplier{
			OptionID:   optionID,
			Value:      option.Effect.EnergyMultiplier,
			ExpiresAt:  nowMs() + option.Effect.DurationMs,
			DurationMs: option.Effect.DurationMs,
		}
		if err := saveDayState(ctx, app.store, community, state); err != nil {
			return err
		}
	}
	return nil
}
