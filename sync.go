package main

import (
	"context"
	"log"
)

type VictoryState struct {
	IsComplete    bool  `json:"isComplete"`
	JustCompleted bool  `json:"justCompleted"`
	CompletedAt   int64 `json:"completedAt,omitempty"`
}

type AuditSync struct {
	DayKey              string       `json:"dayKey"`
	LastPollAt          int64        `json:"lastPollAt,omitempty"`
	LastDeltaComments   int64        `json:"lastDeltaComments"`
	LastDeltaUpvotes    int64        `json:"lastDeltaUpvotes"`
	LastDeltaDown       int64        `json:"lastDeltaDown"`
	MultiplierActive    bool         `json:"multiplierActive"`
	MultiplierValue     float64      `json:"multiplierValue,omitempty"`
	MultiplierExpiresAt int64        `json:"multiplierExpiresAt,omitempty"`
	Last10Events        []AuditEvent `json:"last10Events"`
}

type StateSyncResponse struct {
	DayKey           string            `json:"dayKey"`
	Totals           Totals            `json:"totals"`
	DailyGoal        DailyGoal         `json:"dailyGoal"`
	ActiveMultiplier *ActiveMultiplier `json:"activeMultiplier,omitempty"`
	UserHasVoted     bool              `json:"userHasVoted"`
	UserContribution int64             `json:"userContribution"`
	LeaderboardTop   []RankedScore     `json:"leaderboardTop"`
	Top3Contributors []RankedScore     `json:"top3Contributors"`
	RewardClaimed    bool              `json:"rewardClaimed"`
	RewardAvailable  bool              `json:"rewardAvailable"`
	CanDemo          bool              `json:"canDemo"`
	Victory          VictoryState      `json:"victory"`
	Audit            AuditSync         `json:"audit"`
}

// getStateSync assembles the full client view for one user. It is the only
// read that mutates: the lazy day-state init, a backfilled completedAt, and
// the one-shot completion marker all happen here, under the day lock so the
// NOT_NOTIFIED -> NOTIFIED transition fires for exactly one reader.
func getStateSync(ctx context.Context, app *App, community, userHash string) (*StateSyncResponse, error) {
	day := rolloverIfNeeded(ctx, app.store, community)

	lock := app.locks.forDay(community, day)
	lock.Lock()
	defer lock.Unlock()

	store := app.store
	state := loadDayState(ctx, store, community, day)

	votes, err := loadVotes(ctx, store, community, day)
	if err != nil {
		log.Println("votes load failed:", err)
		votes = VoteRecord{}
	}
	users, err := loadUsers(ctx, store, community, day)
	if err != nil {
		log.Println("users load failed:", err)
		users = map[string]UserRecord{}
	}
	auditEvents, err := getAuditEvents(ctx, store, community, day)
	if err != nil {
		log.Println("audit load failed:", err)
	}
	if auditEvents == nil {
		auditEvents = []AuditEvent{}
	}

	top, err := loadLeaderboardTop(ctx, store, community, day)
	if err != nil {
		log.Println("leaderboard load failed:", err)
	}
	leaderboardTop := leaderboardDisplay(ctx, store, community, day, top)

	var top3Raw []TopContributor
	if _, err := kvGetJSON(ctx, store, keyTop3(community, day), &top3Raw); err != nil {
		log.Println("top3 load failed:", err)
	}
	top3 := make([]RankedScore, 0, len(top3Raw))
	for _, entry := range top3Raw {
		display := users[entry.UserHash].Display
		top3 = append(top3, RankedScore{
			Display: formatDisplayName(entry.UserHash, display),
			Score:   entry.Score,
		})
	}

	var cursor PollCursor
	if _, err := kvGetJSON(ctx, store, keyPollCursor(community, day), &cursor); err != nil {
		log.Println("poll cursor load failed:", err)
	}

	now := nowMs()
	multiplierActive := state.ActiveMultiplier != nil && state.ActiveMultiplier.ExpiresAt > now

	rewardClaimed := state.DailyGoal.RewardState == RewardClaimed
	rewardAvailable := state.DailyGoal.Achieved &&
		state.Totals.Energy >= state.DailyGoal.Target &&
		!rewardClaimed

	var completedAt int64
	if _, err := kvGetJSON(ctx, store, keyCompletedAt(community, day), &completedAt); err != nil {
		log.Println("completedAt load failed:", err)
	}
	if state.DailyGoal.Achieved && completedAt == 0 {
		completedAt = now
		if err := kvSetJSON(ctx, store, keyCompletedAt(community, day), completedAt); err != nil {
			return nil, err
		}
	}

	justCompleted := false
	if state.DailyGoal.Achieved && !rewardClaimed && completedAt != 0 {
		var notifiedAt int64
		notified, err := kvGetJSON(ctx, store, keyCompletedNotified(community, day), &notifiedAt)
		if err != nil {
			log.Println("completedNotified load failed:", err)
		} else if !notified {
			justCompleted = true
			if err := kvSetJSON(ctx, store, keyCompletedNotified(community, day), now); err != nil {
				return nil, err
			}
		}
	}

	audit := AuditSync{
		DayKey:            day,
		LastPollAt:        cursor.UpdatedAt,
		LastDeltaComments: cursor.LastDeltaComments,
		LastDeltaUpvotes:  cursor.LastDeltaUpvotes,
		LastDeltaDown:     cursor.LastDeltaDown,
		MultiplierActive:  multiplierActive,
		Last10Events:      auditEvents,
	}
	if multiplierActive {
		audit.MultiplierValue = state.ActiveMultiplier.Value
		audit.MultiplierExpiresAt = state.ActiveMultiplier.ExpiresAt
	}

	_, userHasVoted := votes[userHash]

	return &StateSyncResponse{
		DayKey:           day,
		Totals:           state.Totals,
		DailyGoal:        state.DailyGoal,
		ActiveMultiplier: state.ActiveMultiplier,
		UserHasVoted:     userHasVoted,
		UserContribution: users[userHash].Contribution,
		LeaderboardTop:   leaderboardTop,
		Top3Contributors: top3,
		RewardClaimed:    rewardClaimed,
		RewardAvailable:  rewardAvailable,
		Victory: VictoryState{
			IsComplete:    state.DailyGoal.Achieved,
			JustCompleted: justCompleted,
			CompletedAt:   completedAt,
		},
		Audit: audit,
	}, nil
}
