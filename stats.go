package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"time"
)

// Per-poll contribution caps and rates.
const (
	capComments = 100
	capUpvotes  = 200
	capNetDown  = 50

	energyPerComment     = 6
	energyPerUpvote      = 2
	energyPenaltyPerDown = 3

	// Heartbeat applied when no stats source is configured.
	heartbeatEnergy = 10
)

// ContentStats is a raw snapshot from the content-stats collaborator.
type ContentStats struct {
	CommentCount int64 `json:"commentCount"`
	Score        int64 `json:"score"`
}

// StatsProvider fetches comment/score counts for a piece of content.
// Best effort: failures yield zeros, never errors.
type StatsProvider interface {
	ContentStats(ctx context.Context, contentID string) ContentStats
	Enabled() bool
}

type noStats struct{}

func (noStats) ContentStats(ctx context.Context, contentID string) ContentStats {
	return ContentStats{}
}

func (noStats) Enabled() bool { return false }

// httpStats queries an external endpoint returning
// {"commentCount":n,"score":n}.
type httpStats struct {
	baseURL string
	client  *http.Client
}

func newHTTPStats(baseURL string) *httpStats {
	return &httpStats{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (s *httpStats) Enabled() bool { return true }

func (s *httpStats) ContentStats(ctx context.Context, contentID string) ContentStats {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.baseURL+"?contentId="+url.QueryEscape(contentID), nil)
	if err != nil {
		log.Println("stats request build failed:", err)
		return ContentStats{}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		log.Println("stats fetch failed:", err)
		return ContentStats{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Println("stats fetch returned status", resp.StatusCode)
		return ContentStats{}
	}

	var stats ContentStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		log.Println("stats decode failed:", err)
		return ContentStats{}
	}
	return stats
}

// PollCursor tracks the last observed raw stats snapshot so deltas can be
// computed incrementally. Owned entirely by the poll pipeline.
type PollCursor struct {
	LastCommentCount  int64 `json:"lastCommentCount"`
	LastScore         int64 `json:"lastScore"`
	LastDeltaComments int64 `json:"lastDeltaComments"`
	LastDeltaUpvotes  int64 `json:"lastDeltaUpvotes"`
	LastDeltaDown     int64 `json:"lastDeltaDown"`
	UpdatedAt         int64 `json:"updatedAt"`
}

type BoostInfo struct {
	Source               string  `json:"source"`
	DeltaEnergy          int64   `json:"deltaEnergy"`
	Multiplier           float64 `json:"multiplier,omitempty"`
	MultiplierDurationMs int64   `json:"multiplierDurationMs,omitempty"`
	Reason               string  `json:"reason,omitempty"`
}

type PenaltyInfo struct {
	Reason             string `json:"reason"`
	CappedDown         int64  `json:"cappedDown"`
	DeltaEnergyApplied int64  `json:"deltaEnergyApplied"`
}

type PollOutcome struct {
	Boost   *BoostInfo   `json:"boost,omitempty"`
	Penalty *PenaltyInfo `json:"penalty,omitempty"`
}

// runPoll drives one poll cycle: fetch stats, diff against the cursor,
// convert positive deltas into contribution events and score drops into
// downvote pressure, then advance the cursor. The first observation only
// seeds the cursor so historical totals are not awarded retroactively.
func runPoll(ctx context.Context, app *App, community, day, contentID string) (*PollOutcome, error) {
	outcome := &PollOutcome{}

	if !app.stats.Enabled() {
		result, err := applyContributions(ctx, app, community, day,
			[]ContributionEvent{{Kind: KindSystem, Count: 1, BaseEnergyPerEvent: heartbeatEnergy}},
			&Attribution{UserHash: "system", Display: "System"})
		if err != nil {
			return nil, err
		}
		if result.DeltaEnergy > 0 {
			outcome.Boost = boostInfo(result, "Auto poll")
			if err := pushBoostAudit(ctx, app.store, community, day, outcome.Boost); err != nil {
				return nil, err
			}
		}
		return outcome, nil
	}

	stats := app.stats.ContentStats(ctx, contentID)

	var cursor PollCursor
	seen, err := kvGetJSON(ctx, app.store, keyPollCursor(community, day), &cursor)
	if err != nil {
		return nil, err
	}

	deltaComments := int64(0)
	deltaUpvotes := int64(0)
	deltaDown := int64(0)
	if seen {
		deltaComments = clampDelta(stats.CommentCount-cursor.LastCommentCount, capComments)
		deltaUpvotes = clampDelta(stats.Score-cursor.LastScore, capUpvotes)
		deltaDown = clampDelta(cursor.LastScore-stats.Score, capNetDown)
	}

	var events []ContributionEvent
	if deltaComments > 0 {
		events = append(events, ContributionEvent{Kind: KindComment, Count: deltaComments, BaseEnergyPerEvent: energyPerComment})
	}
	if deltaUpvotes > 0 {
		events = append(events, ContributionEvent{Kind: KindUpvote, Count: deltaUpvotes, BaseEnergyPerEvent: energyPerUpvote})
	}

	if len(events) > 0 {
		result, err := applyContributions(ctx, app, community, day, events,
			&Attribution{UserHash: "system", Display: "System"})
		if err != nil {
			return nil, err
		}
		if result.DeltaEnergy > 0 {
			outcome.Boost = boostInfo(result, "Community activity")
			if err := pushBoostAudit(ctx, app.store, community, day, outcome.Boost); err != nil {
				return nil, err
			}
		}
	}

	if deltaDown > 0 {
		applied, err := applyPenalty(ctx, app, community, day, deltaDown*energyPenaltyPerDown, "Downvote pressure")
		if err != nil {
			return nil, err
		}
		outcome.Penalty = &PenaltyInfo{
			Reason:             "Downvote pressure",
			CappedDown:         deltaDown,
			DeltaEnergyApplied: applied,
		}
		if err := pushAuditEvent(ctx, app.store, community, day, AuditEvent{
			Type:        AuditDownvotePressure,
			Source:      "SYSTEM",
			DeltaEnergy: -applied,
			Meta: map[string]interface{}{
				"cappedDown":         deltaDown,
				"deltaEnergyApplied": applied,
			},
		}); err != nil {
			return nil, err
		}
	}

	cursor = PollCursor{
		LastCommentCount:  stats.CommentCount,
		LastScore:         stats.Score,
		LastDeltaComments: deltaComments,
		LastDeltaUpvotes:  deltaUpvotes,
		LastDeltaDown:     deltaDown,
		UpdatedAt:         nowMs(),
	}
	if err := kvSetJSON(ctx, app.store, keyPollCursor(community, day), cursor); err != nil {
		return nil, err
	}
	return outcome, nil
}

// applyDemoBoost injects a fixed system-attributed batch, mod-only at the
// transport layer.
func applyDemoBoost(ctx context.Context, app *App, community, day string) (*ApplyResult, error) {
	return applyContributions(ctx, app, community, day,
		[]ContributionEvent{
			{Kind: KindComment, Count: 7, BaseEnergyPerEvent: 6},
			{Kind: KindUpvote, Count: 5, BaseEnergyPerEvent: 2},
		},
		&Attribution{UserHash: "system", Display: "System"})
}

func boostInfo(result *ApplyResult, reason string) *BoostInfo {
	info := &BoostInfo{
		Source:      "SYSTEM",
		DeltaEnergy: result.DeltaEnergy,
		Reason:      reason,
	}
	if result.AppliedMultiplier != nil {
		info.Multiplier = result.AppliedMultiplier.Value
		info.MultiplierDurationMs = result.AppliedMultiplier.DurationMs
	}
	return info
}

func pushBoostAudit(ctx context.Context, store Store, community, day string, boost *BoostInfo) error {
	return pushAuditEvent(ctx, store, community, day, AuditEvent{
		Type:        AuditBoostApplied,
		Source:      "SYSTEM",
		DeltaEnergy: boost.DeltaEnergy,
		Multiplier:  boost.Multiplier,
		Meta:        map[string]interface{}{"reason": boost.Reason},
	})
}

func clampDelta(delta, limit int64) int64 {
	if delta < 0 {
		return 0
	}
	if delta > limit {
		return limit
	}
	return delta
}
