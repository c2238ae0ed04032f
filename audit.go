package main

import (
	"context"

	"github.com/google/uuid"
)

const maxAuditEvents = 10

const (
	AuditBoostApplied     = "BOOST_APPLIED"
	AuditDownvotePressure = "DOWNVOTE_PRESSURE"
	AuditRewardClaimed    = "REWARD_CLAIMED"
	AuditAdminReset       = "ADMIN_RESET_DAY"
	AuditAdminDenied      = "ADMIN_DENIED"
)

type AuditEvent struct {
	ID          string                 `json:"id"`
	Type        string                 `json:"type"`
	At          int64                  `json:"at"`
	Source      string                 `json:"source,omitempty"`
	DeltaEnergy int64                  `json:"deltaEnergy,omitempty"`
	Multiplier  float64                `json:"multiplier,omitempty"`
	Meta        map[string]interface{} `json:"meta,omitempty"`
}

// pushAuditEvent appends to the day's audit log and trims from the front so
// at most the 10 newest events survive, in insertion order.
func pushAuditEvent(ctx context.Context, store Store, community, day string, event AuditEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.At == 0 {
		event.At = nowMs()
	}

	events, err := getAuditEvents(ctx, store, community, day)
	if err != nil {
		return err
	}
	events = append(events, event)
	if len(events) > maxAuditEvents {
		events = events[len(events)-maxAuditEvents:]
	}
	return kvSetJSON(ctx, store, keyAudit(community, day), events)
}

func getAuditEvents(ctx context.Context, store Store, community, day string) ([]AuditEvent, error) {
	var events []AuditEvent
	if _, err := kvGetJSON(ctx, store, keyAudit(community, day), &events); err != nil {
		return nil, err
	}
	return events, nil
}
