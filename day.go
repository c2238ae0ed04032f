package main

import (
	"context"
	"log"
	"time"
)

// dayMeta records the last-seen day key per community. Day keys are
// independent namespaces; rollover never migrates prior-day data.
type dayMeta struct {
	LastDayKey string `json:"lastDayKey"`
	RolledAt   int64  `json:"rolledAt"`
}

// resolveDayKey maps a timestamp to its game day. Hours before the rollover
// hour still belong to the previous calendar day.
func resolveDayKey(t time.Time, rolloverHour int) string {
	t = t.UTC()
	if t.Hour() < rolloverHour {
		t = t.AddDate(0, 0, -1)
	}
	return t.Format("2006-01-02")
}

// rolloverIfNeeded computes the current day key and refreshes the community
// meta record when the day has changed since the last request.
func rolloverIfNeeded(ctx context.Context, store Store, community string) string {
	cfg := loadConfig(ctx, store, community)
	dayKey := resolveDayKey(time.Now(), cfg.RolloverHour)

	var meta dayMeta
	found, err := kvGetJSON(ctx, store, keyMeta(community), &meta)
	if err != nil {
		log.Println("meta load failed:", err)
		return dayKey
	}
	if !found || meta.LastDayKey != dayKey {
		meta = dayMeta{LastDayKey: dayKey, RolledAt: nowMs()}
		if err := kvSetJSON(ctx, store, keyMeta(community), meta); err != nil {
			log.Println("meta update failed:", err)
		}
	}
	return dayKey
}

func nowMs() int64 {
	return time.Now().UnixMilli()
}
