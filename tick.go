package main

import (
	"context"
	"log"
	"time"
)

const pollInterval = 10 * time.Second

// startPollLoop drives the stats poll pipeline server-side for the
// configured content id, so energy accrues even with no client connected.
func startPollLoop(app *App) {
	ticker := time.NewTicker(pollInterval)

	go func() {
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), pollInterval)
			day := rolloverIfNeeded(ctx, app.store, app.community)
			if _, err := runPoll(ctx, app, app.community, day, app.contentID); err != nil {
				log.Println("background poll failed:", err)
			}
			cancel()
		}
	}()
}
