package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func stateHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		user := app.identity.CurrentUser(r)
		state, err := getStateSync(r.Context(), app, app.community, user.Hash)
		if err != nil {
			log.Println("state sync failed:", err)
			json.NewEncoder(w).Encode(SimpleResponse{OK: false, Error: "INTERNAL_ERROR"})
			return
		}
		state.CanDemo = app.identity.IsModerator(r.Context(), user.Name)

		json.NewEncoder(w).Encode(state)
	}
}

func pollHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		ctx := r.Context()
		user := app.identity.CurrentUser(r)
		day := rolloverIfNeeded(ctx, app.store, app.community)

		if r.URL.Query().Get("demo") == "1" {
			if !app.identity.IsModerator(ctx, user.Name) {
				w.WriteHeader(http.StatusForbidden)
				json.NewEncoder(w).Encode(SimpleResponse{OK: false, Error: ErrForbidden.Error()})
				return
			}

			result, err := applyDemoBoost(ctx, app, app.community, day)
			if err != nil {
				log.Println("demo boost failed:", err)
				json.NewEncoder(w).Encode(SimpleResponse{OK: false, Error: "INTERNAL_ERROR"})
				return
			}
			if err := addUserPoints(ctx, app.store, app.community, day, user.Hash, displayOrFallback(user), demoPoints); err != nil {
				log.Println("demo points failed:", err)
			}
			boost := boostInfo(result, "Demo boost")
			if err := pushBoostAudit(ctx, app.store, app.community, day, boost); err != nil {
				log.Println("demo audit failed:", err)
			}

			json.NewEncoder(w).Encode(PollResponse{OK: true, Demo: true, Boost: boost})
			return
		}

		outcome, err := runPoll(ctx, app, app.community, day, app.contentID)
		if err != nil {
			log.Println("poll failed:", err)
			json.NewEncoder(w).Encode(SimpleResponse{OK: false, Error: "INTERNAL_ERROR"})
			return
		}

		json.NewEncoder(w).Encode(PollResponse{
			OK:      true,
			Boost:   outcome.Boost,
			Penalty: outcome.Penalty,
		})
	}
}

func voteHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var req VoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OptionID == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(SimpleResponse{OK: false, Error: "INVALID_REQUEST"})
			return
		}

		ctx := r.Context()
		user := app.identity.CurrentUser(r)
		if !isValidUserHash(user.Hash) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(SimpleResponse{OK: false, Error: "INVALID_USER"})
			return
		}
		day := rolloverIfNeeded(ctx, app.store, app.community)

		if err := castVote(ctx, app, app.community, day, user.Hash, req.OptionID); err != nil {
			if errors.Is(err, ErrInvalidOption) {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(SimpleResponse{OK: false, Error: ErrInvalidOption.Error()})
				return
			}
			log.Println("vote failed:", err)
			json.NewEncoder(w).Encode(SimpleResponse{OK: false, Error: "INTERNAL_ERROR"})
			return
		}

		// Voting itself contributes a little energy and earns points.
		if _, err := applyContributions(ctx, app, app.community, day,
			[]ContributionEvent{{Kind: KindSystem, Count: 1, BaseEnergyPerEvent: voteEnergy}},
			&Attribution{UserHash: user.Hash, Display: user.Display}); err != nil {
			log.Println("vote contribution failed:", err)
		}
		if err := addUserPoints(ctx, app.store, app.community, day, user.Hash, displayOrFallback(user), votePoints); err != nil {
			log.Println("vote points failed:", err)
		}

		json.NewEncoder(w).Encode(VoteResponse{OK: true, DayKey: day, UserHasVoted: true})
	}
}

func claimHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		ctx := r.Context()
		user := app.identity.CurrentUser(r)
		day := rolloverIfNeeded(ctx, app.store, app.community)

		_, claimed, err := claimDailyReward(ctx, app, app.community, day)
		if err != nil {
			log.Println("claim failed:", err)
			json.NewEncoder(w).Encode(SimpleResponse{OK: false, Error: "INTERNAL_ERROR"})
			return
		}
		if claimed {
			if err := addUserPoints(ctx, app.store, app.community, day, user.Hash, displayOrFallback(user), claimPoints); err != nil {
				log.Println("claim points failed:", err)
			}
		}

		state, err := getStateSync(ctx, app, app.community, user.Hash)
		if err != nil {
			log.Println("post-claim sync failed:", err)
			json.NewEncoder(w).Encode(SimpleResponse{OK: false, Error: "INTERNAL_ERROR"})
			return
		}
		json.NewEncoder(w).Encode(ClaimResponse{OK: true, State: state})
	}
}

func displayOrFallback(user User) string {
	if user.Display != "" {
		return user.Display
	}
	end := 6
	if len(user.Hash) < end {
		end = len(user.Hash)
	}
	return "Player " + user.Hash[:end]
}
