package main

import (
	"encoding/json"
	"log"
	"net/http"
)

// requireModerator gates admin actions on the identity collaborator. A
// denial is itself auditable, so the caller gets the user back either way.
func requireModerator(app *App, w http.ResponseWriter, r *http.Request, action string) (User, bool) {
	ctx := r.Context()
	user := app.identity.CurrentUser(r)
	if app.identity.IsModerator(ctx, user.Name) {
		return user, true
	}

	day := rolloverIfNeeded(ctx, app.store, app.community)
	if err := pushAuditEvent(ctx, app.store, app.community, day, AuditEvent{
		Type:   AuditAdminDenied,
		Source: user.Hash,
		Meta:   map[string]interface{}{"action": action},
	}); err != nil {
		log.Println("admin denial audit failed:", err)
	}

	w.WriteHeader(http.StatusForbidden)
	json.NewEncoder(w).Encode(SimpleResponse{OK: false, Error: ErrForbidden.Error()})
	return user, false
}

func adminResetDayHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		user, ok := requireModerator(app, w, r, "resetDay")
		if !ok {
			return
		}

		ctx := r.Context()
		day := rolloverIfNeeded(ctx, app.store, app.community)
		resetAt, err := resetDayState(ctx, app, app.community, day, user.Hash)
		if err != nil {
			log.Println("day reset failed:", err)
			json.NewEncoder(w).Encode(SimpleResponse{OK: false, Error: "INTERNAL_ERROR"})
			return
		}

		json.NewEncoder(w).Encode(AdminResetResponse{OK: true, DayKey: day, ResetAtMs: resetAt})
	}
}

func adminPenaltyHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var req AdminPenaltyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DeltaEnergy <= 0 {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(SimpleResponse{OK: false, Error: "INVALID_REQUEST"})
			return
		}

		if _, ok := requireModerator(app, w, r, "applyPenalty"); !ok {
			return
		}

		ctx := r.Context()
		day := rolloverIfNeeded(ctx, app.store, app.community)
		reason := req.Reason
		if reason == "" {
			reason = "Moderator penalty"
		}

		applied, err := applyPenalty(ctx, app, app.community, day, req.DeltaEnergy, reason)
		if err != nil {
			log.Println("penalty failed:", err)
			json.NewEncoder(w).Encode(SimpleResponse{OK: false, Error: "INTERNAL_ERROR"})
			return
		}
		if err := pushAuditEvent(ctx, app.store, app.community, day, AuditEvent{
			Type:        AuditDownvotePressure,
			Source:      "MOD",
			DeltaEnergy: -applied,
			Meta:        map[string]interface{}{"reason": reason},
		}); err != nil {
			log.Println("penalty audit failed:", err)
		}

		json.NewEncoder(w).Encode(AdminPenaltyResponse{OK: true, DeltaEnergyApplied: applied})
	}
}
