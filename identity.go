package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"unicode"
)

// User is the engine's view of the caller: an opaque stable hash plus a
// best-known display name. Raw platform ids never reach the store.
type User struct {
	Hash    string
	Name    string
	Display string
}

// Identity is the external identity/moderation collaborator.
type Identity interface {
	CurrentUser(r *http.Request) User
	IsModerator(ctx context.Context, username string) bool
}

// headerIdentity trusts the fronting platform proxy to inject the caller's
// id and username as headers, mirroring how the hosting platform hands the
// request context to the app.
type headerIdentity struct {
	moderators map[string]bool
}

func newHeaderIdentity(moderatorList string) *headerIdentity {
	mods := make(map[string]bool)
	for _, name := range strings.Split(moderatorList, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			mods[name] = true
		}
	}
	return &headerIdentity{moderators: mods}
}

func (h *headerIdentity) CurrentUser(r *http.Request) User {
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	name := strings.TrimSpace(r.Header.Get("X-User-Name"))

	hash := hashUserID(userID)
	display := ""
	if name != "" {
		display = "u/" + name
	}
	return User{Hash: hash, Name: name, Display: display}
}

func (h *headerIdentity) IsModerator(ctx context.Context, username string) bool {
	if username == "" {
		return false
	}
	return h.moderators[strings.ToLower(username)]
}

// hashUserID derives the opaque pseudonymous id stored in place of the
// platform user id.
func hashUserID(userID string) string {
	if userID == "" || userID == "anon" {
		return "anon"
	}
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:])[:16]
}

func isValidUserHash(userHash string) bool {
	if userHash == "" || len(userHash) > 64 {
		return false
	}

	for _, r := range userHash {
		if r == '-' || r == '_' {
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		return false
	}

	return true
}
