package main

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashUserID(t *testing.T) {
	assert.Equal(t, "anon", hashUserID(""))
	assert.Equal(t, "anon", hashUserID("anon"))

	h := hashUserID("t2_abc")
	assert.Len(t, h, 16)
	assert.Equal(t, h, hashUserID("t2_abc"), "hash must be stable")
	assert.NotEqual(t, h, hashUserID("t2_def"))
}

func TestHeaderIdentityCurrentUser(t *testing.T) {
	id := newHeaderIdentity("modly, Other")

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-User-Id", "t2_abc")
	req.Header.Set("X-User-Name", "alice")
	user := id.CurrentUser(req)
	assert.Equal(t, hashUserID("t2_abc"), user.Hash)
	assert.Equal(t, "alice", user.Name)
	assert.Equal(t, "u/alice", user.Display)

	anon := id.CurrentUser(httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, "anon", anon.Hash)
	assert.Empty(t, anon.Display)
}

func TestHeaderIdentityModeratorsCaseInsensitive(t *testing.T) {
	id := newHeaderIdentity("modly, Other")
	ctx := context.Background()

	assert.True(t, id.IsModerator(ctx, "modly"))
	assert.True(t, id.IsModerator(ctx, "MODLY"))
	assert.True(t, id.IsModerator(ctx, "other"))
	assert.False(t, id.IsModerator(ctx, "alice"))
	assert.False(t, id.IsModerator(ctx, ""))
}

func TestIsValidUserHash(t *testing.T) {
	assert.True(t, isValidUserHash("anon"))
	assert.True(t, isValidUserHash("abc-123_XYZ"))
	assert.False(t, isValidUserHash(""))
	assert.False(t, isValidUserHash("has space"))
	assert.False(t, isValidUserHash(string(make([]byte, 65))))
}
