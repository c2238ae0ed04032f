package main

import (
	"context"
	"encoding/json"
)

// Store is the key-value collaborator every game operation runs against.
// Get returns (nil, nil) for a missing key; absence is never an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// kvGetJSON loads and decodes a record. The bool reports presence.
func kvGetJSON(ctx context.Context, store Store, key string, out interface{}) (bool, error) {
	raw, err := store.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if raw == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, err
	}
	return true, nil
}

func kvSetJSON(ctx context.Context, store Store, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return store.Set(ctx, key, raw)
}
