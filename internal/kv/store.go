// Package kv implements the application's flat key-value storage space.
// Every value is a JSON document; keys are namespaced by an application
// prefix at the repository layer. The backing engine is swappable: an
// in-memory map, a JSON file, or a Postgres table.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// ErrClosed is returned by operations on a store that has been closed.
var ErrClosed = errors.New("store is closed")

// Store provides raw access to the key-value space. Values are opaque
// JSON-encoded byte slices; typed access goes through Get and Set below.
type Store interface {
	// GetRaw returns the value stored under key, or found=false if absent.
	GetRaw(ctx context.Context, key string) (value []byte, found bool, err error)
	// SetRaw stores value under key, replacing any existing value.
	SetRaw(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys returns all keys starting with the given prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error
	// Close releases any resources held by the store.
	Close() error
}

// Get reads and decodes the value stored under key. A value that fails to
// decode is treated as absent: the store is a cache of the user's own data,
// so availability wins over strict correctness. The corrupt value is logged
// and left in place for inspection.
func Get[T any](ctx context.Context, s Store, key string) (T, bool, error) {
	var v T

	raw, found, err := s.GetRaw(ctx, key)
	if err != nil {
		return v, false, err
	}
	if !found {
		return v, false, nil
	}

	if err := json.Unmarshal(raw, &v); err != nil {
		slog.Warn("discarding undecodable stored value", "key", key, "error", err)
		var zero T
		return zero, false, nil
	}

	return v, true, nil
}

// Set encodes v as JSON and stores it under key.
func Set[T any](ctx context.Context, s Store, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding value for key %q: %w", key, err)
	}
	return s.SetRaw(ctx, key, raw)
}
