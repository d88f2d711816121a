// Package kv provides the key→JSON-value storage adapter the persistence
// layer sits on. Implementations know nothing about domain types; values are
// opaque JSON documents addressed by string keys.
package kv

import (
	"context"
	"encoding/json"
)

// Store is the storage adapter contract.
//
// Get returns (nil, nil) when the key is absent and a parse_error when the
// stored bytes are not valid JSON. Set fails with quota_exceeded when the
// store rejects the write for space reasons and write_error for anything
// else. Operations against the same key never interleave non-atomically
// within one process.
type Store interface {
	// Available probes writability of the underlying store.
	Available(ctx context.Context) bool

	// Get retrieves the raw JSON value for a key, nil if absent.
	Get(ctx context.Context, key string) (json.RawMessage, error)

	// Set persists the raw JSON value under a key.
	Set(ctx context.Context, key string, value json.RawMessage) error

	// Remove deletes a key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// Clear deletes every key.
	Clear(ctx context.Context) error

	// Keys lists stored keys with the given prefix ("" for all).
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Quota returns a best-effort remaining-space estimate in bytes.
	// ok is false when the store has no enforced limit.
	Quota(ctx context.Context) (remaining int64, ok bool)
}

// EventType represents the type of external change to a key.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents an externally observed change to a stored key.
type Event struct {
	Type      EventType
	Key       string
	Timestamp int64 // Unix timestamp
}

// Watchable is implemented by stores that can report external mutations
// (another process writing to the same backing store). Events for writes
// issued through this process's own Store handle are suppressed.
type Watchable interface {
	// Watch streams change events for keys matching the doublestar pattern.
	// The channel closes when ctx is cancelled.
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}

// GetJSON retrieves and decodes a typed value.
// ok is false when the key is absent.
func GetJSON[T any](ctx context.Context, s Store, key string) (val T, ok bool, err error) {
	raw, err := s.Get(ctx, key)
	if err != nil || raw == nil {
		return val, false, err
	}
	if err := json.Unmarshal(raw, &val); err != nil {
		return val, false, NewError(KindParse, key, err)
	}
	return val, true, nil
}

// SetJSON encodes and persists a typed value.
func SetJSON[T any](ctx context.Context, s Store, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return NewError(KindWrite, key, err)
	}
	return s.Set(ctx, key, raw)
}
