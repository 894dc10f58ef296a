// Package cache provides the TTL key/value stores used by the analytics layer.
//
// Values are JSON bytes so the in-memory and Redis backends are interchangeable.
// Use GetJSON and SetJSON to work with typed values.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrClosed is returned by writes after Close.
var ErrClosed = errors.New("cache is closed")

// Store is a key/value store with per-entry expiry. A ttl <= 0 selects the store's
// default TTL. Get never returns an expired entry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Len(ctx context.Context) (int, error)
	Close() error
}

// GetJSON reads key and decodes it into a T. A value that no longer decodes is
// reported as an error, not a miss, so callers can log it.
func GetJSON[T any](ctx context.Context, s Store, key string) (T, bool, error) {
	var out T
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return out, false, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false, fmt.Errorf("failed to decode cached %q: %w", key, err)
	}
	return out, true, nil
}

// SetJSON encodes value and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %q for caching: %w", key, err)
	}
	return s.Set(ctx, key, raw, ttl)
}
