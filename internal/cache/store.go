// Package cache provides the cache store abstraction used for column metadata.
package cache

import (
	"context"
	"time"
)

// Store is a JSON cache with per-key TTLs. Implementations must treat a
// missing key as (false, nil), not an error.
type Store interface {
	// GetJSON attempts to get the key and unmarshal into dest.
	// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	// SetJSON marshals v and sets the key with TTL.
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
}

// Aside tries the store first, on miss it calls fetch (which must write into
// dest), then stores the result with ttl. Store read/write failures are
// swallowed so a broken cache degrades to recomputation.
func Aside(ctx context.Context, store Store, key string, dest any, ttl time.Duration, fetch func() error) error {
	if store != nil {
		found, err := store.GetJSON(ctx, key, dest)
		if err == nil && found {
			return nil
		}
	}

	if err := fetch(); err != nil {
		return err
	}

	if store != nil {
		_ = store.SetJSON(ctx, key, dest, ttl)
	}
	return nil
}
