package cache

import (
	"context"
	"fmt"

	"github.com/solhaug/tribescore/internal/logging"
)

// GetOrCreate returns the cached value for key, or computes and caches it.
// Concurrent callers for the same key block until the computing caller has
// set the value.
func GetOrCreate[T any](ctx context.Context, cache Cache[T], key string, create func() (T, error)) (T, error) {
	// Clean up the cache if we claim an entry, but don't set it
	// This allows other callers to try again
	claimed := false
	set := false
	defer func() {
		if claimed && !set {
			cache.delete(key)
		}
	}()

	for {
		result := cache.getOrClaim(key)

		if result.claimed {
			claimed = true

			logging.FromContext(ctx).InfoContext(ctx, "Computing cached value", "cache", "miss", "key", key)

			data, err := create()
			if err != nil {
				var empty T
				return empty, fmt.Errorf("failed to create cache entry: %w", err)
			}

			cache.set(key, data)
			set = true

			return data, nil
		}

		if result.valid {
			logging.FromContext(ctx).InfoContext(ctx, "Using cached value", "cache", "hit", "key", key)
			return result.data, nil
		}

		cache.wait()
	}
}
