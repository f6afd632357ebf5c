package venues

import (
	"context"
	"time"

	"venuely/pkg/cache"
)

const (
	cacheKeyVenue       = "venuely:venues:id:"
	cacheKeySearch      = "venuely:venues:search:"
	cacheKeyOwnerVenues = "venuely:venues:owner:"
)

func SetCache(ctx context.Context, store cache.Service, key string, value interface{}, ttl time.Duration) error {
	if store == nil {
		return nil // caching is optional, redis may be down
	}
	return store.Set(ctx, key, value, ttl)
}

func GetCache(ctx context.Context, store cache.Service, key string, dest interface{}) error {
	if store == nil {
		return cache.ErrCacheMiss
	}
	return store.Get(ctx, key, dest)
}

// InvalidateVenueCache drops every cached read for a venue, including search
// pages that may contain it. Called on every venue or calendar write.
func InvalidateVenueCache(ctx context.Context, store cache.Service, venueID string) error {
	if store == nil {
		return nil
	}

	patterns := []string{
		cacheKeySearch + "*",
		cacheKeyOwnerVenues + "*",
	}
	if venueID != "" {
		patterns = append(patterns, cacheKeyVenue+venueID+"*")
	}

	for _, pattern := range patterns {
		if err := store.DeletePattern(ctx, pattern); err != nil {
			return err
		}
	}
	return nil
}
