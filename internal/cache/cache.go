package cache

import (
	"context"
	"time"
)

// Client is the narrow cache surface the feed subsystem depends on. Both
// cache tiers (feed index and content) are Clients with their own namespace
// and TTL; callers treat backend failures as misses.
type Client interface {
	// Get returns the raw value and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// GetMany returns only the keys that were present.
	GetMany(ctx context.Context, keys []string) (map[string][]byte, error)
}

// DefaultTTL matches the source system: both tiers keep entries for a week.
const DefaultTTL = 7 * 24 * time.Hour
