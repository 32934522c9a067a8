package cache

import (
	"context"
	"log"
	"time"
)

const (
	// Prefix namespaces every key this application writes so a shared redis
	// can be inspected or flushed selectively.
	Prefix = "pliro-cache:"

	// DefaultTTL bounds staleness for cached read-endpoint responses.
	DefaultTTL = 60 * time.Second
)

// Store is the key-value surface the application caches and counts through.
// Both the redis-backed store and the in-process fallback implement it.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// DeletePattern removes every key matching a glob-style pattern. The
	// application only ever passes "prefix*" forms.
	DeletePattern(ctx context.Context, pattern string) error
	// Incr increments a counter, starting its expiry window on first use.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Default is the process-wide store. It starts as an in-process store so the
// API (and tests) work without any infrastructure; Init upgrades it to redis
// when one is reachable.
var Default Store = NewMemoryStore(DefaultTTL)

// Init points the default store at redis. An unreachable redis is tolerated:
// the in-process fallback stays active and the failure is only logged, since
// cache trouble must never take the API down.
func Init(redisURL string) {
	store, err := NewRedisStore(redisURL)

	if err != nil {
		log.Printf("Redis unavailable, using in-process cache: %v", err)
		return
	}

	Default = store
}

// GetResponse fetches previously stored response bytes. Store errors are
// logged and reported as a miss.
func GetResponse(ctx context.Context, key string) ([]byte, bool) {
	value, ok, err := Default.Get(ctx, key)

	if err != nil {
		log.Printf("Error getting cache: %v", err)
		return nil, false
	}

	if !ok {
		return nil, false
	}

	return []byte(value), true
}

// SetResponse stores the exact bytes a read endpoint returned, so a cache hit
// replays a byte-identical response.
func SetResponse(ctx context.Context, key string, body []byte) {
	if err := Default.Set(ctx, key, string(body), DefaultTTL); err != nil {
		log.Printf("Error setting cache: %v", err)
	}
}
