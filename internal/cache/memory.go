package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// memoryCacheSize bounds the fallback cache. One entry per distinct list page
// or detail id keeps a single instance far below this.
const memoryCacheSize = 4096

type counter struct {
	count   int64
	resetAt time.Time
}

// MemoryStore is the in-process fallback used when redis is unreachable, and
// the store tests run against. Response values live in an expiring LRU whose
// TTL is fixed at construction; only the redis store honors per-call TTLs.
// Counters are kept separately because a fixed rate-limit window must not be
// refreshed on every increment the way LRU entries are.
type MemoryStore struct {
	values *expirable.LRU[string, string]

	mu       sync.Mutex
	counters map[string]*counter
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		values:   expirable.NewLRU[string, string](memoryCacheSize, nil, ttl),
		counters: make(map[string]*counter),
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, ok := s.values.Get(key)
	return value, ok, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	s.values.Add(key, value)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		s.values.Remove(key)
	}

	return nil
}

func (s *MemoryStore) DeletePattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")

	for _, key := range s.values.Keys() {
		if strings.HasPrefix(key, prefix) {
			s.values.Remove(key)
		}
	}

	return nil
}

func (s *MemoryStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	c, ok := s.counters[key]

	if !ok || now.After(c.resetAt) {
		c = &counter{resetAt: now.Add(window)}
		s.counters[key] = c
	}

	c.count++

	return c.count, nil
}
