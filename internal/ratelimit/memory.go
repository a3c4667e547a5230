package ratelimit

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps blocks in-process. Suitable for single-node deployments
// and tests; a multi-instance deployment needs the redis store so every
// instance sees the same blocks.
type MemoryStore struct {
	cache *gocache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: gocache.New(time.Minute, 5*time.Minute)}
}

func (s *MemoryStore) IsBlocked(_ context.Context, key string) (bool, error) {
	_, found := s.cache.Get(key)
	return found, nil
}

func (s *MemoryStore) Block(_ context.Context, key string, ttl time.Duration) error {
	s.cache.Set(key, true, ttl)
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}
