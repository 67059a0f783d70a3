package cache

import (
	"context"
	"sync"

	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/usecase"
)

// MemoryIdempotencyStore is the redis-free variant used by tests and
// local dev mode. No TTL: entries live for the process lifetime.
type MemoryIdempotencyStore struct {
	mu     sync.Mutex
	locks  map[string]struct{}
	values map[string]string
}

func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		locks:  map[string]struct{}{},
		values: map[string]string{},
	}
}

func (s *MemoryIdempotencyStore) TryLock(ctx context.Context, scope, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := scope + ":" + key
	if _, held := s.locks[k]; held {
		return false, nil
	}
	s.locks[k] = struct{}{}
	return true, nil
}

func (s *MemoryIdempotencyStore) Remember(ctx context.Context, scope, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[scope+":"+key] = value
	return nil
}

func (s *MemoryIdempotencyStore) Recall(ctx context.Context, scope, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[scope+":"+key]
	return v, ok, nil
}

var _ usecase.IdempotencyStore = (*MemoryIdempotencyStore)(nil)
