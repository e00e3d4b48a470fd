package cache

import (
	"context"
	"time"

	"github.com/mfgops/backend/internal/domain/shared"
)

// InMemoryIdempotencyStore remembers handled events inside one process.
// Suitable for single-instance deployments and tests.
type InMemoryIdempotencyStore struct {
	keys *ttlMap[struct{}]
}

// NewInMemoryIdempotencyStore starts the store and its expiry sweep
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return &InMemoryIdempotencyStore{keys: newTTLMap[struct{}](defaultSweepInterval)}
}

// MarkProcessed returns false when key is already recorded
func (s *InMemoryIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.keys.setNX(key, struct{}{}, ttl), nil
}

func (s *InMemoryIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	_, ok := s.keys.get(key)
	return ok, nil
}

// Close stops the sweep. Safe to call more than once.
func (s *InMemoryIdempotencyStore) Close() error {
	s.keys.close()
	return nil
}

func (s *InMemoryIdempotencyStore) cleanup() {
	s.keys.sweep()
}

// Size returns the number of stored keys, expired ones included until swept
func (s *InMemoryIdempotencyStore) Size() int {
	return s.keys.len()
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
