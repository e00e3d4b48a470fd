package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which events a handler has already applied.
type IdempotencyStore interface {
	// MarkProcessed records key with a TTL. It returns false when the key was
	// already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, key string) (bool, error)
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	TTL     time.Duration
	Enabled bool
}

// DefaultIdempotencyConfig keeps processed keys for a day.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
