package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frozenStore returns a store whose clock only moves when advance is called
func frozenStore(t *testing.T) (*InMemoryIdempotencyStore, func(time.Duration)) {
	t.Helper()
	s := NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = s.Close() })
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s.keys.now = func() time.Time { return now }
	return s, func(d time.Duration) { now = now.Add(d) }
}

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	ctx := context.Background()
	s, advance := frozenStore(t)
	key := "ProductMaterialUsageHandler:4b1f0c4e"

	first, err := s.MarkProcessed(ctx, key, time.Hour)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := s.MarkProcessed(ctx, key, time.Hour)
	require.NoError(t, err)
	assert.False(t, again, "a live key cannot be claimed twice")

	done, err := s.IsProcessed(ctx, key)
	require.NoError(t, err)
	assert.True(t, done)

	advance(time.Hour)
	done, _ = s.IsProcessed(ctx, key)
	assert.False(t, done, "expired keys read as unprocessed")

	reclaimed, err := s.MarkProcessed(ctx, key, time.Hour)
	require.NoError(t, err)
	assert.True(t, reclaimed)
}

func TestInMemoryIdempotencyStore_UnknownKey(t *testing.T) {
	s, _ := frozenStore(t)
	done, err := s.IsProcessed(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.False(t, done)
}

func TestInMemoryIdempotencyStore_SweepDropsExpired(t *testing.T) {
	ctx := context.Background()
	s, advance := frozenStore(t)

	_, _ = s.MarkProcessed(ctx, "short", time.Minute)
	_, _ = s.MarkProcessed(ctx, "long", time.Hour)
	assert.Equal(t, 2, s.Size())

	advance(2 * time.Minute)
	assert.Equal(t, 2, s.Size(), "expired entries stay until swept")

	s.cleanup()
	assert.Equal(t, 1, s.Size())
	done, _ := s.IsProcessed(ctx, "long")
	assert.True(t, done)
}

func TestInMemoryIdempotencyStore_OneWinnerPerKey(t *testing.T) {
	s := NewInMemoryIdempotencyStore()
	defer s.Close()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := s.MarkProcessed(context.Background(), "shared-key", time.Minute); ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestInMemoryIdempotencyStore_CloseTwice(t *testing.T) {
	s := NewInMemoryIdempotencyStore()
	require.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}
