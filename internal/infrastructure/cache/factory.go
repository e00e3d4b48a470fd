package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/mfgops/backend/internal/domain/identity"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/mfgops/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Stores bundles the short-lived state shared by the event handlers and the
// sign-in flow. Redis is nil when the in-memory stores are in use.
type Stores struct {
	Idempotency shared.IdempotencyStore
	OTP         identity.OTPStore
	Redis       *redis.Client

	closers []func() error
}

// Close releases the stores and the Redis client
func (s *Stores) Close() error {
	var firstErr error
	for _, c := range s.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// StoreFactory creates stores based on configuration
type StoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	pingTimeout           time.Duration
}

// StoreFactoryOption is a functional option for configuring the factory
type StoreFactoryOption func(*StoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// in-memory stores. Default is true.
func WithInMemoryFallback(allow bool) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewStoreFactory creates a new factory
func NewStoreFactory(cfg config.RedisConfig, opts ...StoreFactoryOption) *StoreFactory {
	f := &StoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		pingTimeout:           5 * time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create connects to Redis when a host is configured and falls back to
// in-memory stores when it is not, or when Redis is down and fallback is on.
func (f *StoreFactory) Create(ctx context.Context) (*Stores, error) {
	if f.redisConfig.Host == "" {
		f.logger.Info("redis not configured, using in-memory stores")
		return f.inMemory(), nil
	}

	client, err := f.connect(ctx)
	if err == nil {
		f.logger.Info("using redis stores", zap.String("addr", f.redisConfig.Addr()))
		return &Stores{
			Idempotency: NewRedisIdempotencyStore(client, ""),
			OTP:         NewRedisOTPStore(client),
			Redis:       client,
			closers:     []func() error{client.Close},
		}, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required but unavailable: %w", err)
	}
	f.logger.Warn("redis unavailable, falling back to in-memory stores. "+
		"Events may be handled twice and OTP codes are not shared across instances.",
		zap.Error(err),
	)
	return f.inMemory(), nil
}

func (f *StoreFactory) connect(ctx context.Context) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         f.redisConfig.Addr(),
		Password:     f.redisConfig.Password,
		DB:           f.redisConfig.DB,
		PoolSize:     10,
		MinIdleConns: 3,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, f.pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", f.redisConfig.Addr(), err)
	}
	return client, nil
}

func (f *StoreFactory) inMemory() *Stores {
	idem := NewInMemoryIdempotencyStore()
	otp := NewInMemoryOTPStore()
	return &Stores{
		Idempotency: idem,
		OTP:         otp,
		closers:     []func() error{idem.Close, otp.Close},
	}
}
