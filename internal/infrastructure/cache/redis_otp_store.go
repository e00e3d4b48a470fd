package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mfgops/backend/internal/domain/identity"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

const otpKeyPrefix = "mfg:otp:"

// countAttemptScript bumps the attempt counter of a live challenge and
// returns the challenge with the new count. The counter expires with it.
var countAttemptScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return false
end
local n = redis.call('INCR', KEYS[2])
local ttl = redis.call('PTTL', KEYS[1])
if ttl > 0 then
	redis.call('PEXPIRE', KEYS[2], ttl)
end
return {redis.call('GET', KEYS[1]), n}
`)

// consumeScript deletes the challenge only while it still holds ARGV[1].
var consumeScript = redis.NewScript(`
local data = redis.call('GET', KEYS[1])
if not data then
	return 0
end
if cjson.decode(data).code_hash ~= ARGV[1] then
	return 0
end
redis.call('DEL', KEYS[1], KEYS[2])
return 1
`)

// RedisOTPStore keeps challenges as JSON under a per-phone key that expires
// with the challenge. Attempts live in a sibling counter so concurrent
// guesses are counted with INCR. Both keys share a hash tag.
type RedisOTPStore struct {
	client *redis.Client
}

func NewRedisOTPStore(client *redis.Client) *RedisOTPStore {
	return &RedisOTPStore{client: client}
}

func otpKeys(phone string) (challenge, attempts string) {
	base := otpKeyPrefix + "{" + phone + "}"
	return base, base + ":attempts"
}

func (s *RedisOTPStore) Save(ctx context.Context, challenge *identity.OTPChallenge, ttl time.Duration) error {
	data, err := json.Marshal(challenge)
	if err != nil {
		return err
	}
	key, attemptsKey := otpKeys(challenge.Phone)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, ttl)
		pipe.Set(ctx, attemptsKey, challenge.Attempts, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save otp challenge: %w", err)
	}
	return nil
}

func (s *RedisOTPStore) Get(ctx context.Context, phone string) (*identity.OTPChallenge, error) {
	key, attemptsKey := otpKeys(phone)
	var data, attempts *redis.StringCmd
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		data = pipe.Get(ctx, key)
		attempts = pipe.Get(ctx, attemptsKey)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("load otp challenge: %w", err)
	}
	raw, err := data.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load otp challenge: %w", err)
	}
	c, err := decodeChallenge(raw)
	if err != nil {
		return nil, err
	}
	if n, err := attempts.Int(); err == nil {
		c.Attempts = n
	}
	return c, nil
}

func (s *RedisOTPStore) CountAttempt(ctx context.Context, phone string) (*identity.OTPChallenge, error) {
	key, attemptsKey := otpKeys(phone)
	res, err := countAttemptScript.Run(ctx, s.client, []string{key, attemptsKey}).Slice()
	if errors.Is(err, redis.Nil) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("count otp attempt: %w", err)
	}
	if len(res) != 2 {
		return nil, fmt.Errorf("count otp attempt: unexpected reply %v", res)
	}
	raw, _ := res[0].(string)
	n, _ := res[1].(int64)
	c, err := decodeChallenge([]byte(raw))
	if err != nil {
		return nil, err
	}
	c.Attempts = int(n)
	return c, nil
}

func (s *RedisOTPStore) Consume(ctx context.Context, phone, codeHash string) (bool, error) {
	key, attemptsKey := otpKeys(phone)
	n, err := consumeScript.Run(ctx, s.client, []string{key, attemptsKey}, codeHash).Int()
	if err != nil {
		return false, fmt.Errorf("consume otp challenge: %w", err)
	}
	return n == 1, nil
}

func (s *RedisOTPStore) Delete(ctx context.Context, phone string) error {
	key, attemptsKey := otpKeys(phone)
	return s.client.Del(ctx, key, attemptsKey).Err()
}

func decodeChallenge(raw []byte) (*identity.OTPChallenge, error) {
	var c identity.OTPChallenge
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode otp challenge: %w", err)
	}
	return &c, nil
}

var _ identity.OTPStore = (*RedisOTPStore)(nil)
