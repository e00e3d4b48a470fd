package cache

import (
	"context"
	"time"

	"github.com/mfgops/backend/internal/domain/identity"
	"github.com/mfgops/backend/internal/domain/shared"
)

// InMemoryOTPStore keeps pending sign-in challenges in process memory.
type InMemoryOTPStore struct {
	challenges *ttlMap[identity.OTPChallenge]
}

func NewInMemoryOTPStore() *InMemoryOTPStore {
	return &InMemoryOTPStore{challenges: newTTLMap[identity.OTPChallenge](time.Minute)}
}

// Save stores a copy of challenge, replacing any earlier one for the phone
func (s *InMemoryOTPStore) Save(ctx context.Context, challenge *identity.OTPChallenge, ttl time.Duration) error {
	s.challenges.set(challenge.Phone, *challenge, ttl)
	return nil
}

func (s *InMemoryOTPStore) Get(ctx context.Context, phone string) (*identity.OTPChallenge, error) {
	c, ok := s.challenges.get(phone)
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &c, nil
}

func (s *InMemoryOTPStore) CountAttempt(ctx context.Context, phone string) (*identity.OTPChallenge, error) {
	c, ok := s.challenges.update(phone, func(c *identity.OTPChallenge) { c.CountAttempt() })
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &c, nil
}

func (s *InMemoryOTPStore) Consume(ctx context.Context, phone, codeHash string) (bool, error) {
	return s.challenges.deleteIf(phone, func(c identity.OTPChallenge) bool {
		return c.CodeHash == codeHash
	}), nil
}

func (s *InMemoryOTPStore) Delete(ctx context.Context, phone string) error {
	s.challenges.delete(phone)
	return nil
}

func (s *InMemoryOTPStore) Close() error {
	s.challenges.close()
	return nil
}

var _ identity.OTPStore = (*InMemoryOTPStore)(nil)
