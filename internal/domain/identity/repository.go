package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// FindByPhone finds a user by phone across tenants; sign-in happens
	// before the tenant is known.
	FindByPhone(ctx context.Context, phone string) (*User, error)

	// FindByIDForTenant finds a user by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*User, error)

	// Update saves profile changes in place
	Update(ctx context.Context, user *User) error
}

// TenantRepository defines the interface for tenant persistence
type TenantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)

	// CreateWithOwner stores a new tenant and its first user in one transaction
	CreateWithOwner(ctx context.Context, tenant *Tenant, owner *User) error
}

// OTPStore keeps pending challenges keyed by phone. Get and CountAttempt
// return shared.ErrNotFound when no live challenge exists.
type OTPStore interface {
	Save(ctx context.Context, challenge *OTPChallenge, ttl time.Duration) error
	Get(ctx context.Context, phone string) (*OTPChallenge, error)
	// CountAttempt atomically adds one attempt to the live challenge and
	// returns it with the new count.
	CountAttempt(ctx context.Context, phone string) (*OTPChallenge, error)
	// Consume removes the challenge only if it still carries codeHash. It
	// reports false when another caller already took it or a new code
	// replaced it.
	Consume(ctx context.Context, phone, codeHash string) (bool, error)
	Delete(ctx context.Context, phone string) error
}

// OTPSender delivers a code to a phone.
type OTPSender interface {
	Send(ctx context.Context, phone, code string) error
}
