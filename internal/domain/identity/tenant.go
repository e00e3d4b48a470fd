package identity

import (
	"strings"
	"time"

	"github.com/mfgops/backend/internal/domain/shared"
)

const AggregateTypeTenant = "Tenant"

// TenantStatus represents the status of a tenant
type TenantStatus string

const (
	TenantStatusActive   TenantStatus = "active"
	TenantStatusInactive TenantStatus = "inactive"
)

// Tenant is the workspace every document belongs to. One is provisioned on
// the first sign-in of a phone number that has no user yet.
type Tenant struct {
	shared.BaseAggregateRoot
	Name   string
	Status TenantStatus
}

// NewTenant creates an active tenant.
func NewTenant(name string, now time.Time) (*Tenant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_TENANT_NAME", "Tenant name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_TENANT_NAME", "Tenant name cannot exceed 200 characters")
	}
	return &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRootAt(now),
		Name:              name,
		Status:            TenantStatusActive,
	}, nil
}

func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}
