package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/shared"
)

// CompanyRepository defines the interface for company persistence.
// Supported filter keys: is_own.
type CompanyRepository interface {
	// FindByIDForTenant finds a company by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Company, error)

	// FindOwn finds the tenant's own company profile
	FindOwn(ctx context.Context, tenantID uuid.UUID) (*Company, error)

	// FindAllForTenant finds all companies for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Company, error)

	// CountForTenant counts companies matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// ExistsOwn reports whether the tenant already has its own company
	ExistsOwn(ctx context.Context, tenantID uuid.UUID) (bool, error)

	// Save creates or updates a company
	Save(ctx context.Context, company *Company) error

	// DeleteForTenant deletes a company within a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
