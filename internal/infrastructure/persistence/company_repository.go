package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/partner"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/mfgops/backend/internal/infrastructure/persistence/models"
	"github.com/mfgops/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormCompanyRepository implements CompanyRepository using GORM
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewGormCompanyRepository creates a new GormCompanyRepository
func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

// FindByIDForTenant finds a company by ID within a tenant
func (r *GormCompanyRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Company, error) {
	return r.first(tenant.For(r.db.WithContext(ctx), tenantID).Where("id = ?", id))
}

// FindOwn finds the tenant's own company profile
func (r *GormCompanyRepository) FindOwn(ctx context.Context, tenantID uuid.UUID) (*partner.Company, error) {
	return r.first(tenant.For(r.db.WithContext(ctx), tenantID).Where("is_own = ?", true))
}

func (r *GormCompanyRepository) first(query *gorm.DB) (*partner.Company, error) {
	var model models.CompanyModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds all companies for a tenant
func (r *GormCompanyRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]partner.Company, error) {
	var companyModels []models.CompanyModel
	query := tenant.For(r.db.WithContext(ctx).Model(&models.CompanyModel{}), tenantID)
	query = r.applyFilter(query, filter)
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	query = query.Order(orderClause(filter.OrderBy, filter.OrderDir, CompanySortFields))

	if err := query.Find(&companyModels).Error; err != nil {
		return nil, err
	}
	companies := make([]partner.Company, len(companyModels))
	for i := range companyModels {
		companies[i] = *companyModels[i].ToDomain()
	}
	return companies, nil
}

// CountForTenant counts companies matching the filter
func (r *GormCompanyRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := tenant.For(r.db.WithContext(ctx).Model(&models.CompanyModel{}), tenantID)
	if err := r.applyFilter(query, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsOwn reports whether the tenant already has its own company
func (r *GormCompanyRepository) ExistsOwn(ctx context.Context, tenantID uuid.UUID) (bool, error) {
	var count int64
	if err := tenant.For(r.db.WithContext(ctx).Model(&models.CompanyModel{}), tenantID).
		Where("is_own = ?", true).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save updates the company if its version still matches and inserts it when
// no row with its id exists yet.
func (r *GormCompanyRepository) Save(ctx context.Context, company *partner.Company) error {
	if company.TenantID == uuid.Nil {
		return tenant.ErrTenantIDRequired
	}
	model := models.CompanyModelFromDomain(company)
	model.Version = company.Version + 1

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tenant.For(tx.Model(&models.CompanyModel{}), company.TenantID).
			Where("id = ? AND version = ?", company.ID, company.Version).
			Updates(map[string]any{
				"name":       model.Name,
				"legal_name": model.LegalName,
				"tax_id":     model.TaxID,
				"email":      model.Email,
				"phone":      model.Phone,
				"website":    model.Website,
				"address":    model.Address,
				"logo_key":   model.LogoKey,
				"version":    model.Version,
				"updated_at": model.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			company.Version = model.Version
			return nil
		}

		var count int64
		if err := tx.Model(&models.CompanyModel{}).Where("id = ?", company.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return shared.ErrConcurrencyConflict
		}
		model.Version = company.Version
		return tx.Create(model).Error
	})
}

// DeleteForTenant deletes a company within a tenant
func (r *GormCompanyRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := tenant.For(r.db.WithContext(ctx), tenantID).Where("id = ?", id).Delete(&models.CompanyModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormCompanyRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(legal_name) LIKE ? OR LOWER(tax_id) LIKE ?", pattern, pattern, pattern)
	}
	if isOwn, ok := filter.Filters["is_own"].(bool); ok {
		query = query.Where("is_own = ?", isOwn)
	}
	return query
}

// Ensure GormCompanyRepository implements CompanyRepository
var _ partner.CompanyRepository = (*GormCompanyRepository)(nil)
