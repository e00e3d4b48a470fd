package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/catalog"
	"github.com/mfgops/backend/internal/domain/costing"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/mfgops/backend/internal/infrastructure/persistence/models"
	"github.com/mfgops/backend/internal/infrastructure/persistence/tenant"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormRawMaterialRepository implements RawMaterialRepository using GORM
type GormRawMaterialRepository struct {
	db *gorm.DB
}

// NewGormRawMaterialRepository creates a new GormRawMaterialRepository
func NewGormRawMaterialRepository(db *gorm.DB) *GormRawMaterialRepository {
	return &GormRawMaterialRepository{db: db}
}

// FindByIDForTenant finds a raw material by ID
func (r *GormRawMaterialRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.RawMaterial, error) {
	var model models.RawMaterialModel
	if err := tenant.For(r.db.WithContext(ctx), tenantID).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds the raw materials among ids; missing ids are left out
func (r *GormRawMaterialRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]catalog.RawMaterial, error) {
	if len(ids) == 0 {
		return []catalog.RawMaterial{}, nil
	}
	var materialModels []models.RawMaterialModel
	if err := tenant.For(r.db.WithContext(ctx), tenantID).Where("id IN ?", ids).Find(&materialModels).Error; err != nil {
		return nil, err
	}
	return toRawMaterials(materialModels), nil
}

// FindAllForTenant lists raw materials. Supported filter keys: in_stock.
func (r *GormRawMaterialRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.RawMaterial, error) {
	var materialModels []models.RawMaterialModel
	query := tenant.For(r.db.WithContext(ctx).Model(&models.RawMaterialModel{}), tenantID)
	query = r.applyFilter(query, filter)
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	query = query.Order(orderClause(filter.OrderBy, filter.OrderDir, RawMaterialSortFields))
	if err := query.Find(&materialModels).Error; err != nil {
		return nil, err
	}
	return toRawMaterials(materialModels), nil
}

// CountForTenant counts raw materials for a tenant with optional filters
func (r *GormRawMaterialRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := tenant.For(r.db.WithContext(ctx).Model(&models.RawMaterialModel{}), tenantID)
	if err := r.applyFilter(query, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a raw material
func (r *GormRawMaterialRepository) Create(ctx context.Context, material *catalog.RawMaterial) error {
	if material.TenantID == uuid.Nil {
		return tenant.ErrTenantIDRequired
	}
	return r.db.WithContext(ctx).Create(models.RawMaterialModelFromDomain(material)).Error
}

// Update saves the editable fields and stock counters with optimistic locking.
// usage_count and actual price history are owned by RecordUsage.
func (r *GormRawMaterialRepository) Update(ctx context.Context, material *catalog.RawMaterial) error {
	model := models.RawMaterialModelFromDomain(material)
	model.Version = material.Version + 1

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tenant.For(tx.Model(&models.RawMaterialModel{}), material.TenantID).
			Where("id = ? AND version = ?", material.ID, material.Version).
			Updates(map[string]any{
				"name":             model.Name,
				"name_key":         model.NameKey,
				"description":      model.Description,
				"size":             model.Size,
				"color":            model.Color,
				"unit_type":        model.UnitType,
				"gst_percent":      model.GSTPercent,
				"estimated_price":  model.EstimatedPrice,
				"actual_price":     model.ActualPrice,
				"quantity":         model.Quantity,
				"quantity_used":    model.QuantityUsed,
				"quantity_wastage": model.QuantityWastage,
				"version":          model.Version,
				"updated_at":       model.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tenant.For(tx.Model(&models.RawMaterialModel{}), material.TenantID).Where("id = ?", material.ID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return shared.ErrNotFound
			}
			return shared.ErrConcurrencyConflict
		}
		material.Version = model.Version
		return nil
	})
}

// DeleteForTenant deletes a raw material. Its usage logs stay as history.
func (r *GormRawMaterialRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := tenant.For(r.db.WithContext(ctx), tenantID).Where("id = ?", id).Delete(&models.RawMaterialModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GenerateCode returns the next RM-NNNNN code
func (r *GormRawMaterialRepository) GenerateCode(ctx context.Context, tenantID uuid.UUID) (string, error) {
	return nextCode(ctx, r.db, models.RawMaterialModel{}.TableName(), tenantID, catalog.RawMaterialCodePrefix)
}

// ExistsByNameKey checks for another raw material with the same normalised name
func (r *GormRawMaterialRepository) ExistsByNameKey(ctx context.Context, tenantID uuid.UUID, key string, excludeID *uuid.UUID) (bool, error) {
	return existsByNameKey(ctx, r.db, models.RawMaterialModel{}.TableName(), tenantID, key, excludeID)
}

// RecordUsage appends the log, increments usage_count and, when actualPrice
// is set, overwrites the actual price. Concurrent given orders race on the
// price and the last committed one wins.
func (r *GormRawMaterialRepository) RecordUsage(ctx context.Context, log *catalog.UsageLog, actualPrice *decimal.Decimal) (bool, error) {
	if log.OwnerKind != catalog.OwnerRawMaterial {
		return false, fmt.Errorf("usage log owner %s is not a raw material", log.OwnerKind)
	}
	recorded := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inserted, err := insertUsageLog(tx, log)
		if err != nil || !inserted {
			return err
		}
		patch := map[string]any{
			"usage_count": gorm.Expr("usage_count + 1"),
			"version":     gorm.Expr("version + 1"),
			"updated_at":  log.CreatedAt,
		}
		if actualPrice != nil {
			patch["actual_price"] = costing.Clamp(*actualPrice)
		}
		result := tenant.For(tx.Model(&models.RawMaterialModel{}), log.TenantID).
			Where("id = ?", log.OwnerID).
			Updates(patch)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		recorded = true
		return nil
	})
	return recorded, err
}

func (r *GormRawMaterialRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ?", pattern, pattern)
	}
	if inStock, ok := filter.Filters["in_stock"].(bool); ok {
		if inStock {
			query = query.Where("quantity - quantity_used - quantity_wastage > 0")
		} else {
			query = query.Where("quantity - quantity_used - quantity_wastage <= 0")
		}
	}
	return query
}

func toRawMaterials(materialModels []models.RawMaterialModel) []catalog.RawMaterial {
	materials := make([]catalog.RawMaterial, len(materialModels))
	for i := range materialModels {
		materials[i] = *materialModels[i].ToDomain()
	}
	return materials
}

// Ensure GormRawMaterialRepository implements RawMaterialRepository
var _ catalog.RawMaterialRepository = (*GormRawMaterialRepository)(nil)
