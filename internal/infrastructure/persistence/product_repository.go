package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/catalog"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/mfgops/backend/internal/infrastructure/persistence/models"
	"github.com/mfgops/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormProductRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

func preloadMaterials(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// FindByIDForTenant finds a product with its bill of materials
func (r *GormProductRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := tenant.For(r.db.WithContext(ctx), tenantID).
		Preload("Materials", preloadMaterials).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindAllForTenant lists products with their bill of materials
func (r *GormProductRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	var productModels []models.ProductModel
	query := tenant.For(r.db.WithContext(ctx).Model(&models.ProductModel{}), tenantID)
	query = r.applyFilter(query, filter)
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	query = query.Order(orderClause(filter.OrderBy, filter.OrderDir, ProductSortFields))

	if err := query.Preload("Materials", preloadMaterials).Find(&productModels).Error; err != nil {
		return nil, err
	}
	products := make([]catalog.Product, len(productModels))
	for i := range productModels {
		p, err := productModels[i].ToDomain()
		if err != nil {
			return nil, err
		}
		products[i] = *p
	}
	return products, nil
}

// CountForTenant counts products for a tenant with optional filters
func (r *GormProductRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := tenant.For(r.db.WithContext(ctx).Model(&models.ProductModel{}), tenantID)
	if err := r.applyFilter(query, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts the product, its materials and the events
func (r *GormProductRepository) Create(ctx context.Context, product *catalog.Product, events ...shared.DomainEvent) error {
	if product.TenantID == uuid.Nil {
		return tenant.ErrTenantIDRequired
	}
	model := models.ProductModelFromDomain(product)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return err
		}
		if len(model.Materials) > 0 {
			if err := tx.Create(&model.Materials).Error; err != nil {
				return err
			}
		}
		return saveOutboxEvents(ctx, r.outboxSaver, tx, events)
	})
}

// Update saves with optimistic locking and replaces the bill of materials.
// A product that gained usage since it was read fails the version check.
func (r *GormProductRepository) Update(ctx context.Context, product *catalog.Product, events ...shared.DomainEvent) error {
	model := models.ProductModelFromDomain(product)
	model.Version = product.Version + 1

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tenant.For(tx.Model(&models.ProductModel{}), product.TenantID).
			Where("id = ? AND version = ?", product.ID, product.Version).
			Updates(map[string]any{
				"name":             model.Name,
				"name_key":         model.NameKey,
				"description":      model.Description,
				"size":             model.Size,
				"color":            model.Color,
				"unit_type":        model.UnitType,
				"status":           model.Status,
				"total_raw_amount": model.TotalRawAmount,
				"margin_percent":   model.MarginPercent,
				"wastage_percent":  model.WastagePercent,
				"transport_cost":   model.TransportCost,
				"misc_cost":        model.MiscCost,
				"gst_percent":      model.GSTPercent,
				"version":          model.Version,
				"updated_at":       model.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return r.missingOrStale(tx, product.TenantID, product.ID)
		}

		ids := make([]uuid.UUID, len(model.Materials))
		for i := range model.Materials {
			ids[i] = model.Materials[i].ID
		}
		del := tx.Where("product_id = ?", product.ID)
		if len(ids) > 0 {
			del = del.Where("id NOT IN ?", ids)
		}
		if err := del.Delete(&models.ProductMaterialModel{}).Error; err != nil {
			return err
		}
		if len(model.Materials) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).Create(&model.Materials).Error; err != nil {
				return err
			}
		}
		if err := saveOutboxEvents(ctx, r.outboxSaver, tx, events); err != nil {
			return err
		}
		product.Version = model.Version
		return nil
	})
}

// missingOrStale tells a vanished row from a version mismatch after a
// conditional update touched nothing.
func (r *GormProductRepository) missingOrStale(tx *gorm.DB, tenantID, id uuid.UUID) error {
	var count int64
	if err := tenant.For(tx.Model(&models.ProductModel{}), tenantID).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return shared.ErrNotFound
	}
	return shared.ErrConcurrencyConflict
}

// DeleteForTenant deletes an unused product and its materials. Products with
// logged usage are kept.
func (r *GormProductRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID, events ...shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tenant.For(tx, tenantID).
			Where("id = ? AND usage_count = 0", id).
			Delete(&models.ProductModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tenant.For(tx.Model(&models.ProductModel{}), tenantID).Where("id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return shared.ErrNotFound
			}
			return catalog.ErrProductLocked
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductMaterialModel{}).Error; err != nil {
			return err
		}
		return saveOutboxEvents(ctx, r.outboxSaver, tx, events)
	})
}

// GenerateCode returns the next PRD-NNNNN code
func (r *GormProductRepository) GenerateCode(ctx context.Context, tenantID uuid.UUID) (string, error) {
	return nextCode(ctx, r.db, models.ProductModel{}.TableName(), tenantID, catalog.ProductCodePrefix)
}

// ExistsByNameKey checks for another product with the same normalised name
func (r *GormProductRepository) ExistsByNameKey(ctx context.Context, tenantID uuid.UUID, key string, excludeID *uuid.UUID) (bool, error) {
	return existsByNameKey(ctx, r.db, models.ProductModel{}.TableName(), tenantID, key, excludeID)
}

// RecordUsage appends the log and increments usage_count. The version is
// bumped so an edit based on the unlocked product fails.
func (r *GormProductRepository) RecordUsage(ctx context.Context, log *catalog.UsageLog) (bool, error) {
	if log.OwnerKind != catalog.OwnerProduct {
		return false, fmt.Errorf("usage log owner %s is not a product", log.OwnerKind)
	}
	recorded := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inserted, err := insertUsageLog(tx, log)
		if err != nil || !inserted {
			return err
		}
		result := tenant.For(tx.Model(&models.ProductModel{}), log.TenantID).
			Where("id = ?", log.OwnerID).
			Updates(map[string]any{
				"usage_count": gorm.Expr("usage_count + 1"),
				"version":     gorm.Expr("version + 1"),
				"updated_at":  log.CreatedAt,
			})
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

func (r *GormProductRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ?", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", fmt.Sprint(value))
		case "locked":
			if locked, ok := value.(bool); ok {
				if locked {
					query = query.Where("usage_count > 0")
				} else {
					query = query.Where("usage_count = 0")
				}
			}
		}
	}
	return query
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
