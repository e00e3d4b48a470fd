package persistence

import (
	"context"
	"fmt"

	"github.com/mfgops/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
)

// tenantIndexes are the per-tenant unique keys that struct tags cannot
// express because tenant_id lives on the embedded base model. The SQL
// migrations create the same indexes on postgres.
var tenantIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_raw_material_tenant_code ON raw_materials (tenant_id, code)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_product_tenant_code ON products (tenant_id, code)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_purchase_order_tenant_number ON purchase_orders (tenant_id, order_number)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_company_tenant_own ON companies (tenant_id) WHERE is_own`,
}

// AutoMigrate creates the schema from the models. It backs the sqlite
// development database; postgres deployments run cmd/migrate instead.
func (d *Database) AutoMigrate(ctx context.Context, logger *zap.Logger) error {
	db := d.DB.WithContext(ctx)
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	for _, stmt := range tenantIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	logger.Info("schema migrated from models", zap.String("driver", d.Driver), zap.Int("tables", len(models.All())))
	return nil
}
