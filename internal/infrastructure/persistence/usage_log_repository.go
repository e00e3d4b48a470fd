package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/catalog"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/mfgops/backend/internal/infrastructure/persistence/models"
	"github.com/mfgops/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUsageLogRepository reads usage logs. Logs are only written through the
// owning product or raw material repository.
type GormUsageLogRepository struct {
	db *gorm.DB
}

// NewGormUsageLogRepository creates a new GormUsageLogRepository
func NewGormUsageLogRepository(db *gorm.DB) *GormUsageLogRepository {
	return &GormUsageLogRepository{db: db}
}

func (r *GormUsageLogRepository) ownerQuery(ctx context.Context, tenantID uuid.UUID, owner catalog.OwnerKind, ownerID uuid.UUID) *gorm.DB {
	return tenant.For(r.db.WithContext(ctx).Model(&models.UsageLogModel{}), tenantID).
		Where("owner_kind = ? AND owner_id = ?", string(owner), ownerID)
}

// ListByOwner lists the logs of one product or raw material, oldest first
// unless the filter asks otherwise. Supported filter keys: type.
func (r *GormUsageLogRepository) ListByOwner(ctx context.Context, tenantID uuid.UUID, owner catalog.OwnerKind, ownerID uuid.UUID, filter shared.Filter) ([]catalog.UsageLog, error) {
	query := r.ownerQuery(ctx, tenantID, owner, ownerID)
	if t, ok := filter.Filters["type"]; ok {
		query = query.Where("type = ?", t)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	orderDir := filter.OrderDir
	if filter.OrderBy == "" {
		orderDir = "asc"
	}
	query = query.Order(orderClause(filter.OrderBy, orderDir, UsageLogSortFields))

	var logModels []models.UsageLogModel
	if err := query.Find(&logModels).Error; err != nil {
		return nil, err
	}
	logs := make([]catalog.UsageLog, len(logModels))
	for i := range logModels {
		l, err := logModels[i].ToDomain()
		if err != nil {
			return nil, err
		}
		logs[i] = *l
	}
	return logs, nil
}

// CountByOwner counts the logs of one product or raw material
func (r *GormUsageLogRepository) CountByOwner(ctx context.Context, tenantID uuid.UUID, owner catalog.OwnerKind, ownerID uuid.UUID) (int64, error) {
	var count int64
	if err := r.ownerQuery(ctx, tenantID, owner, ownerID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// insertUsageLog appends a usage log, reporting false when an identical log
// (same owner, reference and line) already exists.
func insertUsageLog(tx *gorm.DB, log *catalog.UsageLog) (bool, error) {
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	result := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "owner_kind"}, {Name: "owner_id"}, {Name: "reference_id"}, {Name: "reference_line_id"},
		},
		DoNothing: true,
	}).Create(models.UsageLogModelFromDomain(log))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Ensure GormUsageLogRepository implements UsageLogRepository
var _ catalog.UsageLogRepository = (*GormUsageLogRepository)(nil)
