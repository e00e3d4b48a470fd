package event

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/mfgops/backend/internal/infrastructure/persistence/models"
	"github.com/mfgops/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOutboxRepository implements OutboxRepository using GORM
type GormOutboxRepository struct {
	db *gorm.DB
}

// NewGormOutboxRepository creates a new GORM-based outbox repository
func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormOutboxRepository) WithTx(tx *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: tx}
}

// Save persists one or more outbox entries
func (r *GormOutboxRepository) Save(ctx context.Context, entries ...*shared.OutboxEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]*models.OutboxEntryModel, len(entries))
	for i, e := range entries {
		rows[i] = models.OutboxEntryModelFromDomain(e)
	}
	return r.db.WithContext(ctx).Create(rows).Error
}

// FindPending retrieves pending entries up to the specified limit
func (r *GormOutboxRepository) FindPending(ctx context.Context, limit int) ([]*shared.OutboxEntry, error) {
	var rows []models.OutboxEntryModel
	err := r.db.WithContext(ctx).
		Where("status = ?", shared.OutboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toOutboxEntries(rows)
}

// FindRetryable retrieves failed entries that are due for retry
func (r *GormOutboxRepository) FindRetryable(ctx context.Context, before time.Time, limit int) ([]*shared.OutboxEntry, error) {
	var rows []models.OutboxEntryModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_retry_at <= ?", shared.OutboxStatusFailed, before).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toOutboxEntries(rows)
}

// MarkProcessing atomically marks entries as processing and returns them.
// On postgres rows locked by another processor are skipped; sqlite has a
// single writer and needs no row locks.
func (r *GormOutboxRepository) MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*shared.OutboxEntry, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var entries []*shared.OutboxEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Where("id IN ? AND status IN ?", ids, []shared.OutboxStatus{
			shared.OutboxStatusPending,
			shared.OutboxStatusFailed,
		})
		if tx.Dialector.Name() == "postgres" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		}
		var rows []models.OutboxEntryModel
		if err := query.Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		claimed := make([]uuid.UUID, len(rows))
		for i := range rows {
			claimed[i] = rows[i].ID
		}
		now := time.Now()
		if err := tx.Model(&models.OutboxEntryModel{}).
			Where("id IN ?", claimed).
			Updates(map[string]any{
				"status":     shared.OutboxStatusProcessing,
				"updated_at": now,
			}).Error; err != nil {
			return err
		}

		var err error
		entries, err = toOutboxEntries(rows)
		if err != nil {
			return err
		}
		for _, e := range entries {
			e.Status = shared.OutboxStatusProcessing
			e.UpdatedAt = now
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Update writes the delivery state of an entry
func (r *GormOutboxRepository) Update(ctx context.Context, entry *shared.OutboxEntry) error {
	entry.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.OutboxEntryModel{}).
		Where("id = ?", entry.ID).
		Updates(map[string]any{
			"status":        entry.Status,
			"retry_count":   entry.RetryCount,
			"last_error":    entry.LastError,
			"next_retry_at": entry.NextRetryAt,
			"processed_at":  entry.ProcessedAt,
			"updated_at":    entry.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ReleaseStale flips processing rows untouched since claimedBefore back to
// failed, due now. The retry count is left alone.
func (r *GormOutboxRepository) ReleaseStale(ctx context.Context, claimedBefore time.Time) (int64, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.OutboxEntryModel{}).
		Where("status = ? AND updated_at < ?", shared.OutboxStatusProcessing, claimedBefore).
		Updates(map[string]any{
			"status":        shared.OutboxStatusFailed,
			"next_retry_at": now,
			"last_error":    "delivery claim expired",
			"updated_at":    now,
		})
	return result.RowsAffected, result.Error
}

// DeleteOlderThan deletes sent entries processed before the given time
func (r *GormOutboxRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status = ? AND processed_at < ?", shared.OutboxStatusSent, before).
		Delete(&models.OutboxEntryModel{})
	return result.RowsAffected, result.Error
}

// FindDeadForTenant retrieves dead letter entries of a tenant with pagination
func (r *GormOutboxRepository) FindDeadForTenant(ctx context.Context, tenantID uuid.UUID, page, pageSize int) ([]*shared.OutboxEntry, int64, error) {
	var total int64
	if err := tenant.For(r.db.WithContext(ctx).Model(&models.OutboxEntryModel{}), tenantID).
		Where("status = ?", shared.OutboxStatusDead).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	var rows []models.OutboxEntryModel
	if err := tenant.For(r.db.WithContext(ctx), tenantID).
		Where("status = ?", shared.OutboxStatusDead).
		Order("updated_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	entries, err := toOutboxEntries(rows)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// FindByIDForTenant retrieves a single outbox entry of a tenant
func (r *GormOutboxRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*shared.OutboxEntry, error) {
	var row models.OutboxEntryModel
	if err := tenant.For(r.db.WithContext(ctx), tenantID).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return row.ToDomain()
}

// CountByStatus returns count of entries for each status
func (r *GormOutboxRepository) CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int64, error) {
	type statusCount struct {
		Status shared.OutboxStatus
		Count  int64
	}

	var results []statusCount
	err := r.db.WithContext(ctx).
		Model(&models.OutboxEntryModel{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[shared.OutboxStatus]int64)
	for _, r := range results {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

func toOutboxEntries(rows []models.OutboxEntryModel) ([]*shared.OutboxEntry, error) {
	entries := make([]*shared.OutboxEntry, len(rows))
	for i := range rows {
		e, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		entries[i] = e
	}
	return entries, nil
}

// Ensure GormOutboxRepository implements OutboxRepository
var _ shared.OutboxRepository = (*GormOutboxRepository)(nil)
