package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/mfgops/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// nextCode returns the next PREFIX-NNNNN display code in table for a tenant.
// Codes are compared as strings, which holds while the number stays five digits.
func nextCode(ctx context.Context, db *gorm.DB, table string, tenantID uuid.UUID, prefix string) (string, error) {
	var last string
	err := tenant.For(db.WithContext(ctx).Table(table), tenantID).
		Select("code").
		Where("code LIKE ?", prefix+"-%").
		Order("code DESC").
		Limit(1).
		Scan(&last).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	next := 1
	if n, convErr := strconv.Atoi(strings.TrimPrefix(last, prefix+"-")); last != "" && convErr == nil {
		next = n + 1
	}

	for i := 0; i < 100; i++ {
		code := fmt.Sprintf("%s-%05d", prefix, next)
		var count int64
		if err := tenant.For(db.WithContext(ctx).Table(table), tenantID).
			Where("code = ?", code).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
		next++
	}
	return "", shared.NewDomainError("CODE_EXHAUSTED", "Could not allocate a code")
}

// existsByNameKey reports whether another row of the tenant already uses the
// normalised name.
func existsByNameKey(ctx context.Context, db *gorm.DB, table string, tenantID uuid.UUID, key string, excludeID *uuid.UUID) (bool, error) {
	query := tenant.For(db.WithContext(ctx).Table(table), tenantID).Where("name_key = ?", key)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// saveOutboxEvents writes events through the saver inside tx. A repository
// without a saver drops them.
func saveOutboxEvents(ctx context.Context, saver shared.OutboxEventSaver, tx *gorm.DB, events []shared.DomainEvent) error {
	if saver == nil || len(events) == 0 {
		return nil
	}
	if err := saver.SaveEvents(ctx, tx, events...); err != nil {
		return fmt.Errorf("failed to save events to outbox: %w", err)
	}
	return nil
}
