package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/purchasing"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/mfgops/backend/internal/infrastructure/persistence/models"
	"github.com/mfgops/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormPurchaseOrderRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByIDForTenant finds a purchase order by ID within a tenant
func (r *GormPurchaseOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*purchasing.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := tenant.For(r.db.WithContext(ctx), tenantID).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Attachments", func(db *gorm.DB) *gorm.DB { return db.Order("uploaded_at ASC") }).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindAllForTenant lists orders with their lines. A row that fails to decode
// fails the whole listing.
func (r *GormPurchaseOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]purchasing.PurchaseOrder, error) {
	var orderModels []models.PurchaseOrderModel

	query := tenant.For(r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}), tenantID)
	query = r.applyFilter(query, filter)

	if err := query.
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Find(&orderModels).Error; err != nil {
		return nil, err
	}
	orders := make([]purchasing.PurchaseOrder, len(orderModels))
	for i := range orderModels {
		o, err := orderModels[i].ToDomain()
		if err != nil {
			return nil, err
		}
		orders[i] = *o
	}
	return orders, nil
}

// CountForTenant counts purchase orders for a tenant with optional filters
func (r *GormPurchaseOrderRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := tenant.For(r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}), tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts the order, its lines and attachments, and the events
func (r *GormPurchaseOrderRepository) Create(ctx context.Context, order *purchasing.PurchaseOrder, events ...shared.DomainEvent) error {
	if order.TenantID == uuid.Nil {
		return tenant.ErrTenantIDRequired
	}
	model := models.PurchaseOrderModelFromDomain(order)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return err
		}
		if len(model.Lines) > 0 {
			if err := tx.Create(&model.Lines).Error; err != nil {
				return err
			}
		}
		if len(model.Attachments) > 0 {
			if err := tx.Create(&model.Attachments).Error; err != nil {
				return err
			}
		}
		return saveOutboxEvents(ctx, r.outboxSaver, tx, events)
	})
}

// Update saves with optimistic locking (version check) and replaces the
// lines and attachments.
func (r *GormPurchaseOrderRepository) Update(ctx context.Context, order *purchasing.PurchaseOrder, events ...shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.PurchaseOrderModel
		if err := tenant.For(tx, order.TenantID).
			Select("id", "version").
			Where("id = ?", order.ID).
			Take(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}
		if current.Version != order.Version {
			return shared.ErrConcurrencyConflict
		}

		model := models.PurchaseOrderModelFromDomain(order)
		model.Version = order.Version + 1

		result := tenant.For(tx.Model(&models.PurchaseOrderModel{}), order.TenantID).
			Where("id = ? AND version = ?", order.ID, order.Version).
			Updates(map[string]any{
				"order_number":                  model.OrderNumber,
				"counterparty_company_id":       model.Counterparty.CompanyID,
				"counterparty_name":             model.Counterparty.Name,
				"counterparty_contact_person":   model.Counterparty.ContactPerson,
				"counterparty_phone":            model.Counterparty.Phone,
				"counterparty_email":            model.Counterparty.Email,
				"counterparty_tax_id":           model.Counterparty.TaxID,
				"counterparty_billing_address":  model.Counterparty.BillingAddress,
				"counterparty_shipping_address": model.Counterparty.ShippingAddress,
				"order_date":                    model.OrderDate,
				"delivery_date":                 model.DeliveryDate,
				"status":                        model.Status,
				"payment_status":                model.PaymentStatus,
				"remarks":                       model.Remarks,
				"currency":                      model.Currency,
				"total_amount":                  model.TotalAmount,
				"tax_amount":                    model.TaxAmount,
				"total_with_tax":                model.TotalWithTax,
				"version":                       model.Version,
				"updated_at":                    model.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		if err := r.replaceLines(tx, order.ID, model.Lines); err != nil {
			return err
		}
		if err := r.replaceAttachments(tx, order.ID, model.Attachments); err != nil {
			return err
		}
		if err := saveOutboxEvents(ctx, r.outboxSaver, tx, events); err != nil {
			return err
		}
		order.Version = model.Version
		return nil
	})
}

// replaceLines deletes lines that are no longer on the order and upserts the rest.
func (r *GormPurchaseOrderRepository) replaceLines(tx *gorm.DB, orderID uuid.UUID, lines []models.PurchaseOrderLineModel) error {
	ids := make([]uuid.UUID, len(lines))
	for i := range lines {
		ids[i] = lines[i].ID
	}

	del := tx.Where("order_id = ?", orderID)
	if len(ids) > 0 {
		del = del.Where("id NOT IN ?", ids)
	}
	if err := del.Delete(&models.PurchaseOrderLineModel{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&lines).Error
}

func (r *GormPurchaseOrderRepository) replaceAttachments(tx *gorm.DB, orderID uuid.UUID, atts []models.OrderAttachmentModel) error {
	ids := make([]uuid.UUID, len(atts))
	for i := range atts {
		ids[i] = atts[i].ID
	}

	del := tx.Where("order_id = ?", orderID)
	if len(ids) > 0 {
		del = del.Where("id NOT IN ?", ids)
	}
	if err := del.Delete(&models.OrderAttachmentModel{}).Error; err != nil {
		return err
	}
	if len(atts) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&atts).Error
}

// PatchStatus writes only the status columns. The version is left alone so a
// concurrent document edit still succeeds.
func (r *GormPurchaseOrderRepository) PatchStatus(ctx context.Context, tenantID, id uuid.UUID, patch purchasing.StatusPatch, events ...shared.DomainEvent) error {
	updates := map[string]any{"updated_at": patch.UpdatedAt}
	if patch.Status != nil {
		updates["status"] = string(*patch.Status)
	}
	if patch.PaymentStatus != nil {
		updates["payment_status"] = string(*patch.PaymentStatus)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tenant.For(tx.Model(&models.PurchaseOrderModel{}), tenantID).
			Where("id = ?", id).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return saveOutboxEvents(ctx, r.outboxSaver, tx, events)
	})
}

// DeleteForTenant hard-deletes the order with its lines and attachment rows
func (r *GormPurchaseOrderRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID, events ...shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tenant.For(tx, tenantID).
			Where("id = ?", id).
			Delete(&models.PurchaseOrderModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}

		if err := tx.Where("order_id = ?", id).Delete(&models.PurchaseOrderLineModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderAttachmentModel{}).Error; err != nil {
			return err
		}
		return saveOutboxEvents(ctx, r.outboxSaver, tx, events)
	})
}

type statusCountRow struct {
	Status        string
	PaymentStatus string
	Count         int64
}

// StatusSummary counts orders of a kind grouped by both statuses
func (r *GormPurchaseOrderRepository) StatusSummary(ctx context.Context, tenantID uuid.UUID, kind purchasing.Kind) (purchasing.StatusSummary, error) {
	var rows []statusCountRow
	if err := tenant.For(r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}), tenantID).
		Select("status, payment_status, COUNT(*) AS count").
		Where("kind = ?", string(kind)).
		Group("status, payment_status").
		Scan(&rows).Error; err != nil {
		return purchasing.StatusSummary{}, err
	}

	summary := purchasing.NewStatusSummary()
	for _, row := range rows {
		summary.Total += row.Count
		if st := purchasing.OrderStatus(row.Status); st.IsValid() {
			summary.ByStatus[st] += row.Count
		}
		if ps := purchasing.PaymentStatus(row.PaymentStatus); ps.IsValid() {
			summary.ByPayment[ps] += row.Count
		}
	}
	return summary, nil
}

// ExistsByOrderNumber checks if an order number exists for a tenant
func (r *GormPurchaseOrderRepository) ExistsByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (bool, error) {
	var count int64
	if err := tenant.For(r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}), tenantID).
		Where("order_number = ?", orderNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateOrderNumber generates a unique order number for a tenant
// Format: POG-YYYY-NNNNN or POR-YYYY-NNNNN (e.g., POG-2026-00001)
func (r *GormPurchaseOrderRepository) GenerateOrderNumber(ctx context.Context, tenantID uuid.UUID, kind purchasing.Kind) (string, error) {
	prefix := fmt.Sprintf("%s-%d-", purchasing.OrderNumberPrefix(kind), time.Now().Year())

	var lastOrder models.PurchaseOrderModel
	err := tenant.For(r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}), tenantID).
		Select("order_number").
		Where("order_number LIKE ?", prefix+"%").
		Order("order_number DESC").
		First(&lastOrder).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastOrder.OrderNumber != "" {
		parts := strings.Split(lastOrder.OrderNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	for i := 0; i < 100; i++ {
		orderNumber := fmt.Sprintf("%s%05d", prefix, nextNum)
		exists, err := r.ExistsByOrderNumber(ctx, tenantID, orderNumber)
		if err != nil {
			return "", err
		}
		if !exists {
			return orderNumber, nil
		}
		nextNum++
	}
	return "", shared.NewDomainError("ORDER_NUMBER_EXHAUSTED", "Could not allocate an order number")
}

// applyFilter applies filter options to the query
func (r *GormPurchaseOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query.Order(orderClause(filter.OrderBy, filter.OrderDir, PurchaseOrderSortFields))
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormPurchaseOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(order_number) LIKE ? OR LOWER(counterparty_name) LIKE ?",
			searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "kind":
			query = query.Where("kind = ?", fmt.Sprint(value))
		case "status":
			query = query.Where("status = ?", fmt.Sprint(value))
		case "payment_status":
			query = query.Where("payment_status = ?", fmt.Sprint(value))
		case "company_id":
			if id, ok := value.(uuid.UUID); ok {
				query = query.Where("counterparty_company_id = ?", id)
			}
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("order_date >= ?", t)
			}
		case "end_date":
			// end_date names a whole day; order dates carry a time of day.
			if t, ok := value.(time.Time); ok {
				query = query.Where("order_date < ?", time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, t.Location()))
			}
		}
	}
	return query
}

// Ensure GormPurchaseOrderRepository implements PurchaseOrderRepository
var _ purchasing.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
