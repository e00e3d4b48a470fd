package purchasing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/shared"
)

// StatusPatch is a narrow update of the two status fields. Nil fields are
// left untouched.
type StatusPatch struct {
	Status        *OrderStatus
	PaymentStatus *PaymentStatus
	UpdatedAt     time.Time
}

// StatusSummary counts orders of one kind per order status and per payment status.
type StatusSummary struct {
	Total     int64                   `json:"total"`
	ByStatus  map[OrderStatus]int64   `json:"by_status"`
	ByPayment map[PaymentStatus]int64 `json:"by_payment_status"`
}

// NewStatusSummary returns a summary with every status present at zero.
func NewStatusSummary() StatusSummary {
	s := StatusSummary{
		ByStatus:  make(map[OrderStatus]int64),
		ByPayment: make(map[PaymentStatus]int64),
	}
	for _, st := range AllOrderStatuses() {
		s.ByStatus[st] = 0
	}
	for _, st := range AllPaymentStatuses() {
		s.ByPayment[st] = 0
	}
	return s
}

// PurchaseOrderRepository persists purchase orders. Every method is scoped to
// the tenant passed in.
//
// Supported filter keys: kind, status, payment_status, company_id,
// start_date, end_date (time.Time, on order_date).
type PurchaseOrderRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseOrder, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]PurchaseOrder, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// Create inserts a new order and its events in one transaction.
	Create(ctx context.Context, order *PurchaseOrder, events ...shared.DomainEvent) error
	// Update replaces the stored document if its version still matches,
	// then bumps the version. Lines are replaced wholesale.
	Update(ctx context.Context, order *PurchaseOrder, events ...shared.DomainEvent) error
	// PatchStatus writes only the status columns and updated_at.
	PatchStatus(ctx context.Context, tenantID, id uuid.UUID, patch StatusPatch, events ...shared.DomainEvent) error
	// DeleteForTenant hard-deletes the order and its lines.
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID, events ...shared.DomainEvent) error

	StatusSummary(ctx context.Context, tenantID uuid.UUID, kind Kind) (StatusSummary, error)
	// GenerateOrderNumber returns the next number in the PREFIX-YYYY-NNNNN sequence of a kind.
	GenerateOrderNumber(ctx context.Context, tenantID uuid.UUID, kind Kind) (string, error)
	ExistsByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (bool, error)
}

// OrderNumberPrefix returns the order number prefix of a kind.
func OrderNumberPrefix(kind Kind) string {
	if kind == KindGiven {
		return "POG"
	}
	return "POR"
}
