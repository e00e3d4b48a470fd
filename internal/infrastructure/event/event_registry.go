package event

import (
	"github.com/mfgops/backend/internal/domain/catalog"
	"github.com/mfgops/backend/internal/domain/identity"
	"github.com/mfgops/backend/internal/domain/partner"
	"github.com/mfgops/backend/internal/domain/purchasing"
)

// RegisterAllEvents registers every event the repositories write to the outbox
func RegisterAllEvents(s *EventSerializer) {
	Register[purchasing.PurchaseOrderCreatedEvent](s, purchasing.EventTypePurchaseOrderCreated)
	Register[purchasing.PurchaseOrderUpdatedEvent](s, purchasing.EventTypePurchaseOrderUpdated)
	Register[purchasing.PurchaseOrderStatusChangedEvent](s, purchasing.EventTypePurchaseOrderStatusChanged)
	Register[purchasing.PurchaseOrderPaymentStatusChangedEvent](s, purchasing.EventTypePurchaseOrderPaymentStatusChanged)
	Register[purchasing.PurchaseOrderDeletedEvent](s, purchasing.EventTypePurchaseOrderDeleted)

	Register[catalog.ProductCreatedEvent](s, catalog.EventTypeProductCreated)
	Register[catalog.ProductUpdatedEvent](s, catalog.EventTypeProductUpdated)
	Register[catalog.ProductStatusChangedEvent](s, catalog.EventTypeProductStatusChanged)
	Register[catalog.ProductDeletedEvent](s, catalog.EventTypeProductDeleted)

	Register[partner.CompanyCreatedEvent](s, partner.EventTypeCompanyCreated)
	Register[partner.CompanyUpdatedEvent](s, partner.EventTypeCompanyUpdated)
	Register[partner.CompanyDeletedEvent](s, partner.EventTypeCompanyDeleted)

	Register[identity.UserCreatedEvent](s, identity.EventTypeUserCreated)
}
