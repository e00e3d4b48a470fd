package partner

import (
	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/shared"
)

const AggregateTypeCompany = "Company"

const (
	EventTypeCompanyCreated = "CompanyCreated"
	EventTypeCompanyUpdated = "CompanyUpdated"
	EventTypeCompanyDeleted = "CompanyDeleted"
)

// CompanyCreatedEvent is published when a new company is created
type CompanyCreatedEvent struct {
	shared.BaseDomainEvent
	CompanyID uuid.UUID `json:"company_id"`
	Name      string    `json:"name"`
	IsOwn     bool      `json:"is_own"`
}

func NewCompanyCreatedEvent(c *Company) *CompanyCreatedEvent {
	return &CompanyCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCompanyCreated, AggregateTypeCompany, c.ID, c.TenantID),
		CompanyID:       c.ID,
		Name:            c.Name,
		IsOwn:           c.IsOwn,
	}
}

// CompanyUpdatedEvent is published when a company profile is edited
type CompanyUpdatedEvent struct {
	shared.BaseDomainEvent
	CompanyID uuid.UUID `json:"company_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
}

func NewCompanyUpdatedEvent(c *Company) *CompanyUpdatedEvent {
	return &CompanyUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCompanyUpdated, AggregateTypeCompany, c.ID, c.TenantID),
		CompanyID:       c.ID,
		Name:            c.Name,
		Email:           c.Email,
		Phone:           c.Phone,
	}
}

// CompanyDeletedEvent is published when a company is deleted
type CompanyDeletedEvent struct {
	shared.BaseDomainEvent
	CompanyID uuid.UUID `json:"company_id"`
	Name      string    `json:"name"`
}

func NewCompanyDeletedEvent(c *Company) *CompanyDeletedEvent {
	return &CompanyDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCompanyDeleted, AggregateTypeCompany, c.ID, c.TenantID),
		CompanyID:       c.ID,
		Name:            c.Name,
	}
}
