package identity

import (
	"github.com/mfgops/backend/internal/domain/shared"
)

const AggregateTypeUser = "User"

const EventTypeUserCreated = "UserCreated"

// UserCreatedEvent is published when a user is created
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	Phone string `json:"phone"`
	Role  Role   `json:"role"`
}

func NewUserCreatedEvent(user *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserCreated, AggregateTypeUser, user.ID, user.TenantID),
		Phone:           user.Phone,
		Role:            user.Role,
	}
}
