package identity

import (
	"time"

	"github.com/google/uuid"
)

// Session is the authenticated caller. Handlers build it from the access
// token and pass its tenant and user ids into every service call.
type Session struct {
	TenantID  uuid.UUID
	UserID    uuid.UUID
	Phone     string
	Role      Role
	TokenID   string
	ExpiresAt time.Time
}

func (s Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

func (s Session) IsOwner() bool {
	return s.Role == RoleOwner
}
