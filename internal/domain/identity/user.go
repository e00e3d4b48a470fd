package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/shared"
)

var (
	e164Regex  = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// ErrInvalidPhone is returned for phone numbers that cannot be read as E.164.
var ErrInvalidPhone = shared.NewDomainError("INVALID_PHONE", "Phone number must be in international format, e.g. +919820012345")

// Role of a user within the tenant
type Role string

const (
	RoleOwner Role = "owner"
	RoleStaff Role = "staff"
)

func (r Role) IsValid() bool {
	return r == RoleOwner || r == RoleStaff
}

// User is a person who signs in with their phone. Profiles are edited in place.
type User struct {
	shared.TenantAggregateRoot
	Phone       string
	DisplayName string
	Email       string
	Role        Role
	PhotoKey    string
	LastLoginAt *time.Time
}

// NewUser creates a user of the tenant with a normalized phone number.
func NewUser(tenantID uuid.UUID, phone string, role Role, now time.Time) (*User, error) {
	if !e164Regex.MatchString(phone) {
		return nil, ErrInvalidPhone
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Role must be owner or staff")
	}
	u := &User{
		TenantAggregateRoot: shared.NewTenantAggregateRootAt(tenantID, now),
		Phone:               phone,
		Role:                role,
	}
	u.AddDomainEvent(NewUserCreatedEvent(u))
	return u, nil
}

// UpdateProfile replaces the editable profile fields.
func (u *User) UpdateProfile(displayName, email string) error {
	displayName = strings.TrimSpace(displayName)
	if len(displayName) > 100 {
		return shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot exceed 100 characters")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email != "" && !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	u.DisplayName = displayName
	u.Email = email
	u.Touch(time.Now())
	return nil
}

// SetPhoto records the object key of an uploaded photo and returns the key it replaced.
func (u *User) SetPhoto(key string) string {
	prev := u.PhotoKey
	u.PhotoKey = key
	u.Touch(time.Now())
	return prev
}

// RecordLogin stamps a successful sign-in.
func (u *User) RecordLogin(now time.Time) {
	u.LastLoginAt = &now
	u.Touch(now)
}

// NormalizePhone turns user input into E.164. Separators are dropped; a
// national number without a leading + gets defaultCountryCode (e.g. "91").
func NormalizePhone(raw, defaultCountryCode string) (string, error) {
	var b strings.Builder
	for i, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
		default:
			return "", ErrInvalidPhone
		}
	}
	phone := b.String()
	if !strings.HasPrefix(phone, "+") {
		if strings.HasPrefix(phone, "00") {
			phone = "+" + strings.TrimPrefix(phone, "00")
		} else {
			phone = "+" + defaultCountryCode + strings.TrimPrefix(phone, "0")
		}
	}
	if !e164Regex.MatchString(phone) {
		return "", ErrInvalidPhone
	}
	return phone, nil
}
