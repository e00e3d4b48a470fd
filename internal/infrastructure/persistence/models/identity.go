package models

import (
	"fmt"
	"time"

	"github.com/mfgops/backend/internal/domain/identity"
)

// TenantModel is the persistence model for the Tenant aggregate root.
type TenantModel struct {
	AggregateModel
	Name   string `gorm:"type:varchar(200);not null"`
	Status string `gorm:"type:varchar(20);not null;default:'active'"`
}

func (TenantModel) TableName() string {
	return "tenants"
}

func (m *TenantModel) ToDomain() (*identity.Tenant, error) {
	status := identity.TenantStatus(m.Status)
	if status != identity.TenantStatusActive && status != identity.TenantStatusInactive {
		return nil, malformed(m.TableName(), m.ID, fmt.Errorf("unknown tenant status %q", m.Status))
	}
	return &identity.Tenant{
		BaseAggregateRoot: m.root(),
		Name:              m.Name,
		Status:            status,
	}, nil
}

func TenantModelFromDomain(t *identity.Tenant) *TenantModel {
	m := &TenantModel{Name: t.Name, Status: string(t.Status)}
	m.fromRoot(t.BaseAggregateRoot)
	return m
}

// UserModel is the persistence model for the User aggregate root. Phone is
// unique across tenants because sign-in starts from the phone alone.
type UserModel struct {
	TenantAggregateModel
	Phone       string `gorm:"type:varchar(20);not null;uniqueIndex"`
	DisplayName string `gorm:"type:varchar(100)"`
	Email       string `gorm:"type:varchar(200)"`
	Role        string `gorm:"type:varchar(20);not null;default:'staff'"`
	PhotoKey    string `gorm:"type:varchar(500)"`
	LastLoginAt *time.Time
}

func (UserModel) TableName() string {
	return "users"
}

func (m *UserModel) ToDomain() (*identity.User, error) {
	role := identity.Role(m.Role)
	if !role.IsValid() {
		return nil, malformed(m.TableName(), m.ID, fmt.Errorf("unknown role %q", m.Role))
	}
	return &identity.User{
		TenantAggregateRoot: m.tenantRoot(),
		Phone:               m.Phone,
		DisplayName:         m.DisplayName,
		Email:               m.Email,
		Role:                role,
		PhotoKey:            m.PhotoKey,
		LastLoginAt:         m.LastLoginAt,
	}, nil
}

func (m *UserModel) FromDomain(u *identity.User) {
	m.fromTenantRoot(u.TenantAggregateRoot)
	m.Phone = u.Phone
	m.DisplayName = u.DisplayName
	m.Email = u.Email
	m.Role = string(u.Role)
	m.PhotoKey = u.PhotoKey
	m.LastLoginAt = u.LastLoginAt
}

func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
