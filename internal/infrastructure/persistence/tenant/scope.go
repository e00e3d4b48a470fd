// Package tenant scopes GORM queries to one tenant. Every repository call
// receives the tenant id explicitly and applies Scope before touching a
// tenant-owned table.
package tenant

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrTenantIDRequired is added to the statement when the tenant id is the zero UUID.
var ErrTenantIDRequired = errors.New("tenant id is required")

// Scope filters on tenant_id. A nil tenant id fails the statement instead of
// silently reading every tenant's rows.
func Scope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return ScopeColumn("tenant_id", tenantID)
}

// ScopeColumn is Scope for tables whose tenant column has another name or
// needs a table qualifier in joins.
func ScopeColumn(column string, tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tenantID == uuid.Nil {
			_ = db.AddError(ErrTenantIDRequired)
			return db
		}
		return db.Where(column+" = ?", tenantID)
	}
}

// For applies Scope immediately, so tenant_id is the first condition of the
// statement built on the returned handle.
func For(db *gorm.DB, tenantID uuid.UUID) *gorm.DB {
	return Scope(tenantID)(db)
}
