// Package tenant scopes GORM queries to one company.
//
// Every repository query goes through one of these scopes; a row outside the
// caller's company is indistinguishable from a row that does not exist.
package tenant

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Scope filters on the statement's own tenant_id column
func Scope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}

// TableScope filters on tenant_id of an aliased table, for joined queries
func TableScope(alias string, tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(alias+".tenant_id = ?", tenantID)
	}
}
