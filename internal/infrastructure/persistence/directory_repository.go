package persistence

import (
	"context"

	"github.com/ceemowww/comtrack2/internal/domain/commission"
	"github.com/ceemowww/comtrack2/internal/infrastructure/persistence/models"
	"github.com/ceemowww/comtrack2/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDirectory implements commission.Directory using GORM
type GormDirectory struct {
	db *gorm.DB
}

// NewGormDirectory creates a new GormDirectory
func NewGormDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{db: db}
}

// FindSupplier finds a supplier by ID within the tenant
func (r *GormDirectory) FindSupplier(ctx context.Context, tenantID, id uuid.UUID) (*commission.Supplier, error) {
	var model models.SupplierModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "supplier not found")
	}
	return model.ToDomain(), nil
}

// FindCustomer finds a customer by ID within the tenant
func (r *GormDirectory) FindCustomer(ctx context.Context, tenantID, id uuid.UUID) (*commission.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "customer not found")
	}
	return model.ToDomain(), nil
}

// FindPart finds a catalog part by ID within the tenant
func (r *GormDirectory) FindPart(ctx context.Context, tenantID, id uuid.UUID) (*commission.Part, error) {
	var model models.PartModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "part not found")
	}
	return model.ToDomain(), nil
}

// ListSuppliers lists the tenant's suppliers by name
func (r *GormDirectory) ListSuppliers(ctx context.Context, tenantID uuid.UUID) ([]commission.Supplier, error) {
	var rows []models.SupplierModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	suppliers := make([]commission.Supplier, len(rows))
	for i := range rows {
		suppliers[i] = *rows[i].ToDomain()
	}
	return suppliers, nil
}

// Ensure GormDirectory implements commission.Directory
var _ commission.Directory = (*GormDirectory)(nil)
