package models

import (
	"time"

	"github.com/ceemowww/comtrack2/internal/domain/commission"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CompanyModel is a tenant. Every other row belongs to exactly one company.
type CompanyModel struct {
	BaseModel
	Name string `gorm:"type:varchar(200);not null"`
}

// TableName returns the table name for GORM
func (CompanyModel) TableName() string {
	return "companies"
}

// SupplierModel is a supplier that pays commission to the company
type SupplierModel struct {
	BaseModel
	TenantID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Name         string    `gorm:"type:varchar(200);not null"`
	ContactEmail string    `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the model to the directory view
func (m *SupplierModel) ToDomain() *commission.Supplier {
	return &commission.Supplier{ID: m.ID, Name: m.Name}
}

// CustomerModel is a buyer whose orders generate commission
type CustomerModel struct {
	BaseModel
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name     string    `gorm:"type:varchar(200);not null"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the model to the directory view
func (m *CustomerModel) ToDomain() *commission.Customer {
	return &commission.Customer{ID: m.ID, Name: m.Name}
}

// PartModel is a catalog part sold on behalf of one supplier
type PartModel struct {
	BaseModel
	TenantID   uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_parts_tenant_sku,priority:1"`
	SupplierID uuid.UUID        `gorm:"type:uuid;not null;index"`
	SKU        string           `gorm:"column:sku;type:varchar(100);not null;uniqueIndex:idx_parts_tenant_sku,priority:2"`
	Name       string           `gorm:"type:varchar(200);not null"`
	Price      *decimal.Decimal `gorm:"type:decimal(18,4)"`
}

// TableName returns the table name for GORM
func (PartModel) TableName() string {
	return "parts"
}

// ToDomain converts the model to the directory view
func (m *PartModel) ToDomain() *commission.Part {
	return &commission.Part{
		ID:         m.ID,
		SupplierID: m.SupplierID,
		SKU:        m.SKU,
		Name:       m.Name,
		ListPrice:  m.Price,
	}
}

// NewCompany returns a company row stamped with a fresh id
func NewCompany(name string) *CompanyModel {
	now := time.Now()
	return &CompanyModel{BaseModel: BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}, Name: name}
}
