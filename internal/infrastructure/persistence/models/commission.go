package models

import (
	"time"

	"github.com/ceemowww/comtrack2/internal/domain/commission"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesOrderModel is the persistence model for a sales order header
type SalesOrderModel struct {
	TenantAggregateModel
	CustomerID      uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex:idx_sales_orders_customer_number,priority:1"`
	OrderNumber     string                 `gorm:"type:varchar(50);not null;uniqueIndex:idx_sales_orders_customer_number,priority:2"`
	OrderDate       time.Time              `gorm:"not null;index"`
	Status          commission.OrderStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	Notes           string                 `gorm:"type:text"`
	TotalAmount     decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	TotalCommission decimal.Decimal        `gorm:"type:decimal(28,10);not null;default:0"`
}

// TableName returns the table name for GORM
func (SalesOrderModel) TableName() string {
	return "sales_orders"
}

// SalesOrderItemModel is one accrued commission liability
type SalesOrderItemModel struct {
	BaseModel
	TenantID             uuid.UUID       `gorm:"type:uuid;not null;index"`
	SalesOrderID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	PartID               uuid.UUID       `gorm:"type:uuid;not null"`
	SupplierID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity             int             `gorm:"not null"`
	UnitPrice            decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CommissionPercentage decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`
	LineTotal            decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CommissionAmount     decimal.Decimal `gorm:"type:decimal(28,10);not null;default:0"`
}

// TableName returns the table name for GORM
func (SalesOrderItemModel) TableName() string {
	return "sales_order_items"
}

// FromDomain populates the header model from a domain SalesOrder
func (m *SalesOrderModel) FromDomain(o *commission.SalesOrder) {
	m.FromDomainTenantAggregateRoot(o.TenantAggregateRoot)
	m.CustomerID = o.CustomerID
	m.OrderNumber = o.OrderNumber
	m.OrderDate = o.OrderDate
	m.Status = o.Status
	m.Notes = o.Notes
	m.TotalAmount = o.TotalAmount
	m.TotalCommission = o.TotalCommission
}

// ToDomain rebuilds the domain order from its header and items
func (m *SalesOrderModel) ToDomain(items []SalesOrderItemModel) *commission.SalesOrder {
	o := &commission.SalesOrder{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		CustomerID:          m.CustomerID,
		OrderNumber:         m.OrderNumber,
		OrderDate:           m.OrderDate,
		Status:              m.Status,
		Notes:               m.Notes,
		TotalAmount:         m.TotalAmount,
		TotalCommission:     m.TotalCommission,
		Items:               make([]commission.SalesOrderItem, 0, len(items)),
	}
	for i := range items {
		o.Items = append(o.Items, items[i].ToDomain())
	}
	return o
}

// SalesOrderItemModelsFromDomain maps every item of o to a row
func SalesOrderItemModelsFromDomain(o *commission.SalesOrder) []SalesOrderItemModel {
	rows := make([]SalesOrderItemModel, len(o.Items))
	for i, it := range o.Items {
		rows[i] = SalesOrderItemModel{
			BaseModel:            BaseModel{ID: it.ID, CreatedAt: it.CreatedAt, UpdatedAt: it.UpdatedAt},
			TenantID:             o.TenantID,
			SalesOrderID:         o.ID,
			PartID:               it.PartID,
			SupplierID:           it.SupplierID,
			Quantity:             it.Quantity,
			UnitPrice:            it.UnitPrice,
			CommissionPercentage: it.CommissionPercentage,
			LineTotal:            it.LineTotal,
			CommissionAmount:     it.CommissionAmount,
		}
	}
	return rows
}

// ToDomain converts the row to a domain item
func (m *SalesOrderItemModel) ToDomain() commission.SalesOrderItem {
	return commission.SalesOrderItem{
		ID:                   m.ID,
		SalesOrderID:         m.SalesOrderID,
		PartID:               m.PartID,
		SupplierID:           m.SupplierID,
		Quantity:             m.Quantity,
		UnitPrice:            m.UnitPrice,
		CommissionPercentage: m.CommissionPercentage,
		LineTotal:            m.LineTotal,
		CommissionAmount:     m.CommissionAmount,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

// CommissionPaymentModel is the persistence model for a supplier payment
type CommissionPaymentModel struct {
	TenantAggregateModel
	SupplierID  uuid.UUID                `gorm:"type:uuid;not null;index"`
	PaymentDate time.Time                `gorm:"not null;index"`
	TotalAmount decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	Reference   string                   `gorm:"type:varchar(100)"`
	Notes       string                   `gorm:"type:text"`
	Status      commission.PaymentStatus `gorm:"type:varchar(30);not null;default:'unallocated'"`
}

// TableName returns the table name for GORM
func (CommissionPaymentModel) TableName() string {
	return "commission_payments"
}

// CommissionPaymentItemModel is one allocable bucket of a payment
type CommissionPaymentItemModel struct {
	BaseModel
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Description string          `gorm:"type:varchar(200)"`
	Notes       string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CommissionPaymentItemModel) TableName() string {
	return "commission_payment_items"
}

// FromDomain populates the header model from a domain CommissionPayment
func (m *CommissionPaymentModel) FromDomain(p *commission.CommissionPayment) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.SupplierID = p.SupplierID
	m.PaymentDate = p.PaymentDate
	m.TotalAmount = p.TotalAmount
	m.Reference = p.Reference
	m.Notes = p.Notes
	m.Status = p.Status
}

// ToDomain rebuilds the payment. allocated maps item id to its allocated sum.
func (m *CommissionPaymentModel) ToDomain(items []CommissionPaymentItemModel, allocated map[uuid.UUID]decimal.Decimal) *commission.CommissionPayment {
	p := &commission.CommissionPayment{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		SupplierID:          m.SupplierID,
		PaymentDate:         m.PaymentDate,
		TotalAmount:         m.TotalAmount,
		Reference:           m.Reference,
		Notes:               m.Notes,
		Status:              m.Status,
		Items:               make([]commission.CommissionPaymentItem, 0, len(items)),
	}
	for _, it := range items {
		sum, ok := allocated[it.ID]
		if !ok {
			sum = decimal.Zero
		}
		p.Items = append(p.Items, commission.CommissionPaymentItem{
			ID:          it.ID,
			PaymentID:   it.PaymentID,
			Amount:      it.Amount,
			Description: it.Description,
			Notes:       it.Notes,
			Allocated:   sum,
			CreatedAt:   it.CreatedAt,
			UpdatedAt:   it.UpdatedAt,
		})
	}
	return p
}

// PaymentItemModelsFromDomain maps every item of p to a row
func PaymentItemModelsFromDomain(p *commission.CommissionPayment) []CommissionPaymentItemModel {
	rows := make([]CommissionPaymentItemModel, len(p.Items))
	for i := range p.Items {
		rows[i] = PaymentItemModelFromDomain(p, &p.Items[i])
	}
	return rows
}

// PaymentItemModelFromDomain maps one item of p to a row
func PaymentItemModelFromDomain(p *commission.CommissionPayment, it *commission.CommissionPaymentItem) CommissionPaymentItemModel {
	return CommissionPaymentItemModel{
		BaseModel:   BaseModel{ID: it.ID, CreatedAt: it.CreatedAt, UpdatedAt: it.UpdatedAt},
		TenantID:    p.TenantID,
		PaymentID:   p.ID,
		Amount:      it.Amount,
		Description: it.Description,
		Notes:       it.Notes,
	}
}

// CommissionAllocationModel is one append-only ledger entry
type CommissionAllocationModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentItemID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	SalesOrderItemID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AllocationDate   time.Time       `gorm:"not null"`
	Notes            string          `gorm:"type:text"`
	CreatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CommissionAllocationModel) TableName() string {
	return "commission_allocations"
}

// CommissionAllocationModelFromDomain maps a domain allocation to a row
func CommissionAllocationModelFromDomain(a *commission.CommissionAllocation) CommissionAllocationModel {
	return CommissionAllocationModel{
		ID:               a.ID,
		TenantID:         a.TenantID,
		PaymentID:        a.PaymentID,
		PaymentItemID:    a.PaymentItemID,
		SalesOrderItemID: a.SalesOrderItemID,
		Amount:           a.Amount,
		AllocationDate:   a.AllocationDate,
		Notes:            a.Notes,
		CreatedAt:        a.CreatedAt,
	}
}

// All returns every model in dependency order, for AutoMigrate in tests
func All() []any {
	return []any{
		&CompanyModel{},
		&SupplierModel{},
		&CustomerModel{},
		&PartModel{},
		&SalesOrderModel{},
		&SalesOrderItemModel{},
		&CommissionPaymentModel{},
		&CommissionPaymentItemModel{},
		&CommissionAllocationModel{},
	}
}
