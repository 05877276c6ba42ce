package commission

import (
	"context"

	"github.com/ceemowww/comtrack2/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Supplier is the read-only view of a supplier master record
type Supplier struct {
	ID   uuid.UUID
	Name string
}

// Customer is the read-only view of a customer master record
type Customer struct {
	ID   uuid.UUID
	Name string
}

// Part is the read-only view of a catalog part
type Part struct {
	ID         uuid.UUID
	SupplierID uuid.UUID
	SKU        string
	Name       string
	ListPrice  *decimal.Decimal
}

// Directory resolves master data within a tenant. Every lookup returns
// shared.ErrNotFound when the record does not exist in that tenant.
type Directory interface {
	FindSupplier(ctx context.Context, tenantID, id uuid.UUID) (*Supplier, error)
	FindCustomer(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)
	FindPart(ctx context.Context, tenantID, id uuid.UUID) (*Part, error)
	ListSuppliers(ctx context.Context, tenantID uuid.UUID) ([]Supplier, error)
}

// SalesOrderRepository persists sales orders together with their items
type SalesOrderRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*SalesOrder, error)
	List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]SalesOrder, int64, error)
	// Create inserts the order and all of its items in one transaction
	Create(ctx context.Context, order *SalesOrder) error
	// Replace rewrites the header and swaps the items in one transaction.
	// Allocations against removed items cascade away, and the status of every
	// payment that lost an allocation is re-derived before commit.
	Replace(ctx context.Context, order *SalesOrder, tolerance decimal.Decimal) error
	Delete(ctx context.Context, tenantID, id uuid.UUID, tolerance decimal.Decimal) error
}

// PaymentRepository persists commission payments with their items. Loaded
// items carry their allocated sums.
type PaymentRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*CommissionPayment, error)
	FindByItemID(ctx context.Context, tenantID, itemID uuid.UUID) (*CommissionPayment, error)
	List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]CommissionPayment, int64, error)
	ListBySupplier(ctx context.Context, tenantID, supplierID uuid.UUID) ([]CommissionPayment, error)
	Create(ctx context.Context, payment *CommissionPayment) error
	// ReplaceItems deletes the stored items and inserts payment.Items in one
	// transaction, guarded by the payment version.
	ReplaceItems(ctx context.Context, payment *CommissionPayment) error
	// AddItem, UpdateItem and DeleteItem persist a single-item edit together
	// with the payment total, status and version. The item must carry no
	// allocations at commit time.
	AddItem(ctx context.Context, payment *CommissionPayment, itemID uuid.UUID) error
	UpdateItem(ctx context.Context, payment *CommissionPayment, itemID uuid.UUID) error
	DeleteItem(ctx context.Context, payment *CommissionPayment, itemID uuid.UUID) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// LedgerSession is a locked view of one payment while allocations are made
// against it. Targets are locked and cached for the life of the session.
type LedgerSession interface {
	Payment() *CommissionPayment
	// Target loads one liability; shared.ErrNotFound when it is outside the tenant
	Target(ctx context.Context, salesOrderItemID uuid.UUID) (*AllocationTarget, error)
	// OpenTargets lists the supplier's liabilities with a positive outstanding balance
	OpenTargets(ctx context.Context, supplierID uuid.UUID) ([]*AllocationTarget, error)
}

// AllocateFunc decides the allocations to write inside a ledger session
type AllocateFunc func(ctx context.Context, session LedgerSession) ([]*CommissionAllocation, error)

// LedgerRepository is the transaction boundary of the allocation engine
type LedgerRepository interface {
	// Allocate locks the payment owning paymentItemID, runs fn and persists the
	// allocations it returns plus the payment's re-derived status. Any error
	// rolls everything back. shared.ErrNotFound is returned when the payment
	// item is outside the tenant.
	Allocate(ctx context.Context, tenantID, paymentItemID uuid.UUID, fn AllocateFunc) (*CommissionPayment, error)
}

// AllocationQuery selects allocations either by payment or by payment item
type AllocationQuery struct {
	PaymentID     *uuid.UUID
	PaymentItemID *uuid.UUID
}

// SupplierTotals are the raw sums behind a SupplierCommissionSummary
type SupplierTotals struct {
	Generated decimal.Decimal
	Paid      decimal.Decimal
	Allocated decimal.Decimal
}

// ReportRepository serves the read-only ledger views. Queries run outside any
// write transaction and therefore see committed data only.
type ReportRepository interface {
	// LiabilityRows lists accrued items with commission > 0, optionally for one supplier
	LiabilityRows(ctx context.Context, tenantID uuid.UUID, supplierID *uuid.UUID) ([]LiabilityRow, error)
	SupplierTotals(ctx context.Context, tenantID, supplierID uuid.UUID) (SupplierTotals, error)
	AllocationDetails(ctx context.Context, tenantID uuid.UUID, query AllocationQuery) ([]AllocationDetail, error)
}
