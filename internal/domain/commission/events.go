package commission

import (
	"time"

	"github.com/ceemowww/comtrack2/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type names
const (
	EventTypeCommissionAccrued     = "commission.accrued"
	EventTypePaymentRecorded       = "commission.payment_recorded"
	EventTypePaymentItemsReplaced  = "commission.payment_items_replaced"
	EventTypePaymentItemChanged    = "commission.payment_item_changed"
	EventTypeCommissionAllocated   = "commission.allocated"
	EventTypePaymentStatusChanged  = "commission.payment_status_changed"
	aggregateTypeSalesOrder        = "SalesOrder"
	aggregateTypeCommissionPayment = "CommissionPayment"
)

// CommissionAccruedEvent is raised when a sales order's item set is written
type CommissionAccruedEvent struct {
	shared.BaseDomainEvent
	SalesOrderID    uuid.UUID       `json:"sales_order_id"`
	OrderNumber     string          `json:"order_number"`
	ItemCount       int             `json:"item_count"`
	TotalCommission decimal.Decimal `json:"total_commission"`
}

// NewCommissionAccruedEvent creates a new CommissionAccruedEvent
func NewCommissionAccruedEvent(o *SalesOrder) *CommissionAccruedEvent {
	return &CommissionAccruedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCommissionAccrued, aggregateTypeSalesOrder, o.ID, o.TenantID),
		SalesOrderID:    o.ID,
		OrderNumber:     o.OrderNumber,
		ItemCount:       len(o.Items),
		TotalCommission: o.TotalCommission,
	}
}

// PaymentRecordedEvent is raised when a supplier payment is recorded
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentID   uuid.UUID       `json:"payment_id"`
	SupplierID  uuid.UUID       `json:"supplier_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PaymentDate time.Time       `json:"payment_date"`
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(p *CommissionPayment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, aggregateTypeCommissionPayment, p.ID, p.TenantID),
		PaymentID:       p.ID,
		SupplierID:      p.SupplierID,
		TotalAmount:     p.TotalAmount,
		PaymentDate:     p.PaymentDate,
	}
}

// PaymentItemsReplacedEvent is raised when a payment's items are swapped wholesale
type PaymentItemsReplacedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID       `json:"payment_id"`
	ItemCount     int             `json:"item_count"`
	PreviousTotal decimal.Decimal `json:"previous_total"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// NewPaymentItemsReplacedEvent creates a new PaymentItemsReplacedEvent
func NewPaymentItemsReplacedEvent(p *CommissionPayment, previousTotal decimal.Decimal) *PaymentItemsReplacedEvent {
	return &PaymentItemsReplacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentItemsReplaced, aggregateTypeCommissionPayment, p.ID, p.TenantID),
		PaymentID:       p.ID,
		ItemCount:       len(p.Items),
		PreviousTotal:   previousTotal,
		TotalAmount:     p.TotalAmount,
	}
}

// TotalChanged reports whether the replacement moved the payment total
func (e *PaymentItemsReplacedEvent) TotalChanged() bool {
	return !e.PreviousTotal.Equal(e.TotalAmount)
}

// PaymentItemAction names the single-item edit behind a PaymentItemChangedEvent
type PaymentItemAction string

const (
	PaymentItemAdded   PaymentItemAction = "added"
	PaymentItemUpdated PaymentItemAction = "updated"
	PaymentItemRemoved PaymentItemAction = "removed"
)

// PaymentItemChangedEvent is raised when one payment item is added, edited or removed
type PaymentItemChangedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID         `json:"payment_id"`
	PaymentItemID uuid.UUID         `json:"payment_item_id"`
	Action        PaymentItemAction `json:"action"`
	PreviousTotal decimal.Decimal   `json:"previous_total"`
	TotalAmount   decimal.Decimal   `json:"total_amount"`
}

// NewPaymentItemChangedEvent creates a new PaymentItemChangedEvent
func NewPaymentItemChangedEvent(p *CommissionPayment, itemID uuid.UUID, action PaymentItemAction, previousTotal decimal.Decimal) *PaymentItemChangedEvent {
	return &PaymentItemChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentItemChanged, aggregateTypeCommissionPayment, p.ID, p.TenantID),
		PaymentID:       p.ID,
		PaymentItemID:   itemID,
		Action:          action,
		PreviousTotal:   previousTotal,
		TotalAmount:     p.TotalAmount,
	}
}

// CommissionAllocatedEvent is raised for every allocation written
type CommissionAllocatedEvent struct {
	shared.BaseDomainEvent
	AllocationID     uuid.UUID       `json:"allocation_id"`
	PaymentID        uuid.UUID       `json:"payment_id"`
	PaymentItemID    uuid.UUID       `json:"payment_item_id"`
	SalesOrderItemID uuid.UUID       `json:"sales_order_item_id"`
	SupplierID       uuid.UUID       `json:"supplier_id"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentStatus    PaymentStatus   `json:"payment_status"`
}

// NewCommissionAllocatedEvent creates a new CommissionAllocatedEvent
func NewCommissionAllocatedEvent(p *CommissionPayment, a *CommissionAllocation) *CommissionAllocatedEvent {
	return &CommissionAllocatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeCommissionAllocated, aggregateTypeCommissionPayment, p.ID, p.TenantID),
		AllocationID:     a.ID,
		PaymentID:        p.ID,
		PaymentItemID:    a.PaymentItemID,
		SalesOrderItemID: a.SalesOrderItemID,
		SupplierID:       p.SupplierID,
		Amount:           a.Amount,
		PaymentStatus:    p.Status,
	}
}

// PaymentStatusChangedEvent is raised when a recompute moves a payment to a new status
type PaymentStatusChangedEvent struct {
	shared.BaseDomainEvent
	PaymentID      uuid.UUID     `json:"payment_id"`
	PreviousStatus PaymentStatus `json:"previous_status"`
	Status         PaymentStatus `json:"status"`
}

// NewPaymentStatusChangedEvent creates a new PaymentStatusChangedEvent
func NewPaymentStatusChangedEvent(p *CommissionPayment, previous PaymentStatus) *PaymentStatusChangedEvent {
	return &PaymentStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentStatusChanged, aggregateTypeCommissionPayment, p.ID, p.TenantID),
		PaymentID:       p.ID,
		PreviousStatus:  previous,
		Status:          p.Status,
	}
}
