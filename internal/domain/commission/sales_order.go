package commission

import (
	"fmt"
	"strings"
	"time"

	"github.com/ceemowww/comtrack2/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state of a sales order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsValid reports whether s is a known order status
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusShipped, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// SalesOrderItem is one purchased part line. LineTotal and CommissionAmount
// are fixed when the item is written and never recomputed from allocations.
type SalesOrderItem struct {
	ID                   uuid.UUID
	SalesOrderID         uuid.UUID
	PartID               uuid.UUID
	SupplierID           uuid.UUID
	Quantity             int
	UnitPrice            decimal.Decimal
	CommissionPercentage decimal.Decimal
	LineTotal            decimal.Decimal
	CommissionAmount     decimal.Decimal
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// ItemLine is the caller-supplied shape of a sales order item
type ItemLine struct {
	PartID               uuid.UUID
	SupplierID           uuid.UUID
	Quantity             int
	UnitPrice            decimal.Decimal
	CommissionPercentage decimal.Decimal
}

// NewSalesOrderItem validates a line and stamps its commission accrual
func NewSalesOrderItem(orderID uuid.UUID, line ItemLine) (*SalesOrderItem, error) {
	if line.PartID == uuid.Nil {
		return nil, shared.InvalidInput("part is required")
	}
	if line.SupplierID == uuid.Nil {
		return nil, shared.InvalidInput("supplier is required")
	}

	accrual, err := CalculateCommission(line.Quantity, line.UnitPrice, line.CommissionPercentage)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &SalesOrderItem{
		ID:                   uuid.New(),
		SalesOrderID:         orderID,
		PartID:               line.PartID,
		SupplierID:           line.SupplierID,
		Quantity:             line.Quantity,
		UnitPrice:            line.UnitPrice,
		CommissionPercentage: line.CommissionPercentage,
		LineTotal:            accrual.LineTotal,
		CommissionAmount:     accrual.CommissionAmount,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

// SalesOrder owns the sales order items and therefore every commission accrual
type SalesOrder struct {
	shared.TenantAggregateRoot
	CustomerID      uuid.UUID
	OrderNumber     string
	OrderDate       time.Time
	Status          OrderStatus
	Notes           string
	TotalAmount     decimal.Decimal
	TotalCommission decimal.Decimal
	Items           []SalesOrderItem
}

// OrderHeader carries the editable header fields of a sales order
type OrderHeader struct {
	CustomerID  uuid.UUID
	OrderNumber string
	OrderDate   time.Time
	Status      OrderStatus
	Notes       string
}

func (h OrderHeader) validate() error {
	if h.CustomerID == uuid.Nil {
		return shared.InvalidInput("customer is required")
	}
	if strings.TrimSpace(h.OrderNumber) == "" {
		return shared.InvalidInput("order number is required")
	}
	if len(h.OrderNumber) > 50 {
		return shared.InvalidInput("order number cannot exceed 50 characters")
	}
	if h.Status != "" && !h.Status.IsValid() {
		return shared.InvalidInput(fmt.Sprintf("invalid order status: %s", h.Status))
	}
	return nil
}

// NewSalesOrder creates an order with its items in one step
func NewSalesOrder(tenantID uuid.UUID, header OrderHeader, lines []ItemLine) (*SalesOrder, error) {
	if err := header.validate(); err != nil {
		return nil, err
	}
	if header.Status == "" {
		header.Status = OrderStatusPending
	}
	if header.OrderDate.IsZero() {
		header.OrderDate = time.Now()
	}

	order := &SalesOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CustomerID:          header.CustomerID,
		OrderNumber:         strings.TrimSpace(header.OrderNumber),
		OrderDate:           header.OrderDate,
		Status:              header.Status,
		Notes:               header.Notes,
	}
	if err := order.setItems(lines); err != nil {
		return nil, err
	}

	order.AddDomainEvent(NewCommissionAccruedEvent(order))
	return order, nil
}

// Replace overwrites the header and swaps the full item set. Every accrual is
// recomputed from the new lines; nothing is patched incrementally.
func (o *SalesOrder) Replace(header OrderHeader, lines []ItemLine) error {
	if err := header.validate(); err != nil {
		return err
	}
	if err := o.setItems(lines); err != nil {
		return err
	}

	o.CustomerID = header.CustomerID
	o.OrderNumber = strings.TrimSpace(header.OrderNumber)
	if !header.OrderDate.IsZero() {
		o.OrderDate = header.OrderDate
	}
	if header.Status != "" {
		o.Status = header.Status
	}
	o.Notes = header.Notes

	o.IncrementVersion()
	o.AddDomainEvent(NewCommissionAccruedEvent(o))
	return nil
}

// setItems builds every item before touching the order so a bad line leaves it unchanged
func (o *SalesOrder) setItems(lines []ItemLine) error {
	if len(lines) == 0 {
		return shared.InvalidInput("at least one item is required")
	}

	items := make([]SalesOrderItem, 0, len(lines))
	total := decimal.Zero
	commission := decimal.Zero
	for i, line := range lines {
		item, err := NewSalesOrderItem(o.ID, line)
		if err != nil {
			return shared.InvalidInput(fmt.Sprintf("item %d: %s", i+1, err.Error()))
		}
		items = append(items, *item)
		total = total.Add(item.LineTotal)
		commission = commission.Add(item.CommissionAmount)
	}
	if err := shared.ValidateMoney("order total", total); err != nil {
		return err
	}

	o.Items = items
	o.TotalAmount = total
	o.TotalCommission = commission
	return nil
}

// ItemIDs returns the ids of the order's items
func (o *SalesOrder) ItemIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(o.Items))
	for i := range o.Items {
		ids[i] = o.Items[i].ID
	}
	return ids
}
