package commission

import (
	"time"

	"github.com/ceemowww/comtrack2/internal/domain/commission"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesOrderItemInput is one line of a sales order request
type SalesOrderItemInput struct {
	PartID uuid.UUID `json:"part_id" binding:"required"`
	// SupplierID defaults to the part's supplier
	SupplierID           *uuid.UUID       `json:"supplier_id"`
	Quantity             int              `json:"quantity" binding:"required,gt=0"`
	UnitPrice            *decimal.Decimal `json:"unit_price"`
	CommissionPercentage decimal.Decimal  `json:"commission_percentage"`
}

// CreateSalesOrderRequest is the request to create a sales order
type CreateSalesOrderRequest struct {
	CustomerID  uuid.UUID             `json:"customer_id" binding:"required"`
	OrderNumber string                `json:"po_number" binding:"required,max=50"`
	OrderDate   *time.Time            `json:"order_date"`
	Status      string                `json:"status" binding:"omitempty,oneof=pending shipped completed cancelled"`
	Notes       string                `json:"notes"`
	Items       []SalesOrderItemInput `json:"items" binding:"required,min=1,dive"`
}

// ReplaceSalesOrderRequest rewrites an order and its full item set
type ReplaceSalesOrderRequest struct {
	CustomerID  uuid.UUID             `json:"customer_id" binding:"required"`
	OrderNumber string                `json:"po_number" binding:"required,max=50"`
	OrderDate   *time.Time            `json:"order_date"`
	Status      string                `json:"status" binding:"omitempty,oneof=pending shipped completed cancelled"`
	Notes       string                `json:"notes"`
	Items       []SalesOrderItemInput `json:"items" binding:"required,min=1,dive"`
	// Version, when set, must match the stored version
	Version *int `json:"version"`
}

// SalesOrderItemResponse is one accrued line
type SalesOrderItemResponse struct {
	ID                   uuid.UUID       `json:"id"`
	PartID               uuid.UUID       `json:"part_id"`
	SupplierID           uuid.UUID       `json:"supplier_id"`
	Quantity             int             `json:"quantity"`
	UnitPrice            decimal.Decimal `json:"unit_price"`
	CommissionPercentage decimal.Decimal `json:"commission_percentage"`
	LineTotal            decimal.Decimal `json:"line_total"`
	CommissionAmount     decimal.Decimal `json:"commission_amount"`
}

// SalesOrderResponse is the API view of a sales order
type SalesOrderResponse struct {
	ID              uuid.UUID                `json:"id"`
	CustomerID      uuid.UUID                `json:"customer_id"`
	OrderNumber     string                   `json:"po_number"`
	OrderDate       time.Time                `json:"order_date"`
	Status          string                   `json:"status"`
	Notes           string                   `json:"notes,omitempty"`
	TotalAmount     decimal.Decimal          `json:"total_amount"`
	TotalCommission decimal.Decimal          `json:"total_commission"`
	Items           []SalesOrderItemResponse `json:"items"`
	Version         int                      `json:"version"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

// ToSalesOrderResponse converts a domain order
func ToSalesOrderResponse(o *commission.SalesOrder) SalesOrderResponse {
	items := make([]SalesOrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = SalesOrderItemResponse{
			ID:                   it.ID,
			PartID:               it.PartID,
			SupplierID:           it.SupplierID,
			Quantity:             it.Quantity,
			UnitPrice:            it.UnitPrice,
			CommissionPercentage: it.CommissionPercentage,
			LineTotal:            it.LineTotal,
			CommissionAmount:     it.CommissionAmount,
		}
	}
	return SalesOrderResponse{
		ID:              o.ID,
		CustomerID:      o.CustomerID,
		OrderNumber:     o.OrderNumber,
		OrderDate:       o.OrderDate,
		Status:          string(o.Status),
		Notes:           o.Notes,
		TotalAmount:     o.TotalAmount,
		TotalCommission: o.TotalCommission,
		Items:           items,
		Version:         o.Version,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// RecordPaymentRequest records a payment received from a supplier
type RecordPaymentRequest struct {
	SupplierID  uuid.UUID       `json:"supplier_id" binding:"required"`
	PaymentDate *time.Time      `json:"payment_date"`
	TotalAmount decimal.Decimal `json:"total_amount" binding:"decimal_gt0"`
	Reference   string          `json:"reference" binding:"max=100"`
	Notes       string          `json:"notes"`
}

// PaymentItemInput is one payment item, alone or as part of a replacement
type PaymentItemInput struct {
	Amount      decimal.Decimal `json:"amount" binding:"decimal_gt0"`
	Description string          `json:"description" binding:"max=200"`
	Notes       string          `json:"notes"`
}

func (in PaymentItemInput) line() commission.PaymentItemLine {
	return commission.PaymentItemLine{
		Amount:      in.Amount,
		Description: in.Description,
		Notes:       in.Notes,
	}
}

// ReplacePaymentItemsRequest swaps a payment's items. ExpectedTotal turns the
// call into a re-split that must preserve the given total.
type ReplacePaymentItemsRequest struct {
	Items         []PaymentItemInput `json:"items" binding:"required,min=1,dive"`
	ExpectedTotal *decimal.Decimal   `json:"expected_total"`
}

// PaymentItemResponse is one payment bucket with its allocation balance
type PaymentItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	Notes           string          `json:"notes,omitempty"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
}

// PaymentResponse is the API view of a commission payment
type PaymentResponse struct {
	ID                uuid.UUID             `json:"id"`
	SupplierID        uuid.UUID             `json:"supplier_id"`
	PaymentDate       time.Time             `json:"payment_date"`
	TotalAmount       decimal.Decimal       `json:"total_amount"`
	Reference         string                `json:"reference,omitempty"`
	Notes             string                `json:"notes,omitempty"`
	Status            string                `json:"status"`
	TotalLineItems    decimal.Decimal       `json:"total_line_items"`
	AllocatedAmount   decimal.Decimal       `json:"allocated_amount"`
	UnallocatedAmount decimal.Decimal       `json:"unallocated_amount"`
	RemainingAmount   decimal.Decimal       `json:"remaining_amount"`
	Items             []PaymentItemResponse `json:"items"`
	Version           int                   `json:"version"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// ToPaymentResponse converts a domain payment
func ToPaymentResponse(p *commission.CommissionPayment) PaymentResponse {
	items := make([]PaymentItemResponse, len(p.Items))
	for i := range p.Items {
		it := &p.Items[i]
		items[i] = PaymentItemResponse{
			ID:              it.ID,
			Amount:          it.Amount,
			Description:     it.Description,
			Notes:           it.Notes,
			AllocatedAmount: it.Allocated,
			RemainingAmount: it.Remaining(),
		}
	}
	lineItems := p.TotalLineItems()
	return PaymentResponse{
		ID:                p.ID,
		SupplierID:        p.SupplierID,
		PaymentDate:       p.PaymentDate,
		TotalAmount:       p.TotalAmount,
		Reference:         p.Reference,
		Notes:             p.Notes,
		Status:            string(p.Status),
		TotalLineItems:    lineItems,
		AllocatedAmount:   p.TotalAllocated(),
		UnallocatedAmount: p.Unallocated(),
		RemainingAmount:   p.TotalAmount.Sub(lineItems),
		Items:             items,
		Version:           p.Version,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

// AllocateRequest applies part of a payment item to one sales order item
type AllocateRequest struct {
	PaymentItemID    uuid.UUID       `json:"commission_payment_item_id" binding:"required"`
	SalesOrderItemID uuid.UUID       `json:"sales_order_item_id" binding:"required"`
	Amount           decimal.Decimal `json:"allocated_amount" binding:"decimal_gt0"`
	Notes            string          `json:"notes"`
}

// AutoAllocateRequest distributes a payment item's remaining amount
type AutoAllocateRequest struct {
	// Strategy names a registered allocation strategy; empty selects the default
	Strategy string `json:"strategy"`
	// Amount caps what is distributed; nil distributes the whole remainder
	Amount *decimal.Decimal `json:"amount"`
	Notes  string           `json:"notes"`
}

// AllocationResponse describes one written allocation and the payment after it
type AllocationResponse struct {
	ID               uuid.UUID       `json:"id"`
	PaymentID        uuid.UUID       `json:"payment_id"`
	PaymentItemID    uuid.UUID       `json:"commission_payment_item_id"`
	SalesOrderItemID uuid.UUID       `json:"sales_order_item_id"`
	Amount           decimal.Decimal `json:"allocated_amount"`
	AllocationDate   time.Time       `json:"allocation_date"`
	Notes            string          `json:"notes,omitempty"`
	PaymentStatus    string          `json:"payment_status"`
}

func toAllocationResponse(a *commission.CommissionAllocation, p *commission.CommissionPayment) AllocationResponse {
	return AllocationResponse{
		ID:               a.ID,
		PaymentID:        a.PaymentID,
		PaymentItemID:    a.PaymentItemID,
		SalesOrderItemID: a.SalesOrderItemID,
		Amount:           a.Amount,
		AllocationDate:   a.AllocationDate,
		Notes:            a.Notes,
		PaymentStatus:    string(p.Status),
	}
}

// AutoAllocateResponse lists the allocations written by one auto-allocation
type AutoAllocateResponse struct {
	Strategy       string               `json:"strategy"`
	Allocations    []AllocationResponse `json:"allocations"`
	TotalAllocated decimal.Decimal      `json:"total_allocated"`
	Remaining      decimal.Decimal      `json:"remaining"`
	Payment        PaymentResponse      `json:"payment"`
}
