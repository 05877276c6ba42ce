package commission

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LiabilityRow is one accrued sales order item together with the sum already
// allocated to it and the order, customer and part context used for display.
type LiabilityRow struct {
	SalesOrderItemID     uuid.UUID
	SalesOrderID         uuid.UUID
	OrderNumber          string
	OrderDate            time.Time
	CustomerName         string
	SupplierID           uuid.UUID
	SupplierName         string
	PartName             string
	SKU                  string
	Quantity             int
	UnitPrice            decimal.Decimal
	CommissionPercentage decimal.Decimal
	CommissionAmount     decimal.Decimal
	PaidAmount           decimal.Decimal
}

// Outstanding returns commission minus what has been allocated
func (r LiabilityRow) Outstanding() decimal.Decimal {
	return r.CommissionAmount.Sub(r.PaidAmount)
}

// OutstandingItem is a sales order item that still has commission to collect
type OutstandingItem struct {
	SalesOrderItemID     uuid.UUID       `json:"sales_order_item_id"`
	SalesOrderID         uuid.UUID       `json:"sales_order_id"`
	OrderNumber          string          `json:"order_number"`
	OrderDate            time.Time       `json:"order_date"`
	CustomerName         string          `json:"customer_name"`
	PartName             string          `json:"part_name"`
	SKU                  string          `json:"sku"`
	Quantity             int             `json:"quantity"`
	UnitPrice            decimal.Decimal `json:"unit_price"`
	CommissionPercentage decimal.Decimal `json:"commission_percentage"`
	CommissionAmount     decimal.Decimal `json:"commission_amount"`
	PaidAmount           decimal.Decimal `json:"paid_amount"`
	OutstandingAmount    decimal.Decimal `json:"outstanding_amount"`
}

// OutstandingItems keeps rows with a positive outstanding balance, newest
// order first with order number then item id as tie-breaks.
func OutstandingItems(rows []LiabilityRow) []OutstandingItem {
	result := make([]OutstandingItem, 0, len(rows))
	for _, r := range rows {
		outstanding := r.Outstanding()
		if !outstanding.IsPositive() {
			continue
		}
		result = append(result, OutstandingItem{
			SalesOrderItemID:     r.SalesOrderItemID,
			SalesOrderID:         r.SalesOrderID,
			OrderNumber:          r.OrderNumber,
			OrderDate:            r.OrderDate,
			CustomerName:         r.CustomerName,
			PartName:             r.PartName,
			SKU:                  r.SKU,
			Quantity:             r.Quantity,
			UnitPrice:            r.UnitPrice,
			CommissionPercentage: r.CommissionPercentage,
			CommissionAmount:     r.CommissionAmount,
			PaidAmount:           r.PaidAmount,
			OutstandingAmount:    outstanding,
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if !a.OrderDate.Equal(b.OrderDate) {
			return a.OrderDate.After(b.OrderDate)
		}
		if a.OrderNumber != b.OrderNumber {
			return a.OrderNumber < b.OrderNumber
		}
		return a.SalesOrderItemID.String() < b.SalesOrderItemID.String()
	})
	return result
}

// SupplierOutstanding aggregates the commission position of one supplier
type SupplierOutstanding struct {
	SupplierID        uuid.UUID       `json:"supplier_id"`
	SupplierName      string          `json:"supplier_name"`
	TotalCommission   decimal.Decimal `json:"total_commission"`
	TotalPaid         decimal.Decimal `json:"total_paid"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	OrderCount        int             `json:"order_count"`
}

// SummarizeBySupplier groups rows per supplier. Rows without commission are
// ignored, suppliers with no commission are dropped, and the result is ordered
// by outstanding amount descending so the largest collections come first.
func SummarizeBySupplier(rows []LiabilityRow) []SupplierOutstanding {
	type acc struct {
		summary SupplierOutstanding
		orders  map[uuid.UUID]struct{}
	}

	bySupplier := make(map[uuid.UUID]*acc)
	for _, r := range rows {
		if !r.CommissionAmount.IsPositive() {
			continue
		}
		a, ok := bySupplier[r.SupplierID]
		if !ok {
			a = &acc{
				summary: SupplierOutstanding{
					SupplierID:      r.SupplierID,
					SupplierName:    r.SupplierName,
					TotalCommission: decimal.Zero,
					TotalPaid:       decimal.Zero,
				},
				orders: make(map[uuid.UUID]struct{}),
			}
			bySupplier[r.SupplierID] = a
		}
		a.summary.TotalCommission = a.summary.TotalCommission.Add(r.CommissionAmount)
		a.summary.TotalPaid = a.summary.TotalPaid.Add(r.PaidAmount)
		a.orders[r.SalesOrderID] = struct{}{}
	}

	result := make([]SupplierOutstanding, 0, len(bySupplier))
	for _, a := range bySupplier {
		if !a.summary.TotalCommission.IsPositive() {
			continue
		}
		a.summary.OutstandingAmount = a.summary.TotalCommission.Sub(a.summary.TotalPaid)
		a.summary.OrderCount = len(a.orders)
		result = append(result, a.summary)
	}

	sort.Slice(result, func(i, j int) bool {
		if c := result[i].OutstandingAmount.Cmp(result[j].OutstandingAmount); c != 0 {
			return c > 0
		}
		if result[i].SupplierName != result[j].SupplierName {
			return result[i].SupplierName < result[j].SupplierName
		}
		return result[i].SupplierID.String() < result[j].SupplierID.String()
	})
	return result
}

// SupplierCommissionSummary separates commission allocated from cash received
// but not yet matched to any liability.
type SupplierCommissionSummary struct {
	SupplierID          uuid.UUID       `json:"supplier_id"`
	TotalGenerated      decimal.Decimal `json:"total_commission_generated"`
	TotalPaid           decimal.Decimal `json:"total_commission_paid"`
	TotalAllocated      decimal.Decimal `json:"total_commission_allocated"`
	Outstanding         decimal.Decimal `json:"commission_outstanding"`
	UnallocatedPayments decimal.Decimal `json:"unallocated_payments"`
}

// NewSupplierCommissionSummary derives outstanding and unallocated figures from the three totals
func NewSupplierCommissionSummary(supplierID uuid.UUID, generated, paid, allocated decimal.Decimal) SupplierCommissionSummary {
	return SupplierCommissionSummary{
		SupplierID:          supplierID,
		TotalGenerated:      generated,
		TotalPaid:           paid,
		TotalAllocated:      allocated,
		Outstanding:         generated.Sub(allocated),
		UnallocatedPayments: paid.Sub(allocated),
	}
}

// AllocationDetail is an allocation joined with its order, customer and part context
type AllocationDetail struct {
	AllocationID         uuid.UUID       `json:"allocation_id"`
	PaymentID            uuid.UUID       `json:"payment_id"`
	PaymentItemID        uuid.UUID       `json:"payment_item_id"`
	SalesOrderItemID     uuid.UUID       `json:"sales_order_item_id"`
	AllocatedAmount      decimal.Decimal `json:"allocated_amount"`
	AllocationDate       time.Time       `json:"allocation_date"`
	Notes                string          `json:"notes,omitempty"`
	OrderNumber          string          `json:"order_number"`
	CustomerName         string          `json:"customer_name"`
	PartName             string          `json:"part_name"`
	SKU                  string          `json:"sku"`
	Quantity             int             `json:"quantity"`
	UnitPrice            decimal.Decimal `json:"unit_price"`
	CommissionPercentage decimal.Decimal `json:"commission_percentage"`
	CommissionAmount     decimal.Decimal `json:"commission_amount"`
}

// PaymentAllocationSummary is one payment of a supplier with its allocation split
type PaymentAllocationSummary struct {
	PaymentID         uuid.UUID       `json:"payment_id"`
	PaymentDate       time.Time       `json:"payment_date"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	Reference         string          `json:"reference,omitempty"`
	Status            PaymentStatus   `json:"status"`
	AllocatedAmount   decimal.Decimal `json:"allocated_amount"`
	UnallocatedAmount decimal.Decimal `json:"unallocated_amount"`
}

// SummarizePaymentAllocation splits a loaded payment into allocated and unallocated amounts
func SummarizePaymentAllocation(p *CommissionPayment) PaymentAllocationSummary {
	allocated := p.TotalAllocated()
	return PaymentAllocationSummary{
		PaymentID:         p.ID,
		PaymentDate:       p.PaymentDate,
		TotalAmount:       p.TotalAmount,
		Reference:         p.Reference,
		Status:            p.Status,
		AllocatedAmount:   allocated,
		UnallocatedAmount: p.TotalAmount.Sub(allocated),
	}
}
