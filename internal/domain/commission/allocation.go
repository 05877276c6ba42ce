package commission

import (
	"fmt"
	"time"

	"github.com/ceemowww/comtrack2/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommissionAllocation applies part of a payment item to one sales order item.
// Allocations are append-only; they disappear only when a parent is deleted.
type CommissionAllocation struct {
	ID               uuid.UUID
	TenantID         uuid.UUID
	PaymentID        uuid.UUID
	PaymentItemID    uuid.UUID
	SalesOrderItemID uuid.UUID
	Amount           decimal.Decimal
	AllocationDate   time.Time
	Notes            string
	CreatedAt        time.Time
}

// AllocationTarget is a commission liability as the allocation engine sees it:
// the accrued amount and what has already been applied to it.
type AllocationTarget struct {
	SalesOrderItemID uuid.UUID
	SalesOrderID     uuid.UUID
	SupplierID       uuid.UUID
	OrderNumber      string
	OrderDate        time.Time
	CommissionAmount decimal.Decimal
	Allocated        decimal.Decimal
}

// Outstanding returns the unpaid commission of the target
func (t *AllocationTarget) Outstanding() decimal.Decimal {
	return t.CommissionAmount.Sub(t.Allocated)
}

// AllocationPolicy controls how strictly allocations are validated
type AllocationPolicy struct {
	// EnforceBounds rejects allocations larger than the payment item's
	// remaining amount or the target's outstanding commission.
	EnforceBounds bool
	// RequireSameSupplier rejects applying one supplier's payment to another supplier's commission.
	RequireSameSupplier bool
	Tolerance           decimal.Decimal
}

// DefaultAllocationPolicy enforces both bounds and supplier matching
func DefaultAllocationPolicy() AllocationPolicy {
	return AllocationPolicy{
		EnforceBounds:       true,
		RequireSameSupplier: true,
		Tolerance:           DefaultStatusTolerance,
	}
}

func (p AllocationPolicy) tolerance() decimal.Decimal {
	if p.Tolerance.IsPositive() {
		return p.Tolerance
	}
	return DefaultStatusTolerance
}

// exceeds reports whether amount overshoots limit by at least the tolerance
func (p AllocationPolicy) exceeds(amount, limit decimal.Decimal) bool {
	return amount.Sub(limit).GreaterThanOrEqual(p.tolerance())
}

// Allocate applies amount from one of the payment's items to target, then
// re-derives the payment status from the allocated sum of all items. Both the
// item and the target are updated in memory so that successive calls within
// one transaction see each other.
func (p *CommissionPayment) Allocate(
	itemID uuid.UUID,
	target *AllocationTarget,
	amount decimal.Decimal,
	notes string,
	policy AllocationPolicy,
) (*CommissionAllocation, error) {
	if !amount.IsPositive() {
		return nil, shared.InvalidInput("allocated amount must be positive")
	}
	if err := shared.ValidateMoney("allocated amount", amount); err != nil {
		return nil, err
	}
	if target == nil {
		return nil, shared.NotFound("sales order item not found")
	}
	item := p.Item(itemID)
	if item == nil {
		return nil, shared.NotFound("payment item not found")
	}
	if policy.RequireSameSupplier && target.SupplierID != p.SupplierID {
		return nil, shared.InvalidInput("sales order item belongs to a different supplier than the payment")
	}
	if policy.EnforceBounds {
		if policy.exceeds(amount, item.Remaining()) {
			return nil, shared.NewDomainError(shared.CodeAllocationExceedsBalance,
				fmt.Sprintf("allocation of %s exceeds payment item remaining %s", amount.StringFixed(2), item.Remaining().StringFixed(2)))
		}
		if policy.exceeds(amount, target.Outstanding()) {
			return nil, shared.NewDomainError(shared.CodeAllocationExceedsBalance,
				fmt.Sprintf("allocation of %s exceeds outstanding commission %s", amount.StringFixed(2), target.Outstanding().StringFixed(2)))
		}
	}

	now := time.Now()
	allocation := &CommissionAllocation{
		ID:               uuid.New(),
		TenantID:         p.TenantID,
		PaymentID:        p.ID,
		PaymentItemID:    item.ID,
		SalesOrderItemID: target.SalesOrderItemID,
		Amount:           amount,
		AllocationDate:   now,
		Notes:            notes,
		CreatedAt:        now,
	}

	item.Allocated = item.Allocated.Add(amount)
	target.Allocated = target.Allocated.Add(amount)

	previous := p.Status
	changed := p.RecomputeStatus(policy.tolerance())
	p.IncrementVersion()

	p.AddDomainEvent(NewCommissionAllocatedEvent(p, allocation))
	if changed {
		p.AddDomainEvent(NewPaymentStatusChangedEvent(p, previous))
	}
	return allocation, nil
}
