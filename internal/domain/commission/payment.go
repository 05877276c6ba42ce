package commission

import (
	"fmt"
	"strings"
	"time"

	"github.com/ceemowww/comtrack2/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus is derived from the allocations against a payment; callers never set it
type PaymentStatus string

const (
	PaymentStatusUnallocated        PaymentStatus = "unallocated"
	PaymentStatusPartiallyAllocated PaymentStatus = "partially_allocated"
	PaymentStatusFullyAllocated     PaymentStatus = "fully_allocated"
)

// DefaultStatusTolerance is the currency rounding slack used when comparing
// the allocated sum against a payment total.
var DefaultStatusTolerance = decimal.NewFromFloat(0.01)

// DefaultPaymentItemDescription labels the item created alongside a new payment
const DefaultPaymentItemDescription = "Payment item"

// DeriveStatus is a pure function of the allocated sum and the payment total:
// fully allocated when they differ by less than tolerance, partially allocated
// for any other positive sum, unallocated otherwise.
func DeriveStatus(allocated, total, tolerance decimal.Decimal) PaymentStatus {
	if !allocated.IsPositive() {
		return PaymentStatusUnallocated
	}
	if allocated.Sub(total).Abs().LessThan(tolerance) {
		return PaymentStatusFullyAllocated
	}
	return PaymentStatusPartiallyAllocated
}

// CommissionPaymentItem is one allocable bucket of a payment. Allocated is
// not stored; repositories fill it from the allocation ledger when loading.
type CommissionPaymentItem struct {
	ID          uuid.UUID
	PaymentID   uuid.UUID
	Amount      decimal.Decimal
	Description string
	Notes       string
	Allocated   decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Remaining returns the part of the bucket not yet allocated
func (i *CommissionPaymentItem) Remaining() decimal.Decimal {
	return i.Amount.Sub(i.Allocated)
}

// PaymentItemLine is the caller-supplied shape of a payment item
type PaymentItemLine struct {
	Amount      decimal.Decimal
	Description string
	Notes       string
}

func newPaymentItem(paymentID uuid.UUID, line PaymentItemLine) (*CommissionPaymentItem, error) {
	if !line.Amount.IsPositive() {
		return nil, shared.InvalidInput("payment item amount must be positive")
	}
	if err := shared.ValidateMoney("payment item amount", line.Amount); err != nil {
		return nil, err
	}
	if len(line.Description) > 200 {
		return nil, shared.InvalidInput("payment item description cannot exceed 200 characters")
	}
	now := time.Now()
	return &CommissionPaymentItem{
		ID:          uuid.New(),
		PaymentID:   paymentID,
		Amount:      line.Amount,
		Description: strings.TrimSpace(line.Description),
		Notes:       line.Notes,
		Allocated:   decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// CommissionPayment is money received from one supplier
type CommissionPayment struct {
	shared.TenantAggregateRoot
	SupplierID  uuid.UUID
	PaymentDate time.Time
	TotalAmount decimal.Decimal
	Reference   string
	Notes       string
	Status      PaymentStatus
	Items       []CommissionPaymentItem
}

// NewCommissionPayment records a payment with one default item covering the full amount
func NewCommissionPayment(
	tenantID uuid.UUID,
	supplierID uuid.UUID,
	paymentDate time.Time,
	total decimal.Decimal,
	reference string,
	notes string,
) (*CommissionPayment, error) {
	if supplierID == uuid.Nil {
		return nil, shared.InvalidInput("supplier is required")
	}
	if paymentDate.IsZero() {
		return nil, shared.InvalidInput("payment date is required")
	}
	if !total.IsPositive() {
		return nil, shared.InvalidInput("total amount must be positive")
	}
	if err := shared.ValidateMoney("total amount", total); err != nil {
		return nil, err
	}
	if len(reference) > 100 {
		return nil, shared.InvalidInput("reference cannot exceed 100 characters")
	}

	p := &CommissionPayment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SupplierID:          supplierID,
		PaymentDate:         paymentDate,
		TotalAmount:         total,
		Reference:           strings.TrimSpace(reference),
		Notes:               notes,
		Status:              PaymentStatusUnallocated,
	}

	item, err := newPaymentItem(p.ID, PaymentItemLine{Amount: total, Description: DefaultPaymentItemDescription})
	if err != nil {
		return nil, err
	}
	p.Items = []CommissionPaymentItem{*item}

	p.AddDomainEvent(NewPaymentRecordedEvent(p))
	return p, nil
}

// Item returns the payment item with the given id, or nil
func (p *CommissionPayment) Item(id uuid.UUID) *CommissionPaymentItem {
	for i := range p.Items {
		if p.Items[i].ID == id {
			return &p.Items[i]
		}
	}
	return nil
}

// TotalAllocated sums the allocations across all items of the payment
func (p *CommissionPayment) TotalAllocated() decimal.Decimal {
	sum := decimal.Zero
	for i := range p.Items {
		sum = sum.Add(p.Items[i].Allocated)
	}
	return sum
}

// TotalLineItems sums the item amounts
func (p *CommissionPayment) TotalLineItems() decimal.Decimal {
	sum := decimal.Zero
	for i := range p.Items {
		sum = sum.Add(p.Items[i].Amount)
	}
	return sum
}

// Unallocated is the part of the payment total not yet matched to a liability
func (p *CommissionPayment) Unallocated() decimal.Decimal {
	return p.TotalAmount.Sub(p.TotalAllocated())
}

// HasAllocations reports whether any item carries an allocation
func (p *CommissionPayment) HasAllocations() bool {
	for i := range p.Items {
		if !p.Items[i].Allocated.IsZero() {
			return true
		}
	}
	return false
}

// RecomputeStatus re-derives the status from the allocated sum of every item
// and reports whether it changed.
func (p *CommissionPayment) RecomputeStatus(tolerance decimal.Decimal) bool {
	next := DeriveStatus(p.TotalAllocated(), p.TotalAmount, tolerance)
	if next == p.Status {
		return false
	}
	p.Status = next
	return true
}

// ReplaceItems swaps the whole item set and resets the payment total to the
// sum of the new items. When expectedTotal is given the new items must add up
// to it, which turns the call into a pure re-split of the same amount.
// Replacing items that already carry allocations is refused, since deleting
// them would silently remove ledger entries.
func (p *CommissionPayment) ReplaceItems(lines []PaymentItemLine, expectedTotal *decimal.Decimal) error {
	if len(lines) == 0 {
		return shared.InvalidInput("at least one payment item is required")
	}
	if p.HasAllocations() {
		return shared.NewDomainError(shared.CodeInvalidState, "payment items with allocations cannot be replaced")
	}

	items := make([]CommissionPaymentItem, 0, len(lines))
	sum := decimal.Zero
	for i, line := range lines {
		item, err := newPaymentItem(p.ID, line)
		if err != nil {
			return shared.InvalidInput(fmt.Sprintf("item %d: %s", i+1, err.Error()))
		}
		items = append(items, *item)
		sum = sum.Add(item.Amount)
	}

	if err := shared.ValidateMoney("payment total", sum); err != nil {
		return err
	}
	if expectedTotal != nil && !sum.Equal(*expectedTotal) {
		return shared.InvalidInput(fmt.Sprintf("payment items sum to %s but %s was expected", sum.StringFixed(2), expectedTotal.StringFixed(2)))
	}

	previousTotal := p.TotalAmount
	p.Items = items
	p.TotalAmount = sum
	p.IncrementVersion()
	p.AddDomainEvent(NewPaymentItemsReplacedEvent(p, previousTotal))
	return nil
}

// AddItem appends one item and resets the payment total to the sum of the
// items. The status is re-derived because the total moved.
func (p *CommissionPayment) AddItem(line PaymentItemLine, tolerance decimal.Decimal) (*CommissionPaymentItem, error) {
	item, err := newPaymentItem(p.ID, line)
	if err != nil {
		return nil, err
	}
	if err := shared.ValidateMoney("payment total", p.TotalLineItems().Add(item.Amount)); err != nil {
		return nil, err
	}

	p.Items = append(p.Items, *item)
	p.itemsChanged(item.ID, PaymentItemAdded, tolerance)
	return item, nil
}

// UpdateItem rewrites the amount, description and notes of one item. Items
// that already carry allocations are refused, like a wholesale replacement.
func (p *CommissionPayment) UpdateItem(itemID uuid.UUID, line PaymentItemLine, tolerance decimal.Decimal) (*CommissionPaymentItem, error) {
	item, err := p.editableItem(itemID)
	if err != nil {
		return nil, err
	}
	next, err := newPaymentItem(p.ID, line)
	if err != nil {
		return nil, err
	}
	if err := shared.ValidateMoney("payment total", p.TotalLineItems().Sub(item.Amount).Add(next.Amount)); err != nil {
		return nil, err
	}

	item.Amount = next.Amount
	item.Description = next.Description
	item.Notes = next.Notes
	item.UpdatedAt = next.UpdatedAt
	p.itemsChanged(item.ID, PaymentItemUpdated, tolerance)
	return item, nil
}

// RemoveItem deletes one unallocated item. The last item cannot be removed,
// since a payment always carries a positive total.
func (p *CommissionPayment) RemoveItem(itemID uuid.UUID, tolerance decimal.Decimal) error {
	if _, err := p.editableItem(itemID); err != nil {
		return err
	}
	if len(p.Items) == 1 {
		return shared.NewDomainError(shared.CodeInvalidState, "the last payment item cannot be removed")
	}

	items := make([]CommissionPaymentItem, 0, len(p.Items)-1)
	for _, it := range p.Items {
		if it.ID != itemID {
			items = append(items, it)
		}
	}
	p.Items = items
	p.itemsChanged(itemID, PaymentItemRemoved, tolerance)
	return nil
}

func (p *CommissionPayment) editableItem(itemID uuid.UUID) (*CommissionPaymentItem, error) {
	item := p.Item(itemID)
	if item == nil {
		return nil, shared.NotFound("payment item not found")
	}
	if !item.Allocated.IsZero() {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "payment items with allocations cannot be changed")
	}
	return item, nil
}

// itemsChanged keeps the header total equal to the item sum and re-derives
// the status against the new total
func (p *CommissionPayment) itemsChanged(itemID uuid.UUID, action PaymentItemAction, tolerance decimal.Decimal) {
	previousTotal := p.TotalAmount
	previousStatus := p.Status
	p.TotalAmount = p.TotalLineItems()
	changed := p.RecomputeStatus(tolerance)
	p.IncrementVersion()

	p.AddDomainEvent(NewPaymentItemChangedEvent(p, itemID, action, previousTotal))
	if changed {
		p.AddDomainEvent(NewPaymentStatusChangedEvent(p, previousStatus))
	}
}
