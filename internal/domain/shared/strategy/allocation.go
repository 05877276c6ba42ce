package strategy

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Liability is an open commission balance that a payment can be applied to
type Liability struct {
	ID          uuid.UUID
	OrderNumber string
	OrderDate   time.Time
	Outstanding decimal.Decimal
}

// PlannedAllocation is one slice of a payment assigned to a liability
type PlannedAllocation struct {
	LiabilityID      uuid.UUID
	OrderNumber      string
	Amount           decimal.Decimal
	OutstandingAfter decimal.Decimal
}

// AllocationPlan is the outcome of distributing an amount across liabilities
type AllocationPlan struct {
	Allocations    []PlannedAllocation
	TotalAllocated decimal.Decimal
	Remaining      decimal.Decimal
}

// PaymentAllocationStrategy distributes a payment amount across open liabilities
type PaymentAllocationStrategy interface {
	Strategy
	Plan(ctx context.Context, amount decimal.Decimal, liabilities []Liability) (AllocationPlan, error)
}
