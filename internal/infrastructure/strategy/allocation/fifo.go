package allocation

import (
	"context"
	"sort"

	"github.com/ceemowww/comtrack2/internal/domain/shared"
	"github.com/ceemowww/comtrack2/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// FIFOAllocationStrategy applies a payment to the oldest orders first
type FIFOAllocationStrategy struct {
	strategy.BaseStrategy
}

// NewFIFOAllocationStrategy creates a new FIFO allocation strategy
func NewFIFOAllocationStrategy() *FIFOAllocationStrategy {
	return &FIFOAllocationStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"fifo",
			strategy.StrategyTypeAllocation,
			"Allocate payments to the oldest outstanding commissions first",
		),
	}
}

// Plan distributes amount over liabilities ordered by order date, then order number
func (s *FIFOAllocationStrategy) Plan(
	ctx context.Context,
	amount decimal.Decimal,
	liabilities []strategy.Liability,
) (strategy.AllocationPlan, error) {
	sorted := make([]strategy.Liability, len(liabilities))
	copy(sorted, liabilities)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].OrderDate.Equal(sorted[j].OrderDate) {
			return sorted[i].OrderDate.Before(sorted[j].OrderDate)
		}
		return sorted[i].OrderNumber < sorted[j].OrderNumber
	})

	return distribute(amount, sorted), nil
}

// distribute walks liabilities in order, taking the smaller of the remaining
// amount and each liability's outstanding balance. Slices are cut down to the
// stored amount scale, so a commission with sub-cent digits keeps a residue
// below 0.0001 instead of producing an allocation that cannot be stored.
func distribute(amount decimal.Decimal, ordered []strategy.Liability) strategy.AllocationPlan {
	remaining := amount
	allocations := make([]strategy.PlannedAllocation, 0)
	total := decimal.Zero

	for _, l := range ordered {
		if !remaining.IsPositive() {
			break
		}
		if !l.Outstanding.IsPositive() {
			continue
		}

		slice := decimal.Min(remaining, l.Outstanding).Truncate(shared.MoneyScale)
		if !slice.IsPositive() {
			continue
		}
		allocations = append(allocations, strategy.PlannedAllocation{
			LiabilityID:      l.ID,
			OrderNumber:      l.OrderNumber,
			Amount:           slice,
			OutstandingAfter: l.Outstanding.Sub(slice),
		})

		remaining = remaining.Sub(slice)
		total = total.Add(slice)
	}

	return strategy.AllocationPlan{
		Allocations:    allocations,
		TotalAllocated: total,
		Remaining:      remaining,
	}
}
