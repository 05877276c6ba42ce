package allocation

import (
	"context"
	"sort"

	"github.com/ceemowww/comtrack2/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// LargestFirstAllocationStrategy settles the biggest open balances first
type LargestFirstAllocationStrategy struct {
	strategy.BaseStrategy
}

// NewLargestFirstAllocationStrategy creates a new largest-first allocation strategy
func NewLargestFirstAllocationStrategy() *LargestFirstAllocationStrategy {
	return &LargestFirstAllocationStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"largest_first",
			strategy.StrategyTypeAllocation,
			"Allocate payments to the largest outstanding commissions first",
		),
	}
}

// Plan distributes amount over liabilities ordered by outstanding balance descending
func (s *LargestFirstAllocationStrategy) Plan(
	ctx context.Context,
	amount decimal.Decimal,
	liabilities []strategy.Liability,
) (strategy.AllocationPlan, error) {
	sorted := make([]strategy.Liability, len(liabilities))
	copy(sorted, liabilities)
	sort.SliceStable(sorted, func(i, j int) bool {
		if c := sorted[i].Outstanding.Cmp(sorted[j].Outstanding); c != 0 {
			return c > 0
		}
		return sorted[i].OrderDate.Before(sorted[j].OrderDate)
	})

	return distribute(amount, sorted), nil
}
