package strategy

import (
	"github.com/ceemowww/comtrack2/internal/infrastructure/strategy/allocation"
)

// NewRegistryWithDefaults creates a registry holding the built-in allocation
// strategies, with FIFO as the default.
func NewRegistryWithDefaults() (*StrategyRegistry, error) {
	r := NewStrategyRegistry()

	fifo := allocation.NewFIFOAllocationStrategy()
	if err := r.RegisterAllocationStrategy(fifo); err != nil {
		return nil, err
	}
	if err := r.RegisterAllocationStrategy(allocation.NewLargestFirstAllocationStrategy()); err != nil {
		return nil, err
	}

	if err := r.SetDefaultAllocation(fifo.Name()); err != nil {
		return nil, err
	}
	return r, nil
}
