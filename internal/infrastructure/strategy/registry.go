package strategy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ceemowww/comtrack2/internal/domain/shared"
	"github.com/ceemowww/comtrack2/internal/domain/shared/strategy"
)

// StrategyRegistry manages allocation strategy registrations
type StrategyRegistry struct {
	mu                   sync.RWMutex
	allocationStrategies map[string]strategy.PaymentAllocationStrategy
	defaultAllocation    string
}

// NewStrategyRegistry creates a new strategy registry
func NewStrategyRegistry() *StrategyRegistry {
	return &StrategyRegistry{
		allocationStrategies: make(map[string]strategy.PaymentAllocationStrategy),
	}
}

// RegisterAllocationStrategy registers a payment allocation strategy
func (r *StrategyRegistry) RegisterAllocationStrategy(s strategy.PaymentAllocationStrategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := s.Name()
	if _, exists := r.allocationStrategies[name]; exists {
		return fmt.Errorf("%w: allocation strategy '%s' already registered", shared.ErrAlreadyExists, name)
	}
	r.allocationStrategies[name] = s
	return nil
}

// SetDefaultAllocation marks a registered strategy as the default
func (r *StrategyRegistry) SetDefaultAllocation(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.allocationStrategies[name]; !exists {
		return fmt.Errorf("%w: allocation strategy '%s' not found", shared.ErrNotFound, name)
	}
	r.defaultAllocation = name
	return nil
}

// GetAllocationStrategy returns an allocation strategy by name, or the default if name is empty
func (r *StrategyRegistry) GetAllocationStrategy(name string) (strategy.PaymentAllocationStrategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name == "" {
		name = r.defaultAllocation
		if name == "" {
			return nil, fmt.Errorf("%w: no default allocation strategy set", shared.ErrNotFound)
		}
	}

	s, exists := r.allocationStrategies[name]
	if !exists {
		return nil, shared.InvalidInput(fmt.Sprintf("unknown allocation strategy '%s'", name))
	}
	return s, nil
}

// DefaultAllocation returns the name of the default strategy, or ""
func (r *StrategyRegistry) DefaultAllocation() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultAllocation
}

// ListAllocationStrategies returns all registered allocation strategy names
func (r *StrategyRegistry) ListAllocationStrategies() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.allocationStrategies))
	for name := range r.allocationStrategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
