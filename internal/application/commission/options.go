// Package commission holds the application services of the commission ledger:
// accrual through sales orders, the payment ledger, the allocation engine and
// the read-side reports. Every method takes the tenant explicitly.
package commission

import (
	"context"

	"github.com/ceemowww/comtrack2/internal/domain/commission"
	"github.com/ceemowww/comtrack2/internal/domain/shared"
	"github.com/ceemowww/comtrack2/internal/domain/shared/strategy"
	"github.com/ceemowww/comtrack2/internal/infrastructure/config"
	"github.com/ceemowww/comtrack2/internal/infrastructure/logger"
	"github.com/ceemowww/comtrack2/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StrategyProvider resolves allocation strategies by name. An empty name
// selects the provider's default.
type StrategyProvider interface {
	GetAllocationStrategy(name string) (strategy.PaymentAllocationStrategy, error)
}

// Option configures the commission services
type Option func(*settings)

type settings struct {
	publisher    shared.EventPublisher
	metrics      *telemetry.LedgerMetrics
	policy       commission.AllocationPolicy
	strategies   StrategyProvider
	strategyName string
}

// WithEventPublisher publishes domain events after each successful write
func WithEventPublisher(p shared.EventPublisher) Option {
	return func(s *settings) {
		s.publisher = p
	}
}

// WithLedgerMetrics records rejection counts and allocation latency
func WithLedgerMetrics(m *telemetry.LedgerMetrics) Option {
	return func(s *settings) {
		s.metrics = m
	}
}

// WithAllocationPolicy overrides the default allocation policy
func WithAllocationPolicy(p commission.AllocationPolicy) Option {
	return func(s *settings) {
		s.policy = p
	}
}

// WithStrategies sets where AutoAllocate looks up its distribution strategy
func WithStrategies(p StrategyProvider) Option {
	return func(s *settings) {
		s.strategies = p
	}
}

// WithCommissionConfig applies the [commission] configuration section
func WithCommissionConfig(cfg config.CommissionConfig) Option {
	return func(s *settings) {
		s.policy = commission.AllocationPolicy{
			EnforceBounds:       cfg.EnforceAllocationBounds,
			RequireSameSupplier: cfg.RequireSameSupplier,
			Tolerance:           cfg.StatusTolerance,
		}
		if !s.policy.Tolerance.IsPositive() {
			s.policy.Tolerance = commission.DefaultStatusTolerance
		}
		s.strategyName = cfg.DefaultStrategy
	}
}

func newSettings(opts []Option) settings {
	s := settings{policy: commission.DefaultAllocationPolicy()}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// publish hands the aggregate's pending events to the publisher. The write has
// already committed, so a failed publish is logged and not returned.
func (s settings) publish(ctx context.Context, agg shared.AggregateRoot) {
	events := agg.GetDomainEvents()
	agg.ClearDomainEvents()
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		logger.L(ctx).Warn("failed to publish domain events",
			zap.Int("count", len(events)),
			zap.Error(err))
	}
}

func (s settings) recordRejection(ctx context.Context, tenantID uuid.UUID, err error) {
	if s.metrics == nil {
		return
	}
	code := shared.CodeOf(err)
	if code == "" {
		code = "INTERNAL"
	}
	s.metrics.RecordRejection(ctx, tenantID, code)
}
