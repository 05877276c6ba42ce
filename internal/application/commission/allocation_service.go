package commission

import (
	"context"
	"fmt"
	"time"

	"github.com/ceemowww/comtrack2/internal/domain/commission"
	"github.com/ceemowww/comtrack2/internal/domain/shared"
	"github.com/ceemowww/comtrack2/internal/domain/shared/strategy"
	"github.com/ceemowww/comtrack2/internal/infrastructure/logger"
	"github.com/ceemowww/comtrack2/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// manualStrategy labels allocation metrics for single, caller-directed allocations
const manualStrategy = "manual"

// AllocationService applies payment items to commission liabilities
type AllocationService struct {
	ledger commission.LedgerRepository
	settings
}

// NewAllocationService creates a new AllocationService
func NewAllocationService(ledger commission.LedgerRepository, opts ...Option) *AllocationService {
	return &AllocationService{
		ledger:   ledger,
		settings: newSettings(opts),
	}
}

// Allocate writes one allocation and re-derives the payment status in the
// same transaction. Calling it twice writes two allocations.
func (s *AllocationService) Allocate(ctx context.Context, tenantID uuid.UUID, req AllocateRequest) (*AllocationResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "allocation", "allocate",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrPaymentItemID, req.PaymentItemID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)
	defer span.End()

	var err error
	if !req.Amount.IsPositive() {
		err = shared.InvalidInput("allocated amount must be positive")
	} else {
		err = shared.ValidateMoney("allocated amount", req.Amount)
	}
	if err != nil {
		s.reject(ctx, tenantID, req.PaymentItemID, err)
		telemetry.RecordError(span, err)
		return nil, err
	}

	start := time.Now()
	var allocation *commission.CommissionAllocation
	payment, err := s.ledger.Allocate(ctx, tenantID, req.PaymentItemID,
		func(ctx context.Context, session commission.LedgerSession) ([]*commission.CommissionAllocation, error) {
			target, err := session.Target(ctx, req.SalesOrderItemID)
			if err != nil {
				return nil, err
			}
			a, err := session.Payment().Allocate(req.PaymentItemID, target, req.Amount, req.Notes, s.policy)
			if err != nil {
				return nil, err
			}
			allocation = a
			return []*commission.CommissionAllocation{a}, nil
		})
	if s.metrics != nil {
		s.metrics.ObserveAllocation(ctx, manualStrategy, time.Since(start))
	}
	if err != nil {
		s.reject(ctx, tenantID, req.PaymentItemID, err)
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publish(ctx, payment)

	logger.L(ctx).Info("commission allocated",
		zap.String("allocation_id", allocation.ID.String()),
		zap.String("payment_id", payment.ID.String()),
		zap.String("sales_order_item_id", allocation.SalesOrderItemID.String()),
		zap.String("amount", allocation.Amount.StringFixed(2)),
		zap.String("payment_status", string(payment.Status)))

	resp := toAllocationResponse(allocation, payment)
	return &resp, nil
}

// AutoAllocate distributes the remaining amount of a payment item across the
// supplier's open liabilities using the named strategy. Every allocation and
// the status change commit together.
func (s *AllocationService) AutoAllocate(ctx context.Context, tenantID, paymentItemID uuid.UUID, req AutoAllocateRequest) (*AutoAllocateResponse, error) {
	name := req.Strategy
	if name == "" {
		name = s.strategyName
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "allocation", "auto_allocate",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrPaymentItemID, paymentItemID.String(),
		telemetry.SpanAttrStrategy, name,
	)
	defer span.End()

	planner, err := s.resolveStrategy(name)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	start := time.Now()
	var (
		written []*commission.CommissionAllocation
		plan    strategy.AllocationPlan
	)
	payment, err := s.ledger.Allocate(ctx, tenantID, paymentItemID,
		func(ctx context.Context, session commission.LedgerSession) ([]*commission.CommissionAllocation, error) {
			p := session.Payment()
			item := p.Item(paymentItemID)
			if item == nil {
				return nil, shared.NotFound("payment item not found")
			}
			amount, err := s.autoAmount(item, req.Amount)
			if err != nil {
				return nil, err
			}

			targets, err := session.OpenTargets(ctx, p.SupplierID)
			if err != nil {
				return nil, err
			}
			byID := make(map[uuid.UUID]*commission.AllocationTarget, len(targets))
			liabilities := make([]strategy.Liability, len(targets))
			for i, t := range targets {
				byID[t.SalesOrderItemID] = t
				liabilities[i] = strategy.Liability{
					ID:          t.SalesOrderItemID,
					OrderNumber: t.OrderNumber,
					OrderDate:   t.OrderDate,
					Outstanding: t.Outstanding(),
				}
			}

			plan, err = planner.Plan(ctx, amount, liabilities)
			if err != nil {
				return nil, err
			}
			out := make([]*commission.CommissionAllocation, 0, len(plan.Allocations))
			for _, planned := range plan.Allocations {
				a, err := p.Allocate(item.ID, byID[planned.LiabilityID], planned.Amount, req.Notes, s.policy)
				if err != nil {
					return nil, err
				}
				out = append(out, a)
			}
			written = out
			return out, nil
		})
	if s.metrics != nil {
		s.metrics.ObserveAllocation(ctx, planner.Name(), time.Since(start))
	}
	if err != nil {
		s.reject(ctx, tenantID, paymentItemID, err)
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publish(ctx, payment)

	logger.L(ctx).Info("commission auto-allocated",
		zap.String("payment_id", payment.ID.String()),
		zap.String("strategy", planner.Name()),
		zap.Int("allocations", len(written)),
		zap.String("total_allocated", plan.TotalAllocated.StringFixed(2)))

	resp := &AutoAllocateResponse{
		Strategy:       planner.Name(),
		Allocations:    make([]AllocationResponse, len(written)),
		TotalAllocated: plan.TotalAllocated,
		Remaining:      plan.Remaining,
		Payment:        ToPaymentResponse(payment),
	}
	for i, a := range written {
		resp.Allocations[i] = toAllocationResponse(a, payment)
	}
	return resp, nil
}

func (s *AllocationService) resolveStrategy(name string) (strategy.PaymentAllocationStrategy, error) {
	if s.strategies == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "no allocation strategies are configured")
	}
	planner, err := s.strategies.GetAllocationStrategy(name)
	if err != nil {
		return nil, shared.InvalidInput(fmt.Sprintf("unknown allocation strategy %q", name))
	}
	return planner, nil
}

// autoAmount is the requested amount, or the item's whole remainder
func (s *AllocationService) autoAmount(item *commission.CommissionPaymentItem, requested *decimal.Decimal) (decimal.Decimal, error) {
	remaining := item.Remaining()
	if requested == nil {
		if !remaining.IsPositive() {
			return decimal.Zero, shared.NewDomainError(shared.CodeInvalidState, "payment item is fully allocated")
		}
		return remaining, nil
	}
	if !requested.IsPositive() {
		return decimal.Zero, shared.InvalidInput("amount must be positive")
	}
	if err := shared.ValidateMoney("amount", *requested); err != nil {
		return decimal.Zero, err
	}
	if s.policy.EnforceBounds && requested.GreaterThan(remaining) {
		return decimal.Zero, shared.NewDomainError(shared.CodeAllocationExceedsBalance,
			fmt.Sprintf("amount %s exceeds payment item remaining %s", requested.StringFixed(2), remaining.StringFixed(2)))
	}
	return *requested, nil
}

func (s *AllocationService) reject(ctx context.Context, tenantID, paymentItemID uuid.UUID, err error) {
	s.recordRejection(ctx, tenantID, err)
	if shared.CodeOf(err) == "" {
		return
	}
	logger.L(ctx).Warn("allocation rejected",
		zap.String("payment_item_id", paymentItemID.String()),
		zap.String("code", shared.CodeOf(err)),
		zap.String("reason", err.Error()))
}
