package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
)

// LedgerMetrics counts what flows through the commission ledger
type LedgerMetrics struct {
	allocationsTotal     *Counter
	allocatedAmountTotal *FloatCounter
	paymentsRecorded     *Counter
	rejectionsTotal      *Counter
	allocationDuration   *Histogram
}

// AllocationDurationBuckets are bucket boundaries (seconds) for one allocation transaction
var AllocationDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// NewLedgerMetrics registers the ledger instruments on meter
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &LedgerMetrics{}
	var err error

	if m.allocationsTotal, err = NewCounter(meter,
		"comtrack_allocations_total",
		"Allocations written, labelled with the payment status they produced",
		"{allocations}",
	); err != nil {
		return nil, err
	}
	if m.allocatedAmountTotal, err = NewFloatCounter(meter,
		"comtrack_allocated_amount_total",
		"Sum of allocated commission",
		"{currency}",
	); err != nil {
		return nil, err
	}
	if m.paymentsRecorded, err = NewCounter(meter,
		"comtrack_payments_recorded_total",
		"Commission payments recorded",
		"{payments}",
	); err != nil {
		return nil, err
	}
	if m.rejectionsTotal, err = NewCounter(meter,
		"comtrack_allocation_rejections_total",
		"Allocation requests rejected, labelled with the error code",
		"{requests}",
	); err != nil {
		return nil, err
	}
	if m.allocationDuration, err = NewHistogram(meter,
		"comtrack_allocation_duration_seconds",
		"Duration of one allocation transaction",
		"s",
		AllocationDurationBuckets...,
	); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordAllocation counts one allocation and its amount
func (m *LedgerMetrics) RecordAllocation(ctx context.Context, tenantID uuid.UUID, status string, amount decimal.Decimal) {
	m.allocationsTotal.Inc(ctx, AttrTenantID.String(tenantID.String()), AttrStatus.String(status))
	m.allocatedAmountTotal.Add(ctx, amount.InexactFloat64(), AttrTenantID.String(tenantID.String()))
}

// RecordPayment counts one recorded payment
func (m *LedgerMetrics) RecordPayment(ctx context.Context, tenantID uuid.UUID) {
	m.paymentsRecorded.Inc(ctx, AttrTenantID.String(tenantID.String()))
}

// RecordRejection counts a refused allocation request by error code
func (m *LedgerMetrics) RecordRejection(ctx context.Context, tenantID uuid.UUID, reason string) {
	m.rejectionsTotal.Inc(ctx, AttrTenantID.String(tenantID.String()), AttrReason.String(reason))
}

// ObserveAllocation records how long an allocation transaction took
func (m *LedgerMetrics) ObserveAllocation(ctx context.Context, strategy string, d time.Duration) {
	m.allocationDuration.RecordDuration(ctx, d, AttrStrategy.String(strategy))
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewLedgerMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
