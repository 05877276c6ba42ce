package commission

import (
	"context"

	"github.com/ceemowww/comtrack2/internal/domain/commission"
	"github.com/ceemowww/comtrack2/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// ReportService answers the read-only ledger questions. Reads run outside
// write transactions and see committed data only.
type ReportService struct {
	reports   commission.ReportRepository
	payments  commission.PaymentRepository
	directory commission.Directory
}

// NewReportService creates a new ReportService
func NewReportService(
	reports commission.ReportRepository,
	payments commission.PaymentRepository,
	directory commission.Directory,
) *ReportService {
	return &ReportService{
		reports:   reports,
		payments:  payments,
		directory: directory,
	}
}

// GetOutstandingForSupplier lists the supplier's liabilities that still have
// commission to be paid, newest order first
func (s *ReportService) GetOutstandingForSupplier(ctx context.Context, tenantID, supplierID uuid.UUID) ([]commission.OutstandingItem, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "outstanding_for_supplier",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrSupplierID, supplierID.String(),
	)
	defer span.End()

	rows, err := s.reports.LiabilityRows(ctx, tenantID, &supplierID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return commission.OutstandingItems(rows), nil
}

// GetCommissionOutstandingBySupplier aggregates accrued and paid commission per supplier
func (s *ReportService) GetCommissionOutstandingBySupplier(ctx context.Context, tenantID uuid.UUID) ([]commission.SupplierOutstanding, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "outstanding_by_supplier",
		telemetry.SpanAttrTenantID, tenantID.String(),
	)
	defer span.End()

	rows, err := s.reports.LiabilityRows(ctx, tenantID, nil)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return commission.SummarizeBySupplier(rows), nil
}

// GetSupplierCommissionSummary returns the supplier's generated, paid and allocated totals
func (s *ReportService) GetSupplierCommissionSummary(ctx context.Context, tenantID, supplierID uuid.UUID) (*commission.SupplierCommissionSummary, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "supplier_summary",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrSupplierID, supplierID.String(),
	)
	defer span.End()

	if _, err := s.directory.FindSupplier(ctx, tenantID, supplierID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	totals, err := s.reports.SupplierTotals(ctx, tenantID, supplierID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	summary := commission.NewSupplierCommissionSummary(supplierID, totals.Generated, totals.Paid, totals.Allocated)
	return &summary, nil
}

// GetAllocationsForPayment lists every allocation made from a payment
func (s *ReportService) GetAllocationsForPayment(ctx context.Context, tenantID, paymentID uuid.UUID) ([]commission.AllocationDetail, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "allocations_for_payment",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrPaymentID, paymentID.String(),
	)
	defer span.End()

	details, err := s.reports.AllocationDetails(ctx, tenantID, commission.AllocationQuery{PaymentID: &paymentID})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return details, nil
}

// GetAllocationsForPaymentItem lists the allocations made from one payment item
func (s *ReportService) GetAllocationsForPaymentItem(ctx context.Context, tenantID, paymentItemID uuid.UUID) ([]commission.AllocationDetail, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "allocations_for_payment_item",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrPaymentItemID, paymentItemID.String(),
	)
	defer span.End()

	details, err := s.reports.AllocationDetails(ctx, tenantID, commission.AllocationQuery{PaymentItemID: &paymentItemID})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return details, nil
}

// ListSupplierPayments returns the supplier's payments newest first with
// their allocated and unallocated amounts
func (s *ReportService) ListSupplierPayments(ctx context.Context, tenantID, supplierID uuid.UUID) ([]commission.PaymentAllocationSummary, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "supplier_payments",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrSupplierID, supplierID.String(),
	)
	defer span.End()

	payments, err := s.payments.ListBySupplier(ctx, tenantID, supplierID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	out := make([]commission.PaymentAllocationSummary, len(payments))
	for i := range payments {
		out[i] = commission.SummarizePaymentAllocation(&payments[i])
	}
	return out, nil
}
