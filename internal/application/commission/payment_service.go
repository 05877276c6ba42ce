package commission

import (
	"context"
	"errors"
	"time"

	"github.com/ceemowww/comtrack2/internal/domain/commission"
	"github.com/ceemowww/comtrack2/internal/domain/shared"
	"github.com/ceemowww/comtrack2/internal/infrastructure/logger"
	"github.com/ceemowww/comtrack2/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentService records supplier payments and maintains their items
type PaymentService struct {
	payments  commission.PaymentRepository
	directory commission.Directory
	settings
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	payments commission.PaymentRepository,
	directory commission.Directory,
	opts ...Option,
) *PaymentService {
	return &PaymentService{
		payments:  payments,
		directory: directory,
		settings:  newSettings(opts),
	}
}

// RecordPayment stores a new unallocated payment with one item for the full amount
func (s *PaymentService) RecordPayment(ctx context.Context, tenantID uuid.UUID, req RecordPaymentRequest) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "record",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrSupplierID, req.SupplierID.String(),
		telemetry.SpanAttrAmount, req.TotalAmount.String(),
	)
	defer span.End()

	if _, err := s.directory.FindSupplier(ctx, tenantID, req.SupplierID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			err = shared.InvalidInput("invalid supplier for this company")
		}
		telemetry.RecordError(span, err)
		return nil, err
	}

	date := time.Now()
	if req.PaymentDate != nil && !req.PaymentDate.IsZero() {
		date = *req.PaymentDate
	}
	payment, err := commission.NewCommissionPayment(tenantID, req.SupplierID, date, req.TotalAmount, req.Reference, req.Notes)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publish(ctx, payment)

	logger.L(ctx).Info("commission payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("supplier_id", payment.SupplierID.String()),
		zap.String("total_amount", payment.TotalAmount.StringFixed(2)))

	resp := ToPaymentResponse(payment)
	return &resp, nil
}

// ReplacePaymentLineItems swaps the full item set of a payment in one transaction
func (s *PaymentService) ReplacePaymentLineItems(ctx context.Context, tenantID, paymentID uuid.UUID, req ReplacePaymentItemsRequest) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "replace_items",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrPaymentID, paymentID.String(),
	)
	defer span.End()

	payment, err := s.payments.FindByID(ctx, tenantID, paymentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	lines := make([]commission.PaymentItemLine, len(req.Items))
	for i, in := range req.Items {
		lines[i] = in.line()
	}
	if err := payment.ReplaceItems(lines, req.ExpectedTotal); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.payments.ReplaceItems(ctx, payment); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publish(ctx, payment)

	logger.L(ctx).Info("commission payment items replaced",
		zap.String("payment_id", payment.ID.String()),
		zap.Int("items", len(payment.Items)),
		zap.String("total_amount", payment.TotalAmount.StringFixed(2)))

	resp := ToPaymentResponse(payment)
	return &resp, nil
}

// AddPaymentItem appends one item; the payment total grows by its amount
func (s *PaymentService) AddPaymentItem(ctx context.Context, tenantID, paymentID uuid.UUID, req PaymentItemInput) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "add_item",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrPaymentID, paymentID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)
	defer span.End()

	payment, err := s.payments.FindByID(ctx, tenantID, paymentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	item, err := payment.AddItem(req.line(), s.policy.Tolerance)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.payments.AddItem(ctx, payment, item.ID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publish(ctx, payment)

	logger.L(ctx).Info("commission payment item added",
		zap.String("payment_id", payment.ID.String()),
		zap.String("payment_item_id", item.ID.String()),
		zap.String("total_amount", payment.TotalAmount.StringFixed(2)))

	resp := ToPaymentResponse(payment)
	return &resp, nil
}

// UpdatePaymentItem rewrites one unallocated item
func (s *PaymentService) UpdatePaymentItem(ctx context.Context, tenantID, paymentID, itemID uuid.UUID, req PaymentItemInput) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "update_item",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrPaymentID, paymentID.String(),
		telemetry.SpanAttrPaymentItemID, itemID.String(),
	)
	defer span.End()

	payment, err := s.payments.FindByID(ctx, tenantID, paymentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if _, err := payment.UpdateItem(itemID, req.line(), s.policy.Tolerance); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.payments.UpdateItem(ctx, payment, itemID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publish(ctx, payment)

	logger.L(ctx).Info("commission payment item updated",
		zap.String("payment_id", payment.ID.String()),
		zap.String("payment_item_id", itemID.String()),
		zap.String("total_amount", payment.TotalAmount.StringFixed(2)))

	resp := ToPaymentResponse(payment)
	return &resp, nil
}

// DeletePaymentItem removes one unallocated item; the last item always stays
func (s *PaymentService) DeletePaymentItem(ctx context.Context, tenantID, paymentID, itemID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "delete_item",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrPaymentID, paymentID.String(),
		telemetry.SpanAttrPaymentItemID, itemID.String(),
	)
	defer span.End()

	payment, err := s.payments.FindByID(ctx, tenantID, paymentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	if err := payment.RemoveItem(itemID, s.policy.Tolerance); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	if err := s.payments.DeleteItem(ctx, payment, itemID); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	s.publish(ctx, payment)

	logger.L(ctx).Info("commission payment item deleted",
		zap.String("payment_id", payment.ID.String()),
		zap.String("payment_item_id", itemID.String()),
		zap.String("total_amount", payment.TotalAmount.StringFixed(2)))
	return nil
}

// Get returns one payment with its items and their allocated sums
func (s *PaymentService) Get(ctx context.Context, tenantID, paymentID uuid.UUID) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "get",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrPaymentID, paymentID.String(),
	)
	defer span.End()

	payment, err := s.payments.FindByID(ctx, tenantID, paymentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	resp := ToPaymentResponse(payment)
	return &resp, nil
}

// List returns a page of payments, newest first unless the filter says otherwise
func (s *PaymentService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[PaymentResponse], error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "list",
		telemetry.SpanAttrTenantID, tenantID.String(),
	)
	defer span.End()

	filter = filter.Normalize()
	payments, total, err := s.payments.List(ctx, tenantID, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return shared.Paginated[PaymentResponse]{}, err
	}
	items := make([]PaymentResponse, len(payments))
	for i := range payments {
		items[i] = ToPaymentResponse(&payments[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Delete removes a payment with its items and allocations
func (s *PaymentService) Delete(ctx context.Context, tenantID, paymentID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "delete",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrPaymentID, paymentID.String(),
	)
	defer span.End()

	if err := s.payments.Delete(ctx, tenantID, paymentID); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	logger.L(ctx).Info("commission payment deleted", zap.String("payment_id", paymentID.String()))
	return nil
}
