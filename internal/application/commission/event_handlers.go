package commission

import (
	"context"

	"github.com/ceemowww/comtrack2/internal/domain/commission"
	"github.com/ceemowww/comtrack2/internal/domain/shared"
	"github.com/ceemowww/comtrack2/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LedgerEventTypes are the events raised by the payment ledger
var LedgerEventTypes = []string{
	commission.EventTypeCommissionAccrued,
	commission.EventTypePaymentRecorded,
	commission.EventTypePaymentItemsReplaced,
	commission.EventTypePaymentItemChanged,
	commission.EventTypeCommissionAllocated,
	commission.EventTypePaymentStatusChanged,
}

// LedgerRecorder receives business metrics derived from ledger events
type LedgerRecorder interface {
	RecordAllocation(ctx context.Context, tenantID uuid.UUID, status string, amount decimal.Decimal)
	RecordPayment(ctx context.Context, tenantID uuid.UUID)
}

// MetricsHandler turns committed ledger events into counters
type MetricsHandler struct {
	recorder LedgerRecorder
}

// NewMetricsHandler creates a new MetricsHandler
func NewMetricsHandler(recorder LedgerRecorder) *MetricsHandler {
	return &MetricsHandler{recorder: recorder}
}

// EventTypes returns the event types this handler is interested in
func (h *MetricsHandler) EventTypes() []string {
	return []string{commission.EventTypeCommissionAllocated, commission.EventTypePaymentRecorded}
}

// Handle records one allocation or one payment
func (h *MetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *commission.CommissionAllocatedEvent:
		h.recorder.RecordAllocation(ctx, e.TenantID(), string(e.PaymentStatus), e.Amount)
	case *commission.PaymentRecordedEvent:
		h.recorder.RecordPayment(ctx, e.TenantID())
	}
	return nil
}

// AuditLogHandler writes one structured log line per ledger event
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates a new AuditLogHandler. A nil logger falls back
// to the logger carried by each event's context.
func NewAuditLogHandler(l *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{logger: l}
}

// EventTypes returns the event types this handler is interested in
func (h *AuditLogHandler) EventTypes() []string {
	return LedgerEventTypes
}

// Handle logs the event with the fields relevant to its type
func (h *AuditLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	l := h.logger
	if l == nil {
		l = logger.L(ctx)
	}
	fields := []zap.Field{
		zap.String("event_id", event.EventID().String()),
		zap.String("event_type", event.EventType()),
		zap.String("tenant_id", event.TenantID().String()),
		zap.String("aggregate_id", event.AggregateID().String()),
	}

	switch e := event.(type) {
	case *commission.CommissionAccruedEvent:
		fields = append(fields,
			zap.String("order_number", e.OrderNumber),
			zap.Int("items", e.ItemCount),
			zap.String("total_commission", e.TotalCommission.StringFixed(2)))
	case *commission.PaymentRecordedEvent:
		fields = append(fields,
			zap.String("supplier_id", e.SupplierID.String()),
			zap.String("total_amount", e.TotalAmount.StringFixed(2)))
	case *commission.PaymentItemsReplacedEvent:
		fields = append(fields,
			zap.Int("items", e.ItemCount),
			zap.Bool("total_changed", e.TotalChanged()),
			zap.String("total_amount", e.TotalAmount.StringFixed(2)))
	case *commission.PaymentItemChangedEvent:
		fields = append(fields,
			zap.String("payment_item_id", e.PaymentItemID.String()),
			zap.String("action", string(e.Action)),
			zap.String("total_amount", e.TotalAmount.StringFixed(2)))
	case *commission.CommissionAllocatedEvent:
		fields = append(fields,
			zap.String("payment_item_id", e.PaymentItemID.String()),
			zap.String("sales_order_item_id", e.SalesOrderItemID.String()),
			zap.String("amount", e.Amount.StringFixed(2)))
	case *commission.PaymentStatusChangedEvent:
		fields = append(fields,
			zap.String("previous_status", string(e.PreviousStatus)),
			zap.String("status", string(e.Status)))
	}

	l.Info("ledger event", fields...)
	return nil
}

var (
	_ shared.EventHandler = (*MetricsHandler)(nil)
	_ shared.EventHandler = (*AuditLogHandler)(nil)
)
