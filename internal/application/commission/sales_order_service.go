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
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SalesOrderService writes sales orders and therefore accrues commission
type SalesOrderService struct {
	orders    commission.SalesOrderRepository
	directory commission.Directory
	settings
}

// NewSalesOrderService creates a new SalesOrderService
func NewSalesOrderService(
	orders commission.SalesOrderRepository,
	directory commission.Directory,
	opts ...Option,
) *SalesOrderService {
	return &SalesOrderService{
		orders:    orders,
		directory: directory,
		settings:  newSettings(opts),
	}
}

// Create validates the references, accrues every line and stores the order
func (s *SalesOrderService) Create(ctx context.Context, tenantID uuid.UUID, req CreateSalesOrderRequest) (*SalesOrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sales_order", "create",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrOrderNumber, req.OrderNumber,
	)
	defer span.End()

	header, lines, err := s.resolve(ctx, tenantID, req.CustomerID, req.OrderNumber, req.OrderDate, req.Status, req.Notes, req.Items)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	order, err := commission.NewSalesOrder(tenantID, header, lines)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.orders.Create(ctx, order); err != nil {
		telemetry.RecordError(span, err)
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError(shared.CodeAlreadyExists, "PO number already exists for this customer")
		}
		return nil, err
	}
	s.publish(ctx, order)

	logger.L(ctx).Info("sales order created",
		zap.String("sales_order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.Int("items", len(order.Items)),
		zap.String("total_commission", order.TotalCommission.StringFixed(2)))

	resp := ToSalesOrderResponse(order)
	return &resp, nil
}

// Replace rewrites the order and its items. Allocations against the old items
// are removed and the affected payments re-derive their status.
func (s *SalesOrderService) Replace(ctx context.Context, tenantID, id uuid.UUID, req ReplaceSalesOrderRequest) (*SalesOrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sales_order", "replace",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrOrderID, id.String(),
	)
	defer span.End()

	order, err := s.orders.FindByID(ctx, tenantID, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if req.Version != nil && *req.Version != order.Version {
		telemetry.RecordError(span, shared.ErrConcurrencyConflict)
		return nil, shared.ErrConcurrencyConflict
	}

	header, lines, err := s.resolve(ctx, tenantID, req.CustomerID, req.OrderNumber, req.OrderDate, req.Status, req.Notes, req.Items)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := order.Replace(header, lines); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.orders.Replace(ctx, order, s.policy.Tolerance); err != nil {
		telemetry.RecordError(span, err)
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError(shared.CodeAlreadyExists, "PO number already exists for this customer")
		}
		return nil, err
	}
	s.publish(ctx, order)

	logger.L(ctx).Info("sales order replaced",
		zap.String("sales_order_id", order.ID.String()),
		zap.Int("version", order.Version))

	resp := ToSalesOrderResponse(order)
	return &resp, nil
}

// Get returns one order with its items
func (s *SalesOrderService) Get(ctx context.Context, tenantID, id uuid.UUID) (*SalesOrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sales_order", "get",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrOrderID, id.String(),
	)
	defer span.End()

	order, err := s.orders.FindByID(ctx, tenantID, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	resp := ToSalesOrderResponse(order)
	return &resp, nil
}

// List returns a page of orders
func (s *SalesOrderService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[SalesOrderResponse], error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sales_order", "list",
		telemetry.SpanAttrTenantID, tenantID.String(),
	)
	defer span.End()

	filter = filter.Normalize()
	orders, total, err := s.orders.List(ctx, tenantID, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return shared.Paginated[SalesOrderResponse]{}, err
	}
	items := make([]SalesOrderResponse, len(orders))
	for i := range orders {
		items[i] = ToSalesOrderResponse(&orders[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Delete removes the order together with its items and their allocations
func (s *SalesOrderService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "sales_order", "delete",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrOrderID, id.String(),
	)
	defer span.End()

	if err := s.orders.Delete(ctx, tenantID, id, s.policy.Tolerance); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	logger.L(ctx).Info("sales order deleted", zap.String("sales_order_id", id.String()))
	return nil
}

// resolve checks every reference against the tenant's directory and fills
// in the defaults taken from the part.
func (s *SalesOrderService) resolve(
	ctx context.Context,
	tenantID uuid.UUID,
	customerID uuid.UUID,
	orderNumber string,
	orderDate *time.Time,
	status string,
	notes string,
	inputs []SalesOrderItemInput,
) (commission.OrderHeader, []commission.ItemLine, error) {
	if _, err := s.directory.FindCustomer(ctx, tenantID, customerID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return commission.OrderHeader{}, nil, shared.InvalidInput("invalid customer for this company")
		}
		return commission.OrderHeader{}, nil, err
	}

	header := commission.OrderHeader{
		CustomerID:  customerID,
		OrderNumber: orderNumber,
		Status:      commission.OrderStatus(status),
		Notes:       notes,
	}
	if orderDate != nil {
		header.OrderDate = *orderDate
	}

	parts := make(map[uuid.UUID]*commission.Part)
	suppliers := make(map[uuid.UUID]bool)
	lines := make([]commission.ItemLine, 0, len(inputs))
	for _, in := range inputs {
		part, ok := parts[in.PartID]
		if !ok {
			p, err := s.directory.FindPart(ctx, tenantID, in.PartID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return commission.OrderHeader{}, nil, shared.InvalidInput("invalid part or supplier for this company")
				}
				return commission.OrderHeader{}, nil, err
			}
			parts[in.PartID] = p
			part = p
		}

		supplierID := part.SupplierID
		if in.SupplierID != nil {
			supplierID = *in.SupplierID
		}
		if !suppliers[supplierID] {
			if _, err := s.directory.FindSupplier(ctx, tenantID, supplierID); err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return commission.OrderHeader{}, nil, shared.InvalidInput("invalid part or supplier for this company")
				}
				return commission.OrderHeader{}, nil, err
			}
			suppliers[supplierID] = true
		}

		unitPrice := decimal.Zero
		switch {
		case in.UnitPrice != nil:
			unitPrice = *in.UnitPrice
		case part.ListPrice != nil:
			unitPrice = *part.ListPrice
		}

		lines = append(lines, commission.ItemLine{
			PartID:               part.ID,
			SupplierID:           supplierID,
			Quantity:             in.Quantity,
			UnitPrice:            unitPrice,
			CommissionPercentage: in.CommissionPercentage,
		})
	}
	return header, lines, nil
}
