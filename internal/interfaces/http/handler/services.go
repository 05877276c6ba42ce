package handler

import (
	"context"

	commissionapp "github.com/ceemowww/comtrack2/internal/application/commission"
	"github.com/ceemowww/comtrack2/internal/domain/commission"
	"github.com/ceemowww/comtrack2/internal/domain/shared"
	"github.com/google/uuid"
)

// SalesOrderService is the accrual writer behind the sales order routes
type SalesOrderService interface {
	Create(ctx context.Context, tenantID uuid.UUID, req commissionapp.CreateSalesOrderRequest) (*commissionapp.SalesOrderResponse, error)
	Replace(ctx context.Context, tenantID, id uuid.UUID, req commissionapp.ReplaceSalesOrderRequest) (*commissionapp.SalesOrderResponse, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*commissionapp.SalesOrderResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[commissionapp.SalesOrderResponse], error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// PaymentService records and maintains commission payments
type PaymentService interface {
	RecordPayment(ctx context.Context, tenantID uuid.UUID, req commissionapp.RecordPaymentRequest) (*commissionapp.PaymentResponse, error)
	ReplacePaymentLineItems(ctx context.Context, tenantID, paymentID uuid.UUID, req commissionapp.ReplacePaymentItemsRequest) (*commissionapp.PaymentResponse, error)
	AddPaymentItem(ctx context.Context, tenantID, paymentID uuid.UUID, req commissionapp.PaymentItemInput) (*commissionapp.PaymentResponse, error)
	UpdatePaymentItem(ctx context.Context, tenantID, paymentID, itemID uuid.UUID, req commissionapp.PaymentItemInput) (*commissionapp.PaymentResponse, error)
	DeletePaymentItem(ctx context.Context, tenantID, paymentID, itemID uuid.UUID) error
	Get(ctx context.Context, tenantID, paymentID uuid.UUID) (*commissionapp.PaymentResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[commissionapp.PaymentResponse], error)
	Delete(ctx context.Context, tenantID, paymentID uuid.UUID) error
}

// AllocationService writes allocations
type AllocationService interface {
	Allocate(ctx context.Context, tenantID uuid.UUID, req commissionapp.AllocateRequest) (*commissionapp.AllocationResponse, error)
	AutoAllocate(ctx context.Context, tenantID, paymentItemID uuid.UUID, req commissionapp.AutoAllocateRequest) (*commissionapp.AutoAllocateResponse, error)
}

// ReportService serves the read-only ledger views
type ReportService interface {
	GetOutstandingForSupplier(ctx context.Context, tenantID, supplierID uuid.UUID) ([]commission.OutstandingItem, error)
	GetCommissionOutstandingBySupplier(ctx context.Context, tenantID uuid.UUID) ([]commission.SupplierOutstanding, error)
	GetSupplierCommissionSummary(ctx context.Context, tenantID, supplierID uuid.UUID) (*commission.SupplierCommissionSummary, error)
	GetAllocationsForPayment(ctx context.Context, tenantID, paymentID uuid.UUID) ([]commission.AllocationDetail, error)
	GetAllocationsForPaymentItem(ctx context.Context, tenantID, paymentItemID uuid.UUID) ([]commission.AllocationDetail, error)
	ListSupplierPayments(ctx context.Context, tenantID, supplierID uuid.UUID) ([]commission.PaymentAllocationSummary, error)
}

// ExportService renders and archives report workbooks
type ExportService interface {
	OutstandingWorkbook(ctx context.Context, tenantID uuid.UUID, supplierID *uuid.UUID) (*commissionapp.Export, error)
	Archive(ctx context.Context, tenantID uuid.UUID, export *commissionapp.Export) (string, error)
}

var (
	_ SalesOrderService = (*commissionapp.SalesOrderService)(nil)
	_ PaymentService    = (*commissionapp.PaymentService)(nil)
	_ AllocationService = (*commissionapp.AllocationService)(nil)
	_ ReportService     = (*commissionapp.ReportService)(nil)
	_ ExportService     = (*commissionapp.ExportService)(nil)
)
