package handler

import (
	"context"

	commissionapp "github.com/ceemowww/comtrack2/internal/application/commission"
	"github.com/ceemowww/comtrack2/internal/domain/commission"
	"github.com/ceemowww/comtrack2/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockSalesOrderService struct {
	mock.Mock
}

func (m *MockSalesOrderService) Create(ctx context.Context, tenantID uuid.UUID, req commissionapp.CreateSalesOrderRequest) (*commissionapp.SalesOrderResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commissionapp.SalesOrderResponse), args.Error(1)
}

func (m *MockSalesOrderService) Replace(ctx context.Context, tenantID, id uuid.UUID, req commissionapp.ReplaceSalesOrderRequest) (*commissionapp.SalesOrderResponse, error) {
	args := m.Called(ctx, tenantID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commissionapp.SalesOrderResponse), args.Error(1)
}

func (m *MockSalesOrderService) Get(ctx context.Context, tenantID, id uuid.UUID) (*commissionapp.SalesOrderResponse, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commissionapp.SalesOrderResponse), args.Error(1)
}

func (m *MockSalesOrderService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[commissionapp.SalesOrderResponse], error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(shared.Paginated[commissionapp.SalesOrderResponse]), args.Error(1)
}

func (m *MockSalesOrderService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) RecordPayment(ctx context.Context, tenantID uuid.UUID, req commissionapp.RecordPaymentRequest) (*commissionapp.PaymentResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commissionapp.PaymentResponse), args.Error(1)
}

func (m *MockPaymentService) ReplacePaymentLineItems(ctx context.Context, tenantID, paymentID uuid.UUID, req commissionapp.ReplacePaymentItemsRequest) (*commissionapp.PaymentResponse, error) {
	args := m.Called(ctx, tenantID, paymentID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commissionapp.PaymentResponse), args.Error(1)
}

func (m *MockPaymentService) AddPaymentItem(ctx context.Context, tenantID, paymentID uuid.UUID, req commissionapp.PaymentItemInput) (*commissionapp.PaymentResponse, error) {
	args := m.Called(ctx, tenantID, paymentID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commissionapp.PaymentResponse), args.Error(1)
}

func (m *MockPaymentService) UpdatePaymentItem(ctx context.Context, tenantID, paymentID, itemID uuid.UUID, req commissionapp.PaymentItemInput) (*commissionapp.PaymentResponse, error) {
	args := m.Called(ctx, tenantID, paymentID, itemID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commissionapp.PaymentResponse), args.Error(1)
}

func (m *MockPaymentService) DeletePaymentItem(ctx context.Context, tenantID, paymentID, itemID uuid.UUID) error {
	return m.Called(ctx, tenantID, paymentID, itemID).Error(0)
}

func (m *MockPaymentService) Get(ctx context.Context, tenantID, paymentID uuid.UUID) (*commissionapp.PaymentResponse, error) {
	args := m.Called(ctx, tenantID, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commissionapp.PaymentResponse), args.Error(1)
}

func (m *MockPaymentService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[commissionapp.PaymentResponse], error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(shared.Paginated[commissionapp.PaymentResponse]), args.Error(1)
}

func (m *MockPaymentService) Delete(ctx context.Context, tenantID, paymentID uuid.UUID) error {
	return m.Called(ctx, tenantID, paymentID).Error(0)
}

type MockAllocationService struct {
	mock.Mock
}

func (m *MockAllocationService) Allocate(ctx context.Context, tenantID uuid.UUID, req commissionapp.AllocateRequest) (*commissionapp.AllocationResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commissionapp.AllocationResponse), args.Error(1)
}

func (m *MockAllocationService) AutoAllocate(ctx context.Context, tenantID, paymentItemID uuid.UUID, req commissionapp.AutoAllocateRequest) (*commissionapp.AutoAllocateResponse, error) {
	args := m.Called(ctx, tenantID, paymentItemID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commissionapp.AutoAllocateResponse), args.Error(1)
}

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) GetOutstandingForSupplier(ctx context.Context, tenantID, supplierID uuid.UUID) ([]commission.OutstandingItem, error) {
	args := m.Called(ctx, tenantID, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]commission.OutstandingItem), args.Error(1)
}

func (m *MockReportService) GetCommissionOutstandingBySupplier(ctx context.Context, tenantID uuid.UUID) ([]commission.SupplierOutstanding, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]commission.SupplierOutstanding), args.Error(1)
}

func (m *MockReportService) GetSupplierCommissionSummary(ctx context.Context, tenantID, supplierID uuid.UUID) (*commission.SupplierCommissionSummary, error) {
	args := m.Called(ctx, tenantID, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commission.SupplierCommissionSummary), args.Error(1)
}

func (m *MockReportService) GetAllocationsForPayment(ctx context.Context, tenantID, paymentID uuid.UUID) ([]commission.AllocationDetail, error) {
	args := m.Called(ctx, tenantID, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]commission.AllocationDetail), args.Error(1)
}

func (m *MockReportService) GetAllocationsForPaymentItem(ctx context.Context, tenantID, paymentItemID uuid.UUID) ([]commission.AllocationDetail, error) {
	args := m.Called(ctx, tenantID, paymentItemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]commission.AllocationDetail), args.Error(1)
}

func (m *MockReportService) ListSupplierPayments(ctx context.Context, tenantID, supplierID uuid.UUID) ([]commission.PaymentAllocationSummary, error) {
	args := m.Called(ctx, tenantID, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]commission.PaymentAllocationSummary), args.Error(1)
}

type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) OutstandingWorkbook(ctx context.Context, tenantID uuid.UUID, supplierID *uuid.UUID) (*commissionapp.Export, error) {
	args := m.Called(ctx, tenantID, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commissionapp.Export), args.Error(1)
}

func (m *MockExportService) Archive(ctx context.Context, tenantID uuid.UUID, export *commissionapp.Export) (string, error) {
	args := m.Called(ctx, tenantID, export)
	return args.String(0), args.Error(1)
}
