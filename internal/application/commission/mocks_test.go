package commission

import (
	"context"

	"github.com/ceemowww/comtrack2/internal/domain/commission"
	"github.com/ceemowww/comtrack2/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockDirectory is a mock implementation of commission.Directory
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) FindSupplier(ctx context.Context, tenantID, id uuid.UUID) (*commission.Supplier, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commission.Supplier), args.Error(1)
}

func (m *MockDirectory) FindCustomer(ctx context.Context, tenantID, id uuid.UUID) (*commission.Customer, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commission.Customer), args.Error(1)
}

func (m *MockDirectory) FindPart(ctx context.Context, tenantID, id uuid.UUID) (*commission.Part, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commission.Part), args.Error(1)
}

func (m *MockDirectory) ListSuppliers(ctx context.Context, tenantID uuid.UUID) ([]commission.Supplier, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]commission.Supplier), args.Error(1)
}

// MockSalesOrderRepository is a mock implementation of commission.SalesOrderRepository
type MockSalesOrderRepository struct {
	mock.Mock
}

func (m *MockSalesOrderRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*commission.SalesOrder, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commission.SalesOrder), args.Error(1)
}

func (m *MockSalesOrderRepository) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]commission.SalesOrder, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]commission.SalesOrder), args.Get(1).(int64), args.Error(2)
}

func (m *MockSalesOrderRepository) Create(ctx context.Context, order *commission.SalesOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockSalesOrderRepository) Replace(ctx context.Context, order *commission.SalesOrder, tolerance decimal.Decimal) error {
	args := m.Called(ctx, order, tolerance)
	return args.Error(0)
}

func (m *MockSalesOrderRepository) Delete(ctx context.Context, tenantID, id uuid.UUID, tolerance decimal.Decimal) error {
	args := m.Called(ctx, tenantID, id, tolerance)
	return args.Error(0)
}

// MockPaymentRepository is a mock implementation of commission.PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*commission.CommissionPayment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commission.CommissionPayment), args.Error(1)
}

func (m *MockPaymentRepository) FindByItemID(ctx context.Context, tenantID, itemID uuid.UUID) (*commission.CommissionPayment, error) {
	args := m.Called(ctx, tenantID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commission.CommissionPayment), args.Error(1)
}

func (m *MockPaymentRepository) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]commission.CommissionPayment, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]commission.CommissionPayment), args.Get(1).(int64), args.Error(2)
}

func (m *MockPaymentRepository) ListBySupplier(ctx context.Context, tenantID, supplierID uuid.UUID) ([]commission.CommissionPayment, error) {
	args := m.Called(ctx, tenantID, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]commission.CommissionPayment), args.Error(1)
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *commission.CommissionPayment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) ReplaceItems(ctx context.Context, payment *commission.CommissionPayment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) AddItem(ctx context.Context, payment *commission.CommissionPayment, itemID uuid.UUID) error {
	args := m.Called(ctx, payment, itemID)
	return args.Error(0)
}

func (m *MockPaymentRepository) UpdateItem(ctx context.Context, payment *commission.CommissionPayment, itemID uuid.UUID) error {
	args := m.Called(ctx, payment, itemID)
	return args.Error(0)
}

func (m *MockPaymentRepository) DeleteItem(ctx context.Context, payment *commission.CommissionPayment, itemID uuid.UUID) error {
	args := m.Called(ctx, payment, itemID)
	return args.Error(0)
}

func (m *MockPaymentRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockReportRepository is a mock implementation of commission.ReportRepository
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) LiabilityRows(ctx context.Context, tenantID uuid.UUID, supplierID *uuid.UUID) ([]commission.LiabilityRow, error) {
	args := m.Called(ctx, tenantID, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]commission.LiabilityRow), args.Error(1)
}

func (m *MockReportRepository) SupplierTotals(ctx context.Context, tenantID, supplierID uuid.UUID) (commission.SupplierTotals, error) {
	args := m.Called(ctx, tenantID, supplierID)
	return args.Get(0).(commission.SupplierTotals), args.Error(1)
}

func (m *MockReportRepository) AllocationDetails(ctx context.Context, tenantID uuid.UUID, query commission.AllocationQuery) ([]commission.AllocationDetail, error) {
	args := m.Called(ctx, tenantID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]commission.AllocationDetail), args.Error(1)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// published returns the event types handed to the publisher, in order
func (m *MockEventPublisher) published() []string {
	var types []string
	for _, call := range m.Calls {
		if call.Method != "Publish" {
			continue
		}
		for _, e := range call.Arguments.Get(1).([]shared.DomainEvent) {
			types = append(types, e.EventType())
		}
	}
	return types
}

// fakeLedger runs the allocate callback against an in-memory payment and a
// fixed set of targets. A failing callback leaves calls unchanged.
type fakeLedger struct {
	tenantID uuid.UUID
	payment  *commission.CommissionPayment
	targets  []*commission.AllocationTarget
	calls    int
	written  []*commission.CommissionAllocation
}

func (f *fakeLedger) Allocate(ctx context.Context, tenantID, paymentItemID uuid.UUID, fn commission.AllocateFunc) (*commission.CommissionPayment, error) {
	if tenantID != f.tenantID || f.payment.Item(paymentItemID) == nil {
		return nil, shared.NotFound("payment item not found")
	}
	out, err := fn(ctx, &fakeSession{ledger: f})
	if err != nil {
		return nil, err
	}
	f.calls++
	f.written = append(f.written, out...)
	return f.payment, nil
}

type fakeSession struct {
	ledger *fakeLedger
}

func (s *fakeSession) Payment() *commission.CommissionPayment {
	return s.ledger.payment
}

func (s *fakeSession) Target(_ context.Context, id uuid.UUID) (*commission.AllocationTarget, error) {
	for _, t := range s.ledger.targets {
		if t.SalesOrderItemID == id {
			return t, nil
		}
	}
	return nil, shared.NotFound("sales order item not found")
}

func (s *fakeSession) OpenTargets(_ context.Context, supplierID uuid.UUID) ([]*commission.AllocationTarget, error) {
	var open []*commission.AllocationTarget
	for _, t := range s.ledger.targets {
		if t.SupplierID == supplierID && t.Outstanding().IsPositive() {
			open = append(open, t)
		}
	}
	return open, nil
}

// fakeArchive records what was stored
type fakeArchive struct {
	keys   []string
	bodies [][]byte
	err    error
}

func (a *fakeArchive) Put(_ context.Context, key, _ string, body []byte) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.keys = append(a.keys, key)
	a.bodies = append(a.bodies, body)
	return "mem://" + key, nil
}

var (
	_ commission.Directory            = (*MockDirectory)(nil)
	_ commission.SalesOrderRepository = (*MockSalesOrderRepository)(nil)
	_ commission.PaymentRepository    = (*MockPaymentRepository)(nil)
	_ commission.ReportRepository     = (*MockReportRepository)(nil)
	_ commission.LedgerRepository     = (*fakeLedger)(nil)
	_ shared.EventPublisher           = (*MockEventPublisher)(nil)
	_ ReportArchive                   = (*fakeArchive)(nil)
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
