package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/ceemowww/comtrack2/internal/domain/commission"
	"github.com/ceemowww/comtrack2/internal/domain/shared"
	"github.com/ceemowww/comtrack2/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormPaymentRepository_CreateAndFind(t *testing.T) {
	db := newTestDB(t)
	f := newLedgerFixture(t, db, "Acme")
	ctx := context.Background()

	payment := f.createPayment(t, "100")

	got, err := f.payments.FindByID(ctx, f.tenantID, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, commission.PaymentStatusUnallocated, got.Status)
	assert.True(t, got.TotalAmount.Equal(dec("100")))
	require.Len(t, got.Items, 1)
	assert.Equal(t, commission.DefaultPaymentItemDescription, got.Items[0].Description)
	assert.True(t, got.Items[0].Amount.Equal(dec("100")))
	assert.True(t, got.Items[0].Allocated.IsZero())

	byItem, err := f.payments.FindByItemID(ctx, f.tenantID, payment.Items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, payment.ID, byItem.ID)

	_, err = f.payments.FindByItemID(ctx, f.tenantID, uuid.New())
	assert.Equal(t, "payment item not found", err.Error())
}

func TestGormPaymentRepository_TenantIsolation(t *testing.T) {
	db := newTestDB(t)
	acme := newLedgerFixture(t, db, "Acme")
	globex := newLedgerFixture(t, db, "Globex")
	ctx := context.Background()

	payment := acme.createPayment(t, "100")

	_, err := globex.payments.FindByID(ctx, globex.tenantID, payment.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	_, err = globex.payments.FindByItemID(ctx, globex.tenantID, payment.Items[0].ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	err = globex.payments.Delete(ctx, globex.tenantID, payment.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	_, err = acme.payments.FindByID(ctx, acme.tenantID, payment.ID)
	assert.NoError(t, err)
}

func TestGormPaymentRepository_List(t *testing.T) {
	db := newTestDB(t)
	f := newLedgerFixture(t, db, "Acme")
	other, _ := f.addSupplier(t, "Initech")
	ctx := context.Background()

	older, err := commission.NewCommissionPayment(f.tenantID, f.supplier.ID, day(2024, 1, 10), dec("50"), "OLD", "")
	require.NoError(t, err)
	newer, err := commission.NewCommissionPayment(f.tenantID, f.supplier.ID, day(2024, 2, 10), dec("75"), "NEW", "")
	require.NoError(t, err)
	foreign, err := commission.NewCommissionPayment(f.tenantID, other.ID, day(2024, 3, 10), dec("10"), "INI", "")
	require.NoError(t, err)
	for _, p := range []*commission.CommissionPayment{older, newer, foreign} {
		require.NoError(t, f.payments.Create(ctx, p))
	}

	t.Run("newest first", func(t *testing.T) {
		list, total, err := f.payments.List(ctx, f.tenantID, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, list, 3)
		assert.Equal(t, "INI", list[0].Reference)
		assert.Equal(t, "NEW", list[1].Reference)
		assert.Equal(t, "OLD", list[2].Reference)
		assert.Len(t, list[0].Items, 1)
	})

	t.Run("by supplier", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.SupplierID = &f.supplier.ID
		list, total, err := f.payments.List(ctx, f.tenantID, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Equal(t, newer.ID, list[0].ID)

		bySupplier, err := f.payments.ListBySupplier(ctx, f.tenantID, f.supplier.ID)
		require.NoError(t, err)
		require.Len(t, bySupplier, 2)
		assert.Equal(t, newer.ID, bySupplier[0].ID)
		assert.Equal(t, older.ID, bySupplier[1].ID)
	})

	t.Run("ordered by amount", func(t *testing.T) {
		filter := shared.Filter{OrderBy: "total_amount", OrderDir: "asc"}
		list, _, err := f.payments.List(ctx, f.tenantID, filter)
		require.NoError(t, err)
		assert.Equal(t, foreign.ID, list[0].ID)
	})

	t.Run("empty supplier", func(t *testing.T) {
		list, err := f.payments.ListBySupplier(ctx, f.tenantID, uuid.New())
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestGormPaymentRepository_ReplaceItems(t *testing.T) {
	db := newTestDB(t)
	f := newLedgerFixture(t, db, "Acme")
	ctx := context.Background()

	t.Run("swaps items and rewrites the total", func(t *testing.T) {
		payment := f.createPayment(t, "100")
		loaded, err := f.payments.FindByID(ctx, f.tenantID, payment.ID)
		require.NoError(t, err)

		require.NoError(t, loaded.ReplaceItems([]commission.PaymentItemLine{
			{Amount: dec("60"), Description: "March"},
			{Amount: dec("45"), Description: "April"},
		}, nil))
		require.NoError(t, f.payments.ReplaceItems(ctx, loaded))

		got, err := f.payments.FindByID(ctx, f.tenantID, payment.ID)
		require.NoError(t, err)
		assert.True(t, got.TotalAmount.Equal(dec("105")))
		assert.Equal(t, 2, got.Version)
		assert.Equal(t, commission.PaymentStatusUnallocated, got.Status)
		require.Len(t, got.Items, 2)

		var old int64
		require.NoError(t, db.Model(&models.CommissionPaymentItemModel{}).Where("id = ?", payment.Items[0].ID).Count(&old).Error)
		assert.Zero(t, old)
	})

	t.Run("refuses once allocations exist", func(t *testing.T) {
		order := f.createOrder(t, "PO-R", day(2024, 1, 1), f.line(10, "50", "5"))
		payment := f.createPayment(t, "100")

		stale, err := f.payments.FindByID(ctx, f.tenantID, payment.ID)
		require.NoError(t, err)

		_, err = f.ledger.Allocate(ctx, f.tenantID, payment.Items[0].ID,
			allocateOne(payment.Items[0].ID, order.Items[0].ID, "10", commission.DefaultAllocationPolicy()))
		require.NoError(t, err)

		// the allocation moved the stored version; pretend the caller kept up
		current, err := f.payments.FindByID(ctx, f.tenantID, payment.ID)
		require.NoError(t, err)
		stale.Version = current.Version
		require.NoError(t, stale.ReplaceItems([]commission.PaymentItemLine{{Amount: dec("100")}}, nil))

		err = f.payments.ReplaceItems(ctx, stale)
		require.Error(t, err)
		assert.Equal(t, shared.CodeInvalidState, shared.CodeOf(err))

		got, err := f.payments.FindByID(ctx, f.tenantID, payment.ID)
		require.NoError(t, err)
		require.Len(t, got.Items, 1)
		assert.Equal(t, payment.Items[0].ID, got.Items[0].ID)
	})

	t.Run("stale version conflicts", func(t *testing.T) {
		payment := f.createPayment(t, "100")
		a, err := f.payments.FindByID(ctx, f.tenantID, payment.ID)
		require.NoError(t, err)
		b, err := f.payments.FindByID(ctx, f.tenantID, payment.ID)
		require.NoError(t, err)

		require.NoError(t, a.ReplaceItems([]commission.PaymentItemLine{{Amount: dec("50")}, {Amount: dec("50")}}, nil))
		require.NoError(t, f.payments.ReplaceItems(ctx, a))

		require.NoError(t, b.ReplaceItems([]commission.PaymentItemLine{{Amount: dec("100")}}, nil))
		err = f.payments.ReplaceItems(ctx, b)
		assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))
	})
}

func TestGormPaymentRepository_SingleItemEdits(t *testing.T) {
	db := newTestDB(t)
	f := newLedgerFixture(t, db, "Acme")
	ctx := context.Background()
	tol := commission.DefaultStatusTolerance

	t.Run("add, update and delete keep the header in step", func(t *testing.T) {
		payment := f.createPayment(t, "100")
		loaded, err := f.payments.FindByID(ctx, f.tenantID, payment.ID)
		require.NoError(t, err)

		added, err := loaded.AddItem(commission.PaymentItemLine{Amount: dec("40"), Description: "bonus"}, tol)
		require.NoError(t, err)
		require.NoError(t, f.payments.AddItem(ctx, loaded, added.ID))

		got, err := f.payments.FindByID(ctx, f.tenantID, payment.ID)
		require.NoError(t, err)
		require.Len(t, got.Items, 2)
		assert.True(t, got.TotalAmount.Equal(dec("140")))
		assert.Equal(t, 2, got.Version)

		_, err = got.UpdateItem(added.ID, commission.PaymentItemLine{Amount: dec("15.25"), Notes: "corrected"}, tol)
		require.NoError(t, err)
		require.NoError(t, f.payments.UpdateItem(ctx, got, added.ID))

		got, err = f.payments.FindByID(ctx, f.tenantID, payment.ID)
		require.NoError(t, err)
		assert.True(t, got.TotalAmount.Equal(dec("115.25")))
		assert.True(t, got.Item(added.ID).Amount.Equal(dec("15.25")))
		assert.Equal(t, "corrected", got.Item(added.ID).Notes)

		require.NoError(t, got.RemoveItem(added.ID, tol))
		require.NoError(t, f.payments.DeleteItem(ctx, got, added.ID))

		got, err = f.payments.FindByID(ctx, f.tenantID, payment.ID)
		require.NoError(t, err)
		require.Len(t, got.Items, 1)
		assert.True(t, got.TotalAmount.Equal(dec("100")))
		assert.True(t, got.TotalAmount.Equal(got.TotalLineItems()))
		assert.Equal(t, 4, got.Version)
	})

	t.Run("status follows the new total", func(t *testing.T) {
		order := f.createOrder(t, "PO-S", day(2024, 1, 1), f.line(10, "50", "20"))
		payment := f.createPayment(t, "60")
		_, err := f.ledger.Allocate(ctx, f.tenantID, payment.Items[0].ID,
			allocateOne(payment.Items[0].ID, order.Items[0].ID, "60", commission.DefaultAllocationPolicy()))
		require.NoError(t, err)

		loaded, err := f.payments.FindByID(ctx, f.tenantID, payment.ID)
		require.NoError(t, err)
		require.Equal(t, commission.PaymentStatusFullyAllocated, loaded.Status)

		added, err := loaded.AddItem(commission.PaymentItemLine{Amount: dec("40")}, tol)
		require.NoError(t, err)
		require.NoError(t, f.payments.AddItem(ctx, loaded, added.ID))

		got, err := f.payments.FindByID(ctx, f.tenantID, payment.ID)
		require.NoError(t, err)
		assert.Equal(t, commission.PaymentStatusPartiallyAllocated, got.Status)
		assert.True(t, got.TotalAmount.Equal(dec("100")))
	})

	t.Run("allocated item is refused at commit time", func(t *testing.T) {
		order := f.createOrder(t, "PO-A", day(2024, 1, 1), f.line(10, "50", "5"))
		payment := f.createPayment(t, "100")
		stale, err := f.payments.FindByID(ctx, f.tenantID, payment.ID)
		require.NoError(t, err)
		_, err = stale.AddItem(commission.PaymentItemLine{Amount: dec("1")}, tol)
		require.NoError(t, err)

		_, err = f.ledger.Allocate(ctx, f.tenantID, payment.Items[0].ID,
			allocateOne(payment.Items[0].ID, order.Items[0].ID, "10", commission.DefaultAllocationPolicy()))
		require.NoError(t, err)

		// the allocation moved the stored version; pretend the caller kept up
		current, err := f.payments.FindByID(ctx, f.tenantID, payment.ID)
		require.NoError(t, err)
		require.NoError(t, stale.RemoveItem(payment.Items[0].ID, tol))
		stale.Version = current.Version + 1

		err = f.payments.DeleteItem(ctx, stale, payment.Items[0].ID)
		require.Error(t, err)
		assert.Equal(t, shared.CodeInvalidState, shared.CodeOf(err))

		got, err := f.payments.FindByID(ctx, f.tenantID, payment.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Item(payment.Items[0].ID))
		assert.True(t, got.TotalAmount.Equal(dec("100")))
	})

	t.Run("stale version conflicts", func(t *testing.T) {
		payment := f.createPayment(t, "100")
		a, err := f.payments.FindByID(ctx, f.tenantID, payment.ID)
		require.NoError(t, err)
		b, err := f.payments.FindByID(ctx, f.tenantID, payment.ID)
		require.NoError(t, err)

		first, err := a.AddItem(commission.PaymentItemLine{Amount: dec("5")}, tol)
		require.NoError(t, err)
		require.NoError(t, f.payments.AddItem(ctx, a, first.ID))

		second, err := b.AddItem(commission.PaymentItemLine{Amount: dec("7")}, tol)
		require.NoError(t, err)
		err = f.payments.AddItem(ctx, b, second.ID)
		assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))

		got, err := f.payments.FindByID(ctx, f.tenantID, payment.ID)
		require.NoError(t, err)
		assert.True(t, got.TotalAmount.Equal(dec("105")))
	})
}

func TestGormPaymentRepository_DeleteCascades(t *testing.T) {
	db := newTestDB(t)
	f := newLedgerFixture(t, db, "Acme")
	ctx := context.Background()

	order := f.createOrder(t, "PO-1", day(2024, 1, 1), f.line(10, "50", "5"))
	payment := f.createPayment(t, "25")
	_, err := f.ledger.Allocate(ctx, f.tenantID, payment.Items[0].ID,
		allocateOne(payment.Items[0].ID, order.Items[0].ID, "25", commission.DefaultAllocationPolicy()))
	require.NoError(t, err)

	require.NoError(t, f.payments.Delete(ctx, f.tenantID, payment.ID))

	var items, allocations int64
	require.NoError(t, db.Model(&models.CommissionPaymentItemModel{}).Count(&items).Error)
	require.NoError(t, db.Model(&models.CommissionAllocationModel{}).Count(&allocations).Error)
	assert.Zero(t, items)
	assert.Zero(t, allocations)

	rows, err := f.reports.LiabilityRows(ctx, f.tenantID, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].PaidAmount.IsZero())

	_, err = f.payments.FindByID(ctx, f.tenantID, payment.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}
