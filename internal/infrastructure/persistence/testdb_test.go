package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/ceemowww/comtrack2/internal/domain/commission"
	"github.com/ceemowww/comtrack2/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory database with every table migrated
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// ledgerFixture is one company with a supplier, a customer and a part
type ledgerFixture struct {
	db       *gorm.DB
	tenantID uuid.UUID
	supplier models.SupplierModel
	customer models.CustomerModel
	part     models.PartModel
	orders   *GormSalesOrderRepository
	payments *GormPaymentRepository
	ledger   *GormLedgerRepository
	reports  *GormReportRepository
}

func newLedgerFixture(t *testing.T, db *gorm.DB, name string) *ledgerFixture {
	t.Helper()

	company := models.NewCompany(name)
	require.NoError(t, db.Create(company).Error)

	now := time.Now()
	f := &ledgerFixture{
		db:       db,
		tenantID: company.ID,
		orders:   NewGormSalesOrderRepository(db),
		payments: NewGormPaymentRepository(db),
		ledger:   NewGormLedgerRepository(db),
		reports:  NewGormReportRepository(db),
	}
	f.supplier = models.SupplierModel{
		BaseModel: models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		TenantID:  company.ID,
		Name:      name + " Supplies",
	}
	f.customer = models.CustomerModel{
		BaseModel: models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		TenantID:  company.ID,
		Name:      name + " Customer",
	}
	f.part = models.PartModel{
		BaseModel:  models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		TenantID:   company.ID,
		SupplierID: f.supplier.ID,
		SKU:        "SKU-" + name,
		Name:       "Bearing",
	}
	require.NoError(t, db.Create(&f.supplier).Error)
	require.NoError(t, db.Create(&f.customer).Error)
	require.NoError(t, db.Create(&f.part).Error)
	return f
}

func (f *ledgerFixture) addSupplier(t *testing.T, name string) (models.SupplierModel, models.PartModel) {
	t.Helper()
	now := time.Now()
	s := models.SupplierModel{
		BaseModel: models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		TenantID:  f.tenantID,
		Name:      name,
	}
	p := models.PartModel{
		BaseModel:  models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		TenantID:   f.tenantID,
		SupplierID: s.ID,
		SKU:        "SKU-" + name,
		Name:       name + " part",
	}
	require.NoError(t, f.db.Create(&s).Error)
	require.NoError(t, f.db.Create(&p).Error)
	return s, p
}

func (f *ledgerFixture) line(qty int, price, pct string) commission.ItemLine {
	return commission.ItemLine{
		PartID:               f.part.ID,
		SupplierID:           f.supplier.ID,
		Quantity:             qty,
		UnitPrice:            decimal.RequireFromString(price),
		CommissionPercentage: decimal.RequireFromString(pct),
	}
}

func (f *ledgerFixture) createOrder(t *testing.T, number string, date time.Time, lines ...commission.ItemLine) *commission.SalesOrder {
	t.Helper()
	order, err := commission.NewSalesOrder(f.tenantID, commission.OrderHeader{
		CustomerID:  f.customer.ID,
		OrderNumber: number,
		OrderDate:   date,
	}, lines)
	require.NoError(t, err)
	require.NoError(t, f.orders.Create(context.Background(), order))
	return order
}

func (f *ledgerFixture) createPayment(t *testing.T, total string) *commission.CommissionPayment {
	t.Helper()
	p, err := commission.NewCommissionPayment(f.tenantID, f.supplier.ID, time.Now(), decimal.RequireFromString(total), "CHK-1", "")
	require.NoError(t, err)
	require.NoError(t, f.payments.Create(context.Background(), p))
	return p
}

// allocateOne returns an AllocateFunc applying amount to one target
func allocateOne(itemID, targetID uuid.UUID, amount string, policy commission.AllocationPolicy) commission.AllocateFunc {
	return func(ctx context.Context, s commission.LedgerSession) ([]*commission.CommissionAllocation, error) {
		target, err := s.Target(ctx, targetID)
		if err != nil {
			return nil, err
		}
		a, err := s.Payment().Allocate(itemID, target, decimal.RequireFromString(amount), "", policy)
		if err != nil {
			return nil, err
		}
		return []*commission.CommissionAllocation{a}, nil
	}
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
