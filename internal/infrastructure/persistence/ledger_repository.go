package persistence

import (
	"context"
	"sort"

	"github.com/ceemowww/comtrack2/internal/domain/commission"
	"github.com/ceemowww/comtrack2/internal/infrastructure/persistence/models"
	"github.com/ceemowww/comtrack2/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLedgerRepository implements commission.LedgerRepository using GORM.
// Each Allocate call is one transaction holding row locks on the payment and
// on every sales order item it touches.
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// Allocate locks the payment owning paymentItemID, runs fn and writes the
// allocations it returns together with the payment's new status
func (r *GormLedgerRepository) Allocate(
	ctx context.Context,
	tenantID, paymentItemID uuid.UUID,
	fn commission.AllocateFunc,
) (*commission.CommissionPayment, error) {
	var result *commission.CommissionPayment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.CommissionPaymentItemModel
		if err := tx.Scopes(tenant.Scope(tenantID)).
			First(&item, "id = ?", paymentItemID).Error; err != nil {
			return notFound(err, "payment item not found")
		}

		payment, err := loadPayment(tx, tenantID, item.PaymentID, true)
		if err != nil {
			return err
		}
		loadedVersion := payment.Version

		session := &ledgerSession{
			tx:       tx,
			tenantID: tenantID,
			payment:  payment,
			targets:  make(map[uuid.UUID]*commission.AllocationTarget),
		}
		allocations, err := fn(ctx, session)
		if err != nil {
			return err
		}
		if len(allocations) == 0 {
			result = payment
			return nil
		}

		rows := make([]models.CommissionAllocationModel, len(allocations))
		for i, a := range allocations {
			rows[i] = models.CommissionAllocationModelFromDomain(a)
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}

		if err := updatePaymentStatus(tx, payment.ID, loadedVersion, payment.Status, payment.Version, payment.UpdatedAt); err != nil {
			return err
		}
		result = payment
		return nil
	})
	if err != nil {
		return nil, lockConflict(err)
	}
	return result, nil
}

// ledgerSession serves allocation targets from inside the Allocate transaction.
// A target is locked on first use and the same pointer is handed out after
// that, so in-memory allocated sums stay consistent across one call.
type ledgerSession struct {
	tx       *gorm.DB
	tenantID uuid.UUID
	payment  *commission.CommissionPayment
	targets  map[uuid.UUID]*commission.AllocationTarget
}

func (s *ledgerSession) Payment() *commission.CommissionPayment {
	return s.payment
}

func (s *ledgerSession) Target(ctx context.Context, salesOrderItemID uuid.UUID) (*commission.AllocationTarget, error) {
	if t, ok := s.targets[salesOrderItemID]; ok {
		return t, nil
	}

	var item models.SalesOrderItemModel
	if err := s.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", s.tenantID, salesOrderItemID).
		First(&item).Error; err != nil {
		return nil, notFound(err, "sales order item not found")
	}

	targets, err := s.buildTargets(ctx, []models.SalesOrderItemModel{item})
	if err != nil {
		return nil, err
	}
	return targets[0], nil
}

func (s *ledgerSession) OpenTargets(ctx context.Context, supplierID uuid.UUID) ([]*commission.AllocationTarget, error) {
	var items []models.SalesOrderItemModel
	if err := s.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND supplier_id = ? AND commission_amount > 0", s.tenantID, supplierID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}

	fresh := make([]models.SalesOrderItemModel, 0, len(items))
	for _, it := range items {
		if _, ok := s.targets[it.ID]; !ok {
			fresh = append(fresh, it)
		}
	}
	if _, err := s.buildTargets(ctx, fresh); err != nil {
		return nil, err
	}

	open := make([]*commission.AllocationTarget, 0, len(items))
	for _, it := range items {
		t := s.targets[it.ID]
		if t.Outstanding().IsPositive() {
			open = append(open, t)
		}
	}
	sort.SliceStable(open, func(i, j int) bool {
		if !open[i].OrderDate.Equal(open[j].OrderDate) {
			return open[i].OrderDate.Before(open[j].OrderDate)
		}
		return open[i].OrderNumber < open[j].OrderNumber
	})
	return open, nil
}

// buildTargets joins locked item rows with their order header and allocated
// sums, caching each result.
func (s *ledgerSession) buildTargets(ctx context.Context, items []models.SalesOrderItemModel) ([]*commission.AllocationTarget, error) {
	if len(items) == 0 {
		return nil, nil
	}

	itemIDs := make([]uuid.UUID, len(items))
	orderIDs := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]struct{}, len(items))
	for i, it := range items {
		itemIDs[i] = it.ID
		if _, ok := seen[it.SalesOrderID]; !ok {
			seen[it.SalesOrderID] = struct{}{}
			orderIDs = append(orderIDs, it.SalesOrderID)
		}
	}

	var orders []models.SalesOrderModel
	if err := s.tx.WithContext(ctx).
		Select("id", "order_number", "order_date").
		Where("id IN ?", orderIDs).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.SalesOrderModel, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
	}

	sums, err := sumAllocations(s.tx.WithContext(ctx), "sales_order_item_id", itemIDs)
	if err != nil {
		return nil, err
	}

	targets := make([]*commission.AllocationTarget, len(items))
	for i, it := range items {
		allocated, ok := sums[it.ID]
		if !ok {
			allocated = decimal.Zero
		}
		order := byID[it.SalesOrderID]
		t := &commission.AllocationTarget{
			SalesOrderItemID: it.ID,
			SalesOrderID:     it.SalesOrderID,
			SupplierID:       it.SupplierID,
			OrderNumber:      order.OrderNumber,
			OrderDate:        order.OrderDate,
			CommissionAmount: it.CommissionAmount,
			Allocated:        allocated,
		}
		s.targets[it.ID] = t
		targets[i] = t
	}
	return targets, nil
}

// Ensure GormLedgerRepository implements commission.LedgerRepository
var _ commission.LedgerRepository = (*GormLedgerRepository)(nil)
