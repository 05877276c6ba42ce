package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/ceemowww/comtrack2/internal/domain/commission"
	"github.com/ceemowww/comtrack2/internal/domain/shared"
	"github.com/ceemowww/comtrack2/internal/infrastructure/persistence/models"
	"github.com/ceemowww/comtrack2/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSalesOrderRepository implements commission.SalesOrderRepository using GORM
type GormSalesOrderRepository struct {
	db *gorm.DB
}

// NewGormSalesOrderRepository creates a new GormSalesOrderRepository
func NewGormSalesOrderRepository(db *gorm.DB) *GormSalesOrderRepository {
	return &GormSalesOrderRepository{db: db}
}

// FindByID finds a sales order with its items
func (r *GormSalesOrderRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*commission.SalesOrder, error) {
	var header models.SalesOrderModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		First(&header, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "sales order not found")
	}

	var items []models.SalesOrderItemModel
	if err := r.db.WithContext(ctx).
		Where("sales_order_id = ?", header.ID).
		Order("created_at ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return header.ToDomain(items), nil
}

// List lists sales orders newest first. Search matches the order number and
// SupplierID keeps orders with at least one item of that supplier.
func (r *GormSalesOrderRepository) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]commission.SalesOrder, int64, error) {
	filter = filter.Normalize()
	query := r.db.WithContext(ctx).
		Model(&models.SalesOrderModel{}).
		Scopes(tenant.Scope(tenantID))

	if s := strings.TrimSpace(filter.Search); s != "" {
		query = query.Where("LOWER(order_number) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if filter.SupplierID != nil {
		query = query.Where("id IN (?)", r.db.
			Model(&models.SalesOrderItemModel{}).
			Select("sales_order_id").
			Where("tenant_id = ? AND supplier_id = ?", tenantID, *filter.SupplierID))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, SalesOrderSortFields, "order_date")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var headers []models.SalesOrderModel
	if err := query.
		Order(orderBy + " " + orderDir).
		Order("order_number ASC").
		Limit(filter.PageSize).
		Offset(filter.Offset()).
		Find(&headers).Error; err != nil {
		return nil, 0, err
	}

	if len(headers) == 0 {
		return []commission.SalesOrder{}, total, nil
	}

	orderIDs := make([]uuid.UUID, len(headers))
	for i := range headers {
		orderIDs[i] = headers[i].ID
	}
	var items []models.SalesOrderItemModel
	if err := r.db.WithContext(ctx).
		Where("sales_order_id IN ?", orderIDs).
		Order("created_at ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	byOrder := make(map[uuid.UUID][]models.SalesOrderItemModel, len(headers))
	for _, it := range items {
		byOrder[it.SalesOrderID] = append(byOrder[it.SalesOrderID], it)
	}

	orders := make([]commission.SalesOrder, len(headers))
	for i := range headers {
		orders[i] = *headers[i].ToDomain(byOrder[headers[i].ID])
	}
	return orders, total, nil
}

// Create inserts the order header and all items in one transaction
func (r *GormSalesOrderRepository) Create(ctx context.Context, order *commission.SalesOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		header := &models.SalesOrderModel{}
		header.FromDomain(order)
		if err := tx.Create(header).Error; err != nil {
			return translateOrderError(err)
		}
		items := models.SalesOrderItemModelsFromDomain(order)
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		return nil
	})
}

// Replace rewrites the header and swaps the items. The stored version must be
// the one the order was loaded at.
func (r *GormSalesOrderRepository) Replace(ctx context.Context, order *commission.SalesOrder, tolerance decimal.Decimal) error {
	return lockConflict(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.SalesOrderModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tenant_id = ? AND id = ?", order.TenantID, order.ID).
			First(&current).Error; err != nil {
			return notFound(err, "sales order not found")
		}
		if current.Version != order.Version-1 {
			return shared.ErrConcurrencyConflict
		}

		affected, err := r.clearItems(tx, order.ID)
		if err != nil {
			return err
		}

		header := &models.SalesOrderModel{}
		header.FromDomain(order)
		if err := tx.Model(&models.SalesOrderModel{}).
			Where("id = ? AND version = ?", order.ID, current.Version).
			Updates(map[string]any{
				"customer_id":      header.CustomerID,
				"order_number":     header.OrderNumber,
				"order_date":       header.OrderDate,
				"status":           header.Status,
				"notes":            header.Notes,
				"total_amount":     header.TotalAmount,
				"total_commission": header.TotalCommission,
				"version":          header.Version,
				"updated_at":       header.UpdatedAt,
			}).Error; err != nil {
			return translateOrderError(err)
		}

		items := models.SalesOrderItemModelsFromDomain(order)
		if err := tx.Create(&items).Error; err != nil {
			return err
		}

		return recomputePaymentStatuses(tx, affected, tolerance)
	}))
}

// Delete removes the order, its items and every allocation against them
func (r *GormSalesOrderRepository) Delete(ctx context.Context, tenantID, id uuid.UUID, tolerance decimal.Decimal) error {
	return lockConflict(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.SalesOrderModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tenant_id = ? AND id = ?", tenantID, id).
			First(&current).Error; err != nil {
			return notFound(err, "sales order not found")
		}

		affected, err := r.clearItems(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(&models.SalesOrderModel{}, "id = ?", id).Error; err != nil {
			return err
		}
		return recomputePaymentStatuses(tx, affected, tolerance)
	}))
}

// clearItems deletes the order's items and their allocations, returning the
// payments that lost an allocation. Those payments are locked before any item
// row is touched so the order matches the allocation path, which takes the
// payment first and the sales order item second.
func (r *GormSalesOrderRepository) clearItems(tx *gorm.DB, orderID uuid.UUID) ([]uuid.UUID, error) {
	var itemIDs []uuid.UUID
	if err := tx.Model(&models.SalesOrderItemModel{}).
		Where("sales_order_id = ?", orderID).
		Pluck("id", &itemIDs).Error; err != nil {
		return nil, err
	}
	if len(itemIDs) == 0 {
		return nil, nil
	}

	var affected []uuid.UUID
	if err := tx.Model(&models.CommissionAllocationModel{}).
		Distinct("payment_id").
		Where("sales_order_item_id IN ?", itemIDs).
		Pluck("payment_id", &affected).Error; err != nil {
		return nil, err
	}
	if err := lockPayments(tx, affected); err != nil {
		return nil, err
	}

	if err := tx.Where("sales_order_item_id IN ?", itemIDs).
		Delete(&models.CommissionAllocationModel{}).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("sales_order_id = ?", orderID).
		Delete(&models.SalesOrderItemModel{}).Error; err != nil {
		return nil, err
	}
	return affected, nil
}

func translateOrderError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.NewDomainError(shared.CodeAlreadyExists, "PO number already exists")
	}
	return err
}

// Ensure GormSalesOrderRepository implements commission.SalesOrderRepository
var _ commission.SalesOrderRepository = (*GormSalesOrderRepository)(nil)
