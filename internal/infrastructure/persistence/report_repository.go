package persistence

import (
	"context"

	"github.com/ceemowww/comtrack2/internal/domain/commission"
	"github.com/ceemowww/comtrack2/internal/domain/shared"
	"github.com/ceemowww/comtrack2/internal/infrastructure/persistence/models"
	"github.com/ceemowww/comtrack2/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReportRepository implements commission.ReportRepository using GORM.
// Every query runs in its own statement and reads committed data only.
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

const liabilityColumns = `soi.id AS sales_order_item_id,
	soi.sales_order_id AS sales_order_id,
	so.order_number AS order_number,
	so.order_date AS order_date,
	c.name AS customer_name,
	soi.supplier_id AS supplier_id,
	s.name AS supplier_name,
	p.name AS part_name,
	p.sku AS sku,
	soi.quantity AS quantity,
	soi.unit_price AS unit_price,
	soi.commission_percentage AS commission_percentage,
	soi.commission_amount AS commission_amount`

const liabilityGroupBy = `soi.id, soi.sales_order_id, so.order_number, so.order_date, c.name,
	soi.supplier_id, s.name, p.name, p.sku, soi.quantity, soi.unit_price,
	soi.commission_percentage, soi.commission_amount`

// LiabilityRows lists accrued items with their allocated sums
func (r *GormReportRepository) LiabilityRows(ctx context.Context, tenantID uuid.UUID, supplierID *uuid.UUID) ([]commission.LiabilityRow, error) {
	query := r.db.WithContext(ctx).
		Table("sales_order_items AS soi").
		Select(liabilityColumns+", COALESCE(SUM(ca.amount), 0) AS paid_amount").
		Joins("JOIN sales_orders so ON so.id = soi.sales_order_id").
		Joins("JOIN customers c ON c.id = so.customer_id").
		Joins("JOIN suppliers s ON s.id = soi.supplier_id").
		Joins("JOIN parts p ON p.id = soi.part_id").
		Joins("LEFT JOIN commission_allocations ca ON ca.sales_order_item_id = soi.id").
		Scopes(tenant.TableScope("soi", tenantID)).
		Where("soi.commission_amount > 0")
	if supplierID != nil {
		query = query.Where("soi.supplier_id = ?", *supplierID)
	}

	var rows []commission.LiabilityRow
	if err := query.Group(liabilityGroupBy).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SupplierTotals returns generated commission, payments received and the sum
// allocated against the supplier's liabilities
func (r *GormReportRepository) SupplierTotals(ctx context.Context, tenantID, supplierID uuid.UUID) (commission.SupplierTotals, error) {
	var totals commission.SupplierTotals
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.SalesOrderItemModel{}).
		Select("COALESCE(SUM(commission_amount), 0)").
		Where("tenant_id = ? AND supplier_id = ? AND commission_amount > 0", tenantID, supplierID).
		Row().Scan(&totals.Generated); err != nil {
		return commission.SupplierTotals{}, err
	}

	if err := db.Model(&models.CommissionPaymentModel{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("tenant_id = ? AND supplier_id = ?", tenantID, supplierID).
		Row().Scan(&totals.Paid); err != nil {
		return commission.SupplierTotals{}, err
	}

	if err := db.Table("commission_allocations AS ca").
		Select("COALESCE(SUM(ca.amount), 0)").
		Joins("JOIN sales_order_items soi ON soi.id = ca.sales_order_item_id").
		Where("ca.tenant_id = ? AND soi.supplier_id = ?", tenantID, supplierID).
		Row().Scan(&totals.Allocated); err != nil {
		return commission.SupplierTotals{}, err
	}
	return totals, nil
}

// AllocationDetails lists allocations of one payment or one payment item with
// order, customer and part context
func (r *GormReportRepository) AllocationDetails(ctx context.Context, tenantID uuid.UUID, q commission.AllocationQuery) ([]commission.AllocationDetail, error) {
	query := r.db.WithContext(ctx).
		Table("commission_allocations AS ca").
		Select(`ca.id AS allocation_id,
			ca.payment_id AS payment_id,
			ca.payment_item_id AS payment_item_id,
			ca.sales_order_item_id AS sales_order_item_id,
			ca.amount AS allocated_amount,
			ca.allocation_date AS allocation_date,
			ca.notes AS notes,
			so.order_number AS order_number,
			c.name AS customer_name,
			p.name AS part_name,
			p.sku AS sku,
			soi.quantity AS quantity,
			soi.unit_price AS unit_price,
			soi.commission_percentage AS commission_percentage,
			soi.commission_amount AS commission_amount`).
		Joins("JOIN sales_order_items soi ON soi.id = ca.sales_order_item_id").
		Joins("JOIN sales_orders so ON so.id = soi.sales_order_id").
		Joins("JOIN customers c ON c.id = so.customer_id").
		Joins("JOIN parts p ON p.id = soi.part_id").
		Scopes(tenant.TableScope("ca", tenantID))

	switch {
	case q.PaymentItemID != nil:
		query = query.Where("ca.payment_item_id = ?", *q.PaymentItemID)
	case q.PaymentID != nil:
		query = query.Where("ca.payment_id = ?", *q.PaymentID)
	default:
		return nil, shared.InvalidInput("payment or payment item is required")
	}

	var rows []commission.AllocationDetail
	if err := query.
		Order("so.order_number ASC").
		Order("p.sku ASC").
		Order("ca.created_at ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Ensure GormReportRepository implements commission.ReportRepository
var _ commission.ReportRepository = (*GormReportRepository)(nil)
