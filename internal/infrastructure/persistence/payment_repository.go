package persistence

import (
	"context"

	"github.com/ceemowww/comtrack2/internal/domain/commission"
	"github.com/ceemowww/comtrack2/internal/domain/shared"
	"github.com/ceemowww/comtrack2/internal/infrastructure/persistence/models"
	"github.com/ceemowww/comtrack2/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPaymentRepository implements commission.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment with its items and their allocated sums
func (r *GormPaymentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*commission.CommissionPayment, error) {
	return loadPayment(r.db.WithContext(ctx), tenantID, id, false)
}

// FindByItemID finds the payment that owns a payment item
func (r *GormPaymentRepository) FindByItemID(ctx context.Context, tenantID, itemID uuid.UUID) (*commission.CommissionPayment, error) {
	var item models.CommissionPaymentItemModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		First(&item, "id = ?", itemID).Error; err != nil {
		return nil, notFound(err, "payment item not found")
	}
	return loadPayment(r.db.WithContext(ctx), tenantID, item.PaymentID, false)
}

// List lists payments newest first
func (r *GormPaymentRepository) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]commission.CommissionPayment, int64, error) {
	filter = filter.Normalize()
	query := r.db.WithContext(ctx).
		Model(&models.CommissionPaymentModel{}).
		Scopes(tenant.Scope(tenantID))
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(reference) LIKE LOWER(?)", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, PaymentSortFields, "payment_date")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var headers []models.CommissionPaymentModel
	if err := query.
		Order(orderBy + " " + orderDir).
		Order("created_at DESC").
		Limit(filter.PageSize).
		Offset(filter.Offset()).
		Find(&headers).Error; err != nil {
		return nil, 0, err
	}

	payments, err := hydratePayments(r.db.WithContext(ctx), headers)
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// ListBySupplier lists every payment of a supplier, newest first
func (r *GormPaymentRepository) ListBySupplier(ctx context.Context, tenantID, supplierID uuid.UUID) ([]commission.CommissionPayment, error) {
	var headers []models.CommissionPaymentModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("supplier_id = ?", supplierID).
		Order("payment_date DESC").
		Order("created_at DESC").
		Find(&headers).Error; err != nil {
		return nil, err
	}
	return hydratePayments(r.db.WithContext(ctx), headers)
}

// Create inserts the payment header and its items in one transaction
func (r *GormPaymentRepository) Create(ctx context.Context, payment *commission.CommissionPayment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		header := &models.CommissionPaymentModel{}
		header.FromDomain(payment)
		if err := tx.Create(header).Error; err != nil {
			return err
		}
		items := models.PaymentItemModelsFromDomain(payment)
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

// ReplaceItems swaps the stored items for payment.Items and rewrites the
// header total. Items that already carry allocations are never replaced.
func (r *GormPaymentRepository) ReplaceItems(ctx context.Context, payment *commission.CommissionPayment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.CommissionPaymentModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tenant_id = ? AND id = ?", payment.TenantID, payment.ID).
			First(&current).Error; err != nil {
			return notFound(err, "payment not found")
		}
		if current.Version != payment.Version-1 {
			return shared.ErrConcurrencyConflict
		}

		var allocations int64
		if err := tx.Model(&models.CommissionAllocationModel{}).
			Where("payment_id = ?", payment.ID).
			Count(&allocations).Error; err != nil {
			return err
		}
		if allocations > 0 {
			return shared.NewDomainError(shared.CodeInvalidState, "payment items with allocations cannot be replaced")
		}

		if err := tx.Where("payment_id = ?", payment.ID).
			Delete(&models.CommissionPaymentItemModel{}).Error; err != nil {
			return err
		}
		items := models.PaymentItemModelsFromDomain(payment)
		if err := tx.Create(&items).Error; err != nil {
			return err
		}

		return tx.Model(&models.CommissionPaymentModel{}).
			Where("id = ? AND version = ?", payment.ID, current.Version).
			Updates(map[string]any{
				"total_amount": payment.TotalAmount,
				"version":      payment.Version,
				"updated_at":   payment.UpdatedAt,
			}).Error
	})
}

// AddItem inserts the item of payment with the given id
func (r *GormPaymentRepository) AddItem(ctx context.Context, payment *commission.CommissionPayment, itemID uuid.UUID) error {
	item := payment.Item(itemID)
	if item == nil {
		return shared.NotFound("payment item not found")
	}
	return r.changeItem(ctx, payment, uuid.Nil, func(tx *gorm.DB) error {
		row := models.PaymentItemModelFromDomain(payment, item)
		return tx.Create(&row).Error
	})
}

// UpdateItem rewrites the stored item from payment.Items
func (r *GormPaymentRepository) UpdateItem(ctx context.Context, payment *commission.CommissionPayment, itemID uuid.UUID) error {
	item := payment.Item(itemID)
	if item == nil {
		return shared.NotFound("payment item not found")
	}
	return r.changeItem(ctx, payment, itemID, func(tx *gorm.DB) error {
		res := tx.Model(&models.CommissionPaymentItemModel{}).
			Where("payment_id = ? AND id = ?", payment.ID, itemID).
			Updates(map[string]any{
				"amount":      item.Amount,
				"description": item.Description,
				"notes":       item.Notes,
				"updated_at":  item.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return shared.NotFound("payment item not found")
		}
		return nil
	})
}

// DeleteItem removes one stored item of payment
func (r *GormPaymentRepository) DeleteItem(ctx context.Context, payment *commission.CommissionPayment, itemID uuid.UUID) error {
	return r.changeItem(ctx, payment, itemID, func(tx *gorm.DB) error {
		res := tx.Where("payment_id = ? AND id = ?", payment.ID, itemID).
			Delete(&models.CommissionPaymentItemModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return shared.NotFound("payment item not found")
		}
		return nil
	})
}

// changeItem locks the header, checks the version and, for an existing item,
// that no allocation points at it. It then runs fn and writes the header
// total, status and version in the same transaction.
func (r *GormPaymentRepository) changeItem(ctx context.Context, payment *commission.CommissionPayment, itemID uuid.UUID, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.CommissionPaymentModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tenant_id = ? AND id = ?", payment.TenantID, payment.ID).
			First(&current).Error; err != nil {
			return notFound(err, "payment not found")
		}
		if current.Version != payment.Version-1 {
			return shared.ErrConcurrencyConflict
		}

		if itemID != uuid.Nil {
			var allocations int64
			if err := tx.Model(&models.CommissionAllocationModel{}).
				Where("payment_item_id = ?", itemID).
				Count(&allocations).Error; err != nil {
				return err
			}
			if allocations > 0 {
				return shared.NewDomainError(shared.CodeInvalidState, "payment items with allocations cannot be changed")
			}
		}

		if err := fn(tx); err != nil {
			return err
		}

		return tx.Model(&models.CommissionPaymentModel{}).
			Where("id = ? AND version = ?", payment.ID, current.Version).
			Updates(map[string]any{
				"total_amount": payment.TotalAmount,
				"status":       payment.Status,
				"version":      payment.Version,
				"updated_at":   payment.UpdatedAt,
			}).Error
	})
}

// Delete removes the payment with its items and allocations
func (r *GormPaymentRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.CommissionPaymentModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tenant_id = ? AND id = ?", tenantID, id).
			First(&current).Error; err != nil {
			return notFound(err, "payment not found")
		}

		if err := tx.Where("payment_id = ?", id).
			Delete(&models.CommissionAllocationModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("payment_id = ?", id).
			Delete(&models.CommissionPaymentItemModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.CommissionPaymentModel{}, "id = ?", id).Error
	})
}

// Ensure GormPaymentRepository implements commission.PaymentRepository
var _ commission.PaymentRepository = (*GormPaymentRepository)(nil)
