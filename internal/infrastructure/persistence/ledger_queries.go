package persistence

import (
	"time"

	"github.com/ceemowww/comtrack2/internal/domain/commission"
	"github.com/ceemowww/comtrack2/internal/domain/shared"
	"github.com/ceemowww/comtrack2/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// allocatedSum is one row of a grouped SUM over commission_allocations
type allocatedSum struct {
	GroupID uuid.UUID
	Total   decimal.Decimal
}

// sumAllocations groups commission_allocations by column for the given keys.
// Keys with no allocation are absent from the result.
func sumAllocations(tx *gorm.DB, column string, keys []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	sums := make(map[uuid.UUID]decimal.Decimal, len(keys))
	if len(keys) == 0 {
		return sums, nil
	}

	var rows []allocatedSum
	if err := tx.Model(&models.CommissionAllocationModel{}).
		Select(column+" AS group_id, COALESCE(SUM(amount), 0) AS total").
		Where(column+" IN ?", keys).
		Group(column).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		sums[r.GroupID] = r.Total
	}
	return sums, nil
}

// hydratePayments loads items and allocated sums for every header in one pass
func hydratePayments(tx *gorm.DB, headers []models.CommissionPaymentModel) ([]commission.CommissionPayment, error) {
	if len(headers) == 0 {
		return []commission.CommissionPayment{}, nil
	}

	paymentIDs := make([]uuid.UUID, len(headers))
	for i := range headers {
		paymentIDs[i] = headers[i].ID
	}

	var items []models.CommissionPaymentItemModel
	if err := tx.Where("payment_id IN ?", paymentIDs).
		Order("created_at ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}

	itemIDs := make([]uuid.UUID, len(items))
	byPayment := make(map[uuid.UUID][]models.CommissionPaymentItemModel, len(headers))
	for i := range items {
		itemIDs[i] = items[i].ID
		byPayment[items[i].PaymentID] = append(byPayment[items[i].PaymentID], items[i])
	}

	sums, err := sumAllocations(tx, "payment_item_id", itemIDs)
	if err != nil {
		return nil, err
	}

	payments := make([]commission.CommissionPayment, len(headers))
	for i := range headers {
		payments[i] = *headers[i].ToDomain(byPayment[headers[i].ID], sums)
	}
	return payments, nil
}

// loadPayment loads one payment of the tenant, optionally locking its header row
func loadPayment(tx *gorm.DB, tenantID, paymentID uuid.UUID, forUpdate bool) (*commission.CommissionPayment, error) {
	query := tx.Where("tenant_id = ? AND id = ?", tenantID, paymentID)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var header models.CommissionPaymentModel
	if err := query.First(&header).Error; err != nil {
		return nil, notFound(err, "payment not found")
	}

	payments, err := hydratePayments(tx, []models.CommissionPaymentModel{header})
	if err != nil {
		return nil, err
	}
	return &payments[0], nil
}

// lockPayments takes row locks on the given payment headers in id order
func lockPayments(tx *gorm.DB, paymentIDs []uuid.UUID) error {
	if len(paymentIDs) == 0 {
		return nil
	}
	var locked []uuid.UUID
	return tx.Model(&models.CommissionPaymentModel{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", paymentIDs).
		Order("id").
		Pluck("id", &locked).Error
}

// recomputePaymentStatuses re-derives the stored status of each payment from
// a full scan of its allocations. Payments whose status moves get a version bump.
func recomputePaymentStatuses(tx *gorm.DB, paymentIDs []uuid.UUID, tolerance decimal.Decimal) error {
	if len(paymentIDs) == 0 {
		return nil
	}

	var headers []models.CommissionPaymentModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", paymentIDs).
		Order("id").
		Find(&headers).Error; err != nil {
		return err
	}

	sums, err := sumAllocations(tx, "payment_id", paymentIDs)
	if err != nil {
		return err
	}

	for _, h := range headers {
		allocated, ok := sums[h.ID]
		if !ok {
			allocated = decimal.Zero
		}
		next := commission.DeriveStatus(allocated, h.TotalAmount, tolerance)
		if next == h.Status {
			continue
		}
		if err := updatePaymentStatus(tx, h.ID, h.Version, next, h.Version+1, time.Now()); err != nil {
			return err
		}
	}
	return nil
}

// updatePaymentStatus writes status and version, guarded by the version read under lock
func updatePaymentStatus(tx *gorm.DB, id uuid.UUID, expectedVersion int, status commission.PaymentStatus, version int, at time.Time) error {
	result := tx.Model(&models.CommissionPaymentModel{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]any{
			"status":     status,
			"version":    version,
			"updated_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}
