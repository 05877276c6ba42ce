// Package commission models supplier commissions: accrual on sales-order lines,
// supplier payments split into allocable items, and the allocations that bind
// the two together.
package commission

import (
	"github.com/ceemowww/comtrack2/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)

	errQuantityNotPositive  = shared.InvalidInput("quantity must be positive")
	errNegativeUnitPrice    = shared.InvalidInput("unit price cannot be negative")
	errPercentageOutOfRange = shared.InvalidInput("commission percentage out of range")
	errPercentageScale      = shared.InvalidInput("commission percentage cannot have more than 4 decimal places")
)

// CommissionScale is the number of fractional digits a commission amount can
// carry: four from the unit price, four from the percentage and two from the
// division by 100. Commission columns are sized for it so accruals are stored
// exactly.
const CommissionScale int32 = 2*shared.MoneyScale + 2

// Accrual is the commission liability stamped on one sold line
type Accrual struct {
	LineTotal        decimal.Decimal
	CommissionAmount decimal.Decimal
}

// CalculateCommission computes line_total = quantity * unit_price and
// commission_amount = line_total * percentage / 100 in exact decimal arithmetic.
// Inputs that cannot be stored without rounding are rejected.
func CalculateCommission(quantity int, unitPrice, percentage decimal.Decimal) (Accrual, error) {
	if quantity <= 0 {
		return Accrual{}, errQuantityNotPositive
	}
	if unitPrice.IsNegative() {
		return Accrual{}, errNegativeUnitPrice
	}
	if err := shared.ValidateMoney("unit price", unitPrice); err != nil {
		return Accrual{}, err
	}
	if percentage.IsNegative() || percentage.GreaterThan(hundred) {
		return Accrual{}, errPercentageOutOfRange
	}
	if !shared.FitsScale(percentage, shared.MoneyScale) {
		return Accrual{}, errPercentageScale
	}

	lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	if err := shared.ValidateMoney("line total", lineTotal); err != nil {
		return Accrual{}, err
	}
	return Accrual{
		LineTotal:        lineTotal,
		CommissionAmount: lineTotal.Mul(percentage).Div(hundred),
	}, nil
}
