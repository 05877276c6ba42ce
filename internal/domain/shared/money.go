package shared

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits stored for an amount
const MoneyScale int32 = 4

// MaxMoney is the exclusive upper bound of a stored amount. Amount columns
// are DECIMAL(18,4), which leaves 14 integer digits.
var MaxMoney = decimal.New(1, 14)

// FitsScale reports whether d has at most scale fractional digits once
// trailing zeros are ignored
func FitsScale(d decimal.Decimal, scale int32) bool {
	return d.Equal(d.Truncate(scale))
}

// IsMoney reports whether d can be stored as an amount without rounding
func IsMoney(d decimal.Decimal) bool {
	return FitsScale(d, MoneyScale) && d.Abs().LessThan(MaxMoney)
}

// ValidateMoney returns INVALID_INPUT naming field when d has more than four
// fractional digits or falls outside the storable range
func ValidateMoney(field string, d decimal.Decimal) error {
	if !FitsScale(d, MoneyScale) {
		return InvalidInput(fmt.Sprintf("%s cannot have more than %d decimal places", field, MoneyScale))
	}
	if !d.Abs().LessThan(MaxMoney) {
		return InvalidInput(fmt.Sprintf("%s is out of range", field))
	}
	return nil
}
