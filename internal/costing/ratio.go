package costing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// safeRatio returns num/den as float64, or 0 when den is zero.
func safeRatio(num, den decimal.Decimal) float64 {
	if den.IsZero() {
		return 0
	}
	return num.Div(den).InexactFloat64()
}

// Percent returns num/den*100, or 0 when den is zero.
func Percent(num, den decimal.Decimal) float64 {
	return safeRatio(num.Mul(hundred), den)
}

// PercentInt is Percent for unit counts.
func PercentInt(num, den int) float64 {
	return Percent(decimal.NewFromInt(int64(num)), decimal.NewFromInt(int64(den)))
}

// FormatPercent renders a percentage with two decimals, e.g. "47.83".
func FormatPercent(value float64) string {
	return fmt.Sprintf("%.2f", value)
}
