package booking

import "github.com/shopspring/decimal"

// DefaultCommissionRate applies when the property's project has no rate.
const DefaultCommissionRate = 2.0

// CalculateCommission returns round(agreedPrice × rate / 100), rounding
// half away from zero.
func CalculateCommission(agreedPrice int64, rate float64) int64 {
	return decimal.NewFromInt(agreedPrice).
		Mul(decimal.NewFromFloat(rate)).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

// ResolveCommissionRate returns the project rate, or the default when unset.
func ResolveCommissionRate(projectRate *float64) float64 {
	if projectRate == nil || *projectRate <= 0 {
		return DefaultCommissionRate
	}
	return *projectRate
}
