package credit

import (
	"time"

	"github.com/shopspring/decimal"
)

// factorPlaces is the number of decimal places kept at every step of (1+r)^N.
const factorPlaces = 28

var (
	one          = decimal.NewFromInt(1)
	monthsInRate = decimal.NewFromInt(1200)
	lakh         = decimal.NewFromInt(100_000)
)

// MonthlyInstallment returns the equated monthly installment for a principal
// amortized over tenure months at annualRate percent.
//
//	r   = annualRate / 1200
//	EMI = P * r * (1+r)^N / ((1+r)^N - 1)
func MonthlyInstallment(principal, annualRate decimal.Decimal, tenure int) decimal.Decimal {
	if tenure <= 0 {
		return decimal.Zero
	}
	months := decimal.NewFromInt(int64(tenure))
	monthlyRate := annualRate.Div(monthsInRate)
	if monthlyRate.IsZero() {
		return principal.Div(months)
	}

	factor := powRounded(one.Add(monthlyRate), tenure, factorPlaces)
	return principal.Mul(monthlyRate).Mul(factor).Div(factor.Sub(one))
}

// powRounded computes base^n by repeated squaring, rounding every product to
// places so the fractional digits stay fixed however large n is.
func powRounded(base decimal.Decimal, n int, places int32) decimal.Decimal {
	result := one
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base).Round(places)
		}
		n >>= 1
		if n > 0 {
			base = base.Mul(base).Round(places)
		}
	}
	return result
}

// RoundToNearestUnit rounds value to a multiple of unit; a remainder of at
// least half a unit rounds up.
func RoundToNearestUnit(value, unit decimal.Decimal) int64 {
	remainder := value.Mod(unit)
	if remainder.GreaterThanOrEqual(unit.Div(decimal.NewFromInt(2))) {
		value = value.Add(unit.Sub(remainder))
	} else {
		value = value.Sub(remainder)
	}
	return value.IntPart()
}

// ApprovedLimit is the credit ceiling granted at registration: 36 months of
// income rounded to the nearest lakh.
func ApprovedLimit(monthlyIncome int64) int64 {
	return RoundToNearestUnit(decimal.NewFromInt(monthlyIncome).Mul(decimal.NewFromInt(36)), lakh)
}

// AddMonths moves t forward by n calendar months, pinning the day to the end
// of the target month when it would overflow.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	target := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	last := target.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	hh, mm, ss := t.Clock()
	return time.Date(target.Year(), target.Month(), d, hh, mm, ss, t.Nanosecond(), t.Location())
}
