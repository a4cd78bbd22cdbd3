package credit

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	baseScore         = decimal.NewFromInt(30)
	onTimeWeight      = decimal.NewFromInt(40)
	loanCountPenalty  = decimal.NewFromFloat(1.5)
	currentYearBonus  = decimal.NewFromInt(2)
	volumeCap         = decimal.NewFromInt(20)
	minScore          = decimal.Zero
	maxScore          = decimal.NewFromInt(100)
	incomeRatioFactor = decimal.NewFromFloat(0.5)
)

// LoanRecord is the part of a loan the scoring rules look at.
type LoanRecord struct {
	Principal          decimal.Decimal
	Tenure             int
	InterestRate       decimal.Decimal
	MonthlyInstallment decimal.Decimal
	EMIsPaidOnTime     int
	StartDate          time.Time
	EndDate            time.Time
	Approved           bool
}

// IsActive reports whether the loan has not ended as of the given day.
func (l LoanRecord) IsActive(at time.Time) bool {
	return !dateOf(l.EndDate).Before(dateOf(at))
}

type ScoreResult struct {
	Score              decimal.Decimal
	ActivePrincipal    decimal.Decimal
	ActiveInstallments decimal.Decimal
}

// ComputeScore derives a credit score in [0, 100] from a loan history and
// summarizes the exposure of loans still active at the evaluation date.
func ComputeScore(loans []LoanRecord, at time.Time) ScoreResult {
	var totalTenure, onTime, currentYear int64
	approvedVolume := decimal.Zero
	res := ScoreResult{
		ActivePrincipal:    decimal.Zero,
		ActiveInstallments: decimal.Zero,
	}

	for _, l := range loans {
		totalTenure += int64(l.Tenure)
		onTime += int64(l.EMIsPaidOnTime)
		if !l.StartDate.IsZero() && l.StartDate.Year() == at.Year() {
			currentYear++
		}
		if l.Approved {
			approvedVolume = approvedVolume.Add(l.Principal)
		}
		if l.IsActive(at) {
			res.ActivePrincipal = res.ActivePrincipal.Add(l.Principal)
			res.ActiveInstallments = res.ActiveInstallments.Add(l.MonthlyInstallment)
		}
	}
	if totalTenure == 0 {
		totalTenure = 1
	}

	onTimeRatio := decimal.NewFromInt(onTime).Div(decimal.NewFromInt(totalTenure))
	score := baseScore.
		Add(onTimeRatio.Mul(onTimeWeight)).
		Sub(loanCountPenalty.Mul(decimal.NewFromInt(int64(len(loans))))).
		Add(currentYearBonus.Mul(decimal.NewFromInt(currentYear))).
		Add(decimal.Min(approvedVolume.Div(lakh), volumeCap))

	res.Score = clamp(score, minScore, maxScore)
	return res
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
