package credit

import (
	"time"

	"github.com/shopspring/decimal"
)

var slabs = []struct {
	above decimal.Decimal
	rate  decimal.Decimal
}{
	{above: decimal.NewFromInt(50), rate: decimal.NewFromInt(10)},
	{above: decimal.NewFromInt(30), rate: decimal.NewFromInt(12)},
	{above: decimal.NewFromInt(10), rate: decimal.NewFromInt(16)},
}

// InterestSlab returns the minimum annual rate allowed for a score, or false
// when the score is too low for any slab.
func InterestSlab(score decimal.Decimal) (decimal.Decimal, bool) {
	for _, s := range slabs {
		if score.GreaterThan(s.above) {
			return s.rate, true
		}
	}
	return decimal.Zero, false
}

type Applicant struct {
	MonthlyIncome int64
	ApprovedLimit decimal.Decimal
}

type Request struct {
	Principal decimal.Decimal
	Rate      decimal.Decimal
	Tenure    int
}

type Decision struct {
	Approved           bool
	Reason             Reason
	RequestedRate      decimal.Decimal
	CorrectedRate      decimal.Decimal
	MonthlyInstallment decimal.Decimal
	Score              ScoreResult
}

// Evaluate applies the lending rules in order; the first rule that denies
// wins. The installment is always computed at the corrected rate.
func Evaluate(applicant Applicant, req Request, loans []LoanRecord, at time.Time) Decision {
	score := ComputeScore(loans, at)
	d := Decision{
		Reason:        ReasonApproved,
		RequestedRate: req.Rate,
		CorrectedRate: req.Rate,
		Score:         score,
	}

	incomeCap := decimal.NewFromInt(applicant.MonthlyIncome).Mul(incomeRatioFactor)
	switch {
	case score.ActivePrincipal.GreaterThan(applicant.ApprovedLimit):
		d.Reason = ReasonExposureExceeded
	case score.ActiveInstallments.GreaterThan(incomeCap):
		d.Reason = ReasonIncomeRatioExceeded
	default:
		slab, ok := InterestSlab(score.Score)
		if !ok {
			d.Reason = ReasonScoreTooLow
			break
		}
		if req.Rate.LessThan(slab) {
			d.CorrectedRate = slab
		}
		d.Approved = true
	}

	d.MonthlyInstallment = MonthlyInstallment(req.Principal, d.CorrectedRate, req.Tenure)
	return d
}
