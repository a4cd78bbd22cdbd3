package loan

import (
	"credit-approval/internal/domain/credit"
	"credit-approval/internal/pkg/apperrors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	AmountMaxDigits   = 14
	AmountPlaces      = 2
	RateMaxDigits     = 5
	RatePlaces        = 2
	installmentPlaces = 2

	// MaxTenure caps tenure at 100 years of monthly installments.
	MaxTenure = 1200
)

type Loan struct {
	ID                 int64
	CustomerID         int64
	Principal          decimal.Decimal
	Tenure             int
	InterestRate       decimal.Decimal
	MonthlyInstallment decimal.Decimal
	EMIsPaidOnTime     int
	StartDate          time.Time
	EndDate            time.Time
	Approved           bool
	CreatedAt          time.Time
}

// EligibilityInput is a loan request as it arrives from a client.
type EligibilityInput struct {
	CustomerID   int64
	LoanAmount   decimal.Decimal
	InterestRate decimal.Decimal
	Tenure       int
}

func (in EligibilityInput) Validate() error {
	if in.CustomerID < 1 {
		return apperrors.NewValidationError("customer_id", "Ensure this value is greater than or equal to 1.")
	}
	if in.Tenure < 1 {
		return apperrors.NewValidationError("tenure", "Ensure this value is greater than or equal to 1.")
	}
	if in.Tenure > MaxTenure {
		return apperrors.NewValidationError("tenure", fmt.Sprintf("Ensure this value is less than or equal to %d.", MaxTenure))
	}
	if !in.LoanAmount.IsPositive() {
		return apperrors.NewValidationError("loan_amount", "Ensure this value is greater than 0.")
	}
	if err := checkDigits("loan_amount", in.LoanAmount, AmountMaxDigits, AmountPlaces); err != nil {
		return err
	}
	if in.InterestRate.IsNegative() {
		return apperrors.NewValidationError("interest_rate", "Ensure this value is greater than or equal to 0.")
	}
	return checkDigits("interest_rate", in.InterestRate, RateMaxDigits, RatePlaces)
}

func checkDigits(field string, v decimal.Decimal, maxDigits, places int) error {
	if !v.Equal(v.Round(int32(places))) {
		return apperrors.NewValidationError(field, fmt.Sprintf("Ensure that there are no more than %d decimal places.", places))
	}
	intLimit := decimal.New(1, int32(maxDigits-places))
	if v.Abs().GreaterThanOrEqual(intLimit) {
		return apperrors.NewValidationError(field, fmt.Sprintf("Ensure that there are no more than %d digits in total.", maxDigits))
	}
	return nil
}

func (in EligibilityInput) request() credit.Request {
	return credit.Request{Principal: in.LoanAmount, Rate: in.InterestRate, Tenure: in.Tenure}
}

// NewApprovedLoan builds the loan row for an approved decision starting on
// the given day. The installment is stored at cent precision.
func NewApprovedLoan(in EligibilityInput, d credit.Decision, start time.Time) (*Loan, error) {
	if !d.Approved {
		return nil, fmt.Errorf("%w: cannot issue a loan for a denied decision (%s)", apperrors.ErrInvalidArgument, d.Reason.Code())
	}
	return &Loan{
		CustomerID:         in.CustomerID,
		Principal:          in.LoanAmount,
		Tenure:             in.Tenure,
		InterestRate:       d.CorrectedRate,
		MonthlyInstallment: d.MonthlyInstallment.Round(installmentPlaces),
		StartDate:          start,
		EndDate:            credit.AddMonths(start, in.Tenure),
		Approved:           true,
	}, nil
}

func (l *Loan) ToRecord() credit.LoanRecord {
	return credit.LoanRecord{
		Principal:          l.Principal,
		Tenure:             l.Tenure,
		InterestRate:       l.InterestRate,
		MonthlyInstallment: l.MonthlyInstallment,
		EMIsPaidOnTime:     l.EMIsPaidOnTime,
		StartDate:          l.StartDate,
		EndDate:            l.EndDate,
		Approved:           l.Approved,
	}
}

func Records(loans []Loan) []credit.LoanRecord {
	records := make([]credit.LoanRecord, 0, len(loans))
	for i := range loans {
		records = append(records, loans[i].ToRecord())
	}
	return records
}
