package dto

import (
	"credit-approval/internal/domain/customer"
	"credit-approval/internal/domain/loan"

	"github.com/shopspring/decimal"
)

// LoanRequest is shared by check-eligibility and create-loan. Amounts and
// rates accept JSON numbers or numeric strings.
type LoanRequest struct {
	CustomerID   *int64           `json:"customer_id" validate:"required,min=1"`
	LoanAmount   *decimal.Decimal `json:"loan_amount" validate:"required"`
	InterestRate *decimal.Decimal `json:"interest_rate" validate:"required"`
	Tenure       *int             `json:"tenure" validate:"required,min=1,max=1200"`
}

func (r *LoanRequest) ToInput() loan.EligibilityInput {
	return loan.EligibilityInput{
		CustomerID:   *r.CustomerID,
		LoanAmount:   *r.LoanAmount,
		InterestRate: *r.InterestRate,
		Tenure:       *r.Tenure,
	}
}

type EligibilityResponse struct {
	CustomerID            int64   `json:"customer_id"`
	Approval              bool    `json:"approval"`
	InterestRate          float64 `json:"interest_rate"`
	CorrectedInterestRate float64 `json:"corrected_interest_rate"`
	Tenure                int     `json:"tenure"`
	MonthlyInstallment    float64 `json:"monthly_installment"`
}

func NewEligibilityResponse(e *loan.Eligibility) EligibilityResponse {
	return EligibilityResponse{
		CustomerID:            e.CustomerID,
		Approval:              e.Decision.Approved,
		InterestRate:          e.Decision.RequestedRate.InexactFloat64(),
		CorrectedInterestRate: e.Decision.CorrectedRate.InexactFloat64(),
		Tenure:                e.Tenure,
		MonthlyInstallment:    e.Decision.MonthlyInstallment.InexactFloat64(),
	}
}

type CreateLoanResponse struct {
	LoanID             *int64  `json:"loan_id"`
	CustomerID         int64   `json:"customer_id"`
	LoanApproved       bool    `json:"loan_approved"`
	Message            string  `json:"message"`
	MonthlyInstallment float64 `json:"monthly_installment"`
}

func NewCreateLoanResponse(is *loan.Issuance) CreateLoanResponse {
	resp := CreateLoanResponse{
		CustomerID:         is.CustomerID,
		LoanApproved:       is.Decision.Approved,
		Message:            is.Decision.Reason.String(),
		MonthlyInstallment: is.Decision.MonthlyInstallment.InexactFloat64(),
	}
	if is.Loan != nil {
		id := is.Loan.ID
		resp.LoanID = &id
	}
	return resp
}

type LoanCustomer struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	Age         int    `json:"age"`
}

type LoanDetailResponse struct {
	LoanID             int64        `json:"loan_id"`
	Customer           LoanCustomer `json:"customer"`
	LoanAmount         float64      `json:"loan_amount"`
	InterestRate       float64      `json:"interest_rate"`
	MonthlyInstallment float64      `json:"monthly_installment"`
	Tenure             int          `json:"tenure"`
}

func newLoanCustomer(c customer.Customer) LoanCustomer {
	return LoanCustomer{
		ID:          c.ID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		PhoneNumber: c.PhoneNumber,
		Age:         c.Age,
	}
}

func NewLoanDetailResponse(v loan.LoanView) LoanDetailResponse {
	return LoanDetailResponse{
		LoanID:             v.Loan.ID,
		Customer:           newLoanCustomer(v.Customer),
		LoanAmount:         v.Loan.Principal.InexactFloat64(),
		InterestRate:       v.Loan.InterestRate.InexactFloat64(),
		MonthlyInstallment: v.Loan.MonthlyInstallment.InexactFloat64(),
		Tenure:             v.Loan.Tenure,
	}
}

func NewLoanDetailResponses(views []loan.LoanView) []LoanDetailResponse {
	resp := make([]LoanDetailResponse, len(views))
	for i, v := range views {
		resp[i] = NewLoanDetailResponse(v)
	}
	return resp
}
