package handler_test

import (
	"context"
	"credit-approval/internal/domain/customer"
	"credit-approval/internal/domain/loan"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) Register(ctx context.Context, in customer.RegisterInput) (*customer.Customer, bool, error) {
	args := m.Called(ctx, in)
	var cust *customer.Customer
	if args.Get(0) != nil {
		cust = args.Get(0).(*customer.Customer)
	}
	return cust, args.Bool(1), args.Error(2)
}

func (m *MockCustomerService) GetCustomer(ctx context.Context, customerID int64) (*customer.Customer, error) {
	args := m.Called(ctx, customerID)
	var cust *customer.Customer
	if args.Get(0) != nil {
		cust = args.Get(0).(*customer.Customer)
	}
	return cust, args.Error(1)
}

type MockLoanService struct {
	mock.Mock
}

func (m *MockLoanService) CheckEligibility(ctx context.Context, in loan.EligibilityInput) (*loan.Eligibility, error) {
	args := m.Called(ctx, in)
	var r *loan.Eligibility
	if args.Get(0) != nil {
		r = args.Get(0).(*loan.Eligibility)
	}
	return r, args.Error(1)
}

func (m *MockLoanService) CreateLoan(ctx context.Context, in loan.EligibilityInput) (*loan.Issuance, error) {
	args := m.Called(ctx, in)
	var r *loan.Issuance
	if args.Get(0) != nil {
		r = args.Get(0).(*loan.Issuance)
	}
	return r, args.Error(1)
}

func (m *MockLoanService) GetLoan(ctx context.Context, loanID int64) (*loan.LoanView, error) {
	args := m.Called(ctx, loanID)
	var r *loan.LoanView
	if args.Get(0) != nil {
		r = args.Get(0).(*loan.LoanView)
	}
	return r, args.Error(1)
}

func (m *MockLoanService) ListCustomerLoans(ctx context.Context, customerID int64) ([]loan.LoanView, error) {
	args := m.Called(ctx, customerID)
	var r []loan.LoanView
	if args.Get(0) != nil {
		r = args.Get(0).([]loan.LoanView)
	}
	return r, args.Error(1)
}
