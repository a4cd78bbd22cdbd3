package loan

import (
	"context"
	"credit-approval/internal/domain/customer"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

var _ Repository = (*MockRepository)(nil)

func (m *MockRepository) ListByCustomer(ctx context.Context, customerID int64) ([]Loan, error) {
	args := m.Called(ctx, customerID)
	var r0 []Loan
	if args.Get(0) != nil {
		r0 = args.Get(0).([]Loan)
	}
	return r0, args.Error(1)
}

func (m *MockRepository) ListApprovedByCustomer(ctx context.Context, customerID int64) ([]Loan, error) {
	args := m.Called(ctx, customerID)
	var r0 []Loan
	if args.Get(0) != nil {
		r0 = args.Get(0).([]Loan)
	}
	return r0, args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, loanID int64) (*Loan, error) {
	args := m.Called(ctx, loanID)
	var r0 *Loan
	if args.Get(0) != nil {
		r0 = args.Get(0).(*Loan)
	}
	return r0, args.Error(1)
}

func (m *MockRepository) IssueLoan(ctx context.Context, loan *Loan) (*Loan, decimal.Decimal, error) {
	args := m.Called(ctx, loan)
	var r0 *Loan
	if args.Get(0) != nil {
		r0 = args.Get(0).(*Loan)
	}
	return r0, args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *MockRepository) UpsertByID(ctx context.Context, loan *Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockRepository) SumActivePrincipal(ctx context.Context, customerID int64, at time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, customerID, at)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockCustomerService struct {
	mock.Mock
}

var _ customer.CustomerService = (*MockCustomerService)(nil)

func (_m *MockCustomerService) Register(ctx context.Context, in customer.RegisterInput) (*customer.Customer, bool, error) {
	ret := _m.Called(ctx, in)

	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}
	return r0, ret.Bool(1), ret.Error(2)
}

func (_m *MockCustomerService) GetCustomer(ctx context.Context, customerID int64) (*customer.Customer, error) {
	ret := _m.Called(ctx, customerID)

	var r0 *customer.Customer
	if rf, ok := ret.Get(0).(func(context.Context, int64) *customer.Customer); ok {
		r0 = rf(ctx, customerID)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}

	return r0, ret.Error(1)
}
