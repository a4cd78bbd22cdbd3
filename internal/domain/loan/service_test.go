package loan

import (
	"context"
	"credit-approval/internal/domain/credit"
	"credit-approval/internal/domain/customer"
	"credit-approval/internal/event"
	"credit-approval/internal/pkg/apperrors"
	"credit-approval/internal/pkg/clock"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

var today = time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

type loanPublisher struct {
	event.NoopPublisher
	approved []event.LoanApprovedEvent
	err      error
}

func (p *loanPublisher) PublishLoanApproved(_ context.Context, e event.LoanApprovedEvent) error {
	p.approved = append(p.approved, e)
	return p.err
}

type fixture struct {
	repo      *MockRepository
	customers *MockCustomerService
	pub       *loanPublisher
	svc       LoanService
}

func newFixture() *fixture {
	f := &fixture{repo: new(MockRepository), customers: new(MockCustomerService), pub: &loanPublisher{}}
	f.svc = NewLoanService(f.repo, f.customers, f.pub, clock.Fixed(today.Add(14*time.Hour)), logger)
	return f
}

func testCustomer() *customer.Customer {
	return &customer.Customer{
		ID:            1,
		FirstName:     "Asha",
		LastName:      "Rao",
		PhoneNumber:   "9000000001",
		Age:           31,
		MonthlyIncome: 50000,
		ApprovedLimit: decimal.NewFromInt(1800000),
	}
}

func paidLoan(installment int64) Loan {
	return Loan{
		ID:                 5,
		CustomerID:         1,
		Principal:          decimal.NewFromInt(500000),
		Tenure:             12,
		InterestRate:       decimal.NewFromInt(11),
		MonthlyInstallment: decimal.NewFromInt(installment),
		EMIsPaidOnTime:     12,
		StartDate:          time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC),
		EndDate:            time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC),
		Approved:           true,
	}
}

func request(rate int64) EligibilityInput {
	return EligibilityInput{
		CustomerID:   1,
		LoanAmount:   decimal.NewFromInt(100000),
		InterestRate: decimal.NewFromInt(rate),
		Tenure:       12,
	}
}

func TestCheckEligibility(t *testing.T) {
	ctx := context.Background()

	t.Run("No History Raises Rate To Lowest Slab", func(t *testing.T) {
		f := newFixture()
		f.customers.On("GetCustomer", ctx, int64(1)).Return(testCustomer(), nil).Once()
		f.repo.On("ListByCustomer", ctx, int64(1)).Return([]Loan{}, nil).Once()

		got, err := f.svc.CheckEligibility(ctx, request(10))

		require.NoError(t, err)
		assert.True(t, got.Decision.Approved)
		assert.Equal(t, 12, got.Tenure)
		assert.True(t, decimal.NewFromInt(30).Equal(got.Decision.Score.Score))
		assert.True(t, decimal.NewFromInt(16).Equal(got.Decision.CorrectedRate))
		assert.True(t, decimal.NewFromInt(10).Equal(got.Decision.RequestedRate))
		expected := credit.MonthlyInstallment(decimal.NewFromInt(100000), decimal.NewFromInt(16), 12)
		assert.True(t, expected.Equal(got.Decision.MonthlyInstallment))
		f.repo.AssertExpectations(t)
	})

	t.Run("Good History Keeps Requested Rate", func(t *testing.T) {
		f := newFixture()
		f.customers.On("GetCustomer", ctx, int64(1)).Return(testCustomer(), nil).Once()
		f.repo.On("ListByCustomer", ctx, int64(1)).Return([]Loan{paidLoan(20000)}, nil).Once()

		got, err := f.svc.CheckEligibility(ctx, request(12))

		require.NoError(t, err)
		assert.True(t, got.Decision.Approved)
		assert.True(t, decimal.NewFromFloat(75.5).Equal(got.Decision.Score.Score))
		assert.True(t, decimal.NewFromInt(12).Equal(got.Decision.CorrectedRate))
	})

	t.Run("Denied When Installments Exceed Half Income", func(t *testing.T) {
		f := newFixture()
		f.customers.On("GetCustomer", ctx, int64(1)).Return(testCustomer(), nil).Once()
		f.repo.On("ListByCustomer", ctx, int64(1)).Return([]Loan{paidLoan(26000)}, nil).Once()

		got, err := f.svc.CheckEligibility(ctx, request(8))

		require.NoError(t, err)
		assert.False(t, got.Decision.Approved)
		assert.Equal(t, credit.ReasonIncomeRatioExceeded, got.Decision.Reason)
		assert.True(t, decimal.NewFromInt(8).Equal(got.Decision.CorrectedRate))
	})

	t.Run("Denied When Exposure Exceeds Limit", func(t *testing.T) {
		f := newFixture()
		cust := testCustomer()
		cust.ApprovedLimit = decimal.NewFromInt(400000)
		f.customers.On("GetCustomer", ctx, int64(1)).Return(cust, nil).Once()
		f.repo.On("ListByCustomer", ctx, int64(1)).Return([]Loan{paidLoan(26000)}, nil).Once()

		got, err := f.svc.CheckEligibility(ctx, request(8))

		require.NoError(t, err)
		assert.Equal(t, credit.ReasonExposureExceeded, got.Decision.Reason)
	})

	t.Run("Error - Customer Not Found", func(t *testing.T) {
		f := newFixture()
		f.customers.On("GetCustomer", ctx, int64(1)).Return(nil, apperrors.NotFound("customer", 1)).Once()

		_, err := f.svc.CheckEligibility(ctx, request(10))

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		f.repo.AssertNotCalled(t, "ListByCustomer", mock.Anything, mock.Anything)
	})

	t.Run("Error - Validation Runs Before Lookup", func(t *testing.T) {
		f := newFixture()
		in := request(10)
		in.Tenure = 0

		_, err := f.svc.CheckEligibility(ctx, in)

		assert.ErrorIs(t, err, apperrors.ErrValidation)
		f.customers.AssertNotCalled(t, "GetCustomer", mock.Anything, mock.Anything)
	})

	t.Run("Error - History Lookup Fails", func(t *testing.T) {
		f := newFixture()
		f.customers.On("GetCustomer", ctx, int64(1)).Return(testCustomer(), nil).Once()
		f.repo.On("ListByCustomer", ctx, int64(1)).Return(nil, apperrors.ErrDatabase).Once()

		_, err := f.svc.CheckEligibility(ctx, request(10))

		assert.ErrorIs(t, err, apperrors.ErrDatabase)
	})
}

func TestCreateLoan(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newFixture()
		f.customers.On("GetCustomer", ctx, int64(1)).Return(testCustomer(), nil).Once()
		f.repo.On("ListByCustomer", ctx, int64(1)).Return([]Loan{paidLoan(20000)}, nil).Once()

		expectedEMI := credit.MonthlyInstallment(decimal.NewFromInt(100000), decimal.NewFromInt(10), 12)
		f.repo.On("IssueLoan", ctx, mock.MatchedBy(func(l *Loan) bool {
			return l.CustomerID == 1 &&
				l.Approved &&
				l.Tenure == 12 &&
				l.StartDate.Equal(today) &&
				l.EndDate.Equal(time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)) &&
				l.InterestRate.Equal(decimal.NewFromInt(10)) &&
				l.MonthlyInstallment.Equal(expectedEMI.Round(2))
		})).Return(func() *Loan {
			l := &Loan{ID: 42, CustomerID: 1, Principal: decimal.NewFromInt(100000), Tenure: 12,
				InterestRate: decimal.NewFromInt(10), StartDate: today, Approved: true}
			return l
		}(), decimal.NewFromInt(600000), nil).Once()

		got, err := f.svc.CreateLoan(ctx, request(7))

		require.NoError(t, err)
		require.NotNil(t, got.Loan)
		assert.Equal(t, int64(42), got.Loan.ID)
		assert.True(t, got.Decision.Approved)
		assert.True(t, expectedEMI.Equal(got.Decision.MonthlyInstallment))
		assert.True(t, decimal.NewFromInt(600000).Equal(got.CurrentDebt))
		require.Len(t, f.pub.approved, 1)
		assert.Equal(t, int64(42), f.pub.approved[0].Payload.LoanID)
		assert.True(t, decimal.NewFromInt(600000).Equal(f.pub.approved[0].Payload.CurrentDebt))
		f.repo.AssertExpectations(t)
	})

	t.Run("Denied Loan Is Not Persisted", func(t *testing.T) {
		f := newFixture()
		f.customers.On("GetCustomer", ctx, int64(1)).Return(testCustomer(), nil).Once()
		f.repo.On("ListByCustomer", ctx, int64(1)).Return([]Loan{paidLoan(26000)}, nil).Once()

		got, err := f.svc.CreateLoan(ctx, request(8))

		require.NoError(t, err)
		assert.Nil(t, got.Loan)
		assert.False(t, got.Decision.Approved)
		assert.Equal(t, "Current EMIs consume more than 50% of monthly income", got.Decision.Reason.String())
		assert.Empty(t, f.pub.approved)
		f.repo.AssertNotCalled(t, "IssueLoan", mock.Anything, mock.Anything)
	})

	t.Run("Publish Failure Is Not Fatal", func(t *testing.T) {
		f := newFixture()
		f.pub.err = errors.New("broker down")
		f.customers.On("GetCustomer", ctx, int64(1)).Return(testCustomer(), nil).Once()
		f.repo.On("ListByCustomer", ctx, int64(1)).Return([]Loan{}, nil).Once()
		f.repo.On("IssueLoan", ctx, mock.Anything).Return(&Loan{ID: 9, CustomerID: 1}, decimal.NewFromInt(100000), nil).Once()

		got, err := f.svc.CreateLoan(ctx, request(20))

		require.NoError(t, err)
		assert.Equal(t, int64(9), got.Loan.ID)
	})

	t.Run("Error - Persistence Failure", func(t *testing.T) {
		f := newFixture()
		f.customers.On("GetCustomer", ctx, int64(1)).Return(testCustomer(), nil).Once()
		f.repo.On("ListByCustomer", ctx, int64(1)).Return([]Loan{}, nil).Once()
		f.repo.On("IssueLoan", ctx, mock.Anything).Return(nil, decimal.Zero, apperrors.ErrDatabase).Once()

		got, err := f.svc.CreateLoan(ctx, request(20))

		assert.Nil(t, got)
		assert.ErrorIs(t, err, apperrors.ErrDatabase)
		assert.Empty(t, f.pub.approved)
	})
}

func TestGetLoan(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newFixture()
		l := paidLoan(20000)
		f.repo.On("GetByID", ctx, int64(5)).Return(&l, nil).Once()
		f.customers.On("GetCustomer", ctx, int64(1)).Return(testCustomer(), nil).Once()

		got, err := f.svc.GetLoan(ctx, 5)

		require.NoError(t, err)
		assert.Equal(t, int64(5), got.Loan.ID)
		assert.Equal(t, "Asha", got.Customer.FirstName)
	})

	t.Run("Error - Not Found", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetByID", ctx, int64(77)).Return(nil, apperrors.ErrNotFound).Once()

		_, err := f.svc.GetLoan(ctx, 77)

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.Contains(t, err.Error(), "loan 77 not found")
	})

	t.Run("Error - Database", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetByID", ctx, int64(5)).Return(nil, apperrors.ErrDatabase).Once()

		_, err := f.svc.GetLoan(ctx, 5)

		assert.ErrorIs(t, err, apperrors.ErrDatabase)
	})
}

func TestListCustomerLoans(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newFixture()
		f.customers.On("GetCustomer", ctx, int64(1)).Return(testCustomer(), nil).Once()
		f.repo.On("ListApprovedByCustomer", ctx, int64(1)).Return([]Loan{paidLoan(1), paidLoan(2)}, nil).Once()

		got, err := f.svc.ListCustomerLoans(ctx, 1)

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, int64(1), got[0].Customer.ID)
	})

	t.Run("Empty", func(t *testing.T) {
		f := newFixture()
		f.customers.On("GetCustomer", ctx, int64(1)).Return(testCustomer(), nil).Once()
		f.repo.On("ListApprovedByCustomer", ctx, int64(1)).Return(nil, nil).Once()

		got, err := f.svc.ListCustomerLoans(ctx, 1)

		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("Error - Customer Not Found", func(t *testing.T) {
		f := newFixture()
		f.customers.On("GetCustomer", ctx, int64(3)).Return(nil, apperrors.NotFound("customer", 3)).Once()

		_, err := f.svc.ListCustomerLoans(ctx, 3)

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		f.repo.AssertNotCalled(t, "ListApprovedByCustomer", mock.Anything, mock.Anything)
	})
}
