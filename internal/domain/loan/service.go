package loan

import (
	"context"
	"credit-approval/internal/domain/credit"
	"credit-approval/internal/domain/customer"
	"credit-approval/internal/event"
	"credit-approval/internal/infrastructure/monitoring"
	"credit-approval/internal/pkg/apperrors"
	"credit-approval/internal/pkg/clock"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
)

type Eligibility struct {
	CustomerID int64
	Tenure     int
	Decision   credit.Decision
}

// Issuance is the outcome of a create-loan call. Loan is nil when the
// decision was a denial.
type Issuance struct {
	CustomerID  int64
	Decision    credit.Decision
	Loan        *Loan
	CurrentDebt decimal.Decimal
}

type LoanView struct {
	Loan     Loan
	Customer customer.Customer
}

type LoanService interface {
	CheckEligibility(ctx context.Context, in EligibilityInput) (*Eligibility, error)

	CreateLoan(ctx context.Context, in EligibilityInput) (*Issuance, error)

	GetLoan(ctx context.Context, loanID int64) (*LoanView, error)

	// ListCustomerLoans returns the approved loans of an existing customer.
	ListCustomerLoans(ctx context.Context, customerID int64) ([]LoanView, error)
}

var _ LoanService = (*loanServiceImpl)(nil)

type loanServiceImpl struct {
	repo            Repository
	customerService customer.CustomerService
	pub             event.EventPublisher
	clock           clock.Clock
	logger          *slog.Logger
}

func NewLoanService(r Repository, cs customer.CustomerService, pub event.EventPublisher, clk clock.Clock, logger *slog.Logger) LoanService {
	if r == nil {
		panic("loan repository cannot be nil")
	}
	if cs == nil {
		panic("customer service cannot be nil")
	}
	if pub == nil {
		pub = event.NoopPublisher{}
	}
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &loanServiceImpl{
		repo:            r,
		customerService: cs,
		pub:             pub,
		clock:           clk,
		logger:          logger.With(slog.String("component", "loanService")),
	}
}

func (s *loanServiceImpl) evaluate(ctx context.Context, in EligibilityInput) (*customer.Customer, credit.Decision, error) {
	if err := in.Validate(); err != nil {
		s.logger.WarnContext(ctx, "Loan request validation failed", slog.Any("error", err))
		return nil, credit.Decision{}, err
	}

	cust, err := s.customerService.GetCustomer(ctx, in.CustomerID)
	if err != nil {
		return nil, credit.Decision{}, err
	}

	history, err := s.repo.ListByCustomer(ctx, in.CustomerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load loan history", "customerID", in.CustomerID, slog.Any("error", err))
		return nil, credit.Decision{}, fmt.Errorf("failed to load loan history for customer %d: %w", in.CustomerID, err)
	}

	applicant := credit.Applicant{MonthlyIncome: cust.MonthlyIncome, ApprovedLimit: cust.ApprovedLimit}
	d := credit.Evaluate(applicant, in.request(), Records(history), clock.Today(s.clock))
	monitoring.RecordEligibilityDecision(d.Reason.Code())

	s.logger.InfoContext(ctx, "Loan request evaluated",
		"customerID", in.CustomerID,
		"approved", d.Approved,
		"reason", d.Reason.Code(),
		"score", d.Score.Score.String(),
		"correctedRate", d.CorrectedRate.String(),
	)
	return cust, d, nil
}

func (s *loanServiceImpl) CheckEligibility(ctx context.Context, in EligibilityInput) (*Eligibility, error) {
	_, d, err := s.evaluate(ctx, in)
	if err != nil {
		return nil, err
	}
	return &Eligibility{CustomerID: in.CustomerID, Tenure: in.Tenure, Decision: d}, nil
}

func (s *loanServiceImpl) CreateLoan(ctx context.Context, in EligibilityInput) (*Issuance, error) {
	cust, d, err := s.evaluate(ctx, in)
	if err != nil {
		return nil, err
	}
	result := &Issuance{CustomerID: in.CustomerID, Decision: d, CurrentDebt: cust.CurrentDebt}
	if !d.Approved {
		return result, nil
	}

	loan, err := NewApprovedLoan(in, d, clock.Today(s.clock))
	if err != nil {
		return nil, err
	}

	stored, debt, err := s.repo.IssueLoan(ctx, loan)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist loan", "customerID", in.CustomerID, slog.Any("error", err))
		return nil, fmt.Errorf("failed to issue loan for customer %d: %w", in.CustomerID, err)
	}
	result.Loan = stored
	result.CurrentDebt = debt
	monitoring.RecordLoanIssued(stored.Principal.InexactFloat64())

	evt := event.LoanApprovedEvent{
		Timestamp: s.clock.Now(),
		Payload: event.LoanApprovedPayload{
			LoanID:             stored.ID,
			CustomerID:         stored.CustomerID,
			LoanAmount:         stored.Principal,
			InterestRate:       stored.InterestRate,
			Tenure:             stored.Tenure,
			MonthlyInstallment: stored.MonthlyInstallment,
			StartDate:          stored.StartDate,
			EndDate:            stored.EndDate,
			CurrentDebt:        debt,
		},
	}
	if err := s.pub.PublishLoanApproved(ctx, evt); err != nil {
		s.logger.ErrorContext(ctx, "Loan issued, but failed to publish approval event", "loanID", stored.ID, slog.Any("error", err))
	}

	s.logger.InfoContext(ctx, "Loan issued successfully", "loanID", stored.ID, "customerID", stored.CustomerID, "currentDebt", debt.String())
	return result, nil
}

func (s *loanServiceImpl) GetLoan(ctx context.Context, loanID int64) (*LoanView, error) {
	s.logger.DebugContext(ctx, "Getting loan details", "loanID", loanID)
	l, err := s.repo.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Loan not found", "loanID", loanID)
			return nil, apperrors.NotFound("loan", loanID)
		}
		s.logger.ErrorContext(ctx, "Failed to get loan", "loanID", loanID, slog.Any("error", err))
		return nil, fmt.Errorf("failed to get loan %d: %w", loanID, err)
	}

	cust, err := s.customerService.GetCustomer(ctx, l.CustomerID)
	if err != nil {
		return nil, err
	}
	return &LoanView{Loan: *l, Customer: *cust}, nil
}

func (s *loanServiceImpl) ListCustomerLoans(ctx context.Context, customerID int64) ([]LoanView, error) {
	s.logger.DebugContext(ctx, "Listing customer loans", "customerID", customerID)
	cust, err := s.customerService.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	loans, err := s.repo.ListApprovedByCustomer(ctx, customerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list loans", "customerID", customerID, slog.Any("error", err))
		return nil, fmt.Errorf("failed to list loans for customer %d: %w", customerID, err)
	}

	views := make([]LoanView, 0, len(loans))
	for _, l := range loans {
		views = append(views, LoanView{Loan: l, Customer: *cust})
	}
	return views, nil
}
