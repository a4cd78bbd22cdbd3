package customer

import (
	"context"
	"credit-approval/internal/domain/credit"
	"credit-approval/internal/event"
	"credit-approval/internal/infrastructure/monitoring"
	"credit-approval/internal/pkg/apperrors"
	"credit-approval/internal/pkg/clock"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const inputValidationPassed = "Input validation passed"

type RegisterInput struct {
	FirstName     string
	LastName      string
	PhoneNumber   string
	Age           int
	MonthlyIncome int64
}

type CustomerService interface {
	// Register creates the customer or updates the one registered under the
	// same phone number. created is false on update.
	Register(ctx context.Context, in RegisterInput) (cust *Customer, created bool, err error)

	GetCustomer(ctx context.Context, customerID int64) (*Customer, error)
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo   CustomerRepository
	pub    event.EventPublisher
	clock  clock.Clock
	logger *slog.Logger
}

func NewCustomerService(repo CustomerRepository, pub event.EventPublisher, clk clock.Clock, logger *slog.Logger) CustomerService {
	if repo == nil {
		panic("customer repository cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerService, using default stderr handler")
	}
	if pub == nil {
		logger.Warn("No event publisher provided to NewCustomerService, events will be dropped")
		pub = event.NoopPublisher{}
	}
	if clk == nil {
		clk = clock.System{}
	}

	return &customerService{
		repo:   repo,
		pub:    pub,
		clock:  clk,
		logger: logger.With(slog.String("component", "customerService")),
	}
}

func validateRegistration(in RegisterInput) error {
	checks := []struct {
		field string
		value string
		max   int
	}{
		{"first_name", in.FirstName, MaxNameLength},
		{"last_name", in.LastName, MaxNameLength},
		{"phone_number", in.PhoneNumber, MaxPhoneLength},
	}
	for _, c := range checks {
		if c.value == "" {
			return apperrors.NewValidationError(c.field, "This field may not be blank.")
		}
		if utf8.RuneCountInString(c.value) > c.max {
			return apperrors.NewValidationError(c.field, fmt.Sprintf("Ensure this field has no more than %d characters.", c.max))
		}
	}
	if in.Age < 0 {
		return apperrors.NewValidationError("age", "Ensure this value is greater than or equal to 0.")
	}
	if in.MonthlyIncome < 0 {
		return apperrors.NewValidationError("monthly_income", "Ensure this value is greater than or equal to 0.")
	}
	return nil
}

func (s *customerService) Register(ctx context.Context, in RegisterInput) (*Customer, bool, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)

	logger := s.logger.With(slog.String("phone_number", in.PhoneNumber))
	logger.InfoContext(ctx, "Attempting to register customer")

	if err := validateRegistration(in); err != nil {
		logger.WarnContext(ctx, "Registration validation failed", slog.Any("error", err))
		return nil, false, err
	}
	logger.DebugContext(ctx, inputValidationPassed)

	cust := &Customer{
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		PhoneNumber:   in.PhoneNumber,
		Age:           in.Age,
		MonthlyIncome: in.MonthlyIncome,
		ApprovedLimit: decimal.NewFromInt(credit.ApprovedLimit(in.MonthlyIncome)),
	}

	created, err := s.repo.UpsertByPhone(ctx, cust)
	if err != nil {
		logger.ErrorContext(ctx, "Repository failed to upsert customer", slog.Any("error", err))
		return nil, false, fmt.Errorf("failed to register customer: %w", err)
	}
	logger = logger.With(slog.Int64("customerID", cust.ID), slog.Bool("created", created))
	monitoring.RecordRegistration(created)

	s.publishRegistration(ctx, logger, cust, created)

	logger.InfoContext(ctx, "Customer registered successfully")
	return cust, created, nil
}

func (s *customerService) publishRegistration(ctx context.Context, logger *slog.Logger, cust *Customer, created bool) {
	payload := event.CustomerEventPayload{
		CustomerID:    cust.ID,
		Name:          cust.Name(),
		PhoneNumber:   cust.PhoneNumber,
		MonthlyIncome: cust.MonthlyIncome,
		ApprovedLimit: cust.ApprovedLimit,
	}

	var err error
	if created {
		err = s.pub.PublishCustomerRegistered(ctx, event.CustomerRegisteredEvent{Timestamp: s.clock.Now(), Payload: payload})
	} else {
		err = s.pub.PublishCustomerUpdated(ctx, event.CustomerUpdatedEvent{Timestamp: s.clock.Now(), Payload: payload})
	}
	if err != nil {
		logger.ErrorContext(ctx, "Customer saved, but failed to publish registration event", slog.Any("error", err))
	}
}

func (s *customerService) GetCustomer(ctx context.Context, customerID int64) (*Customer, error) {
	logger := s.logger.With(slog.Int64("customerID", customerID))
	logger.DebugContext(ctx, "Attempting to get customer by ID")

	cust, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.WarnContext(ctx, "Customer not found by repository")
			return nil, apperrors.NotFound("customer", customerID)
		}
		logger.ErrorContext(ctx, "Repository error finding customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer %d: %w", customerID, err)
	}
	return cust, nil
}
