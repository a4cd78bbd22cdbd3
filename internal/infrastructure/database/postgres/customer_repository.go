package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"credit-approval/internal/domain/customer"
	"credit-approval/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
)

const customerColumns = `id, first_name, last_name, phone_number, age, monthly_income, approved_limit, current_debt, created_at, updated_at`

type CustomerRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.CustomerRepository = (*CustomerRepository)(nil)

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	if db == nil {
		panic("DBPool cannot be nil for CustomerRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerRepository, using default stderr handler")
	}
	return &CustomerRepository{
		db:     db,
		logger: logger.With("component", "CustomerRepository"),
	}
}

func (r *CustomerRepository) UpsertByPhone(ctx context.Context, cust *customer.Customer) (bool, error) {
	if cust == nil {
		return false, fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}
	r.logger.DebugContext(ctx, "Upserting customer by phone number", slog.String("phone_number", cust.PhoneNumber))

	query := `
        INSERT INTO customers (first_name, last_name, phone_number, age, monthly_income, approved_limit, current_debt, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, 0, NOW(), NOW())
        ON CONFLICT (phone_number) DO UPDATE
        SET first_name = EXCLUDED.first_name,
            last_name = EXCLUDED.last_name,
            age = EXCLUDED.age,
            monthly_income = EXCLUDED.monthly_income,
            approved_limit = EXCLUDED.approved_limit,
            updated_at = NOW()
        RETURNING id, current_debt, created_at, updated_at, (xmax = 0) AS inserted`

	start := time.Now()
	var created bool
	err := r.db.QueryRow(ctx, query,
		cust.FirstName,
		cust.LastName,
		cust.PhoneNumber,
		cust.Age,
		cust.MonthlyIncome,
		cust.ApprovedLimit,
	).Scan(
		&cust.ID,
		&cust.CurrentDebt,
		&cust.CreatedAt,
		&cust.UpdatedAt,
		&created,
	)
	observe("UpsertCustomerByPhone", start, err)

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to upsert customer", slog.Any("error", err))
		return false, translateDBError(err, r.logger)
	}

	r.logger.InfoContext(ctx, "Customer upserted", slog.Int64("customerID", cust.ID), slog.Bool("created", created))
	return created, nil
}

func (r *CustomerRepository) UpsertByID(ctx context.Context, cust *customer.Customer) error {
	if cust == nil || cust.ID <= 0 {
		return fmt.Errorf("%w: customer with a positive id is required", apperrors.ErrInvalidArgument)
	}

	query := `
        INSERT INTO customers (id, first_name, last_name, phone_number, age, monthly_income, approved_limit, current_debt, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
        ON CONFLICT (id) DO UPDATE
        SET first_name = EXCLUDED.first_name,
            last_name = EXCLUDED.last_name,
            phone_number = EXCLUDED.phone_number,
            age = EXCLUDED.age,
            monthly_income = EXCLUDED.monthly_income,
            approved_limit = EXCLUDED.approved_limit,
            current_debt = EXCLUDED.current_debt,
            updated_at = NOW()`

	start := time.Now()
	_, err := r.db.Exec(ctx, query,
		cust.ID,
		cust.FirstName,
		cust.LastName,
		cust.PhoneNumber,
		cust.Age,
		cust.MonthlyIncome,
		cust.ApprovedLimit,
		cust.CurrentDebt,
	)
	observe("UpsertCustomerByID", start, err)

	if err != nil {
		translatedErr := translateDBError(err, r.logger)
		if errors.Is(translatedErr, apperrors.ErrAlreadyExists) {
			r.logger.WarnContext(ctx, "Customer phone number already used by another id", slog.Int64("customerID", cust.ID))
			return translatedErr
		}
		r.logger.ErrorContext(ctx, "Failed to upsert customer by id", slog.Int64("customerID", cust.ID), slog.Any("error", err))
		return fmt.Errorf("%w: failed to upsert customer %d: %w", apperrors.ErrDatabase, cust.ID, err)
	}
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (*customer.Customer, error) {
	r.logger.DebugContext(ctx, "Attempting to find customer by ID", slog.Int64("customerID", customerID))

	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	start := time.Now()
	var cust customer.Customer
	err := r.db.QueryRow(ctx, query, customerID).Scan(
		&cust.ID,
		&cust.FirstName,
		&cust.LastName,
		&cust.PhoneNumber,
		&cust.Age,
		&cust.MonthlyIncome,
		&cust.ApprovedLimit,
		&cust.CurrentDebt,
		&cust.CreatedAt,
		&cust.UpdatedAt,
	)
	observe("FindCustomerByID", start, err)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Customer not found", slog.Int64("customerID", customerID))
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to query/scan customer by ID", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get customer by ID: %w", apperrors.ErrDatabase, err)
	}

	return &cust, nil
}

func (r *CustomerRepository) Exists(ctx context.Context, customerID int64) (bool, error) {
	start := time.Now()
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`, customerID).Scan(&exists)
	observe("CustomerExists", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to check customer existence", slog.Int64("customerID", customerID), slog.Any("error", err))
		return false, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return exists, nil
}

func (r *CustomerRepository) ListIDs(ctx context.Context) ([]int64, error) {
	logCtx := r.logger.With(slog.String("operation", "ListIDs"))

	start := time.Now()
	rows, err := r.db.Query(ctx, `SELECT id FROM customers ORDER BY id`)
	observe("ListCustomerIDs", start, err)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to query customer IDs", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query customer ids: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			logCtx.ErrorContext(ctx, "Failed to scan customer ID row", slog.Any("error", err))
			return nil, fmt.Errorf("%w: failed scanning customer id: %w", apperrors.ErrDatabase, err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		logCtx.ErrorContext(ctx, "Error iterating customer ID rows", slog.Any("error", err))
		return nil, fmt.Errorf("%w: error iterating customer ids: %w", apperrors.ErrDatabase, err)
	}

	logCtx.DebugContext(ctx, "Finished listing customer IDs", slog.Int("count", len(ids)))
	return ids, nil
}

// RefreshCurrentDebt rewrites the debt snapshot as the principal sum of loans
// active on the given day. It reports false when the stored snapshot was
// already correct or the customer does not exist.
func (r *CustomerRepository) RefreshCurrentDebt(ctx context.Context, customerID int64, at time.Time) (bool, error) {
	query := `
        WITH active AS (
            SELECT COALESCE(SUM(loan_amount), 0) AS total
            FROM loans
            WHERE customer_id = $1 AND end_date >= $2
        )
        UPDATE customers c
        SET current_debt = active.total, updated_at = NOW()
        FROM active
        WHERE c.id = $1 AND c.current_debt <> active.total`

	start := time.Now()
	cmdTag, err := r.db.Exec(ctx, query, customerID, at)
	observe("RefreshCurrentDebt", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to refresh current debt", slog.Int64("customerID", customerID), slog.Any("error", err))
		return false, fmt.Errorf("%w: failed to refresh current debt for customer %d: %w", apperrors.ErrDatabase, customerID, err)
	}
	return cmdTag.RowsAffected() > 0, nil
}
