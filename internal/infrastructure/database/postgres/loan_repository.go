package postgres

import (
	"context"
	"credit-approval/internal/domain/loan"
	"credit-approval/internal/pkg/apperrors"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const loanColumns = `id, customer_id, loan_amount, tenure, interest_rate, monthly_installment, emis_paid_on_time, start_date, end_date, approved, created_at`

type LoanRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ loan.Repository = (*LoanRepository)(nil)

func NewLoanRepository(db DBPool, logger *slog.Logger) *LoanRepository {
	return &LoanRepository{db: db, logger: logger.With("component", "LoanRepository")}
}

func scanLoans(rows pgx.Rows) ([]loan.Loan, error) {
	defer rows.Close()

	loans := make([]loan.Loan, 0)
	for rows.Next() {
		var l loan.Loan
		if err := rows.Scan(
			&l.ID, &l.CustomerID, &l.Principal, &l.Tenure, &l.InterestRate,
			&l.MonthlyInstallment, &l.EMIsPaidOnTime, &l.StartDate, &l.EndDate,
			&l.Approved, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: failed scanning loan row: %w", apperrors.ErrDatabase, err)
		}
		loans = append(loans, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating loan rows: %w", apperrors.ErrDatabase, err)
	}
	return loans, nil
}

func (r *LoanRepository) listLoans(ctx context.Context, queryName, query string, customerID int64) ([]loan.Loan, error) {
	start := time.Now()
	rows, err := r.db.Query(ctx, query, customerID)
	observe(queryName, start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query loans", "customer_id", customerID, "query", queryName, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	loans, err := scanLoans(rows)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to read loan rows", "customer_id", customerID, "error", err)
		return nil, err
	}
	return loans, nil
}

func (r *LoanRepository) ListByCustomer(ctx context.Context, customerID int64) ([]loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE customer_id = $1 ORDER BY id`
	return r.listLoans(ctx, "ListLoansByCustomer", query, customerID)
}

func (r *LoanRepository) ListApprovedByCustomer(ctx context.Context, customerID int64) ([]loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE customer_id = $1 AND approved ORDER BY id`
	return r.listLoans(ctx, "ListApprovedLoansByCustomer", query, customerID)
}

func (r *LoanRepository) GetByID(ctx context.Context, loanID int64) (*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	start := time.Now()
	var l loan.Loan
	err := r.db.QueryRow(ctx, query, loanID).Scan(
		&l.ID, &l.CustomerID, &l.Principal, &l.Tenure, &l.InterestRate,
		&l.MonthlyInstallment, &l.EMIsPaidOnTime, &l.StartDate, &l.EndDate,
		&l.Approved, &l.CreatedAt,
	)
	observe("GetLoanByID", start, err)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan not found", "loan_id", loanID)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get loan by ID", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return &l, nil
}

func (r *LoanRepository) IssueLoan(ctx context.Context, newLoan *loan.Loan) (*loan.Loan, decimal.Decimal, error) {
	if newLoan == nil {
		return nil, decimal.Zero, fmt.Errorf("%w: loan cannot be nil", apperrors.ErrInvalidArgument)
	}
	logCtx := r.logger.With("customer_id", newLoan.CustomerID)
	start := time.Now()

	tx, err := beginTx(ctx, r.db, logCtx)
	if err != nil {
		return nil, decimal.Zero, err
	}
	defer rollbackTx(ctx, tx, logCtx)

	var lockedID int64
	err = tx.QueryRow(ctx, `SELECT id FROM customers WHERE id = $1 FOR UPDATE`, newLoan.CustomerID).Scan(&lockedID)
	if err != nil {
		observe("IssueLoan", start, err)
		if errors.Is(err, pgx.ErrNoRows) {
			logCtx.WarnContext(ctx, "Customer vanished before loan issuance")
			return nil, decimal.Zero, apperrors.ErrNotFound
		}
		logCtx.ErrorContext(ctx, "Failed to lock customer row", "error", err)
		return nil, decimal.Zero, fmt.Errorf("%w: failed to lock customer: %w", apperrors.ErrDatabase, err)
	}

	insertSQL := `
        INSERT INTO loans (customer_id, loan_amount, tenure, interest_rate, monthly_installment, emis_paid_on_time, start_date, end_date, approved, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
        RETURNING id, created_at`

	stored := *newLoan
	err = tx.QueryRow(ctx, insertSQL,
		newLoan.CustomerID, newLoan.Principal, newLoan.Tenure, newLoan.InterestRate,
		newLoan.MonthlyInstallment, newLoan.EMIsPaidOnTime, newLoan.StartDate, newLoan.EndDate,
		newLoan.Approved,
	).Scan(&stored.ID, &stored.CreatedAt)
	if err != nil {
		observe("IssueLoan", start, err)
		logCtx.ErrorContext(ctx, "Failed to insert loan", "error", err)
		return nil, decimal.Zero, fmt.Errorf("%w: failed to insert loan: %w", apperrors.ErrDatabase, err)
	}

	debtSQL := `
        UPDATE customers
        SET current_debt = (
                SELECT COALESCE(SUM(loan_amount), 0)
                FROM loans
                WHERE customer_id = $1 AND end_date >= $2
            ),
            updated_at = NOW()
        WHERE id = $1
        RETURNING current_debt`

	var debt decimal.Decimal
	if err = tx.QueryRow(ctx, debtSQL, newLoan.CustomerID, newLoan.StartDate).Scan(&debt); err != nil {
		observe("IssueLoan", start, err)
		logCtx.ErrorContext(ctx, "Failed to update current debt", "loan_id", stored.ID, "error", err)
		return nil, decimal.Zero, fmt.Errorf("%w: failed to update current debt: %w", apperrors.ErrDatabase, err)
	}

	err = commitTx(ctx, tx, logCtx)
	observe("IssueLoan", start, err)
	if err != nil {
		return nil, decimal.Zero, err
	}

	logCtx.InfoContext(ctx, "Loan created in DB", "loan_id", stored.ID, "current_debt", debt.String())
	return &stored, debt, nil
}

func (r *LoanRepository) UpsertByID(ctx context.Context, l *loan.Loan) error {
	if l == nil || l.ID <= 0 {
		return fmt.Errorf("%w: loan with a positive id is required", apperrors.ErrInvalidArgument)
	}

	query := `
        INSERT INTO loans (id, customer_id, loan_amount, tenure, interest_rate, monthly_installment, emis_paid_on_time, start_date, end_date, approved, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
        ON CONFLICT (id) DO UPDATE
        SET customer_id = EXCLUDED.customer_id,
            loan_amount = EXCLUDED.loan_amount,
            tenure = EXCLUDED.tenure,
            interest_rate = EXCLUDED.interest_rate,
            monthly_installment = EXCLUDED.monthly_installment,
            emis_paid_on_time = EXCLUDED.emis_paid_on_time,
            start_date = EXCLUDED.start_date,
            end_date = EXCLUDED.end_date,
            approved = EXCLUDED.approved`

	start := time.Now()
	_, err := r.db.Exec(ctx, query,
		l.ID, l.CustomerID, l.Principal, l.Tenure, l.InterestRate,
		l.MonthlyInstallment, l.EMIsPaidOnTime, l.StartDate, l.EndDate, l.Approved,
	)
	observe("UpsertLoanByID", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to upsert loan", "loan_id", l.ID, "error", err)
		return translateDBError(err, r.logger)
	}
	return nil
}

func (r *LoanRepository) SumActivePrincipal(ctx context.Context, customerID int64, at time.Time) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(loan_amount), 0) FROM loans WHERE customer_id = $1 AND end_date >= $2`

	start := time.Now()
	var total decimal.Decimal
	err := r.db.QueryRow(ctx, query, customerID, at).Scan(&total)
	observe("SumActivePrincipal", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to sum active principal", "customer_id", customerID, "error", err)
		return decimal.Zero, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return total, nil
}
