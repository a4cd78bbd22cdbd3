package ingest

import (
	"context"
	"credit-approval/internal/domain/customer"
	"credit-approval/internal/domain/loan"
	"credit-approval/internal/infrastructure/monitoring"
	"credit-approval/internal/pkg/apperrors"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	sheetCustomers = "customers"
	sheetLoans     = "loans"

	resultUpserted = "upserted"
	resultSkipped  = "skipped"
)

var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", "1/2/06", "1/2/2006"}

type CustomerStore interface {
	UpsertByID(ctx context.Context, cust *customer.Customer) error
	Exists(ctx context.Context, customerID int64) (bool, error)
}

type LoanStore interface {
	UpsertByID(ctx context.Context, l *loan.Loan) error
}

type Report struct {
	CustomersUpserted int
	LoansUpserted     int
	LoansSkipped      int
}

// Loader writes the customer and loan workbooks into the stores, keeping the
// ids from the sheets.
type Loader struct {
	customers      CustomerStore
	loans          LoanStore
	resetSequences func(ctx context.Context) error
	logger         *slog.Logger
}

// NewLoader builds a loader. resetSequences runs after rows were written with
// explicit ids and may be nil.
func NewLoader(customers CustomerStore, loans LoanStore, resetSequences func(ctx context.Context) error, logger *slog.Logger) *Loader {
	if customers == nil || loans == nil {
		panic("ingest stores cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		customers:      customers,
		loans:          loans,
		resetSequences: resetSequences,
		logger:         logger.With("component", "ingestLoader"),
	}
}

// LoadFiles checks that both workbooks exist before touching the stores.
func (l *Loader) LoadFiles(ctx context.Context, customerPath, loanPath string) (*Report, error) {
	for _, p := range []string{customerPath, loanPath} {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("data file %s: %w", p, err)
		}
	}

	cf, err := os.Open(customerPath)
	if err != nil {
		return nil, err
	}
	defer cf.Close()
	lf, err := os.Open(loanPath)
	if err != nil {
		return nil, err
	}
	defer lf.Close()

	return l.Load(ctx, cf, lf)
}

func (l *Loader) Load(ctx context.Context, customerData, loanData io.Reader) (*Report, error) {
	report := &Report{}

	n, err := l.LoadCustomers(ctx, customerData)
	report.CustomersUpserted = n
	if err != nil {
		return report, err
	}

	report.LoansUpserted, report.LoansSkipped, err = l.LoadLoans(ctx, loanData)
	if err != nil {
		return report, err
	}

	if l.resetSequences != nil {
		if err := l.resetSequences(ctx); err != nil {
			return report, fmt.Errorf("failed to reset id sequences: %w", err)
		}
	}

	l.logger.InfoContext(ctx, "Ingestion finished",
		slog.Int("customers_upserted", report.CustomersUpserted),
		slog.Int("loans_upserted", report.LoansUpserted),
		slog.Int("loans_skipped", report.LoansSkipped),
	)
	return report, nil
}

func (l *Loader) LoadCustomers(ctx context.Context, r io.Reader) (int, error) {
	rows, err := readRows(r)
	if err != nil {
		return 0, fmt.Errorf("failed to read customer workbook: %w", err)
	}

	upserted := 0
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return upserted, err
		}
		cust, err := parseCustomerRow(row)
		if err != nil {
			return upserted, fmt.Errorf("customer row %d: %w", i+2, err)
		}
		if err := l.customers.UpsertByID(ctx, cust); err != nil {
			return upserted, fmt.Errorf("customer row %d: %w", i+2, err)
		}
		monitoring.RecordIngestedRow(sheetCustomers, resultUpserted)
		upserted++
	}
	l.logger.InfoContext(ctx, "Customers loaded", slog.Int("count", upserted))
	return upserted, nil
}

func (l *Loader) LoadLoans(ctx context.Context, r io.Reader) (upserted, skipped int, err error) {
	rows, err := readRows(r)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read loan workbook: %w", err)
	}

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return upserted, skipped, err
		}
		ln, err := parseLoanRow(row)
		if err != nil {
			return upserted, skipped, fmt.Errorf("loan row %d: %w", i+2, err)
		}

		exists, err := l.customers.Exists(ctx, ln.CustomerID)
		if err != nil {
			return upserted, skipped, fmt.Errorf("loan row %d: %w", i+2, err)
		}
		if !exists {
			l.logger.DebugContext(ctx, "Skipping loan of unknown customer", slog.Int64("loanID", ln.ID), slog.Int64("customerID", ln.CustomerID))
			monitoring.RecordIngestedRow(sheetLoans, resultSkipped)
			skipped++
			continue
		}

		if err := l.loans.UpsertByID(ctx, ln); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				// The customer disappeared between the check and the write.
				monitoring.RecordIngestedRow(sheetLoans, resultSkipped)
				skipped++
				continue
			}
			return upserted, skipped, fmt.Errorf("loan row %d: %w", i+2, err)
		}
		monitoring.RecordIngestedRow(sheetLoans, resultUpserted)
		upserted++
	}
	l.logger.InfoContext(ctx, "Loans loaded", slog.Int("upserted", upserted), slog.Int("skipped", skipped))
	return upserted, skipped, nil
}

// readRows returns the data rows of the active sheet: the header row and rows
// whose first cell is blank are dropped.
func readRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	all, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	if len(all) <= 1 {
		return nil, nil
	}

	rows := make([][]string, 0, len(all)-1)
	for _, row := range all[1:] {
		if cell(row, 0) == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func parseInt(s string) (int64, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return 0, err
	}
	return d.IntPart(), nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("date is empty")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOnly(t), nil
		}
	}
	serial, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognised date %q", s)
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, err
	}
	return dateOnly(t), nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Customer columns: id, first_name, last_name, phone_number, monthly_salary,
// approved_limit, current_debt.
func parseCustomerRow(row []string) (*customer.Customer, error) {
	id, err := parseInt(cell(row, 0))
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("invalid customer id %q", cell(row, 0))
	}
	income, err := parseInt(cell(row, 4))
	if err != nil {
		return nil, fmt.Errorf("invalid monthly_salary %q", cell(row, 4))
	}
	limit, err := parseDecimal(cell(row, 5))
	if err != nil {
		return nil, fmt.Errorf("invalid approved_limit %q", cell(row, 5))
	}
	debt, err := parseDecimal(cell(row, 6))
	if err != nil {
		return nil, fmt.Errorf("invalid current_debt %q", cell(row, 6))
	}
	return &customer.Customer{
		ID:            id,
		FirstName:     cell(row, 1),
		LastName:      cell(row, 2),
		PhoneNumber:   cell(row, 3),
		MonthlyIncome: income,
		ApprovedLimit: limit,
		CurrentDebt:   debt,
	}, nil
}

// Loan columns: customer_id, loan_id, loan_amount, tenure, interest_rate,
// monthly_repayment, emis_paid_on_time, start_date, end_date.
func parseLoanRow(row []string) (*loan.Loan, error) {
	customerID, err := parseInt(cell(row, 0))
	if err != nil || customerID <= 0 {
		return nil, fmt.Errorf("invalid customer id %q", cell(row, 0))
	}
	loanID, err := parseInt(cell(row, 1))
	if err != nil || loanID <= 0 {
		return nil, fmt.Errorf("invalid loan id %q", cell(row, 1))
	}

	var decimals [3]decimal.Decimal
	for i, col := range []int{2, 4, 5} {
		if decimals[i], err = parseDecimal(cell(row, col)); err != nil {
			return nil, fmt.Errorf("invalid number %q in column %d", cell(row, col), col+1)
		}
	}
	tenure, err := parseInt(cell(row, 3))
	if err != nil {
		return nil, fmt.Errorf("invalid tenure %q", cell(row, 3))
	}
	onTime, err := parseInt(cell(row, 6))
	if err != nil {
		return nil, fmt.Errorf("invalid emis_paid_on_time %q", cell(row, 6))
	}
	start, err := parseDate(cell(row, 7))
	if err != nil {
		return nil, fmt.Errorf("start_date: %w", err)
	}
	end, err := parseDate(cell(row, 8))
	if err != nil {
		return nil, fmt.Errorf("end_date: %w", err)
	}

	return &loan.Loan{
		ID:                 loanID,
		CustomerID:         customerID,
		Principal:          decimals[0],
		Tenure:             int(tenure),
		InterestRate:       decimals[1],
		MonthlyInstallment: decimals[2],
		EMIsPaidOnTime:     int(onTime),
		StartDate:          start,
		EndDate:            end,
		Approved:           true,
	}, nil
}
