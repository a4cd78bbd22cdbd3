package ingest

import (
	"bytes"
	"context"
	"credit-approval/internal/domain/customer"
	"credit-approval/internal/domain/loan"
	"credit-approval/internal/pkg/apperrors"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type memCustomers struct {
	rows      map[int64]*customer.Customer
	upsertErr error
}

func newMemCustomers() *memCustomers {
	return &memCustomers{rows: map[int64]*customer.Customer{}}
}

func (m *memCustomers) UpsertByID(_ context.Context, c *customer.Customer) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.rows[c.ID] = c
	return nil
}

func (m *memCustomers) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := m.rows[id]
	return ok, nil
}

type memLoans struct {
	rows map[int64]*loan.Loan
	err  error
}

func (m *memLoans) UpsertByID(_ context.Context, l *loan.Loan) error {
	if m.err != nil {
		return m.err
	}
	m.rows[l.ID] = l
	return nil
}

func workbook(t *testing.T, rows ...[]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	for i, row := range rows {
		addr, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, addr, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

var (
	customerHeader = []any{"Customer ID", "First Name", "Last Name", "Phone Number", "Monthly Salary", "Approved Limit", "Current Debt"}
	loanHeader     = []any{"Customer ID", "Loan ID", "Loan Amount", "Tenure", "Interest Rate", "Monthly payment", "EMIs paid on Time", "Date of Approval", "End Date"}
)

func TestLoadCustomers(t *testing.T) {
	customers := newMemCustomers()
	l := NewLoader(customers, &memLoans{rows: map[int64]*loan.Loan{}}, nil, testLogger)

	data := workbook(t,
		customerHeader,
		[]any{1, " Aaron ", "Garcia", 9629317944, 50000, 1800000, ""},
		[]any{"", "ghost", "row", 1, 1, 1, 1},
		[]any{2, "Bea", "Lopez", "9000000002", 72000.0, 2600000, 1500.5},
	)

	n, err := l.LoadCustomers(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, customers.rows, 2)

	c1 := customers.rows[1]
	assert.Equal(t, "Aaron", c1.FirstName)
	assert.Equal(t, "9629317944", c1.PhoneNumber)
	assert.Equal(t, int64(50000), c1.MonthlyIncome)
	assert.Equal(t, 0, c1.Age)
	assert.True(t, decimal.NewFromInt(1800000).Equal(c1.ApprovedLimit))
	assert.True(t, c1.CurrentDebt.IsZero())

	assert.True(t, decimal.RequireFromString("1500.5").Equal(customers.rows[2].CurrentDebt))
}

func TestLoadCustomersInvalidNumber(t *testing.T) {
	l := NewLoader(newMemCustomers(), &memLoans{rows: map[int64]*loan.Loan{}}, nil, testLogger)
	data := workbook(t, customerHeader, []any{1, "A", "B", "1", "lots", 0, 0})

	_, err := l.LoadCustomers(context.Background(), data)

	assert.ErrorContains(t, err, "customer row 2")
	assert.ErrorContains(t, err, "monthly_salary")
}

func TestLoadCustomersStoreError(t *testing.T) {
	customers := newMemCustomers()
	customers.upsertErr = apperrors.ErrAlreadyExists
	l := NewLoader(customers, &memLoans{rows: map[int64]*loan.Loan{}}, nil, testLogger)

	_, err := l.LoadCustomers(context.Background(), workbook(t, customerHeader, []any{1, "A", "B", "1", 0, 0, 0}))

	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestLoadLoans(t *testing.T) {
	customers := newMemCustomers()
	customers.rows[1] = &customer.Customer{ID: 1}
	loans := &memLoans{rows: map[int64]*loan.Loan{}}
	l := NewLoader(customers, loans, nil, testLogger)

	data := workbook(t,
		loanHeader,
		[]any{1, 8638, 900000, 138, 16.06, 9010, 73, "2019-07-18", "2031-01-18"},
		[]any{1, 9000, 100000, 12, 12.0, "", 12, 45301, "1/10/25"},
		[]any{7, 4000, 50000, 6, 10, 8600, 3, "2020-01-01", "2020-07-01"},
	)

	upserted, skipped, err := l.LoadLoans(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, 2, upserted)
	assert.Equal(t, 1, skipped)

	first := loans.rows[8638]
	require.NotNil(t, first)
	assert.Equal(t, int64(1), first.CustomerID)
	assert.Equal(t, 138, first.Tenure)
	assert.Equal(t, 73, first.EMIsPaidOnTime)
	assert.True(t, first.Approved)
	assert.True(t, decimal.RequireFromString("16.06").Equal(first.InterestRate))
	assert.Equal(t, time.Date(2019, time.July, 18, 0, 0, 0, 0, time.UTC), first.StartDate)
	assert.Equal(t, time.Date(2031, time.January, 18, 0, 0, 0, 0, time.UTC), first.EndDate)

	second := loans.rows[9000]
	require.NotNil(t, second)
	assert.True(t, second.MonthlyInstallment.IsZero())
	assert.Equal(t, time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC), second.StartDate)
	assert.Equal(t, time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC), second.EndDate)

	assert.NotContains(t, loans.rows, int64(4000))
}

func TestLoadLoansMissingDate(t *testing.T) {
	customers := newMemCustomers()
	customers.rows[1] = &customer.Customer{ID: 1}
	l := NewLoader(customers, &memLoans{rows: map[int64]*loan.Loan{}}, nil, testLogger)

	_, _, err := l.LoadLoans(context.Background(), workbook(t, loanHeader, []any{1, 10, 1000, 1, 10, 100, 1, "", "2020-01-01"}))

	assert.ErrorContains(t, err, "start_date")
}

func TestLoadLoansRaceWithDeletedCustomer(t *testing.T) {
	customers := newMemCustomers()
	customers.rows[1] = &customer.Customer{ID: 1}
	loans := &memLoans{rows: map[int64]*loan.Loan{}, err: apperrors.ErrNotFound}
	l := NewLoader(customers, loans, nil, testLogger)

	upserted, skipped, err := l.LoadLoans(context.Background(), workbook(t, loanHeader, []any{1, 10, 1000, 1, 10, 100, 1, "2020-01-01", "2020-02-01"}))

	require.NoError(t, err)
	assert.Zero(t, upserted)
	assert.Equal(t, 1, skipped)
}

func TestLoadRunsSequenceReset(t *testing.T) {
	customers := newMemCustomers()
	loans := &memLoans{rows: map[int64]*loan.Loan{}}
	resets := 0
	l := NewLoader(customers, loans, func(context.Context) error {
		resets++
		return nil
	}, testLogger)

	report, err := l.Load(context.Background(),
		workbook(t, customerHeader, []any{5, "A", "B", "1", 100, 3600000, 0}),
		workbook(t, loanHeader, []any{5, 77, 1000, 1, 10, 100, 1, "2020-01-01", "2020-02-01"}),
	)

	require.NoError(t, err)
	assert.Equal(t, &Report{CustomersUpserted: 1, LoansUpserted: 1}, report)
	assert.Equal(t, 1, resets)
}

func TestLoadSequenceResetError(t *testing.T) {
	l := NewLoader(newMemCustomers(), &memLoans{rows: map[int64]*loan.Loan{}}, func(context.Context) error {
		return errors.New("boom")
	}, testLogger)

	_, err := l.Load(context.Background(), workbook(t, customerHeader), workbook(t, loanHeader))

	assert.ErrorContains(t, err, "reset id sequences")
}

func TestLoadFilesMissing(t *testing.T) {
	dir := t.TempDir()
	customerPath := filepath.Join(dir, "customer_data.xlsx")
	require.NoError(t, os.WriteFile(customerPath, workbook(t, customerHeader).Bytes(), 0o600))
	customers := newMemCustomers()
	l := NewLoader(customers, &memLoans{rows: map[int64]*loan.Loan{}}, nil, testLogger)

	_, err := l.LoadFiles(context.Background(), customerPath, filepath.Join(dir, "loan_data.xlsx"))

	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	customerPath := filepath.Join(dir, "customer_data.xlsx")
	loanPath := filepath.Join(dir, "loan_data.xlsx")
	require.NoError(t, os.WriteFile(customerPath, workbook(t, customerHeader, []any{1, "A", "B", "1", 100, 0, 0}).Bytes(), 0o600))
	require.NoError(t, os.WriteFile(loanPath, workbook(t, loanHeader).Bytes(), 0o600))
	l := NewLoader(newMemCustomers(), &memLoans{rows: map[int64]*loan.Loan{}}, nil, testLogger)

	report, err := l.LoadFiles(context.Background(), customerPath, loanPath)

	require.NoError(t, err)
	assert.Equal(t, 1, report.CustomersUpserted)
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2024-01-10", "2024-01-10 13:45:00", "1/10/24", "1/10/2024", "45301", "45301.5"} {
		got, err := parseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := parseDate("yesterday")
	assert.Error(t, err)
}

func TestNewLoaderPanicsOnNilStores(t *testing.T) {
	assert.Panics(t, func() { NewLoader(nil, &memLoans{}, nil, testLogger) })
}
