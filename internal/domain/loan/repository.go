package loan

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Repository interface {
	// ListByCustomer returns every loan of the customer, approved or not.
	ListByCustomer(ctx context.Context, customerID int64) ([]Loan, error)

	ListApprovedByCustomer(ctx context.Context, customerID int64) ([]Loan, error)

	GetByID(ctx context.Context, loanID int64) (*Loan, error)

	// IssueLoan inserts the loan and rewrites the customer's current debt in
	// one transaction, holding a row lock on the customer. It returns the
	// stored loan and the new debt snapshot.
	IssueLoan(ctx context.Context, loan *Loan) (*Loan, decimal.Decimal, error)

	UpsertByID(ctx context.Context, loan *Loan) error

	SumActivePrincipal(ctx context.Context, customerID int64, at time.Time) (decimal.Decimal, error)
}
