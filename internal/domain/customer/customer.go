package customer

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	MaxNameLength  = 80
	MaxPhoneLength = 15
)

type Customer struct {
	ID            int64
	FirstName     string
	LastName      string
	PhoneNumber   string
	Age           int
	MonthlyIncome int64
	ApprovedLimit decimal.Decimal
	CurrentDebt   decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (c *Customer) Name() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
