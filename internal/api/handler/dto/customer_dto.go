package dto

import (
	"credit-approval/internal/domain/customer"
)

type RegisterRequest struct {
	FirstName     string `json:"first_name" validate:"required,max=80"`
	LastName      string `json:"last_name" validate:"required,max=80"`
	Age           *int   `json:"age" validate:"required,min=0"`
	MonthlyIncome *int64 `json:"monthly_income" validate:"required,min=0"`
	PhoneNumber   string `json:"phone_number" validate:"required,max=15"`
}

// ToInput must only be called after Validate succeeded.
func (r *RegisterRequest) ToInput() customer.RegisterInput {
	return customer.RegisterInput{
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		PhoneNumber:   r.PhoneNumber,
		Age:           *r.Age,
		MonthlyIncome: *r.MonthlyIncome,
	}
}

type RegisterResponse struct {
	CustomerID    int64  `json:"customer_id"`
	Name          string `json:"name"`
	Age           int    `json:"age"`
	MonthlyIncome int64  `json:"monthly_income"`
	ApprovedLimit int64  `json:"approved_limit"`
	PhoneNumber   string `json:"phone_number"`
}

func NewRegisterResponse(cust *customer.Customer) RegisterResponse {
	if cust == nil {
		return RegisterResponse{}
	}
	return RegisterResponse{
		CustomerID:    cust.ID,
		Name:          cust.Name(),
		Age:           cust.Age,
		MonthlyIncome: cust.MonthlyIncome,
		ApprovedLimit: cust.ApprovedLimit.IntPart(),
		PhoneNumber:   cust.PhoneNumber,
	}
}
