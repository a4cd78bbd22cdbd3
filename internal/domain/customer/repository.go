package customer

import "context"

type CustomerRepository interface {
	// UpsertByPhone inserts the customer or overwrites the profile of the
	// customer holding the same phone number. It fills in ID and timestamps
	// and reports whether a new row was created.
	UpsertByPhone(ctx context.Context, customer *Customer) (created bool, err error)

	// UpsertByID writes the customer under its own ID, including approved
	// limit and current debt. Used by the bulk loader.
	UpsertByID(ctx context.Context, customer *Customer) error

	FindByID(ctx context.Context, customerID int64) (*Customer, error)

	Exists(ctx context.Context, customerID int64) (bool, error)

	ListIDs(ctx context.Context) ([]int64, error)
}
