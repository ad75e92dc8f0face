package models

import "github.com/shopspring/decimal"

// Tenant is a person renting from a user.
type Tenant struct {
	// ID is the unique identifier for the tenant (UUID format).
	ID string

	// UserID is the owning user.
	UserID string

	// Name is the tenant's display name.
	Name string

	// BaseRent is the fixed periodic charge, independent of usage.
	BaseRent decimal.Decimal

	// Contact is an optional phone number or email.
	Contact string

	// CreatedAt is the Unix timestamp when the tenant was created.
	CreatedAt int64
}
