package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is a generated rent bill. Invoices are immutable: they are created
// once and only ever deleted.
type Invoice struct {
	// ID is the unique identifier for the invoice (UUID format).
	ID string

	// UserID is the owning user.
	UserID string

	// TenantID references the billed tenant. The tenant may since have been deleted.
	TenantID string

	// TenantName is a snapshot of the tenant's name at generation time.
	TenantName string

	// Date is the invoice date chosen by the user.
	Date time.Time

	// BaseRent is a snapshot; it may differ from the tenant's current base rent.
	BaseRent decimal.Decimal

	PreviousMonthReading decimal.Decimal
	CurrentMonthReading  decimal.Decimal

	// UnitsConsumed = max(0, CurrentMonthReading - PreviousMonthReading).
	UnitsConsumed decimal.Decimal

	// ElectricityRate is the rate in effect at generation time. Older records
	// may not carry one; use Rate to read it.
	ElectricityRate decimal.NullDecimal

	// ElectricityCost = UnitsConsumed * rate.
	ElectricityCost decimal.Decimal

	// Total = BaseRent + ElectricityCost.
	Total decimal.Decimal

	// CreatedAt is the Unix timestamp (nanoseconds) when the invoice was stored.
	CreatedAt int64
}

// Rate returns the snapshotted electricity rate, falling back to
// DefaultElectricityRate for records stored without one.
func (i *Invoice) Rate() decimal.Decimal {
	if i.ElectricityRate.Valid {
		return i.ElectricityRate.Decimal
	}
	return DefaultElectricityRate
}
