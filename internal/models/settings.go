package models

import "github.com/shopspring/decimal"

// DefaultElectricityRate applies when a user never saved settings, and when
// an invoice stored before rates were snapshotted is read back.
var DefaultElectricityRate = decimal.NewFromInt(15)

// Settings is the per-user singleton of billing preferences.
type Settings struct {
	UserID string

	// ElectricityRate is the price of one metered unit.
	ElectricityRate decimal.Decimal

	UpdatedAt int64
}

// AccountSummary aggregates a user's records for the settings page.
type AccountSummary struct {
	TotalInvoices int
	TotalRevenue  decimal.Decimal
	TotalTenants  int
}
