// Package billing resolves the stored defaults a new invoice starts from:
// the carried-over meter reading and the electricity rate to snapshot.
package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mmynk/rentbook/internal/models"
)

// ErrLookup marks a failed store call made while resolving a default.
var ErrLookup = errors.New("lookup failed")

// LookupError wraps the store error behind a failed resolution.
type LookupError struct {
	Op  string
	Err error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap lets callers match both ErrLookup and the underlying store error.
func (e *LookupError) Unwrap() []error {
	return []error{ErrLookup, e.Err}
}

// InvoiceLister is the slice of the record store needed for carry-over.
type InvoiceLister interface {
	ListInvoicesByTenant(ctx context.Context, userID, tenantID string) ([]*models.Invoice, error)
}

// SettingsGetter is the slice of the record store needed for rate resolution.
// GetSettings returns nil and no error when the user never saved settings.
type SettingsGetter interface {
	GetSettings(ctx context.Context, userID string) (*models.Settings, error)
}

// Resolver answers carry-over and rate questions for invoice generation.
type Resolver struct {
	invoices    InvoiceLister
	settings    SettingsGetter
	defaultRate decimal.Decimal
}

// NewResolver creates a Resolver. defaultRate is returned by ResolveRate for
// users without settings.
func NewResolver(invoices InvoiceLister, settings SettingsGetter, defaultRate decimal.Decimal) *Resolver {
	return &Resolver{
		invoices:    invoices,
		settings:    settings,
		defaultRate: defaultRate,
	}
}

// LastInvoice returns the tenant's most recent invoice by date, or nil when
// the tenant has none. Among invoices sharing a date the first in store order wins.
func (r *Resolver) LastInvoice(ctx context.Context, userID, tenantID string) (*models.Invoice, error) {
	invoices, err := r.invoices.ListInvoicesByTenant(ctx, userID, tenantID)
	if err != nil {
		return nil, &LookupError{Op: "list tenant invoices", Err: err}
	}
	if len(invoices) == 0 {
		return nil, nil
	}
	return lo.MaxBy(invoices, func(a, b *models.Invoice) bool {
		return a.Date.After(b.Date)
	}), nil
}

// ResolvePreviousReading returns the current reading of the tenant's most
// recent invoice, or zero when there is no history.
func (r *Resolver) ResolvePreviousReading(ctx context.Context, userID, tenantID string) (decimal.Decimal, error) {
	last, err := r.LastInvoice(ctx, userID, tenantID)
	if err != nil {
		return decimal.Zero, err
	}
	if last == nil {
		return decimal.Zero, nil
	}
	return last.CurrentMonthReading, nil
}

// ResolveRate returns the user's stored electricity rate, or the default.
func (r *Resolver) ResolveRate(ctx context.Context, userID string) (decimal.Decimal, error) {
	rate, _, err := r.ResolveRateWithSource(ctx, userID)
	return rate, err
}

// ResolveRateWithSource is ResolveRate that also reports whether the default applied.
func (r *Resolver) ResolveRateWithSource(ctx context.Context, userID string) (decimal.Decimal, bool, error) {
	settings, err := r.settings.GetSettings(ctx, userID)
	if err != nil {
		return decimal.Zero, false, &LookupError{Op: "get settings", Err: err}
	}
	if settings == nil {
		return r.defaultRate, true, nil
	}
	return settings.ElectricityRate, false, nil
}
