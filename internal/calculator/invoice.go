// Package calculator derives invoice amounts from meter readings, base rent
// and an electricity rate. Everything here is pure: no storage, no clock
// reads, no shared state.
package calculator

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceInput holds caller-supplied values. Nil pointers are treated as absent.
type InvoiceInput struct {
	// PreviousMonthReading is optional; absent means 0.
	PreviousMonthReading *decimal.Decimal

	// PreviousCarriedOver marks PreviousMonthReading as resolved from the
	// tenant's last invoice rather than entered by the caller.
	PreviousCarriedOver bool

	CurrentMonthReading *decimal.Decimal
	BaseRent            *decimal.Decimal
	ElectricityRate     *decimal.Decimal
	InvoiceDate         time.Time
}

// InvoiceComputation is the result of a successful computation. Values keep
// full decimal precision; use FormatAmount for display.
type InvoiceComputation struct {
	PreviousMonthReading decimal.Decimal
	CurrentMonthReading  decimal.Decimal
	BaseRent             decimal.Decimal
	ElectricityRate      decimal.Decimal

	// InvoiceDate is the calendar day, as midnight UTC.
	InvoiceDate time.Time

	UnitsConsumed   decimal.Decimal
	ElectricityCost decimal.Decimal
	Total           decimal.Decimal

	// Warnings are non-blocking notes keyed by field.
	Warnings map[string]string
}

// Limits are the soft ceilings above which a value is accepted with a warning.
// A zero ceiling disables the warning.
type Limits struct {
	BaseRentCeiling decimal.Decimal
	RateCeiling     decimal.Decimal
}

// DefaultLimits flags base rents above 1,000,000 and rates above 1000.
var DefaultLimits = Limits{
	BaseRentCeiling: decimal.NewFromInt(1_000_000),
	RateCeiling:     decimal.NewFromInt(1000),
}

// ComputeInvoice validates in and derives units, electricity cost and total
// using DefaultLimits. now is the generation time; the invoice date may not be
// on a later calendar day.
func ComputeInvoice(in InvoiceInput, now time.Time) (*InvoiceComputation, error) {
	return DefaultLimits.ComputeInvoice(in, now)
}

// ComputeInvoice validates in and derives the billed amounts. On failure the
// error is a *ValidationError listing every rejected field.
func (l Limits) ComputeInvoice(in InvoiceInput, now time.Time) (*InvoiceComputation, error) {
	verr := &ValidationError{}
	l.validate(in, now, verr)
	if err := verr.orNil(); err != nil {
		return nil, err
	}
	return l.compute(in), nil
}

// UnitsConsumed is current - previous, floored at zero.
func UnitsConsumed(previous, current decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, current.Sub(previous))
}

// FormatAmount renders a value with two decimal places.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func (l Limits) compute(in InvoiceInput) *InvoiceComputation {
	previous := decimal.Zero
	if in.PreviousMonthReading != nil {
		previous = *in.PreviousMonthReading
	}
	current := *in.CurrentMonthReading

	units := UnitsConsumed(previous, current)
	cost := units.Mul(*in.ElectricityRate)

	res := &InvoiceComputation{
		PreviousMonthReading: previous,
		CurrentMonthReading:  current,
		BaseRent:             *in.BaseRent,
		ElectricityRate:      *in.ElectricityRate,
		InvoiceDate:          CalendarDay(in.InvoiceDate),
		UnitsConsumed:        units,
		ElectricityCost:      cost,
		Total:                in.BaseRent.Add(cost),
		Warnings:             map[string]string{},
	}

	if w := ceilingWarning(res.BaseRent, l.BaseRentCeiling); w != "" {
		res.Warnings[FieldBaseRent] = w
	}
	if w := ceilingWarning(res.ElectricityRate, l.RateCeiling); w != "" {
		res.Warnings[FieldElectricityRate] = w
	}
	if current.LessThan(previous) {
		res.Warnings[FieldCurrentMonthReading] = "below the carried-over previous reading, units consumed set to 0"
	}
	return res
}

func (l Limits) validate(in InvoiceInput, now time.Time, verr *ValidationError) {
	if in.CurrentMonthReading == nil {
		verr.add(FieldCurrentMonthReading, ErrMissingField, "is required")
	}
	if in.BaseRent == nil {
		verr.add(FieldBaseRent, ErrMissingField, "is required")
	}
	if in.ElectricityRate == nil {
		verr.add(FieldElectricityRate, ErrMissingField, "is required")
	}
	if in.InvoiceDate.IsZero() {
		verr.add(FieldInvoiceDate, ErrMissingField, "is required")
	}

	checkReading(FieldPreviousMonthReading, in.PreviousMonthReading, verr)
	checkReading(FieldCurrentMonthReading, in.CurrentMonthReading, verr)
	checkPositive(FieldBaseRent, in.BaseRent, verr)
	checkPositive(FieldElectricityRate, in.ElectricityRate, verr)
	if !in.InvoiceDate.IsZero() && afterDay(in.InvoiceDate, now) {
		verr.add(FieldInvoiceDate, ErrInvalidValue, "must not be in the future")
	}

	// A carried-over previous reading falls back to the floor-at-zero policy instead.
	if in.PreviousCarriedOver || in.PreviousMonthReading == nil || in.CurrentMonthReading == nil {
		return
	}
	if verr.Has(FieldPreviousMonthReading) || verr.Has(FieldCurrentMonthReading) {
		return
	}
	if in.CurrentMonthReading.LessThan(*in.PreviousMonthReading) {
		verr.add(FieldCurrentMonthReading, ErrInconsistentReading,
			"must not be less than the previous month reading (%s)", in.PreviousMonthReading.String())
	}
}

func checkReading(field string, v *decimal.Decimal, verr *ValidationError) {
	if v != nil && v.IsNegative() {
		verr.add(field, ErrInvalidValue, "must not be negative")
	}
}

func checkPositive(field string, v *decimal.Decimal, verr *ValidationError) {
	if v != nil && !v.IsPositive() {
		verr.add(field, ErrInvalidValue, "must be greater than zero")
	}
}

func ceilingWarning(v, ceiling decimal.Decimal) string {
	if ceiling.IsZero() || !v.GreaterThan(ceiling) {
		return ""
	}
	return "unusually high, above " + ceiling.String()
}

// CalendarDay returns midnight UTC of t's date as seen in t's own location.
// 2025-06-15T00:30:00+05:30 becomes 2025-06-15T00:00:00Z.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// afterDay compares calendar days: d's date in its own location against now's
// date in now's location.
func afterDay(d, now time.Time) bool {
	return CalendarDay(d).After(CalendarDay(now))
}
