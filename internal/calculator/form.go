package calculator

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date format used by invoice forms.
const DateLayout = "2006-01-02"

// Bounds on amounts accepted from forms.
const (
	MaxIntegerDigits  = 15
	MaxFractionDigits = 12
)

// InvalidNumberMessage is reported for values ParseAmount rejects.
const InvalidNumberMessage = "must be a finite number within range"

// InvoiceForm is the raw, string-typed shape of an invoice submission.
// Empty strings are treated as absent.
type InvoiceForm struct {
	PreviousMonthReading string
	PreviousCarriedOver  bool
	CurrentMonthReading  string
	BaseRent             string
	ElectricityRate      string
	InvoiceDate          string
}

// ParseInvoiceForm converts form into an InvoiceInput. Values that are not
// finite numbers, or dates in neither DateLayout nor RFC 3339, are reported
// as ErrInvalidValue field errors.
func ParseInvoiceForm(form InvoiceForm) (InvoiceInput, error) {
	verr := &ValidationError{}
	in := parseInvoiceForm(form, verr)
	return in, verr.orNil()
}

// ComputeInvoiceForm parses and computes in one pass using DefaultLimits.
func ComputeInvoiceForm(form InvoiceForm, now time.Time) (*InvoiceComputation, error) {
	return DefaultLimits.ComputeInvoiceForm(form, now)
}

// ComputeInvoiceForm parses and computes in one pass, so parse failures and
// rule violations on other fields are reported together.
func (l Limits) ComputeInvoiceForm(form InvoiceForm, now time.Time) (*InvoiceComputation, error) {
	verr := &ValidationError{}
	in := parseInvoiceForm(form, verr)
	l.validate(in, now, verr)
	if err := verr.orNil(); err != nil {
		return nil, err
	}
	return l.compute(in), nil
}

// CheckBaseRent validates a standalone base rent, e.g. on a tenant record.
// It returns a soft warning when the value is above the ceiling.
func (l Limits) CheckBaseRent(v *decimal.Decimal) (string, error) {
	return checkAmount(FieldBaseRent, v, l.BaseRentCeiling)
}

// CheckRate validates a standalone electricity rate, e.g. on settings.
func (l Limits) CheckRate(v *decimal.Decimal) (string, error) {
	return checkAmount(FieldElectricityRate, v, l.RateCeiling)
}

// ParseAmount parses a decimal field. An empty string yields nil. Values with
// more than MaxIntegerDigits integer digits or MaxFractionDigits fraction
// digits fail with ErrInvalidValue.
func ParseAmount(raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, err
	}
	if err := checkRange(d); err != nil {
		return nil, err
	}
	return &d, nil
}

// checkRange reads only the exponent and coefficient length, so the value is
// never expanded.
func checkRange(d decimal.Decimal) error {
	exp := int64(d.Exponent())
	if exp < -MaxFractionDigits {
		return fmt.Errorf("%w: more than %d fraction digits", ErrInvalidValue, MaxFractionDigits)
	}
	if int64(d.NumDigits())+exp > MaxIntegerDigits {
		return fmt.Errorf("%w: more than %d integer digits", ErrInvalidValue, MaxIntegerDigits)
	}
	return nil
}

// ParseDate accepts DateLayout or RFC 3339. An empty string yields the zero time.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func parseInvoiceForm(form InvoiceForm, verr *ValidationError) InvoiceInput {
	in := InvoiceInput{PreviousCarriedOver: form.PreviousCarriedOver}
	in.PreviousMonthReading = parseField(FieldPreviousMonthReading, form.PreviousMonthReading, verr)
	in.CurrentMonthReading = parseField(FieldCurrentMonthReading, form.CurrentMonthReading, verr)
	in.BaseRent = parseField(FieldBaseRent, form.BaseRent, verr)
	in.ElectricityRate = parseField(FieldElectricityRate, form.ElectricityRate, verr)

	date, err := ParseDate(form.InvoiceDate)
	if err != nil {
		verr.add(FieldInvoiceDate, ErrInvalidValue, "must be a date in YYYY-MM-DD format")
	}
	in.InvoiceDate = date
	return in
}

func parseField(field, raw string, verr *ValidationError) *decimal.Decimal {
	v, err := ParseAmount(raw)
	if err != nil {
		verr.add(field, ErrInvalidValue, InvalidNumberMessage)
		return nil
	}
	return v
}

func checkAmount(field string, v *decimal.Decimal, ceiling decimal.Decimal) (string, error) {
	verr := &ValidationError{}
	if v == nil {
		verr.add(field, ErrMissingField, "is required")
	}
	checkPositive(field, v, verr)
	if err := verr.orNil(); err != nil {
		return "", err
	}
	return ceilingWarning(*v, ceiling), nil
}
