package calculator

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel kinds for invoice input failures. A *FieldError unwraps to exactly one of them.
var (
	ErrMissingField        = errors.New("missing field")
	ErrInvalidValue        = errors.New("invalid value")
	ErrInconsistentReading = errors.New("inconsistent reading")
)

// Field names as they appear in forms and request bodies.
const (
	FieldPreviousMonthReading = "previousMonthReading"
	FieldCurrentMonthReading  = "currentMonthReading"
	FieldBaseRent             = "baseRent"
	FieldElectricityRate      = "electricityRate"
	FieldInvoiceDate          = "invoiceDate"
)

// FieldError describes one rejected field.
type FieldError struct {
	Field   string
	Kind    error
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error {
	return e.Kind
}

// ValidationError collects every field rejected by a single computation so a
// form can highlight all of them at once.
type ValidationError struct {
	Errors []*FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Error()
	}
	return "invoice validation failed: " + strings.Join(msgs, "; ")
}

// Unwrap exposes the individual field errors to errors.Is and errors.As.
func (e *ValidationError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, fe := range e.Errors {
		errs[i] = fe
	}
	return errs
}

// Fields returns the field -> message map.
func (e *ValidationError) Fields() map[string]string {
	fields := make(map[string]string, len(e.Errors))
	for _, fe := range e.Errors {
		fields[fe.Field] = fe.Message
	}
	return fields
}

// Has reports whether field was rejected.
func (e *ValidationError) Has(field string) bool {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

func (e *ValidationError) add(field string, kind error, format string, args ...any) {
	// one message per field: the first rule broken wins
	if e.Has(field) {
		return
	}
	e.Errors = append(e.Errors, &FieldError{
		Field:   field,
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	})
}

// orNil returns nil when nothing was collected, keeping the error sorted by field.
func (e *ValidationError) orNil() error {
	if len(e.Errors) == 0 {
		return nil
	}
	sort.SliceStable(e.Errors, func(i, j int) bool {
		return e.Errors[i].Field < e.Errors[j].Field
	})
	return e
}
