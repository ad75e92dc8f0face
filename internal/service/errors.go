package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"

	"github.com/mmynk/rentbook/internal/api"
	"github.com/mmynk/rentbook/internal/auth"
	"github.com/mmynk/rentbook/internal/billing"
	"github.com/mmynk/rentbook/internal/calculator"
	"github.com/mmynk/rentbook/internal/middleware"
	"github.com/mmynk/rentbook/internal/storage"
)

var errInvalidRequest = errors.New("invalid request")

var validate = newValidator()

// newValidator reports struct fields by their JSON names so field errors
// line up with request bodies.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// requestFields runs tag validation on msg and returns field -> message for
// every failure. The map is never nil so callers can add their own checks.
func requestFields(msg any) map[string]string {
	fields := map[string]string{}
	err := validate.Struct(msg)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fields
	}
	for _, fe := range verrs {
		fields[fe.Field()] = describe(fe)
	}
	return fields
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	default:
		return "is invalid"
	}
}

// checkRequest is requestFields for handlers with no checks of their own.
func checkRequest(msg any) error {
	if fields := requestFields(msg); len(fields) > 0 {
		return api.NewValidationError(errInvalidRequest, fields)
	}
	return nil
}

// mergeValidation copies a calculator validation failure into fields.
// Other errors are returned unchanged.
func mergeValidation(err error, fields map[string]string) error {
	var verr *calculator.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	for field, msg := range verr.Fields() {
		if _, ok := fields[field]; !ok {
			fields[field] = msg
		}
	}
	return nil
}

// invoiceError maps a calculator failure to InvalidArgument with field details.
func invoiceError(err error) *connect.Error {
	var verr *calculator.ValidationError
	if errors.As(err, &verr) {
		return api.NewValidationError(verr, verr.Fields())
	}
	return connect.NewError(connect.CodeInternal, err)
}

func storeError(err error) *connect.Error {
	if errors.Is(err, storage.ErrNotFound) {
		return connect.NewError(connect.CodeNotFound, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}

func lookupError(err error) *connect.Error {
	if errors.Is(err, billing.ErrLookup) {
		return connect.NewError(connect.CodeUnavailable, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}

// requireUser returns the user ID placed in ctx by the auth interceptor.
func requireUser(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}
