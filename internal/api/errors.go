package api

import (
	"errors"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"
)

// NewValidationError builds an InvalidArgument error whose detail is a
// google.protobuf.Struct mapping each rejected field to its message.
func NewValidationError(err error, fields map[string]string) *connect.Error {
	cerr := connect.NewError(connect.CodeInvalidArgument, err)

	values := make(map[string]any, len(fields))
	for field, msg := range fields {
		values[field] = msg
	}
	s, serr := structpb.NewStruct(values)
	if serr != nil {
		return cerr
	}
	if detail, derr := connect.NewErrorDetail(s); derr == nil {
		cerr.AddDetail(detail)
	}
	return cerr
}

// FieldErrors extracts the field map attached by NewValidationError.
// It returns nil for any other error.
func FieldErrors(err error) map[string]string {
	var cerr *connect.Error
	if !errors.As(err, &cerr) {
		return nil
	}
	for _, detail := range cerr.Details() {
		msg, derr := detail.Value()
		if derr != nil {
			continue
		}
		s, ok := msg.(*structpb.Struct)
		if !ok {
			continue
		}
		fields := make(map[string]string, len(s.GetFields()))
		for field, v := range s.GetFields() {
			fields[field] = v.GetStringValue()
		}
		return fields
	}
	return nil
}
