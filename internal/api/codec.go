// Package api defines rentbook's Connect RPC surface: procedure names,
// request and response messages, handler and client constructors.
//
// Messages are plain Go structs encoded as JSON by Codec, so both handlers and
// clients must be built through this package to agree on the codec.
package api

import (
	"bytes"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"github.com/mmynk/rentbook/internal/calculator"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CodecName is the Connect codec name; requests use Content-Type application/json.
const CodecName = "json"

// Codec is a connect.Codec for plain Go structs.
type Codec struct{}

func (Codec) Name() string { return CodecName }

func (Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (Codec) Unmarshal(data []byte, msg any) error {
	// empty unary bodies decode to the zero message
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

// Numeric carries a number from a request body as its literal text, so a
// malformed value is reported against its field instead of failing the whole
// decode. It accepts JSON numbers, strings and null.
type Numeric string

func (n *Numeric) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "null":
		*n = ""
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*n = Numeric(str)
	default:
		*n = Numeric(s)
	}
	return nil
}

func (n Numeric) MarshalJSON() ([]byte, error) {
	if n == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(n))
}

// IsSet reports whether a value was supplied.
func (n Numeric) IsSet() bool {
	return strings.TrimSpace(string(n)) != ""
}

// Decimal parses the value; unset yields nil.
func (n Numeric) Decimal() (*decimal.Decimal, error) {
	return calculator.ParseAmount(string(n))
}

// NumericOf formats d for a request message.
func NumericOf(d decimal.Decimal) Numeric {
	return Numeric(d.String())
}
