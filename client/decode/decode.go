// Package decode turns response payloads into values. A Func is chosen
// per call: Dynamic for an untyped JSON value, Typed for a declared model.
package decode

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/adamwoolhether/reqflow/errs"
	"github.com/adamwoolhether/reqflow/internal/validate"
)

// Func decodes a payload into T. Failures are *errs.Error values.
type Func[T any] func(data []byte) (T, error)

var errTrailingData = errors.New("unexpected data after top-level value")

// Dynamic parses data into a generic JSON value: map[string]any,
// []any, string, float64, bool or nil.
func Dynamic(data []byte) (any, error) {
	return dynamic(data, false)
}

// DynamicNumbers is Dynamic with numbers kept as json.Number to
// preserve their precision.
func DynamicNumbers(data []byte) (any, error) {
	return dynamic(data, true)
}

func dynamic(data []byte, useNumber bool) (any, error) {
	d := json.NewDecoder(bytes.NewReader(data))
	if useNumber {
		d.UseNumber()
	}

	var v any
	if err := d.Decode(&v); err != nil {
		return nil, errs.ObjectDecode(err)
	}
	if err := ensureEOF(d); err != nil {
		return nil, errs.ObjectDecode(err)
	}

	return v, nil
}

// Typed returns a Func decoding into T. After decoding, struct models
// are checked against their `validate` tags, so a payload lacking a
// required field fails the same way a mistyped one does.
func Typed[T any]() Func[T] {
	return func(data []byte) (T, error) {
		var v T

		d := json.NewDecoder(bytes.NewReader(data))
		if err := d.Decode(&v); err != nil {
			return v, errs.Decode(err)
		}
		if err := ensureEOF(d); err != nil {
			return v, errs.Decode(err)
		}

		if err := validate.Struct(v); err != nil {
			return v, errs.Decode(fmt.Errorf("validating %T: %w", v, err))
		}

		return v, nil
	}
}

func ensureEOF(d *json.Decoder) error {
	if _, err := d.Token(); !errors.Is(err, io.EOF) {
		return errTrailingData
	}

	return nil
}
