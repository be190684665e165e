// Package results holds Result, a closed two-variant value describing how a
// computation settled: either Success with the produced data or a Failure
// carrying whatever failure payload was captured.
package results

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

// ErrUndecodableError is returned when decoding a failure whose E is a concrete error
// type: its message survives encoding, the value itself does not.
var ErrUndecodableError = errors.New("failure payload of a concrete error type cannot be decoded")

var (
	errorType       = reflect.TypeOf((*error)(nil)).Elem()
	unmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()
)

// Result is a tagged union. Success is the discriminant: when it is true Data
// holds the produced value, otherwise Error holds the failure payload. The
// field not selected by Success holds its zero value and carries no meaning.
//
// T and E are unconstrained and never inspected.
type Result[T any, E any] struct {
	Success bool
	Data    T
	Error   E
}

// Success returns a successful Result holding val.
func Success[T any, E any](val T) Result[T, E] {
	return Result[T, E]{Success: true, Data: val}
}

// Failure returns a failed Result holding the failure payload e.
func Failure[T any, E any](e E) Result[T, E] {
	return Result[T, E]{Error: e}
}

// New converts Go's (value, error) convention into a Result. A nil err yields a success.
func New[T any](val T, err error) Result[T, error] {
	if err != nil {
		return Failure[T](err)
	}
	return Success[T, error](val)
}

// Unwrap converts a Result back into Go's (value, error) convention.
func Unwrap[T any](r Result[T, error]) (T, error) {
	if !r.Success {
		return *new(T), r.Error
	}
	return r.Data, nil
}

// Get destructures the Result. ok reports which of val and e is meaningful.
func (r Result[T, E]) Get() (val T, e E, ok bool) {
	return r.Data, r.Error, r.Success
}

// MarshalJSON renders {"success":true,"data":...} or {"success":false,"error":...}.
// A failure payload that implements error is rendered by its message; a nil one as null.
func (r Result[T, E]) MarshalJSON() ([]byte, error) {
	if r.Success {
		return json.Marshal(struct {
			Success bool `json:"success"`
			Data    T    `json:"data"`
		}{true, r.Data})
	}

	var payload any = r.Error
	if err, ok := payload.(error); ok {
		if isNil(err) {
			payload = nil
		} else {
			payload = err.Error()
		}
	}

	return json.Marshal(struct {
		Success bool `json:"success"`
		Error   any  `json:"error"`
	}{false, payload})
}

// UnmarshalJSON accepts the shape produced by MarshalJSON. When E is error the
// message is restored with errors.New. Any other E that implements error, and not
// json.Unmarshaler, cannot be rebuilt from its message and yields ErrUndecodableError.
func (r *Result[T, E]) UnmarshalJSON(b []byte) error {
	var w struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	out := Result[T, E]{Success: w.Success}
	switch {
	case w.Success:
		if len(w.Data) > 0 {
			if err := json.Unmarshal(w.Data, &out.Data); err != nil {
				return fmt.Errorf("decoding result data: %w", err)
			}
		}
	case len(w.Error) > 0 && string(w.Error) != "null":
		if p, ok := any(&out.Error).(*error); ok {
			var msg string
			if err := json.Unmarshal(w.Error, &msg); err != nil {
				return fmt.Errorf("decoding result error: %w", err)
			}
			*p = errors.New(msg)
			break
		}
		if et := reflect.TypeOf(&out.Error).Elem(); et.Implements(errorType) && !reflect.PointerTo(et).Implements(unmarshalerType) {
			return fmt.Errorf("%w: %s", ErrUndecodableError, et)
		}
		if err := json.Unmarshal(w.Error, &out.Error); err != nil {
			return fmt.Errorf("decoding result error: %w", err)
		}
	}

	*r = out
	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
