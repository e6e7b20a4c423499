package dtype

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/robert-malhotra/go-cstruct/internal/binary"
)

// ErrInvalidValue is returned when a Go value cannot be written as the requested type.
var ErrInvalidValue = errors.New("invalid value")

// Encode writes one element of type t at the writer's cursor.
func Encode(t Type, w *binary.Writer, v any) error {
	if !t.Valid() {
		return fmt.Errorf("%w: cannot encode as %s", ErrUnknownType, t)
	}

	if t.IsFloat() {
		f, err := floatValue(v)
		if err != nil {
			return fmt.Errorf("%s: %w", t, err)
		}
		if t == Float32 {
			return w.WriteUint32(math.Float32bits(float32(f)))
		}
		return w.WriteUint64(math.Float64bits(f))
	}

	bits, err := intBits(v)
	if err != nil {
		return fmt.Errorf("%s: %w", t, err)
	}
	return w.WriteUintN(bits, t.Size())
}

// EncodeUint writes n as an unsigned integer of type t. Unlike Encode it
// refuses values that do not fit the width of t, since a truncated length
// prefix would desynchronize every field that follows it.
func EncodeUint(t Type, w *binary.Writer, n uint64) error {
	if !t.IsInteger() {
		return fmt.Errorf("%w: %s cannot hold a length", ErrUnknownType, t)
	}
	limit := t.MaxUint()
	if t.Signed() {
		limit >>= 1
	}
	if n > limit {
		return fmt.Errorf("%w: %d overflows %s", ErrInvalidValue, n, t)
	}
	return w.WriteUintN(n, t.Size())
}

// intBits returns the two's complement bit pattern of v.
func intBits(v any) (uint64, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case int:
		return uint64(x), nil
	case int8:
		return uint64(x), nil
	case int16:
		return uint64(x), nil
	case int32:
		return uint64(x), nil
	case int64:
		return uint64(x), nil
	case uint:
		return uint64(x), nil
	case uint8:
		return uint64(x), nil
	case uint16:
		return uint64(x), nil
	case uint32:
		return uint64(x), nil
	case uint64:
		return x, nil
	case float32:
		return floatBits(float64(x)), nil
	case float64:
		return floatBits(x), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		return numberBits(x)
	}

	// Named types such as `type Flags uint16`.
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return uint64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint(), nil
	case reflect.Float32, reflect.Float64:
		return floatBits(rv.Float()), nil
	case reflect.Bool:
		if rv.Bool() {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("%w: cannot encode %T as an integer", ErrInvalidValue, v)
}

// floatBits truncates f toward zero. Values at or above 2^63 take the
// unsigned path so uint64 fields keep their full range.
func floatBits(f float64) uint64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= 1<<63:
		return uint64(f)
	default:
		return uint64(int64(f))
	}
}

func numberBits(n json.Number) (uint64, error) {
	s := n.String()
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return uint64(i), nil
	}
	if u, err := strconv.ParseUint(s, 10, 64); err == nil {
		return u, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, s)
	}
	return floatBits(f), nil
}

// floatValue converts v to float64.
func floatValue(v any) (float64, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case float32:
		return float64(x), nil
	case float64:
		return x, nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, x.String())
		}
		return f, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Bool:
		if rv.Bool() {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("%w: cannot encode %T as a float", ErrInvalidValue, v)
}
