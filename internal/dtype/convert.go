package dtype

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/robert-malhotra/go-cstruct/internal/binary"
)

// Shape classifies the in-memory form of a field value.
type Shape uint8

const (
	// ShapeScalar is a single value (number, bool, nil or a nested record map).
	ShapeScalar Shape = iota
	// ShapeSequence is any slice or array other than []byte.
	ShapeSequence
	// ShapeString is a character string.
	ShapeString
	// ShapeBytes is a raw byte block.
	ShapeBytes
	// ShapePlaceholder is a function value that stands in for the default.
	ShapePlaceholder
)

func (s Shape) String() string {
	switch s {
	case ShapeScalar:
		return "scalar"
	case ShapeSequence:
		return "sequence"
	case ShapeString:
		return "string"
	case ShapeBytes:
		return "bytes"
	case ShapePlaceholder:
		return "placeholder"
	default:
		return fmt.Sprintf("Shape(%d)", uint8(s))
	}
}

// IsCollection reports whether values of this shape decode to a collection
// regardless of their element count.
func (s Shape) IsCollection() bool {
	return s == ShapeSequence || s == ShapeString || s == ShapeBytes
}

// ShapeOf returns the shape of v.
func ShapeOf(v any) Shape {
	switch v.(type) {
	case nil, json.Number:
		return ShapeScalar
	case string:
		return ShapeString
	case []byte:
		return ShapeBytes
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return ShapeSequence
	case reflect.String:
		return ShapeString
	case reflect.Func:
		return ShapePlaceholder
	}
	return ShapeScalar
}

// Count infers the element count of v when stored as type t.
// Strings count character codes, byte blocks count whole elements of t,
// sequences count their items and everything else counts as one element.
func Count(t Type, v any) (int, error) {
	switch ShapeOf(v) {
	case ShapeString:
		if !t.Valid() {
			return 0, fmt.Errorf("%w: string value for %s field", ErrInvalidValue, t)
		}
		return len(StringCodes(t, reflect.ValueOf(v).String())), nil
	case ShapeBytes:
		size := t.Size()
		if size == 0 {
			return 0, fmt.Errorf("%w: byte block value for %s field", ErrInvalidValue, t)
		}
		b := v.([]byte)
		if len(b)%size != 0 {
			return 0, fmt.Errorf("%w: %d-byte block is not a multiple of the %s width", ErrInvalidValue, len(b), t)
		}
		return len(b) / size, nil
	case ShapeSequence:
		return reflect.ValueOf(v).Len(), nil
	default:
		return 1, nil
	}
}

// Elements coerces v into an indexable element sequence for type t.
// Placeholders become a single def element. Byte blocks are returned as
// one element per byte; writers copy them verbatim instead.
func Elements(t Type, v any, def any) []any {
	switch ShapeOf(v) {
	case ShapeString:
		codes := StringCodes(t, reflect.ValueOf(v).String())
		out := make([]any, len(codes))
		for i, c := range codes {
			out[i] = c
		}
		return out
	case ShapeBytes:
		b := v.([]byte)
		out := make([]any, len(b))
		for i, c := range b {
			out[i] = c
		}
		return out
	case ShapeSequence:
		rv := reflect.ValueOf(v)
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	case ShapePlaceholder:
		return []any{def}
	default:
		return []any{v}
	}
}

// StringCodes returns the character codes of s for a field of type t:
// UTF-8 bytes for 1-byte types, UTF-16 code units for 2-byte types and
// code points for wider types.
func StringCodes(t Type, s string) []uint32 {
	switch t.Size() {
	case 1:
		codes := make([]uint32, len(s))
		for i := 0; i < len(s); i++ {
			codes[i] = uint32(s[i])
		}
		return codes
	case 2:
		units := utf16.Encode([]rune(s))
		codes := make([]uint32, len(units))
		for i, u := range units {
			codes[i] = uint32(u)
		}
		return codes
	default:
		codes := make([]uint32, 0, utf8.RuneCountInString(s))
		for _, r := range s {
			codes = append(codes, uint32(r))
		}
		return codes
	}
}

// CodesString converts decoded character codes back into a string, the
// inverse of StringCodes.
func CodesString(t Type, codes []any) string {
	switch t.Size() {
	case 1:
		b := make([]byte, len(codes))
		for i, c := range codes {
			b[i] = byte(codeOf(c))
		}
		return string(b)
	case 2:
		units := make([]uint16, len(codes))
		for i, c := range codes {
			units[i] = uint16(codeOf(c))
		}
		return string(utf16.Decode(units))
	default:
		runes := make([]rune, len(codes))
		for i, c := range codes {
			runes[i] = rune(codeOf(c))
		}
		return string(runes)
	}
}

// CutCodes returns how many of codes fit in n elements without splitting a
// character: a UTF-8 sequence for 1-byte types or a surrogate pair for
// 2-byte types.
func CutCodes(t Type, codes []any, n int) int {
	if n >= len(codes) {
		return len(codes)
	}
	switch t.Size() {
	case 1:
		for n > 0 && !utf8.RuneStart(byte(codeOf(codes[n]))) {
			n--
		}
	case 2:
		if c := codeOf(codes[n]); n > 0 && c >= 0xDC00 && c <= 0xDFFF {
			n--
		}
	}
	return n
}

func codeOf(v any) uint32 {
	if f, ok := v.(float32); ok {
		return uint32(f)
	}
	if f, ok := v.(float64); ok {
		return uint32(f)
	}
	bits, _ := intBits(v)
	return uint32(bits)
}

// Decode reads one element of type t at the reader's cursor.
func Decode(t Type, r *binary.Reader) (any, error) {
	switch t {
	case Int8:
		v, err := r.ReadUint8()
		return int8(v), err
	case Uint8:
		return r.ReadUint8()
	case Int16:
		v, err := r.ReadUint16()
		return int16(v), err
	case Uint16:
		return r.ReadUint16()
	case Int32:
		v, err := r.ReadUint32()
		return int32(v), err
	case Uint32:
		return r.ReadUint32()
	case Float32:
		v, err := r.ReadUint32()
		return math.Float32frombits(v), err
	case Int64:
		v, err := r.ReadUint64()
		return int64(v), err
	case Uint64:
		return r.ReadUint64()
	case Float64:
		v, err := r.ReadUint64()
		return math.Float64frombits(v), err
	default:
		return nil, fmt.Errorf("%w: cannot decode %s", ErrUnknownType, t)
	}
}

// DecodeUint reads an unsigned length of integer type t.
func DecodeUint(t Type, r *binary.Reader) (uint64, error) {
	if !t.IsInteger() {
		return 0, fmt.Errorf("%w: %s cannot hold a length", ErrUnknownType, t)
	}
	n, err := r.ReadUintN(t.Size())
	if err != nil {
		return 0, err
	}
	if t.Signed() && n > t.MaxUint()>>1 {
		return 0, fmt.Errorf("%w: negative %s length", ErrInvalidValue, t)
	}
	return n, nil
}

// MakeSlice builds a typed slice ([]uint16, []float32, ...) from decoded elements.
func MakeSlice(t Type, vals []any) (any, error) {
	elemType, err := t.GoType()
	if err != nil {
		return nil, err
	}
	out := reflect.MakeSlice(reflect.SliceOf(elemType), len(vals), len(vals))
	for i, v := range vals {
		rv := reflect.ValueOf(v)
		if rv.Type() != elemType {
			return nil, fmt.Errorf("%w: element %d is %T, want %s", ErrInvalidValue, i, v, elemType)
		}
		out.Index(i).Set(rv)
	}
	return out.Interface(), nil
}
