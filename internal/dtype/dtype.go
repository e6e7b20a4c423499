package dtype

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrUnknownType is returned when a type tag does not name a primitive type.
var ErrUnknownType = errors.New("unknown type")

// Type identifies the element type of a field.
type Type uint8

// Primitive types in table order, followed by the nested struct placeholder.
const (
	Invalid Type = iota
	Int8
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Float32
	Int64
	Uint64
	Float64
	Struct
)

var typeNames = [...]string{
	Invalid: "invalid",
	Int8:    "int8",
	Uint8:   "uint8",
	Int16:   "int16",
	Uint16:  "uint16",
	Int32:   "int32",
	Uint32:  "uint32",
	Float32: "float32",
	Int64:   "int64",
	Uint64:  "uint64",
	Float64: "float64",
	Struct:  "struct",
}

var typeSizes = [...]int{
	Int8:    1,
	Uint8:   1,
	Int16:   2,
	Uint16:  2,
	Int32:   4,
	Uint32:  4,
	Float32: 4,
	Int64:   8,
	Uint64:  8,
	Float64: 8,
	Struct:  0,
}

// Parse returns the primitive type named by tag. Matching is case-insensitive.
// The "struct" placeholder is not a valid tag.
func Parse(tag string) (Type, error) {
	name := strings.ToLower(strings.TrimSpace(tag))
	for t := Int8; t <= Float64; t++ {
		if typeNames[t] == name {
			return t, nil
		}
	}
	return Invalid, fmt.Errorf("%w: %q", ErrUnknownType, tag)
}

// IsTag reports whether tag names a primitive type.
func IsTag(tag string) bool {
	_, err := Parse(tag)
	return err == nil
}

// String returns the lower-case tag of the type.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// Size returns the width of one element in bytes. Struct and Invalid return 0.
func (t Type) Size() int {
	if t > Invalid && int(t) < len(typeSizes) {
		return typeSizes[t]
	}
	return 0
}

// Valid reports whether t is a primitive type.
func (t Type) Valid() bool {
	return t >= Int8 && t <= Float64
}

// IsFloat reports whether t is a floating-point type.
func (t Type) IsFloat() bool {
	return t == Float32 || t == Float64
}

// IsInteger reports whether t is a fixed-point type.
func (t Type) IsInteger() bool {
	return t.Valid() && !t.IsFloat()
}

// Signed reports whether t is a signed fixed-point type.
func (t Type) Signed() bool {
	switch t {
	case Int8, Int16, Int32, Int64:
		return true
	}
	return false
}

// MaxUint returns the largest unsigned value representable in the width of t.
func (t Type) MaxUint() uint64 {
	switch t.Size() {
	case 1:
		return 0xFF
	case 2:
		return 0xFFFF
	case 4:
		return 0xFFFFFFFF
	case 8:
		return 0xFFFFFFFFFFFFFFFF
	default:
		return 0
	}
}

// GoType returns the Go reflect.Type that decoded elements of t carry.
func (t Type) GoType() (reflect.Type, error) {
	switch t {
	case Int8:
		return reflect.TypeOf(int8(0)), nil
	case Uint8:
		return reflect.TypeOf(uint8(0)), nil
	case Int16:
		return reflect.TypeOf(int16(0)), nil
	case Uint16:
		return reflect.TypeOf(uint16(0)), nil
	case Int32:
		return reflect.TypeOf(int32(0)), nil
	case Uint32:
		return reflect.TypeOf(uint32(0)), nil
	case Float32:
		return reflect.TypeOf(float32(0)), nil
	case Int64:
		return reflect.TypeOf(int64(0)), nil
	case Uint64:
		return reflect.TypeOf(uint64(0)), nil
	case Float64:
		return reflect.TypeOf(float64(0)), nil
	default:
		return nil, fmt.Errorf("%w: %s has no Go type", ErrUnknownType, t)
	}
}
