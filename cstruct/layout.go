package cstruct

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"

	"github.com/robert-malhotra/go-cstruct/internal/dtype"
)

// Type identifies the element type of a leaf field.
type Type = dtype.Type

// Primitive field types.
const (
	Int8    = dtype.Int8
	Uint8   = dtype.Uint8
	Int16   = dtype.Int16
	Uint16  = dtype.Uint16
	Int32   = dtype.Int32
	Uint32  = dtype.Uint32
	Float32 = dtype.Float32
	Int64   = dtype.Int64
	Uint64  = dtype.Uint64
	Float64 = dtype.Float64
)

// ParseType returns the primitive type named by tag, ignoring case.
func ParseType(tag string) (Type, error) {
	return dtype.Parse(tag)
}

// IsTypeTag reports whether tag names a primitive type.
func IsTypeTag(tag string) bool {
	return dtype.IsTag(tag)
}

// Member is one named entry of a Layout.
//
// Spec takes one of the shorthand forms:
//
//	"uint8"                          one element, value = default
//	[]any{"uint8"}                   one element, value = default
//	[]any{"uint8", v}                count inferred from v
//	[]any{"uint8", v, 8}             explicit count
//	[]any{"uint8", v, "uint16"}      self-describing, uint16 length prefix
//	[]any{"uint8", v, "uint16", b}   explicit self-describing flag
//	*Struct                          nested struct as a single element
//	Layout                           nested mapping
//
// The first two forms always hold one element, even when the default is a
// string or sequence; a later update infers the count from the new value.
// A *Struct may replace the type tag in any list form. Already normalized
// *Leaf and Leaf values are accepted unchanged.
type Member struct {
	Name string
	Spec any
}

// Layout is an ordered list of members. Order is wire order.
type Layout []Member

// M is shorthand for constructing a Member.
func M(name string, spec any) Member {
	return Member{Name: name, Spec: spec}
}

// normalizeLeaf turns a shorthand spec into a canonical leaf.
func normalizeLeaf(spec any, def any) (*Leaf, error) {
	switch s := spec.(type) {
	case *Leaf:
		if s == nil {
			return nil, fmt.Errorf("%w: nil leaf", ErrInvalidLayout)
		}
		l := *s
		return &l, l.validate()
	case Leaf:
		return &s, s.validate()
	case string, *Struct:
		return normalizeList([]any{s}, def)
	case []any:
		return normalizeList(s, def)
	case []string:
		list := make([]any, len(s))
		for i, v := range s {
			list[i] = v
		}
		return normalizeList(list, def)
	default:
		return nil, fmt.Errorf("%w: unsupported field spec %T", ErrInvalidLayout, spec)
	}
}

func normalizeList(list []any, def any) (*Leaf, error) {
	if len(list) == 0 || len(list) > 4 {
		return nil, fmt.Errorf("%w: field spec needs 1 to 4 elements, got %d", ErrInvalidLayout, len(list))
	}

	l := &Leaf{Value: def, Length: 1}
	switch typed := list[0].(type) {
	case string:
		t, err := dtype.Parse(typed)
		if err != nil {
			return nil, err
		}
		l.Type = t
	case *Struct:
		if typed == nil {
			return nil, fmt.Errorf("%w: nil struct type", ErrInvalidLayout)
		}
		l.Type = dtype.Struct
		l.Struct = typed
	default:
		return nil, fmt.Errorf("%w: field type must be a tag or *Struct, got %T", ErrInvalidLayout, list[0])
	}

	if len(list) >= 2 {
		l.Value = list[1]
		if l.Value == nil {
			l.Value = ""
		}
	}

	if len(list) >= 3 && list[2] != nil {
		switch length := list[2].(type) {
		case string:
			prefix, err := dtype.Parse(length)
			if err != nil {
				return nil, fmt.Errorf("length prefix: %w", err)
			}
			l.Prefix = prefix
			l.Vary = true
		default:
			n, ok := lengthOf(length)
			if !ok {
				return nil, fmt.Errorf("%w: length must be a count or a type tag, got %v", ErrInvalidLayout, list[2])
			}
			l.Length = n
			l.Fixed = true
		}
	}

	if len(list) == 4 {
		vary, ok := list[3].(bool)
		if !ok {
			return nil, fmt.Errorf("%w: vary flag must be a bool, got %T", ErrInvalidLayout, list[3])
		}
		l.Vary = vary
	}

	if err := l.validate(); err != nil {
		return nil, err
	}
	if len(list) == 1 {
		// No value given: one element of the default, whatever its shape.
		return l, nil
	}
	return l, l.resolve()
}

// lengthOf converts a non-negative integral value to an element count.
func lengthOf(v any) (int, bool) {
	if n, ok := v.(json.Number); ok {
		i, err := n.Int64()
		if err != nil || i < 0 {
			return 0, false
		}
		return int(i), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.Int() < 0 {
			return 0, false
		}
		return int(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if rv.Uint() > math.MaxInt32 {
			return 0, false
		}
		return int(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
			return 0, false
		}
		return int(f), true
	}
	return 0, false
}
