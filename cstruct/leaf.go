package cstruct

import (
	"fmt"
	"strconv"

	"github.com/robert-malhotra/go-cstruct/internal/dtype"
)

// Leaf is the canonical descriptor of a single field.
type Leaf struct {
	// Type is the primitive element type. For nested struct fields it is
	// the internal struct placeholder and Struct is set.
	Type Type

	// Struct is the codec of each element when the field embeds another struct.
	Struct *Struct

	// Value is the field's current payload: a scalar, a sequence, a string,
	// a []byte block, a record map (nested struct) or a placeholder func.
	Value any

	// Length is the element count, not the byte count.
	Length int

	// Prefix is the integer type of the length prefix stored in the stream.
	// It is only set when the layout gave a type tag as the length.
	Prefix Type

	// Vary marks a self-describing field: the serialized form starts with a
	// Prefix-typed byte count.
	Vary bool

	// Fixed records that Length was declared explicitly rather than inferred
	// from Value. Fixed fields keep their length across updates.
	Fixed bool
}

// IsStruct reports whether the leaf embeds another struct codec.
func (l *Leaf) IsStruct() bool {
	return l.Struct != nil
}

// ElementSize returns the byte width of one element. For nested structs it
// is the sub-codec's current byte length.
func (l *Leaf) ElementSize() int {
	if l.Struct != nil {
		return l.Struct.ByteLength()
	}
	return l.Type.Size()
}

// PrefixSize returns the bytes occupied by the length prefix, 0 when the
// field is not self-describing.
func (l *Leaf) PrefixSize() int {
	if !l.Vary {
		return 0
	}
	return l.Prefix.Size()
}

// Shape returns the shape of the leaf's current value.
func (l *Leaf) Shape() dtype.Shape {
	return dtype.ShapeOf(l.Value)
}

// String renders the leaf as tag[count] or tag[prefix] for self-describing fields.
func (l *Leaf) String() string {
	name := l.Type.String()
	if l.Struct != nil {
		name = "struct"
	}
	if l.Vary {
		return name + "[" + l.Prefix.String() + "]"
	}
	return name + "[" + strconv.Itoa(l.Length) + "]"
}

func (l *Leaf) validate() error {
	if l.Struct != nil {
		l.Type = dtype.Struct
	} else if !l.Type.Valid() {
		return fmt.Errorf("%w: leaf has no element type", ErrInvalidLayout)
	}
	if l.Length < 0 {
		return fmt.Errorf("%w: negative length %d", ErrInvalidLayout, l.Length)
	}
	if l.Vary {
		if !l.Prefix.IsInteger() {
			return fmt.Errorf("%w: self-describing field needs an integer length prefix, got %s", ErrInvalidLayout, l.Prefix)
		}
		if l.Fixed {
			return fmt.Errorf("%w: self-describing field cannot declare a fixed length", ErrInvalidLayout)
		}
	}
	if l.Struct != nil {
		switch l.Shape() {
		case dtype.ShapeString, dtype.ShapeBytes:
			return fmt.Errorf("%w: %s value for nested struct field", ErrInvalidValue, l.Shape())
		}
	}
	return nil
}

// resolve recomputes Length from Value unless it was declared explicitly.
func (l *Leaf) resolve() error {
	n, err := dtype.Count(l.Type, l.Value)
	if err != nil {
		return err
	}
	if !l.Fixed {
		l.Length = n
	}
	return nil
}
