// Package cstruct implements schema-driven binary structs: a declarative
// field layout is normalized once, its exact byte length computed, and
// value trees are written to and read from tightly packed buffers.
//
// # Layouts
//
// A Layout is an ordered list of members; the order is the wire order.
//
//	s, err := cstruct.New(cstruct.Layout{
//	    cstruct.M("foo", "uint8"),
//	    cstruct.M("bar", []any{"int8", 127}),
//	    cstruct.M("baz", cstruct.Layout{
//	        cstruct.M("qux", []any{"uint16", 65535}),
//	    }),
//	})
//	// s.ByteLength() == 4
//
// Each leaf normalizes to a [Leaf]: an element type, a value, an element
// count and a self-describing flag. Counts are inferred from the value
// (string length, sequence length, byte block size, or 1 for scalars)
// unless given explicitly. Giving a type tag as the count makes the field
// self-describing: its byte count is stored in the stream as a prefix of
// that integer type.
//
//	cstruct.M("name", []any{"uint8", "", "uint16"}) // uint16 prefix, then bytes
//
// # Nested Structs
//
// A *Struct used as a field type embeds another codec. The field value may
// be a record map (one element) or a slice of record maps; each record is
// merged into the sub-codec's schema for that element only.
//
//	point := cstruct.MustNew(cstruct.Layout{cstruct.M("x", "int16"), cstruct.M("y", "int16")})
//	path := cstruct.MustNew(cstruct.Layout{
//	    cstruct.M("points", []any{point, []any{}, "uint16"}),
//	})
//
// # Reading and Writing
//
// [Struct.Write] returns a new buffer of exactly [Struct.ByteLength] bytes.
// [Struct.Read] returns a value tree. Both walk the schema with [Walk].
// Bounds faults are returned as *[FieldError] values wrapping
// [ErrBufferTooSmall]; length disagreements are returned as
// [ErrSizeMismatch].
//
// # Key Functions
//
//   - [New]: Normalize a layout and build a codec
//   - [Struct.Read]: Decode a value tree from a buffer
//   - [Struct.Write]: Encode the current (or merged) values
//   - [Struct.Update]: Merge values and recompute the byte length
//   - [Normalize]: Convert a layout into a [Schema]
//   - [Walk]: Visit every leaf of a [Schema]
package cstruct
