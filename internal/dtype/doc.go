// Package dtype provides the primitive field types of a struct layout and
// conversion between Go values and their fixed-width binary form.
//
// # Type Table
//
//	Tag      | Width | Go Type
//	---------|-------|---------
//	int8     | 1     | int8
//	uint8    | 1     | uint8
//	int16    | 2     | int16
//	uint16   | 2     | uint16
//	int32    | 4     | int32
//	uint32   | 4     | uint32
//	float32  | 4     | float32
//	int64    | 8     | int64
//	uint64   | 8     | uint64
//	float64  | 8     | float64
//
// Tags are matched case-insensitively by [Parse]. [Struct] is a placeholder
// for fields whose element type is another struct codec; it has no fixed
// width of its own.
//
// # Reading Data
//
// Use [Decode] to read one element at the cursor of a binary.Reader. The
// result carries the Go type from the table above:
//
//	v, err := dtype.Decode(dtype.Uint16, r) // v.(uint16)
//
// # Writing Data
//
// Use [Encode] to write one element. Encode accepts any Go numeric kind,
// json.Number and bool; integers wrap to the field width and floats are
// truncated toward zero when written to integer fields.
//
// # Payload Shapes
//
// A field value is a scalar, a sequence (any slice or array), a character
// string, or a raw byte block ([]byte). [ShapeOf], [Count] and [Elements]
// implement the shape rules shared by the reader and the writer.
//
// 64-bit fields use native uint64 arithmetic, so every int64 and uint64 value
// round-trips exactly. Values supplied as float64 (for example from a JSON
// document decoded without UseNumber) are limited to 53 bits of precision
// before they ever reach this package.
package dtype
