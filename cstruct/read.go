package cstruct

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/robert-malhotra/go-cstruct/internal/binary"
	"github.com/robert-malhotra/go-cstruct/internal/dtype"
)

// Read decodes a value tree from buf starting at offset.
//
// Scalars decode to the Go type of their tag, sequences to typed slices,
// strings to string, byte blocks to a fresh []byte and nested structs to
// map[string]any (or []map[string]any for repeated records). The result
// never aliases buf or the schema.
//
// Read fails with ErrEmptyBuffer for an empty buf and with a *FieldError
// wrapping ErrBufferTooSmall at the first field that runs past the end or
// starts with no bytes left, even when that field would occupy none.
// For layouts without self-describing fields, consuming a different number
// of bytes than ByteLength is reported as ErrSizeMismatch.
func (s *Struct) Read(buf []byte, offset int) (map[string]any, error) {
	if len(buf) == 0 {
		return nil, ErrEmptyBuffer
	}
	r := binary.NewReader(buf, binary.Config{ByteOrder: s.order})
	if offset < 0 || offset > r.Len() {
		return nil, fmt.Errorf("%w: offset %d outside %d-byte buffer", ErrBufferTooSmall, offset, r.Len())
	}
	r = r.At(offset)

	schema := s.Schema()
	values, err := s.decode(schema, r)
	if err != nil {
		return nil, err
	}

	consumed := r.Pos() - offset
	if !schema.SelfDescribing() && consumed != schema.ByteLength() {
		return nil, fmt.Errorf("%w: read %d bytes, layout declares %d", ErrSizeMismatch, consumed, schema.ByteLength())
	}

	s.mu.Lock()
	s.consumed = consumed
	s.mu.Unlock()

	s.logger.Debug("struct read", "offset", offset, "consumed", consumed)
	return values, nil
}

// decode walks schema, advancing r across every leaf.
func (s *Struct) decode(schema *Schema, r *binary.Reader) (map[string]any, error) {
	return Walk(schema, func(l *Leaf, name string, out map[string]any) error {
		if r.Remaining() == 0 {
			err := fmt.Errorf("%w: no bytes left at offset %d", ErrBufferTooSmall, r.Pos())
			return fieldError(err, name, r.Pos())
		}
		v, err := s.decodeLeaf(l, r)
		if err != nil {
			return fieldError(err, name, r.Pos())
		}
		out[name] = v
		return nil
	})
}

func (s *Struct) decodeLeaf(l *Leaf, r *binary.Reader) (any, error) {
	count := l.Length
	if l.Vary {
		n, err := dtype.DecodeUint(l.Prefix, r)
		if err != nil {
			return nil, fmt.Errorf("length prefix: %w", err)
		}
		if l.Struct != nil {
			return decodeRecordSpan(l, r, n)
		}
		count = 0
		if size := l.ElementSize(); size > 0 {
			count = int(n / uint64(size))
		}
	}

	if l.Struct == nil {
		if need := uint64(count) * uint64(l.Type.Size()); need > uint64(r.Remaining()) {
			return nil, fmt.Errorf("%w: %d elements of %s need %d bytes, have %d",
				ErrBufferTooSmall, count, l.Type, need, r.Remaining())
		}
	}

	shape := l.Shape()
	if shape == dtype.ShapeBytes {
		b, err := r.ReadBytes(count * l.Type.Size())
		if err != nil {
			return nil, err
		}
		return append([]byte{}, b...), nil
	}

	if l.Struct != nil {
		return decodeRecords(l, r, count, shape)
	}

	vals := make([]any, count)
	for i := range vals {
		v, err := dtype.Decode(l.Type, r)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}

	switch {
	case shape == dtype.ShapeString:
		str := dtype.CodesString(l.Type, vals)
		if l.Fixed {
			str = strings.TrimRight(str, "\x00")
		}
		return str, nil
	case shape.IsCollection() || count != 1:
		return dtype.MakeSlice(l.Type, vals)
	default:
		return vals[0], nil
	}
}

// decodeRecords reads count elements of a nested struct field using the
// sub-codec's pinned schema and byte order.
func decodeRecords(l *Leaf, r *binary.Reader, count int, shape dtype.Shape) (any, error) {
	child := l.Struct
	schema := child.Schema().pinned()
	records := make([]map[string]any, 0, count)
	for i := 0; i < count; i++ {
		cr := r.WithByteOrder(child.order)
		rec, err := child.decode(schema, cr)
		if err != nil {
			return nil, withPath(err, "["+strconv.Itoa(i)+"]")
		}
		r.Skip(cr.Pos() - r.Pos())
		records = append(records, rec)
	}
	if count == 1 && !shape.IsCollection() {
		return records[0], nil
	}
	return records, nil
}

// decodeRecordSpan reads the records of a self-describing struct field
// from the n bytes announced by its prefix. Records may differ in size
// when the sub-codec has self-describing fields of its own.
func decodeRecordSpan(l *Leaf, r *binary.Reader, n uint64) (any, error) {
	child := l.Struct
	schema := child.Schema().pinned()

	// A short buffer is reported at the first record field that overruns it.
	avail := r.Remaining()
	if n < uint64(avail) {
		avail = int(n)
	}
	win, err := r.Window(avail)
	if err != nil {
		return nil, err
	}

	var records []map[string]any
	for win.Remaining() > 0 {
		i := len(records)
		cr := win.WithByteOrder(child.order)
		rec, err := child.decode(schema, cr)
		if err != nil {
			return nil, withPath(err, "["+strconv.Itoa(i)+"]")
		}
		if cr.Pos() == win.Pos() {
			return nil, fmt.Errorf("%w: [%d] occupies no bytes but %d remain under the length prefix",
				ErrSizeMismatch, i, win.Remaining())
		}
		win.Skip(cr.Pos() - win.Pos())
		records = append(records, rec)
	}
	if uint64(avail) < n {
		return nil, fmt.Errorf("%w: length prefix announces %d bytes, have %d", ErrBufferTooSmall, n, avail)
	}
	if records == nil {
		records = []map[string]any{}
	}

	if len(records) == 1 && !l.Shape().IsCollection() {
		return records[0], nil
	}
	return records, nil
}

// fieldError attaches the field name and offset to err, translating buffer
// overruns into ErrBufferTooSmall. Errors that already carry a path from a
// nested codec are prefixed instead.
func fieldError(err error, name string, offset int) error {
	var fe *FieldError
	if errors.As(err, &fe) {
		return withPath(err, name)
	}
	if errors.Is(err, binary.ErrShortBuffer) && !errors.Is(err, ErrBufferTooSmall) {
		err = fmt.Errorf("%w: %w", ErrBufferTooSmall, err)
	}
	return &FieldError{Path: name, Offset: offset, Err: err}
}

