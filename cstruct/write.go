package cstruct

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/robert-malhotra/go-cstruct/internal/binary"
	"github.com/robert-malhotra/go-cstruct/internal/dtype"
)

// Write serializes the schema into a new buffer of exactly ByteLength bytes.
//
// A non-nil values tree is merged into the stored schema first, as with
// Update; the merge is kept only if serialization succeeds. Element counts
// follow the current values, so strings and sequences may change the
// buffer size between calls unless their length is declared explicitly.
func (s *Struct) Write(values map[string]any) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	schema := s.schema
	if values != nil {
		merged, err := schema.merge(values, s.logger)
		if err != nil {
			return nil, err
		}
		schema = merged
	}

	w := binary.NewWriter(make([]byte, schema.ByteLength()), binary.Config{ByteOrder: s.order})
	if err := s.encode(schema, w); err != nil {
		return nil, err
	}
	if w.Pos() != w.Len() {
		return nil, fmt.Errorf("%w: wrote %d bytes into a %d-byte buffer", ErrSizeMismatch, w.Pos(), w.Len())
	}

	s.schema = schema
	s.logger.Debug("struct write", "bytes", w.Len())
	return w.Bytes(), nil
}

// encode walks schema, writing every leaf at w's cursor.
func (s *Struct) encode(schema *Schema, w *binary.Writer) error {
	_, err := Walk(schema, func(l *Leaf, name string, _ map[string]any) error {
		if err := s.encodeLeaf(l, w); err != nil {
			if errors.Is(err, binary.ErrShortBuffer) && !errors.Is(err, ErrSizeMismatch) {
				err = fmt.Errorf("%w: %w", ErrSizeMismatch, err)
			}
			return fieldError(err, name, w.Pos())
		}
		return nil
	})
	return err
}

func (s *Struct) encodeLeaf(l *Leaf, w *binary.Writer) error {
	if !l.Vary {
		return s.encodePayload(l, w)
	}

	// The prefix holds the payload's byte count, filled in once the
	// payload is written.
	start := w.Pos()
	w.Skip(l.PrefixSize())
	if err := s.encodePayload(l, w); err != nil {
		return err
	}
	n := w.Pos() - start - l.PrefixSize()
	if err := dtype.EncodeUint(l.Prefix, w.At(start), uint64(n)); err != nil {
		return fmt.Errorf("length prefix: %w", err)
	}
	return nil
}

func (s *Struct) encodePayload(l *Leaf, w *binary.Writer) error {
	count := l.Length
	if l.Struct != nil {
		return encodeRecords(l, w)
	}

	shape := l.Shape()
	if shape == dtype.ShapeBytes {
		n := count * l.Type.Size()
		b := l.Value.([]byte)
		if len(b) > n {
			b = b[:n]
		}
		if err := w.WriteBytes(b); err != nil {
			return err
		}
		return w.WriteZeros(n - len(b))
	}

	// Strings pad with NUL; everything else pads with the default value.
	pad := s.def
	elems := dtype.Elements(l.Type, l.Value, s.def)
	if shape == dtype.ShapeString {
		pad = 0
		elems = elems[:dtype.CutCodes(l.Type, elems, count)]
	}
	for i := 0; i < count; i++ {
		e := pad
		if i < len(elems) {
			e = elems[i]
		}
		if err := dtype.Encode(l.Type, w, e); err != nil {
			return err
		}
	}
	return nil
}

// encodeRecords writes each element of a nested struct field with the
// sub-codec's schema merged with that element's values. The sub-codec's
// stored values are left untouched.
func encodeRecords(l *Leaf, w *binary.Writer) error {
	child := l.Struct
	for i, elem := range structElements(l) {
		schema, err := child.elementSchema(elem)
		if err != nil {
			return withPath(err, "["+strconv.Itoa(i)+"]")
		}
		cw := w.WithByteOrder(child.order)
		if err := child.encode(schema, cw); err != nil {
			return withPath(err, "["+strconv.Itoa(i)+"]")
		}
		w.Skip(cw.Pos() - w.Pos())
	}
	return nil
}
