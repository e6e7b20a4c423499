package cstruct

import (
	"bytes"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/robert-malhotra/go-cstruct/internal/dtype"
)

// Schema is a normalized layout: an ordered tree of leaves and nested
// schemas. A Schema is never modified after construction; updates
// produce a new Schema.
type Schema struct {
	fields     []field
	byteLength int
}

type field struct {
	name string
	leaf *Leaf
	sub  *Schema
}

// Field is a read-only view of one schema entry. Exactly one of Leaf and
// Sub is set.
type Field struct {
	Name string
	Leaf *Leaf
	Sub  *Schema
}

// Normalize converts a layout into a Schema, giving def to every field
// declared without a value.
func Normalize(layout Layout, def any) (*Schema, error) {
	s := &Schema{fields: make([]field, 0, len(layout))}
	seen := make(map[string]bool, len(layout))

	for _, m := range layout {
		if m.Name == "" {
			return nil, fmt.Errorf("%w: empty field name", ErrInvalidLayout)
		}
		if seen[m.Name] {
			return nil, fmt.Errorf("%w: duplicate field %q", ErrInvalidLayout, m.Name)
		}
		seen[m.Name] = true

		if nested, ok := m.Spec.(Layout); ok {
			sub, err := Normalize(nested, def)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", m.Name, err)
			}
			s.fields = append(s.fields, field{name: m.Name, sub: sub})
			continue
		}

		leaf, err := normalizeLeaf(m.Spec, def)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m.Name, err)
		}
		s.fields = append(s.fields, field{name: m.Name, leaf: leaf})
	}

	n, err := s.computeByteLength()
	if err != nil {
		return nil, err
	}
	s.byteLength = n
	return s, nil
}

// ByteLength returns the serialized size of the schema with its current values.
func (s *Schema) ByteLength() int {
	return s.byteLength
}

// Len returns the number of top-level fields.
func (s *Schema) Len() int {
	return len(s.fields)
}

// Names returns the top-level field names in wire order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.name
	}
	return names
}

// Fields returns the top-level fields in wire order. Leaves are copies.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	for i, f := range s.fields {
		out[i] = Field{Name: f.name, Sub: f.sub}
		if f.leaf != nil {
			l := *f.leaf
			out[i].Leaf = &l
		}
	}
	return out
}

// Leaf returns a copy of the named top-level leaf.
func (s *Schema) Leaf(name string) (*Leaf, bool) {
	for _, f := range s.fields {
		if f.name == name && f.leaf != nil {
			l := *f.leaf
			return &l, true
		}
	}
	return nil, false
}

// Sub returns the named nested schema.
func (s *Schema) Sub(name string) (*Schema, bool) {
	for _, f := range s.fields {
		if f.name == name && f.sub != nil {
			return f.sub, true
		}
	}
	return nil, false
}

// SelfDescribing reports whether any field, including fields of nested
// struct codecs, carries a length prefix. Such schemas may consume a
// different number of bytes than ByteLength on read.
func (s *Schema) SelfDescribing() bool {
	for _, f := range s.fields {
		switch {
		case f.sub != nil:
			if f.sub.SelfDescribing() {
				return true
			}
		case f.leaf.Vary:
			return true
		case f.leaf.Struct != nil:
			if f.leaf.Struct.Schema().SelfDescribing() {
				return true
			}
		}
	}
	return false
}

// Values returns the current field values as a value tree.
func (s *Schema) Values() map[string]any {
	out, _ := Walk(s, func(l *Leaf, name string, out map[string]any) error {
		out[name] = cloneValue(l.Value)
		return nil
	})
	return out
}

// computeByteLength sums prefix and element bytes over every leaf.
func (s *Schema) computeByteLength() (int, error) {
	total := 0
	_, err := Walk(s, func(l *Leaf, name string, _ map[string]any) error {
		n, err := leafByteLength(l)
		if err != nil {
			return &FieldError{Path: name, Offset: total, Err: err}
		}
		total += n
		return nil
	})
	return total, err
}

// leafByteLength returns the bytes a leaf occupies with its current value.
// Nested struct elements are sized with their own values merged into the
// sub-codec's schema.
func leafByteLength(l *Leaf) (int, error) {
	n := l.PrefixSize()
	if l.Struct == nil {
		return n + l.Length*l.Type.Size(), nil
	}
	for _, elem := range structElements(l) {
		sub, err := l.Struct.elementSchema(elem)
		if err != nil {
			return 0, err
		}
		n += sub.ByteLength()
	}
	return n, nil
}

// structElements returns one value per element of a nested struct leaf,
// padding with nil when the value holds fewer records than Length.
func structElements(l *Leaf) []any {
	var elems []any
	if l.Shape() == dtype.ShapeSequence {
		elems = dtype.Elements(l.Type, l.Value, nil)
	} else if l.Shape() == dtype.ShapeScalar {
		elems = []any{l.Value}
	}
	out := make([]any, l.Length)
	copy(out, elems)
	return out
}

// pinned returns a copy of s in which every field that is not
// self-describing keeps its current length. Records of nested struct
// fields are encoded and decoded through it, so a record's values never
// change the bytes a fixed field occupies.
func (s *Schema) pinned() *Schema {
	out := &Schema{fields: make([]field, len(s.fields)), byteLength: s.byteLength}
	for i, f := range s.fields {
		out.fields[i] = f
		switch {
		case f.sub != nil:
			out.fields[i].sub = f.sub.pinned()
		case !f.leaf.Vary && !f.leaf.Fixed:
			l := *f.leaf
			l.Fixed = true
			out.fields[i].leaf = &l
		}
	}
	return out
}

// merge returns a copy of s with leaf values replaced from values. Keys
// missing from s are ignored; keys missing from values keep their value.
func (s *Schema) merge(values map[string]any, logger *slog.Logger) (*Schema, error) {
	known := make(map[string]bool, len(s.fields))
	out := &Schema{fields: make([]field, len(s.fields))}

	for i, f := range s.fields {
		known[f.name] = true
		out.fields[i] = f
		v, ok := values[f.name]
		if !ok {
			continue
		}

		if f.sub != nil {
			m, ok := asRecord(v)
			if !ok {
				return nil, &FieldError{Path: f.name, Err: fmt.Errorf("%w: nested field needs a map, got %T", ErrInvalidValue, v)}
			}
			sub, err := f.sub.merge(m, logger)
			if err != nil {
				return nil, withPath(err, f.name)
			}
			out.fields[i].sub = sub
			continue
		}

		l := *f.leaf
		l.Value = v
		if l.Value == nil {
			l.Value = ""
		}
		if err := l.validate(); err != nil {
			return nil, &FieldError{Path: f.name, Err: err}
		}
		if err := l.resolve(); err != nil {
			return nil, &FieldError{Path: f.name, Err: err}
		}
		out.fields[i].leaf = &l
	}

	for k := range values {
		if !known[k] {
			logger.Debug("ignoring value for unknown field", "field", k)
		}
	}

	n, err := out.computeByteLength()
	if err != nil {
		return nil, err
	}
	out.byteLength = n
	return out, nil
}

// asRecord accepts map[string]any and other string-keyed maps.
func asRecord(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	m := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		m[iter.Key().String()] = iter.Value().Interface()
	}
	return m, true
}

// cloneValue copies slices and maps so snapshots do not alias schema storage.
func cloneValue(v any) any {
	switch x := v.(type) {
	case []byte:
		return bytes.Clone(x)
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[k] = cloneValue(e)
		}
		return m
	case []any:
		s := make([]any, len(x))
		for i, e := range x {
			s[i] = cloneValue(e)
		}
		return s
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice && !rv.IsNil() {
		c := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		reflect.Copy(c, rv)
		return c.Interface()
	}
	return v
}
