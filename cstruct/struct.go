package cstruct

import (
	"encoding/binary"
	"log/slog"
	"sync"
)

// Struct is a codec for one layout. It owns a normalized schema whose leaf
// values are updated by Update and Write, a default value and a byte order.
//
// A Struct is safe for concurrent use. Nested struct fields share the
// referenced Struct; writing a parent never modifies the child's stored
// values.
type Struct struct {
	mu       sync.Mutex
	schema   *Schema
	consumed int

	def    any
	order  binary.ByteOrder
	logger *slog.Logger
}

// New normalizes layout and returns a codec for it.
func New(layout Layout, opts ...Option) (*Struct, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	schema, err := Normalize(layout, o.def)
	if err != nil {
		return nil, err
	}

	return &Struct{
		schema:   schema,
		consumed: schema.ByteLength(),
		def:      o.def,
		order:    o.order,
		logger:   o.logger,
	}, nil
}

// MustNew is like New but panics on error. It simplifies package-level
// layout declarations.
func MustNew(layout Layout, opts ...Option) *Struct {
	s, err := New(layout, opts...)
	if err != nil {
		panic("cstruct: " + err.Error())
	}
	return s
}

// Schema returns the current normalized schema.
func (s *Struct) Schema() *Schema {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schema
}

// ByteLength returns the size Write produces with the current values.
func (s *Struct) ByteLength() int {
	return s.Schema().ByteLength()
}

// Consumed returns the number of bytes the last successful Read consumed.
// It differs from ByteLength when self-describing fields carried a
// different element count than the schema's current values.
func (s *Struct) Consumed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consumed
}

// Default returns the value given to fields declared without one.
func (s *Struct) Default() any {
	return s.def
}

// ByteOrder returns the byte order applied to every field.
func (s *Struct) ByteOrder() binary.ByteOrder {
	return s.order
}

// Values returns a snapshot of the schema's current field values.
func (s *Struct) Values() map[string]any {
	return s.Schema().Values()
}

// Update merges values into the schema and recomputes the byte length.
// Only leaf values change; keys without a matching field are ignored.
// It returns the updated schema.
func (s *Struct) Update(values map[string]any) (*Schema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged, err := s.schema.merge(values, s.logger)
	if err != nil {
		return nil, err
	}
	s.schema = merged
	return merged, nil
}

// elementSchema returns the schema used for one element of a nested struct
// field: the current schema with its lengths pinned, and elem merged in
// when it is a record.
func (s *Struct) elementSchema(elem any) (*Schema, error) {
	schema := s.Schema().pinned()
	m, ok := asRecord(elem)
	if !ok {
		return schema, nil
	}
	return schema.merge(m, s.logger)
}
