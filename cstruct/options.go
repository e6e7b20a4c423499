package cstruct

import (
	"encoding/binary"
	"log/slog"
)

// Option configures a Struct.
type Option func(*options)

type options struct {
	def    any
	order  binary.ByteOrder
	logger *slog.Logger
}

func defaultOptions() *options {
	return &options{
		def:    0,
		order:  binary.LittleEndian,
		logger: slog.New(slog.DiscardHandler),
	}
}

// WithDefault sets the value given to fields declared without one (default 0).
func WithDefault(v any) Option {
	return func(o *options) {
		o.def = v
	}
}

// WithLittleEndian selects little-endian (true, the default) or big-endian byte order.
func WithLittleEndian(little bool) Option {
	return func(o *options) {
		if little {
			o.order = binary.LittleEndian
		} else {
			o.order = binary.BigEndian
		}
	}
}

// WithByteOrder sets the byte order applied to every multi-byte field.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(o *options) {
		if order != nil {
			o.order = order
		}
	}
}

// WithLogger sets the logger used for debug diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
