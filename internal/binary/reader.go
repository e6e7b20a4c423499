// Package binary provides bounds-checked binary I/O over in-memory byte buffers.
package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrShortBuffer is returned when a read or write would run past the end of the buffer.
var ErrShortBuffer = errors.New("short buffer")

// ErrInvalidSize is returned when an unsupported integer width is requested.
var ErrInvalidSize = errors.New("invalid integer size: must be 1, 2, 4, or 8")

// Reader reads fixed-width values from a byte slice, tracking a cursor.
type Reader struct {
	buf   []byte
	order binary.ByteOrder
	pos   int
}

// Config holds reader and writer configuration.
type Config struct {
	ByteOrder binary.ByteOrder
}

// DefaultConfig returns a little-endian configuration.
func DefaultConfig() Config {
	return Config{ByteOrder: binary.LittleEndian}
}

// NewReader creates a reader over buf positioned at 0.
func NewReader(buf []byte, cfg Config) *Reader {
	order := cfg.ByteOrder
	if order == nil {
		order = DefaultConfig().ByteOrder
	}
	return &Reader{
		buf:   buf,
		order: order,
	}
}

// At returns a new reader positioned at the given offset.
// The new reader shares the underlying buffer but has independent position.
func (r *Reader) At(offset int) *Reader {
	return &Reader{
		buf:   r.buf,
		order: r.order,
		pos:   offset,
	}
}

// WithByteOrder returns a new reader at the same position using order.
func (r *Reader) WithByteOrder(order binary.ByteOrder) *Reader {
	return &Reader{
		buf:   r.buf,
		order: order,
		pos:   r.pos,
	}
}

// Pos returns the current read position.
func (r *Reader) Pos() int {
	return r.pos
}

// Len returns the total length of the underlying buffer.
func (r *Reader) Len() int {
	return len(r.buf)
}

// Remaining returns the number of bytes between the cursor and the end of the buffer.
func (r *Reader) Remaining() int {
	if r.pos >= len(r.buf) {
		return 0
	}
	return len(r.buf) - r.pos
}

// ReadBytes returns the next n bytes and advances the cursor.
// The returned slice aliases the underlying buffer.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	if r.pos < 0 || n > r.Remaining() {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrShortBuffer, n, r.pos, r.Remaining())
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadUint8 reads an unsigned 8-bit integer.
func (r *Reader) ReadUint8() (uint8, error) {
	buf, err := r.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadUint16 reads an unsigned 16-bit integer.
func (r *Reader) ReadUint16() (uint16, error) {
	buf, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(buf), nil
}

// ReadUint32 reads an unsigned 32-bit integer.
func (r *Reader) ReadUint32() (uint32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(buf), nil
}

// ReadUint64 reads an unsigned 64-bit integer.
func (r *Reader) ReadUint64() (uint64, error) {
	buf, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return r.order.Uint64(buf), nil
}

// ReadUintN reads an unsigned integer of n bytes (1, 2, 4, or 8).
func (r *Reader) ReadUintN(n int) (uint64, error) {
	switch n {
	case 1, 2, 4, 8:
	default:
		return 0, ErrInvalidSize
	}
	buf, err := r.ReadBytes(n)
	if err != nil {
		return 0, err
	}
	return r.decodeUint(buf, n), nil
}

// decodeUint decodes a fixed-width unsigned integer.
func (r *Reader) decodeUint(buf []byte, size int) uint64 {
	switch size {
	case 1:
		return uint64(buf[0])
	case 2:
		return uint64(r.order.Uint16(buf))
	case 4:
		return uint64(r.order.Uint32(buf))
	default:
		return r.order.Uint64(buf)
	}
}

// Skip advances the position by n bytes.
func (r *Reader) Skip(n int) {
	r.pos += n
}

// Window returns a reader limited to the next n bytes, positioned at the
// current offset, and advances r past them. Offsets reported by the window
// stay relative to the whole buffer.
func (r *Reader) Window(n int) (*Reader, error) {
	if n < 0 || r.pos < 0 || n > r.Remaining() {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrShortBuffer, n, r.pos, r.Remaining())
	}
	win := &Reader{
		buf:   r.buf[:r.pos+n],
		order: r.order,
		pos:   r.pos,
	}
	r.pos += n
	return win, nil
}
