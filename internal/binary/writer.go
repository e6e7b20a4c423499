package binary

import (
	"encoding/binary"
	"fmt"
)

// Writer writes fixed-width values into a preallocated byte slice.
// It never grows the buffer; writing past the end returns ErrShortBuffer.
type Writer struct {
	buf   []byte
	order binary.ByteOrder
	pos   int
}

// NewWriter creates a writer over buf positioned at 0.
func NewWriter(buf []byte, cfg Config) *Writer {
	order := cfg.ByteOrder
	if order == nil {
		order = DefaultConfig().ByteOrder
	}
	return &Writer{
		buf:   buf,
		order: order,
	}
}

// At returns a new writer positioned at the given offset.
// The new writer shares the underlying buffer but has independent position.
func (w *Writer) At(offset int) *Writer {
	return &Writer{
		buf:   w.buf,
		order: w.order,
		pos:   offset,
	}
}

// WithByteOrder returns a new writer at the same position using order.
func (w *Writer) WithByteOrder(order binary.ByteOrder) *Writer {
	return &Writer{
		buf:   w.buf,
		order: order,
		pos:   w.pos,
	}
}

// Pos returns the current write position.
func (w *Writer) Pos() int {
	return w.pos
}

// Len returns the total length of the underlying buffer.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the underlying buffer.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// next reserves n bytes at the cursor and advances past them.
func (w *Writer) next(n int) ([]byte, error) {
	if w.pos < 0 || w.pos+n > len(w.buf) {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrShortBuffer, n, w.pos, len(w.buf)-w.pos)
	}
	b := w.buf[w.pos : w.pos+n]
	w.pos += n
	return b, nil
}

// WriteBytes copies data at the current position.
func (w *Writer) WriteBytes(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	b, err := w.next(len(data))
	if err != nil {
		return err
	}
	copy(b, data)
	return nil
}

// WriteUint8 writes an unsigned 8-bit integer.
func (w *Writer) WriteUint8(v uint8) error {
	b, err := w.next(1)
	if err != nil {
		return err
	}
	b[0] = v
	return nil
}

// WriteUint16 writes an unsigned 16-bit integer.
func (w *Writer) WriteUint16(v uint16) error {
	b, err := w.next(2)
	if err != nil {
		return err
	}
	w.order.PutUint16(b, v)
	return nil
}

// WriteUint32 writes an unsigned 32-bit integer.
func (w *Writer) WriteUint32(v uint32) error {
	b, err := w.next(4)
	if err != nil {
		return err
	}
	w.order.PutUint32(b, v)
	return nil
}

// WriteUint64 writes an unsigned 64-bit integer.
func (w *Writer) WriteUint64(v uint64) error {
	b, err := w.next(8)
	if err != nil {
		return err
	}
	w.order.PutUint64(b, v)
	return nil
}

// WriteUintN writes an unsigned integer of n bytes (1, 2, 4, or 8).
// Bits above the requested width are discarded.
func (w *Writer) WriteUintN(v uint64, n int) error {
	switch n {
	case 1:
		return w.WriteUint8(uint8(v))
	case 2:
		return w.WriteUint16(uint16(v))
	case 4:
		return w.WriteUint32(uint32(v))
	case 8:
		return w.WriteUint64(v)
	default:
		return ErrInvalidSize
	}
}

// Skip advances the position by n bytes without writing.
func (w *Writer) Skip(n int) {
	w.pos += n
}

// WriteZeros writes n zero bytes.
func (w *Writer) WriteZeros(n int) error {
	if n <= 0 {
		return nil
	}
	b, err := w.next(n)
	if err != nil {
		return err
	}
	clear(b)
	return nil
}
