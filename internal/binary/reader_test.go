package binary

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestReaderReadUint8(t *testing.T) {
	r := NewReader([]byte{0x42, 0xFF, 0x00}, DefaultConfig())

	v, err := r.ReadUint8()
	if err != nil {
		t.Fatalf("ReadUint8 failed: %v", err)
	}
	if v != 0x42 {
		t.Errorf("expected 0x42, got 0x%02x", v)
	}

	v, err = r.ReadUint8()
	if err != nil {
		t.Fatalf("ReadUint8 failed: %v", err)
	}
	if v != 0xFF {
		t.Errorf("expected 0xFF, got 0x%02x", v)
	}
}

func TestReaderReadUint16(t *testing.T) {
	// Little-endian: 0x0102 stored as [0x02, 0x01]
	r := NewReader([]byte{0x02, 0x01, 0xFF, 0xFF}, DefaultConfig())

	v, err := r.ReadUint16()
	if err != nil {
		t.Fatalf("ReadUint16 failed: %v", err)
	}
	if v != 0x0102 {
		t.Errorf("expected 0x0102, got 0x%04x", v)
	}

	v, err = r.ReadUint16()
	if err != nil {
		t.Fatalf("ReadUint16 failed: %v", err)
	}
	if v != 0xFFFF {
		t.Errorf("expected 0xFFFF, got 0x%04x", v)
	}
}

func TestReaderReadUint32(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(0x12345678))
	binary.Write(&buf, binary.LittleEndian, uint32(0xDEADBEEF))

	r := NewReader(buf.Bytes(), DefaultConfig())

	v, err := r.ReadUint32()
	if err != nil {
		t.Fatalf("ReadUint32 failed: %v", err)
	}
	if v != 0x12345678 {
		t.Errorf("expected 0x12345678, got 0x%08x", v)
	}

	v, err = r.ReadUint32()
	if err != nil {
		t.Fatalf("ReadUint32 failed: %v", err)
	}
	if v != 0xDEADBEEF {
		t.Errorf("expected 0xDEADBEEF, got 0x%08x", v)
	}
}

func TestReaderReadUint64(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint64(0x123456789ABCDEF0))

	r := NewReader(buf.Bytes(), DefaultConfig())

	v, err := r.ReadUint64()
	if err != nil {
		t.Fatalf("ReadUint64 failed: %v", err)
	}
	if v != 0x123456789ABCDEF0 {
		t.Errorf("expected 0x123456789ABCDEF0, got 0x%016x", v)
	}
}

func TestReaderBigEndian(t *testing.T) {
	r := NewReader([]byte{0x12, 0x34}, Config{ByteOrder: binary.BigEndian})

	v, err := r.ReadUint16()
	if err != nil {
		t.Fatalf("ReadUint16 failed: %v", err)
	}
	if v != 0x1234 {
		t.Errorf("expected 0x1234, got 0x%04x", v)
	}
}

func TestReaderReadUintN(t *testing.T) {
	tests := []struct {
		name     string
		size     int
		data     []byte
		expected uint64
	}{
		{"1-byte", 1, []byte{0x12}, 0x12},
		{"2-byte", 2, []byte{0x34, 0x12}, 0x1234},
		{"4-byte", 4, []byte{0x78, 0x56, 0x34, 0x12}, 0x12345678},
		{"8-byte", 8, []byte{0xF0, 0xDE, 0xBC, 0x9A, 0x78, 0x56, 0x34, 0x12}, 0x123456789ABCDEF0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(tt.data, DefaultConfig())

			v, err := r.ReadUintN(tt.size)
			if err != nil {
				t.Fatalf("ReadUintN failed: %v", err)
			}
			if v != tt.expected {
				t.Errorf("expected 0x%x, got 0x%x", tt.expected, v)
			}
			if r.Pos() != tt.size {
				t.Errorf("expected position %d, got %d", tt.size, r.Pos())
			}
		})
	}
}

func TestReaderReadUintNInvalidSize(t *testing.T) {
	r := NewReader(make([]byte, 8), DefaultConfig())
	if _, err := r.ReadUintN(3); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("expected ErrInvalidSize, got %v", err)
	}
}

func TestReaderShortBuffer(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03}, DefaultConfig())

	if _, err := r.ReadUint16(); err != nil {
		t.Fatalf("ReadUint16 failed: %v", err)
	}
	_, err := r.ReadUint16()
	if !errors.Is(err, ErrShortBuffer) {
		t.Fatalf("expected ErrShortBuffer, got %v", err)
	}
	// A failed read must not move the cursor.
	if r.Pos() != 2 {
		t.Errorf("expected position 2 after failed read, got %d", r.Pos())
	}
	v, err := r.ReadUint8()
	if err != nil {
		t.Fatalf("ReadUint8 failed: %v", err)
	}
	if v != 0x03 {
		t.Errorf("expected 0x03, got 0x%02x", v)
	}
}

func TestReaderAt(t *testing.T) {
	data := []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05}
	r := NewReader(data, DefaultConfig())

	// Read from offset 3
	r2 := r.At(3)
	v, err := r2.ReadUint8()
	if err != nil {
		t.Fatalf("ReadUint8 failed: %v", err)
	}
	if v != 0x03 {
		t.Errorf("expected 0x03, got 0x%02x", v)
	}

	// Original reader should be unaffected
	v, err = r.ReadUint8()
	if err != nil {
		t.Fatalf("ReadUint8 failed: %v", err)
	}
	if v != 0x00 {
		t.Errorf("expected 0x00, got 0x%02x", v)
	}
}

func TestReaderAtPastEnd(t *testing.T) {
	r := NewReader([]byte{0x00, 0x01}, DefaultConfig()).At(5)
	if r.Remaining() != 0 {
		t.Errorf("expected 0 remaining, got %d", r.Remaining())
	}
	if _, err := r.ReadUint8(); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("expected ErrShortBuffer, got %v", err)
	}
}

func TestReaderWithByteOrder(t *testing.T) {
	r := NewReader([]byte{0xFF, 0x12, 0x34}, DefaultConfig())
	r.Skip(1)

	r2 := r.WithByteOrder(binary.BigEndian)
	if r2.Pos() != 1 {
		t.Fatalf("expected position 1, got %d", r2.Pos())
	}
	v, err := r2.ReadUint16()
	if err != nil {
		t.Fatalf("ReadUint16 failed: %v", err)
	}
	if v != 0x1234 {
		t.Errorf("expected 0x1234, got 0x%04x", v)
	}
	if v, _ := r.ReadUint16(); v != 0x3412 {
		t.Errorf("original reader byte order changed, read 0x%04x", v)
	}
}

func TestReaderSkip(t *testing.T) {
	r := NewReader([]byte{0x00, 0x01, 0x02, 0x03, 0x04}, DefaultConfig())

	r.Skip(2)
	v, err := r.ReadUint8()
	if err != nil {
		t.Fatalf("ReadUint8 failed: %v", err)
	}
	if v != 0x02 {
		t.Errorf("expected 0x02, got 0x%02x", v)
	}
}

func TestReaderWindow(t *testing.T) {
	r := NewReader([]byte{0x00, 0x01, 0x02, 0x03, 0x04}, DefaultConfig())
	r.Skip(1)

	win, err := r.Window(2)
	if err != nil {
		t.Fatalf("Window failed: %v", err)
	}
	if r.Pos() != 3 {
		t.Errorf("expected parent position 3, got %d", r.Pos())
	}
	if win.Pos() != 1 || win.Remaining() != 2 {
		t.Errorf("expected window at 1 with 2 bytes, got %d with %d", win.Pos(), win.Remaining())
	}

	b, err := win.ReadBytes(2)
	if err != nil {
		t.Fatalf("ReadBytes failed: %v", err)
	}
	if !bytes.Equal(b, []byte{0x01, 0x02}) {
		t.Errorf("expected [0x01, 0x02], got %v", b)
	}
	if _, err := win.ReadUint8(); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("expected ErrShortBuffer past the window, got %v", err)
	}

	if _, err := r.Window(3); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("expected ErrShortBuffer, got %v", err)
	}
	if r.Pos() != 3 {
		t.Errorf("failed Window moved the cursor to %d", r.Pos())
	}
}
