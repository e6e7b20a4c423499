package cstruct

import (
	"errors"
	"reflect"
	"testing"
)

func TestNormalizeLeafForms(t *testing.T) {
	tests := []struct {
		name     string
		spec     any
		expected Leaf
	}{
		{"bare tag", "uint16", Leaf{Type: Uint16, Value: 0, Length: 1}},
		{"bare tag upper case", "UINT16", Leaf{Type: Uint16, Value: 0, Length: 1}},
		{"type only", []any{"int8"}, Leaf{Type: Int8, Value: 0, Length: 1}},
		{"scalar value", []any{"int8", 127}, Leaf{Type: Int8, Value: 127, Length: 1}},
		{"string value", []any{"uint8", "abc"}, Leaf{Type: Uint8, Value: "abc", Length: 3}},
		{"sequence value", []any{"uint16", []int{1, 2, 3}}, Leaf{Type: Uint16, Value: []int{1, 2, 3}, Length: 3}},
		{"byte block", []any{"uint16", []byte{1, 2, 3, 4}}, Leaf{Type: Uint16, Value: []byte{1, 2, 3, 4}, Length: 2}},
		{"nil value", []any{"uint8", nil}, Leaf{Type: Uint8, Value: "", Length: 0}},
		{"explicit length", []any{"uint8", "ab", 8}, Leaf{Type: Uint8, Value: "ab", Length: 8, Fixed: true}},
		{"float length", []any{"uint8", "ab", 8.0}, Leaf{Type: Uint8, Value: "ab", Length: 8, Fixed: true}},
		{"nil length", []any{"uint8", "ab", nil}, Leaf{Type: Uint8, Value: "ab", Length: 2}},
		{"prefix length", []any{"uint8", "ab", "uint16"},
			Leaf{Type: Uint8, Value: "ab", Length: 2, Prefix: Uint16, Vary: true}},
		{"prefix without vary", []any{"uint8", "ab", "UINT16", false},
			Leaf{Type: Uint8, Value: "ab", Length: 2, Prefix: Uint16}},
		{"string list", []string{"float64"}, Leaf{Type: Float64, Value: 0, Length: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeLeaf(tt.spec, 0)
			if err != nil {
				t.Fatalf("normalizeLeaf failed: %v", err)
			}
			if !reflect.DeepEqual(*got, tt.expected) {
				t.Errorf("expected %+v, got %+v", tt.expected, *got)
			}
		})
	}
}

func TestNormalizeLeafDefault(t *testing.T) {
	got, err := normalizeLeaf("float32", 1.5)
	if err != nil {
		t.Fatalf("normalizeLeaf failed: %v", err)
	}
	if got.Value != 1.5 {
		t.Errorf("expected default 1.5, got %v", got.Value)
	}
}

func TestNormalizeLeafStringDefault(t *testing.T) {
	for _, spec := range []any{"uint8", []any{"uint8"}} {
		got, err := normalizeLeaf(spec, "ab")
		if err != nil {
			t.Fatalf("normalizeLeaf(%v) failed: %v", spec, err)
		}
		if got.Length != 1 || got.Value != "ab" {
			t.Errorf("%v: expected one element of the default, got %+v", spec, *got)
		}
	}

	// An explicit value still infers its count.
	got, err := normalizeLeaf([]any{"uint8", "abc"}, "ab")
	if err != nil {
		t.Fatalf("normalizeLeaf failed: %v", err)
	}
	if got.Length != 3 {
		t.Errorf("expected length 3, got %d", got.Length)
	}

	s := MustNew(Layout{M("a", "uint8"), M("b", "uint8")}, WithDefault("ab"))
	buf, err := s.Write(nil)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !reflect.DeepEqual(buf, []byte{'a', 'a'}) {
		t.Errorf("unexpected bytes %x", buf)
	}
}

func TestNormalizeLeafIdempotent(t *testing.T) {
	specs := []any{
		"uint8",
		[]any{"int16", []int{1, 2}},
		[]any{"uint8", "firejune", 8},
		[]any{"uint8", "", "uint32"},
		[]any{"uint16", []byte{1, 2}, "uint8", false},
	}

	for _, spec := range specs {
		first, err := normalizeLeaf(spec, 0)
		if err != nil {
			t.Fatalf("normalizeLeaf(%v) failed: %v", spec, err)
		}
		second, err := normalizeLeaf(first, 0)
		if err != nil {
			t.Fatalf("renormalizing %v failed: %v", spec, err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Errorf("not idempotent: %+v became %+v", first, second)
		}
		third, err := normalizeLeaf(*second, 0)
		if err != nil {
			t.Fatalf("renormalizing value leaf failed: %v", err)
		}
		if !reflect.DeepEqual(second, third) {
			t.Errorf("not idempotent: %+v became %+v", second, third)
		}
	}
}

func TestNormalizeLeafStructType(t *testing.T) {
	point := MustNew(Layout{M("x", "int16"), M("y", "int16")})

	got, err := normalizeLeaf(point, 0)
	if err != nil {
		t.Fatalf("normalizeLeaf failed: %v", err)
	}
	if !got.IsStruct() || got.Struct != point {
		t.Fatalf("expected nested struct leaf, got %+v", got)
	}
	if got.Length != 1 || got.ElementSize() != 4 {
		t.Errorf("expected 1 element of 4 bytes, got %d of %d", got.Length, got.ElementSize())
	}

	got, err = normalizeLeaf([]any{point, []any{map[string]any{}, map[string]any{}}}, 0)
	if err != nil {
		t.Fatalf("normalizeLeaf failed: %v", err)
	}
	if got.Length != 2 {
		t.Errorf("expected 2 elements, got %d", got.Length)
	}
}

func TestNormalizeLeafErrors(t *testing.T) {
	point := MustNew(Layout{M("x", "int16")})

	tests := []struct {
		name string
		spec any
		err  error
	}{
		{"unknown tag", "char", ErrUnknownType},
		{"unknown prefix", []any{"uint8", "", "word"}, ErrUnknownType},
		{"empty list", []any{}, ErrInvalidLayout},
		{"long list", []any{"uint8", 1, 1, false, 0}, ErrInvalidLayout},
		{"bad type", []any{42}, ErrInvalidLayout},
		{"negative length", []any{"uint8", 1, -1}, ErrInvalidLayout},
		{"fractional length", []any{"uint8", 1, 1.5}, ErrInvalidLayout},
		{"float prefix", []any{"uint8", 1, "float32"}, ErrInvalidLayout},
		{"vary without prefix", []any{"uint8", 1, 2, true}, ErrInvalidLayout},
		{"vary not bool", []any{"uint8", 1, "uint8", "yes"}, ErrInvalidLayout},
		{"unsupported spec", 42, ErrInvalidLayout},
		{"ragged block", []any{"uint32", []byte{1, 2, 3}}, ErrInvalidValue},
		{"struct string", []any{point, "abc"}, ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := normalizeLeaf(tt.spec, 0)
			if !errors.Is(err, tt.err) {
				t.Errorf("expected %v, got %v", tt.err, err)
			}
		})
	}
}

func TestNormalizeLayout(t *testing.T) {
	s, err := Normalize(Layout{
		M("foo", "uint8"),
		M("bar", []any{"int8", 127}),
		M("baz", Layout{
			M("qux", []any{"uint16", 65535}),
		}),
	}, 0)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if names := s.Names(); !reflect.DeepEqual(names, []string{"foo", "bar", "baz"}) {
		t.Errorf("unexpected field order %v", names)
	}
	if s.ByteLength() != 4 {
		t.Errorf("expected byte length 4, got %d", s.ByteLength())
	}

	sub, ok := s.Sub("baz")
	if !ok {
		t.Fatal("expected nested schema baz")
	}
	qux, ok := sub.Leaf("qux")
	if !ok {
		t.Fatal("expected leaf qux")
	}
	if qux.Type != Uint16 || qux.Value != 65535 {
		t.Errorf("unexpected leaf %+v", qux)
	}
	if _, ok := s.Leaf("baz"); ok {
		t.Error("baz is a nested schema, not a leaf")
	}
}

func TestNormalizeLayoutErrors(t *testing.T) {
	tests := []struct {
		name   string
		layout Layout
	}{
		{"duplicate", Layout{M("a", "uint8"), M("a", "uint16")}},
		{"empty name", Layout{M("", "uint8")}},
		{"nested error", Layout{M("a", Layout{M("b", "bogus")})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Normalize(tt.layout, 0); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestByteLengthWithPrefix(t *testing.T) {
	s, err := Normalize(Layout{
		M("count", "uint32"),
		M("name", []any{"uint8", "abc", "uint16"}),
		M("samples", []any{"float64", []float64{1, 2}, "uint8"}),
		M("words", []any{"uint16", "hi", 4}),
	}, 0)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	// 4 + (2 + 3) + (1 + 16) + 8
	if s.ByteLength() != 34 {
		t.Errorf("expected byte length 34, got %d", s.ByteLength())
	}
	if !s.SelfDescribing() {
		t.Error("expected self-describing schema")
	}
}
