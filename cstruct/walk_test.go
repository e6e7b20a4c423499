package cstruct

import (
	"errors"
	"reflect"
	"testing"
)

func TestWalkOrder(t *testing.T) {
	s, err := Normalize(Layout{
		M("z", "uint8"),
		M("a", Layout{
			M("m", "uint16"),
			M("b", "uint32"),
		}),
		M("k", []any{"uint8", "abc"}),
	}, 0)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	var visited []string
	out, err := Walk(s, func(l *Leaf, name string, out map[string]any) error {
		visited = append(visited, name)
		out[name] = l.Length * l.ElementSize()
		return nil
	})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	if !reflect.DeepEqual(visited, []string{"z", "m", "b", "k"}) {
		t.Errorf("unexpected visit order %v", visited)
	}
	expected := map[string]any{
		"z": 1,
		"a": map[string]any{"m": 2, "b": 4},
		"k": 3,
	}
	if !reflect.DeepEqual(out, expected) {
		t.Errorf("expected %v, got %v", expected, out)
	}
}

func TestWalkAbort(t *testing.T) {
	s, err := Normalize(Layout{
		M("a", "uint8"),
		M("n", Layout{M("b", "uint8"), M("c", "uint8")}),
		M("d", "uint8"),
	}, 0)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	errStop := errors.New("stop")
	var visited []string
	out, err := Walk(s, func(l *Leaf, name string, out map[string]any) error {
		visited = append(visited, name)
		if name == "b" {
			return &FieldError{Path: name, Err: errStop}
		}
		return nil
	})
	if !errors.Is(err, errStop) {
		t.Fatalf("expected stop error, got %v", err)
	}
	if out != nil {
		t.Errorf("expected nil result on abort, got %v", out)
	}
	if !reflect.DeepEqual(visited, []string{"a", "b"}) {
		t.Errorf("walk continued after abort: %v", visited)
	}
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Path != "n.b" {
		t.Errorf("expected path n.b, got %v", err)
	}
}

func TestWalkVisitorGetsCopy(t *testing.T) {
	s, err := Normalize(Layout{M("a", []any{"uint8", 5})}, 0)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	_, err = Walk(s, func(l *Leaf, name string, out map[string]any) error {
		l.Value = 99
		l.Length = 10
		return nil
	})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	leaf, _ := s.Leaf("a")
	if leaf.Value != 5 || leaf.Length != 1 {
		t.Errorf("visitor modified the schema: %+v", leaf)
	}
}
