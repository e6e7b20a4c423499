package cstruct

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-cstruct/internal/dtype"
)

// Common errors
var (
	ErrEmptyBuffer    = errors.New("empty buffer")
	ErrBufferTooSmall = errors.New("buffer too small")
	ErrSizeMismatch   = errors.New("size mismatch")
	ErrInvalidLayout  = errors.New("invalid layout")
	ErrUnknownType    = dtype.ErrUnknownType
	ErrInvalidValue   = dtype.ErrInvalidValue
)

// FieldError records the field and buffer offset at which a read or write failed.
type FieldError struct {
	// Path is the dotted path of the failing leaf, e.g. "baz.qux" or "points[2].x".
	Path string

	// Offset is the cursor position when the failure occurred.
	Offset int

	Err error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s at offset %d: %v", e.Path, e.Offset, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// withPath prefixes the path of a FieldError with the enclosing field name.
func withPath(err error, prefix string) error {
	var fe *FieldError
	if errors.As(err, &fe) {
		if fe.Path == "" {
			fe.Path = prefix
		} else if fe.Path[0] == '[' {
			fe.Path = prefix + fe.Path
		} else {
			fe.Path = prefix + "." + fe.Path
		}
	}
	return err
}
