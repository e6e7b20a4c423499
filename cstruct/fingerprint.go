package cstruct

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/zeebo/blake3"
)

// Fingerprint is a BLAKE3 digest of a codec's wire layout: field names,
// element types, counts, length prefixes, nesting and byte order. Two
// codecs with equal fingerprints produce and accept the same byte layout
// for the same values. Field values other than those that determine
// counts do not contribute.
type Fingerprint [32]byte

// String returns the fingerprint as lower-case hex.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// Short returns the first 8 bytes of the fingerprint as hex.
func (f Fingerprint) Short() string {
	return hex.EncodeToString(f[:8])
}

// Fingerprint computes the layout fingerprint of the current schema.
func (s *Struct) Fingerprint() Fingerprint {
	h := blake3.New()
	fmt.Fprintf(h, "order=%s\n", s.order)
	writeSchema(h, s.Schema())

	var fp Fingerprint
	copy(fp[:], h.Sum(nil))
	return fp
}

func writeSchema(w io.Writer, schema *Schema) {
	io.WriteString(w, "{")
	for _, f := range schema.fields {
		fmt.Fprintf(w, "%q:", f.name)
		if f.sub != nil {
			writeSchema(w, f.sub)
			continue
		}
		l := f.leaf
		if l.Struct != nil {
			fmt.Fprintf(w, "struct(%s)", l.Struct.Fingerprint())
		} else {
			io.WriteString(w, l.Type.String())
		}
		if l.Vary {
			fmt.Fprintf(w, "[%s];", l.Prefix)
		} else {
			fmt.Fprintf(w, "[%d];", l.Length)
		}
	}
	io.WriteString(w, "}")
}
