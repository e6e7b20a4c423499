package cstruct

// VisitFunc is called for each leaf during a Walk.
// leaf is a copy of the schema's descriptor, name is the field name at the
// current nesting level and out is the result map for that level. Return
// a non-nil error to abort the walk.
type VisitFunc func(leaf *Leaf, name string, out map[string]any) error

// Walk traverses s depth-first in declaration order and builds a result
// tree mirroring its nesting. Nested mappings are walked recursively and
// their results attached under the same key.
//
// Example:
//
//	sizes, err := cstruct.Walk(schema, func(l *cstruct.Leaf, name string, out map[string]any) error {
//	    out[name] = l.Length * l.ElementSize()
//	    return nil
//	})
func Walk(s *Schema, fn VisitFunc) (map[string]any, error) {
	out := make(map[string]any, len(s.fields))
	for _, f := range s.fields {
		if f.sub != nil {
			sub, err := Walk(f.sub, fn)
			if err != nil {
				return nil, withPath(err, f.name)
			}
			out[f.name] = sub
			continue
		}

		leaf := *f.leaf
		if err := fn(&leaf, f.name, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}
