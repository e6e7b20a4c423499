// Package schemafile loads named struct layouts from YAML and JSONC documents.
//
// A document is a mapping from layout name to layout. Each layout maps field
// names, in wire order, to a field spec written the same way as in Go:
//
//	point:
//	  x: int16
//	  y: int16
//	path:
//	  name: [uint8, "", uint8]      # self-describing, uint8 prefix
//	  closed: [uint8, 0]
//	  points: [point, [], uint16]   # repeated nested struct
//	  bounds:
//	    min: [float32, 0]
//	    max: [float32, 0]
//
// A type tag that is not a primitive names another layout in the same
// document. References are resolved on Build; every reference to a name
// shares one codec. Cycles are rejected.
//
// JSONC documents (JSON with comments and trailing commas) are stripped to
// JSON and read through the same decoder, so key order is preserved for
// both formats.
package schemafile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/robert-malhotra/go-cstruct/cstruct"
)

// Errors returned while loading documents.
var (
	ErrNotFound = errors.New("layout not found")
	ErrCycle    = errors.New("layout reference cycle")
	ErrSyntax   = errors.New("invalid layout document")
)

// Format selects the document syntax.
type Format int

const (
	FormatYAML Format = iota
	FormatJSONC
)

// FormatFromPath picks the format from a file extension. Anything other
// than .json and .jsonc is read as YAML.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return FormatJSONC
	default:
		return FormatYAML
	}
}

// Document holds the parsed, not yet built, layouts of one file.
type Document struct {
	names []string
	nodes map[string]*yaml.Node
}

// Parse parses a layout document.
func Parse(data []byte, format Format) (*Document, error) {
	if format == FormatJSONC {
		var compact bytes.Buffer
		if err := json.Compact(&compact, jsonc.ToJSON(data)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		data = compact.Bytes()
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) != 1 {
		return nil, fmt.Errorf("%w: empty document", ErrSyntax)
	}
	top := resolve(root.Content[0])
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: line %d: top level must map layout names to layouts", ErrSyntax, top.Line)
	}

	doc := &Document{nodes: make(map[string]*yaml.Node)}
	for i := 0; i+1 < len(top.Content); i += 2 {
		key, value := top.Content[i], resolve(top.Content[i+1])
		if _, dup := doc.nodes[key.Value]; dup {
			return nil, fmt.Errorf("%w: line %d: duplicate layout %q", ErrSyntax, key.Line, key.Value)
		}
		if cstruct.IsTypeTag(key.Value) {
			return nil, fmt.Errorf("%w: line %d: layout name %q shadows a primitive type", ErrSyntax, key.Line, key.Value)
		}
		if value.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%w: line %d: layout %q must be a mapping", ErrSyntax, value.Line, key.Value)
		}
		doc.names = append(doc.names, key.Value)
		doc.nodes[key.Value] = value
	}
	if len(doc.names) == 0 {
		return nil, fmt.Errorf("%w: no layouts", ErrSyntax)
	}
	return doc, nil
}

// ReadFile reads and parses a layout document, choosing the format from
// the file extension.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	doc, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Names returns the layout names in document order.
func (d *Document) Names() []string {
	return append([]string(nil), d.names...)
}

// Has reports whether the document defines name.
func (d *Document) Has(name string) bool {
	_, ok := d.nodes[name]
	return ok
}

// Build constructs the codec for name and every layout it references.
// opts apply to each codec built.
func (d *Document) Build(name string, opts ...cstruct.Option) (*cstruct.Struct, error) {
	b := newBuilder(d, opts)
	return b.build(name)
}

// BuildAll constructs a codec for every layout, sharing referenced codecs.
func (d *Document) BuildAll(opts ...cstruct.Option) (map[string]*cstruct.Struct, error) {
	b := newBuilder(d, opts)
	for _, name := range d.names {
		if _, err := b.build(name); err != nil {
			return nil, err
		}
	}
	return b.built, nil
}

func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}
