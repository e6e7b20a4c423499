package schemafile

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/robert-malhotra/go-cstruct/cstruct"
)

type builder struct {
	doc      *Document
	opts     []cstruct.Option
	built    map[string]*cstruct.Struct
	building []string
}

func newBuilder(doc *Document, opts []cstruct.Option) *builder {
	return &builder{
		doc:   doc,
		opts:  opts,
		built: make(map[string]*cstruct.Struct),
	}
}

func (b *builder) build(name string) (*cstruct.Struct, error) {
	if s, ok := b.built[name]; ok {
		return s, nil
	}
	node, ok := b.doc.nodes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	for i, n := range b.building {
		if n == name {
			chain := append(append([]string(nil), b.building[i:]...), name)
			return nil, fmt.Errorf("%w: %s", ErrCycle, strings.Join(chain, " -> "))
		}
	}

	b.building = append(b.building, name)
	defer func() { b.building = b.building[:len(b.building)-1] }()

	layout, err := b.layout(node)
	if err != nil {
		return nil, fmt.Errorf("layout %q: %w", name, err)
	}
	s, err := cstruct.New(layout, b.opts...)
	if err != nil {
		return nil, fmt.Errorf("layout %q: %w", name, err)
	}
	b.built[name] = s
	return s, nil
}

// layout converts a mapping node into an ordered Layout.
func (b *builder) layout(node *yaml.Node) (cstruct.Layout, error) {
	layout := make(cstruct.Layout, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], resolve(node.Content[i+1])
		spec, err := b.spec(value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key.Value, err)
		}
		layout = append(layout, cstruct.M(key.Value, spec))
	}
	return layout, nil
}

// spec converts one field node into a Member spec.
func (b *builder) spec(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.MappingNode:
		return b.layout(node)
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil, fmt.Errorf("%w: line %d: missing field type", ErrSyntax, node.Line)
		}
		return b.typeRef(node)
	case yaml.SequenceNode:
		return b.list(node)
	default:
		return nil, fmt.Errorf("%w: line %d: unsupported field spec", ErrSyntax, node.Line)
	}
}

// list converts [type, value, length, vary].
func (b *builder) list(node *yaml.Node) ([]any, error) {
	items := node.Content
	if len(items) == 0 || len(items) > 4 {
		return nil, fmt.Errorf("%w: line %d: field spec needs 1 to 4 elements", ErrSyntax, node.Line)
	}

	typ, err := b.typeRef(resolve(items[0]))
	if err != nil {
		return nil, err
	}
	list := []any{typ}

	for _, item := range items[1:] {
		var v any
		if err := resolve(item).Decode(&v); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrSyntax, item.Line, err)
		}
		list = append(list, v)
	}
	return list, nil
}

// typeRef returns a primitive tag unchanged or the codec of a referenced layout.
func (b *builder) typeRef(node *yaml.Node) (any, error) {
	if node.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("%w: line %d: field type must be a name", ErrSyntax, node.Line)
	}
	if cstruct.IsTypeTag(node.Value) {
		return node.Value, nil
	}
	if !b.doc.Has(node.Value) {
		return nil, fmt.Errorf("%w: line %d: %q is neither a primitive nor a layout", cstruct.ErrUnknownType, node.Line, node.Value)
	}
	return b.build(node.Value)
}
