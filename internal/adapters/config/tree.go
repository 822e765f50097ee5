package config

import (
	"maps"
	"slices"

	"github.com/pelletier/go-toml/v2"
	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Kind is the kind of a Tree node.
type Kind uint8

const (
	// KindNull is an explicit null.
	KindNull Kind = iota
	// KindScalar is a string, number, bool or timestamp.
	KindScalar
	// KindMap is a mapping with keys in first-seen order.
	KindMap
	// KindList is a sequence. Lists are merged as leaves.
	KindList
)

// Tree is an ordered configuration tree.
type Tree struct {
	kind   Kind
	keys   []string
	fields map[string]*Tree
	items  []*Tree
	value  any
}

// NewMap returns an empty mapping.
func NewMap() *Tree {
	return &Tree{kind: KindMap, fields: make(map[string]*Tree)}
}

// Kind returns the node kind.
func (t *Tree) Kind() Kind {
	return t.kind
}

// Keys returns the mapping keys in order.
func (t *Tree) Keys() []string {
	return slices.Clone(t.keys)
}

// Get returns the child at key.
func (t *Tree) Get(key string) (*Tree, bool) {
	if t.kind != KindMap {
		return nil, false
	}
	child, ok := t.fields[key]
	return child, ok
}

// Set inserts or replaces key. New keys are appended.
func (t *Tree) Set(key string, value *Tree) {
	if _, ok := t.fields[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.fields[key] = value
}

// Delete removes key.
func (t *Tree) Delete(key string) {
	if _, ok := t.fields[key]; !ok {
		return
	}
	delete(t.fields, key)
	t.keys = slices.DeleteFunc(t.keys, func(k string) bool { return k == key })
}

// Interface converts the tree into plain maps, slices and scalars.
func (t *Tree) Interface() any {
	switch t.kind {
	case KindMap:
		out := make(map[string]any, len(t.keys))
		for _, k := range t.keys {
			out[k] = t.fields[k].Interface()
		}
		return out
	case KindList:
		out := make([]any, len(t.items))
		for i, item := range t.items {
			out[i] = item.Interface()
		}
		return out
	case KindScalar:
		return t.value
	default:
		return nil
	}
}

func (t *Tree) clone() *Tree {
	c := &Tree{kind: t.kind, value: t.value}
	if t.kind == KindMap {
		c.keys = slices.Clone(t.keys)
		c.fields = make(map[string]*Tree, len(t.fields))
		for k, v := range t.fields {
			c.fields[k] = v.clone()
		}
	}
	for _, item := range t.items {
		c.items = append(c.items, item.clone())
	}
	return c
}

// Merge folds overlays into a copy of base. Keys keep first-seen order,
// mappings merge recursively, everything else is replaced by the later value
// and an explicit null in an overlay deletes the key.
func Merge(base *Tree, overlays ...*Tree) *Tree {
	out := base.clone()
	for _, o := range overlays {
		out = mergeInto(out, o)
	}
	return out
}

func mergeInto(dst, src *Tree) *Tree {
	if dst.kind != KindMap || src.kind != KindMap {
		return src.clone()
	}
	for _, k := range src.keys {
		v := src.fields[k]
		if v.kind == KindNull {
			dst.Delete(k)
			continue
		}
		if existing, ok := dst.fields[k]; ok {
			dst.fields[k] = mergeInto(existing, v)
			continue
		}
		dst.Set(k, v.clone())
	}
	return dst
}

// ParseYAML parses a YAML document. The top level must be a mapping.
func ParseYAML(data []byte) (*Tree, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
	}
	if doc.Kind == 0 {
		return NewMap(), nil
	}

	t, err := fromYAML(&doc)
	if err != nil {
		return nil, err
	}
	if t.kind != KindMap {
		return nil, zerr.Wrap(domain.ErrConfigParseFailed, "top level must be a mapping")
	}
	return t, nil
}

func fromYAML(n *yaml.Node) (*Tree, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return NewMap(), nil
		}
		return fromYAML(n.Content[0])
	case yaml.AliasNode:
		return fromYAML(n.Alias)
	case yaml.MappingNode:
		t := NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			child, err := fromYAML(n.Content[i+1])
			if err != nil {
				return nil, zerr.With(err, "key", key)
			}
			t.Set(key, child)
		}
		return t, nil
	case yaml.SequenceNode:
		t := &Tree{kind: KindList}
		for _, item := range n.Content {
			child, err := fromYAML(item)
			if err != nil {
				return nil, err
			}
			t.items = append(t.items, child)
		}
		return t, nil
	default:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "line", n.Line)
		}
		if v == nil {
			return &Tree{kind: KindNull}, nil
		}
		return &Tree{kind: KindScalar, value: v}, nil
	}
}

// ParseTOML parses a TOML document. TOML tables carry no order once decoded,
// so their keys are sorted.
func ParseTOML(data []byte) (*Tree, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
	}
	if doc == nil {
		return NewMap(), nil
	}
	return fromValue(doc), nil
}

func fromValue(v any) *Tree {
	switch v := v.(type) {
	case nil:
		return &Tree{kind: KindNull}
	case map[string]any:
		t := NewMap()
		for _, k := range slices.Sorted(maps.Keys(v)) {
			t.Set(k, fromValue(v[k]))
		}
		return t
	case []any:
		t := &Tree{kind: KindList}
		for _, item := range v {
			t.items = append(t.items, fromValue(item))
		}
		return t
	case []map[string]any:
		t := &Tree{kind: KindList}
		for _, item := range v {
			t.items = append(t.items, fromValue(item))
		}
		return t
	default:
		return &Tree{kind: KindScalar, value: v}
	}
}

// MarshalYAML renders the tree as a yaml.Node so keys keep their order.
func (t *Tree) MarshalYAML() (any, error) {
	return t.toYAML()
}

func (t *Tree) toYAML() (*yaml.Node, error) {
	switch t.kind {
	case KindMap:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range t.keys {
			child, err := t.fields[k].toYAML()
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, child)
		}
		return n, nil
	case KindList:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range t.items {
			child, err := item.toYAML()
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, child)
		}
		return n, nil
	default:
		n := &yaml.Node{}
		if err := n.Encode(t.value); err != nil {
			return nil, err
		}
		return n, nil
	}
}
