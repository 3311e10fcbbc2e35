package sections

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes a YAML (or JSON) document into a Value, keeping mapping
// key order.
func ParseYAML(data []byte) (Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Value{}, fmt.Errorf("decode yaml: %w", err)
	}
	if doc.Kind == 0 {
		return NullValue(), nil
	}
	return FromYAMLNode(&doc)
}

// FromYAMLNode converts a yaml.v3 node tree into a Value.
func FromYAMLNode(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return NullValue(), nil
		}
		return FromYAMLNode(n.Content[0])
	case yaml.AliasNode:
		return FromYAMLNode(n.Alias)
	case yaml.MappingNode:
		m := NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			item, err := FromYAMLNode(n.Content[i+1])
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", key, err)
			}
			m.Set(key, item)
		}
		return MapValue(m), nil
	case yaml.SequenceNode:
		items := make([]Value, 0, len(n.Content))
		for _, child := range n.Content {
			item, err := FromYAMLNode(child)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		return Value{kind: KindList, list: items}, nil
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return NullValue(), nil
		case "!!bool":
			var b bool
			if err := n.Decode(&b); err != nil {
				return Value{}, err
			}
			return BoolValue(b), nil
		case "!!int":
			var i int64
			if err := n.Decode(&i); err != nil {
				return StringValue(n.Value), nil
			}
			return IntValue(i), nil
		default:
			return StringValue(n.Value), nil
		}
	}
	return Value{}, fmt.Errorf("unsupported yaml node kind %d", n.Kind)
}

// YAMLNode converts v into a yaml.v3 node. Strings that would read back as
// another type are quoted by the encoder.
func (v Value) YAMLNode() *yaml.Node {
	switch v.kind {
	case KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.b)}
	case KindInt:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(v.i, 10)}
	case KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.s}
	case KindList:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		if len(v.list) == 0 {
			node.Style = yaml.FlowStyle
		}
		for _, item := range v.list {
			node.Content = append(node.Content, item.YAMLNode())
		}
		return node
	case KindMap:
		return v.m.YAMLNode()
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

// YAMLNode converts the map into a mapping node in insertion order.
func (m *Map) YAMLNode() *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	if m.Len() == 0 {
		node.Style = yaml.FlowStyle
	}
	for key, item := range m.All() {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			item.YAMLNode(),
		)
	}
	return node
}

// MarshalYAML lets yaml.v3 encode values directly.
func (v Value) MarshalYAML() (any, error) {
	return v.YAMLNode(), nil
}

// MarshalYAML lets yaml.v3 encode maps directly.
func (m *Map) MarshalYAML() (any, error) {
	return m.YAMLNode(), nil
}
