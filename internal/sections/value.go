package sections

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindString
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a normalized setting value. The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	s    string
	list []Value
	m    *Map
}

func NullValue() Value { return Value{} }

func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }

func StringValue(s string) Value { return Value{kind: KindString, s: s} }

func ListValue(items ...Value) Value {
	return Value{kind: KindList, list: append([]Value{}, items...)}
}

// StringList builds a list of string values.
func StringList(items ...string) Value {
	values := make([]Value, len(items))
	for i, item := range items {
		values[i] = StringValue(item)
	}
	return Value{kind: KindList, list: values}
}

func MapValue(m *Map) Value {
	if m == nil {
		m = NewMap()
	}
	return Value{kind: KindMap, m: m}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean payload and whether v holds a bool.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }

// Int returns the integer payload and whether v holds an int.
func (v Value) Int() (int64, bool) { return v.i, v.kind == KindInt }

// Str returns the string payload and whether v holds a string.
func (v Value) Str() (string, bool) { return v.s, v.kind == KindString }

// List returns the list payload. The slice must not be modified.
func (v Value) List() ([]Value, bool) { return v.list, v.kind == KindList }

// Map returns the map payload.
func (v Value) Map() (*Map, bool) { return v.m, v.kind == KindMap }

// Truthy reports whether v is boolean true or a string spelling of it.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindString:
		return strings.EqualFold(v.s, "true")
	default:
		return false
	}
}

// Equal compares values structurally. Map key order is ignored.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindInt:
		return v.i == other.i
	case KindString:
		return v.s == other.s
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		return v.m.Equal(other.m)
	}
	return false
}

// ValidUTF8 reports whether every string inside v is valid UTF-8.
func (v Value) ValidUTF8() bool {
	switch v.kind {
	case KindString:
		return utf8.ValidString(v.s)
	case KindList:
		for _, item := range v.list {
			if !item.ValidUTF8() {
				return false
			}
		}
	case KindMap:
		return v.m.ValidUTF8()
	}
	return true
}

// Clone returns a deep copy.
func (v Value) Clone() Value {
	switch v.kind {
	case KindList:
		items := make([]Value, len(v.list))
		for i, item := range v.list {
			items[i] = item.Clone()
		}
		return Value{kind: KindList, list: items}
	case KindMap:
		return Value{kind: KindMap, m: v.m.Clone()}
	default:
		return v
	}
}

// Interface converts v into plain Go values: nil, bool, int64, string,
// []any, and map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindString:
		return v.s
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Interface()
		}
		return out
	case KindMap:
		return v.m.Interface()
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindString:
		return v.s
	default:
		data, err := v.MarshalJSON()
		if err != nil {
			return fmt.Sprintf("<%s>", v.kind)
		}
		return string(data)
	}
}

// FromInterface converts decoded JSON or YAML data into a Value. Map keys of
// Go maps are sorted since their order is unknown; prefer the ordered decoders
// when key order matters.
func FromInterface(raw any) (Value, error) {
	switch val := raw.(type) {
	case nil:
		return NullValue(), nil
	case Value:
		return val, nil
	case bool:
		return BoolValue(val), nil
	case int:
		return IntValue(int64(val)), nil
	case int64:
		return IntValue(val), nil
	case uint64:
		return IntValue(int64(val)), nil
	case float64:
		if val == float64(int64(val)) {
			return IntValue(int64(val)), nil
		}
		return StringValue(strconv.FormatFloat(val, 'f', -1, 64)), nil
	case string:
		return StringValue(val), nil
	case []string:
		return StringList(val...), nil
	case []any:
		items := make([]Value, len(val))
		for i, item := range val {
			converted, err := FromInterface(item)
			if err != nil {
				return Value{}, err
			}
			items[i] = converted
		}
		return Value{kind: KindList, list: items}, nil
	case map[string]any:
		m := NewMap()
		for _, key := range sortedKeys(val) {
			converted, err := FromInterface(val[key])
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", key, err)
			}
			m.Set(key, converted)
		}
		return MapValue(m), nil
	case *Map:
		return MapValue(val), nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", raw)
	}
}
