package sections

import (
	"iter"
	"slices"
	"sort"
	"unicode/utf8"
)

// Map is a string-keyed mapping that remembers insertion order. Order drives
// key layout in the rendered document; equality ignores it.
type Map struct {
	keys   []string
	values map[string]Value
}

// NewMap returns an empty map.
func NewMap() *Map {
	return &Map{values: make(map[string]Value)}
}

// Len returns the number of entries. A nil map is empty.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Set stores value under key. Existing keys keep their position.
func (m *Map) Set(key string, value Value) {
	if m.values == nil {
		m.values = make(map[string]Value)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	v, ok := m.values[key]
	return v, ok
}

func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

func (m *Map) Delete(key string) {
	if m == nil {
		return
	}
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	m.keys = slices.DeleteFunc(m.keys, func(k string) bool { return k == key })
}

// Keys returns a copy of the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// All iterates entries in insertion order.
func (m *Map) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if m == nil {
			return
		}
		for _, key := range m.keys {
			if !yield(key, m.values[key]) {
				return
			}
		}
	}
}

// Clone returns a deep copy. Cloning nil yields nil.
func (m *Map) Clone() *Map {
	if m == nil {
		return nil
	}
	out := &Map{keys: append([]string(nil), m.keys...), values: make(map[string]Value, len(m.values))}
	for k, v := range m.values {
		out.values[k] = v.Clone()
	}
	return out
}

// Equal reports whether both maps hold the same entries. nil equals empty.
func (m *Map) Equal(other *Map) bool {
	if m.Len() != other.Len() {
		return false
	}
	for key, value := range m.All() {
		theirs, ok := other.Get(key)
		if !ok || !value.Equal(theirs) {
			return false
		}
	}
	return true
}

// Interface converts the map to map[string]any.
func (m *Map) Interface() map[string]any {
	out := make(map[string]any, m.Len())
	for key, value := range m.All() {
		out[key] = value.Interface()
	}
	return out
}

func sortedKeys[V any](values map[string]V) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ValidUTF8 reports whether every key and string value is valid UTF-8.
func (m *Map) ValidUTF8() bool {
	if m == nil {
		return true
	}
	for _, key := range m.keys {
		if !utf8.ValidString(key) || !m.values[key].ValidUTF8() {
			return false
		}
	}
	return true
}
