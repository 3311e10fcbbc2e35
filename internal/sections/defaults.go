package sections

import (
	_ "embed"
	"fmt"
)

//go:embed defaults.yml
var defaultsYAML []byte

var prototype = mustParseDefaults(defaultsYAML)

func mustParseDefaults(data []byte) *Map {
	parsed, err := ParseYAML(data)
	if err != nil {
		panic(fmt.Sprintf("parse embedded section defaults: %v", err))
	}
	m, ok := parsed.Map()
	if !ok {
		panic("parse embedded section defaults: expected mapping")
	}
	return m
}

func defaultsFor(section string) *Map {
	value, ok := prototype.Get(section)
	if !ok {
		return NewMap()
	}
	m, ok := value.Map()
	if !ok {
		return NewMap()
	}
	return m
}

// Defaults returns the placeholder data a section starts with. Sections
// without placeholders, including per-library steps, start empty.
func Defaults(section string) *Map {
	return defaultsFor(section).Clone()
}

// UserEntered reports whether data differs from the section defaults once
// wizard-internal keys are ignored.
func UserEntered(section string, data *Map) bool {
	return !StripTransient(data, nil).Equal(StripTransient(defaultsFor(section), nil))
}

// StripTransient returns a copy of data without wizard-internal keys at any
// depth. def may add section-specific transient keys.
func StripTransient(data *Map, def *Definition) *Map {
	out := NewMap()
	for key, value := range data.All() {
		if IsTransientKey(key) || (def != nil && def.IsTransient(key)) {
			continue
		}
		if nested, ok := value.Map(); ok {
			value = MapValue(StripTransient(nested, def))
		}
		out.Set(key, value.Clone())
	}
	return out
}
