package sections

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

// InputNormalizationError reports a field whose submitted text did not match
// the type the section expects. It is informational: the field keeps its
// string form and normalization continues.
type InputNormalizationError struct {
	Section  string
	Field    string
	Value    string
	Expected string
}

func (e *InputNormalizationError) Error() string {
	return fmt.Sprintf("%s.%s: expected %s, got %q", e.Section, e.Field, e.Expected, e.Value)
}

// oauthTopLevel lists the fields OAuth sections keep outside authorization.
var oauthTopLevel = []string{"client_id", "client_secret", "pin", ValidatedKey}

// Coerce converts one submitted form value: empty text is null, true/on and
// false are booleans, base-10 integers are ints, anything else stays a string.
func Coerce(raw string) Value {
	switch {
	case raw == "":
		return NullValue()
	case strings.EqualFold(raw, "true"), strings.EqualFold(raw, "on"):
		return BoolValue(true)
	case strings.EqualFold(raw, "false"):
		return BoolValue(false)
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return IntValue(i)
	}
	return StringValue(raw)
}

// Normalize turns raw form fields for section into structured data. Field
// names lose their "<section>_" prefix; a prefixed field wins over an
// unprefixed one with the same name. Unknown fields pass through.
func Normalize(section string, raw map[string]string) (*Map, []*InputNormalizationError) {
	def, ok := Lookup(section)
	if !ok {
		def = Definition{ID: section}
	}

	prefix := section + "_"
	fields := make(map[string]string, len(raw))
	prefixed := make(map[string]bool, len(raw))
	var issues []*InputNormalizationError
	for _, key := range sortedKeys(raw) {
		name, had := strings.CutPrefix(strings.ToValidUTF8(key, "\uFFFD"), prefix)
		if name == "" {
			continue
		}
		if prefixed[name] && !had {
			continue
		}
		value := raw[key]
		if !utf8.ValidString(value) {
			// Storage only holds valid text, so bad bytes become U+FFFD here.
			issues = append(issues, &InputNormalizationError{Section: section, Field: name, Value: value, Expected: "UTF-8 text"})
			value = strings.ToValidUTF8(value, "\uFFFD")
		}
		fields[name] = value
		prefixed[name] = prefixed[name] || had
	}

	data := NewMap()
	var auth *Map
	if def.Kind == OAuth {
		auth = NewMap()
	}
	for _, key := range fieldOrder(section, fields) {
		value, issue := coerceField(def, key, fields[key])
		if issue != nil {
			issues = append(issues, issue)
		}
		if auth != nil && !slices.Contains(oauthTopLevel, key) {
			auth.Set(key, value)
			continue
		}
		data.Set(key, value)
	}
	if auth != nil {
		data.Set(AuthorizationKey, MapValue(auth))
	}
	if def.ID == SettingsID {
		if v, ok := data.Get(RunOrderKey); !ok || v.IsNull() {
			data.Set(RunOrderKey, StringList(DefaultRunOrder...))
		}
	}
	return data, issues
}

func coerceField(def Definition, key, raw string) (Value, *InputNormalizationError) {
	switch {
	case key == RunOrderKey:
		if parts := strings.Fields(raw); len(parts) > 0 {
			return StringList(parts...), nil
		}
		return NullValue(), nil
	case def.ID == LibrarySelectionID && key == LibrariesKey:
		if raw == "" {
			return NullValue(), nil
		}
		parsed, err := ParseJSON([]byte(raw))
		if err != nil || parsed.Kind() != KindList {
			return StringValue(raw), &InputNormalizationError{Section: def.ID, Field: key, Value: raw, Expected: "JSON list"}
		}
		return parsed, nil
	}
	value := Coerce(raw)
	if def.ExpectsInt(key) && value.Kind() == KindString {
		return value, &InputNormalizationError{Section: def.ID, Field: key, Value: raw, Expected: "integer"}
	}
	return value, nil
}

// fieldOrder sorts keys by their position in the section defaults, then
// alphabetically for fields the defaults do not know.
func fieldOrder(section string, fields map[string]string) []string {
	known := make(map[string]int)
	for key, value := range defaultsFor(section).All() {
		if key == AuthorizationKey {
			if nested, ok := value.Map(); ok {
				for _, sub := range nested.Keys() {
					known[sub] = len(known)
				}
				continue
			}
		}
		known[key] = len(known)
	}
	keys := sortedKeys(fields)
	slices.SortStableFunc(keys, func(a, b string) int {
		ia, oka := known[a]
		ib, okb := known[b]
		switch {
		case oka && okb:
			return ia - ib
		case oka:
			return -1
		case okb:
			return 1
		}
		return 0
	})
	return keys
}

// ToForm renders normalized data back into prefixed form fields. Feeding the
// result to Normalize reproduces data.
func ToForm(section string, data *Map) map[string]string {
	def, ok := Lookup(section)
	if !ok {
		def = Definition{ID: section}
	}
	prefix := section + "_"
	form := make(map[string]string, data.Len())
	for key, value := range data.All() {
		if def.Kind == OAuth && key == AuthorizationKey {
			if nested, ok := value.Map(); ok {
				for sub, subValue := range nested.All() {
					form[prefix+sub] = formText(sub, subValue)
				}
				continue
			}
		}
		form[prefix+key] = formText(key, value)
	}
	return form
}

func formText(key string, value Value) string {
	switch value.Kind() {
	case KindNull:
		return ""
	case KindList:
		if key == RunOrderKey {
			items, _ := value.List()
			parts := make([]string, 0, len(items))
			for _, item := range items {
				parts = append(parts, item.String())
			}
			return strings.Join(parts, " ")
		}
		return value.String()
	default:
		return value.String()
	}
}
