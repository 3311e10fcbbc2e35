package schema

import (
	"bytes"
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"quickstart/internal/sections"
)

// Status is the outcome of a schema check.
type Status string

const (
	StatusValid   Status = "valid"
	StatusInvalid Status = "invalid"
	// StatusUnknown means no schema was available and nothing was checked.
	StatusUnknown Status = "unknown"
)

// Verdict is the result of validating a composite document.
type Verdict struct {
	Status Status `json:"status"`
	// Path is a JSON pointer to the first violation, "" for the document root.
	Path    string `json:"path,omitempty"`
	Message string `json:"message,omitempty"`
	// Err is a *SchemaValidationError or *SchemaUnavailableError when Status
	// is not StatusValid.
	Err error `json:"-"`
}

// SchemaUnavailableError reports that no schema could be loaded.
type SchemaUnavailableError struct {
	Source string
	Err    error
}

func (e *SchemaUnavailableError) Error() string {
	if e.Err == nil {
		return "schema unavailable"
	}
	if e.Source == "" {
		return fmt.Sprintf("schema unavailable: %v", e.Err)
	}
	return fmt.Sprintf("schema unavailable (%s): %v", e.Source, e.Err)
}

func (e *SchemaUnavailableError) Unwrap() error { return e.Err }

// SchemaValidationError is the first violation found in a document.
type SchemaValidationError struct {
	Path    string
	Message string
}

func (e *SchemaValidationError) Error() string {
	path := e.Path
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("schema violation at %s: %s", path, e.Message)
}

var quotedName = regexp.MustCompile(`['"]([^'"]+)['"]`)

// Validate checks doc against s. A nil schema yields StatusUnknown.
func Validate(doc *sections.Map, s *Schema) Verdict {
	if s == nil || s.compiled == nil {
		err := &SchemaUnavailableError{}
		return Verdict{Status: StatusUnknown, Message: err.Error(), Err: err}
	}
	if doc == nil {
		doc = sections.NewMap()
	}

	instance, err := toInstance(doc)
	if err != nil {
		verr := &SchemaValidationError{Message: err.Error()}
		return Verdict{Status: StatusInvalid, Message: verr.Message, Err: verr}
	}

	err = s.compiled.Validate(instance)
	if err == nil {
		return Verdict{Status: StatusValid}
	}
	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		verr := &SchemaValidationError{Message: err.Error()}
		return Verdict{Status: StatusInvalid, Message: verr.Message, Err: verr}
	}
	leaf := firstLeaf(validationErr)
	verr := &SchemaValidationError{Path: leafPath(leaf), Message: leaf.Message}
	return Verdict{Status: StatusInvalid, Path: verr.Path, Message: verr.Message, Err: verr}
}

// toInstance converts doc into the plain JSON value tree the validator walks.
func toInstance(doc *sections.Map) (any, error) {
	encoded, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(encoded))
	dec.UseNumber()
	var instance any
	if err := dec.Decode(&instance); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return instance, nil
}

// firstLeaf picks the leaf violation that comes first in canonical section
// order. The validator collects sibling causes in map order, so the causes
// are ranked rather than taken as returned.
func firstLeaf(err *jsonschema.ValidationError) *jsonschema.ValidationError {
	var leaves []*jsonschema.ValidationError
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			leaves = append(leaves, e)
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(err)
	return slices.MinFunc(leaves, func(a, b *jsonschema.ValidationError) int {
		pa, pb := leafPath(a), leafPath(b)
		return cmp.Or(
			cmp.Compare(sectionRank(pa), sectionRank(pb)),
			strings.Compare(pa, pb),
			strings.Compare(a.KeywordLocation, b.KeywordLocation),
		)
	})
}

// sectionRank orders a pointer by its top-level section; unknown sections
// sort after the known ones.
func sectionRank(pointer string) int {
	top, _, _ := strings.Cut(strings.TrimPrefix(pointer, "/"), "/")
	if i := slices.Index(sections.CanonicalOrder, top); i >= 0 {
		return i
	}
	return len(sections.CanonicalOrder)
}

// leafPath points missing-required violations at the missing property.
func leafPath(err *jsonschema.ValidationError) string {
	path := err.InstanceLocation
	if strings.HasSuffix(err.KeywordLocation, "/required") {
		if m := quotedName.FindStringSubmatch(err.Message); m != nil {
			return strings.TrimSuffix(path, "/") + "/" + escapePointer(m[1])
		}
	}
	return path
}

func escapePointer(token string) string {
	return strings.NewReplacer("~", "~0", "/", "~1").Replace(token)
}
