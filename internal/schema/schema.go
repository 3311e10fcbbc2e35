package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Schema is a compiled configuration schema.
type Schema struct {
	compiled *jsonschema.Schema
	source   string
}

// Source names where the schema was loaded from.
func (s *Schema) Source() string {
	if s == nil {
		return ""
	}
	return s.source
}

// Parse compiles a schema document. YAML and JSON encodings are both accepted.
func Parse(data []byte, source string) (*Schema, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode schema %s: %w", source, err)
	}
	if _, ok := doc.(map[string]any); !ok {
		return nil, fmt.Errorf("decode schema %s: expected an object at the top level", source)
	}
	encoded, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode schema %s: %w", source, err)
	}

	resource := "quickstart://schema/config-schema.json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(resource, bytes.NewReader(encoded)); err != nil {
		return nil, fmt.Errorf("add schema resource %s: %w", source, err)
	}
	compiled, err := compiler.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", source, err)
	}
	return &Schema{compiled: compiled, source: source}, nil
}
