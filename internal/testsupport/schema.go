package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"quickstart/internal/schema"
)

// MinimalSchema requires plex and tmdb and types a few of their fields.
const MinimalSchema = `
type: object
required: [plex, tmdb]
properties:
  plex:
    type: object
    required: [url, token]
    properties:
      url: {type: string}
      token: {type: string}
      timeout: {type: integer}
  tmdb:
    type: object
    required: [apikey]
    properties:
      apikey: {type: string}
`

// WriteSchema writes a schema document to path, creating parent directories.
func WriteSchema(t testing.TB, path, text string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// MustParseSchema compiles text or fails the test.
func MustParseSchema(t testing.TB, text string) *schema.Schema {
	t.Helper()

	s, err := schema.Parse([]byte(text), "test")
	if err != nil {
		t.Fatalf("schema.Parse: %v", err)
	}
	return s
}

// StaticSchema is a schema source that always returns the same schema; a
// nil Schema simulates an unreachable source.
type StaticSchema struct {
	Schema *schema.Schema
}

// Load implements the wizard schema source.
func (s StaticSchema) Load(context.Context) *schema.Schema {
	return s.Schema
}
