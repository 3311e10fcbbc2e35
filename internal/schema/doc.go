// Package schema validates composite documents against the Kometa
// configuration JSON schema.
//
// The schema is external input. Loader fetches it from a local file (YAML or
// JSON) or an HTTP URL and caches it; a failed load yields a nil schema, and
// Validate reports a nil schema as StatusUnknown rather than as a pass or a
// failure.
package schema
