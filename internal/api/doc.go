// Package api defines wire-format types and converters for the HTTP API and
// the CLI's JSON output. It translates wizard, catalog and settings models
// into transport-friendly DTOs so clients never couple to internal types.
//
// # Key Types
//
// Step/Position: catalog entries and navigation results.
//
// Record: a stored section with its flags, data and form fields.
//
// Submission: the outcome of storing a step, including the next position.
//
// FinalizeResult: the rendered document with its schema verdict.
//
// DaemonStatus: process information plus the per-run minimum settings check.
//
// # Design Notes
//
// DTOs use camelCase JSON tags. Section data is emitted as an ordered JSON
// object through sections.Map so field order matches the rendered YAML.
// Timestamps use RFC3339 with milliseconds.
package api
