// Package config loads, normalizes, and validates Quickstart configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// QUICKSTART_API_TOKEN and QUICKSTART_SCHEMA_URL. The Config type centralizes
// every knob the server and CLI need: where run settings are persisted, where
// the Kometa schema comes from, and how the final document is assembled.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
