// Package render turns a composite document into the config.yml text handed
// to the user: an optional header banner followed by one titled block per
// top-level section, in document order.
package render
