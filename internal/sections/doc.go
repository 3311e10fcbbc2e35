// Package sections models wizard settings and the fixed table of sections the
// wizard knows about.
//
// Value is the normalized representation of everything a user submits: null,
// booleans, integers, strings, lists, and insertion-ordered maps. Normalize
// converts raw prefixed form fields into Values (and ToForm reverses it), the
// definition table records each section's catalog position and layout, and
// CanonicalOrder fixes the order of top-level keys in the final document.
package sections
