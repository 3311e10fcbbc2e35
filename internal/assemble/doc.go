// Package assemble merges a run's stored sections into the composite Kometa
// configuration document.
//
// Sections are visited in sections.CanonicalOrder. A section is included only
// when its record exists, carries user-entered data, and (unless the assembler
// was built with WithUserEnteredOnly) was validated. Included data loses its
// wizard-internal keys and has leftover "true"/"false" strings turned into
// booleans. Per-library steps are gathered under one "libraries" mapping keyed
// by library name in selection order.
//
// A storage failure on any section aborts the whole assembly; absent sections
// are simply left out.
package assemble
