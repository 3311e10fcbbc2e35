// Package catalog derives the ordered wizard steps for a run and answers
// navigation questions about them.
//
// The catalog is never stored. It is rebuilt from the section definition table
// and the libraries picked in the library selection step, so two builds with
// the same selection always yield the same order. Repeatable library groups
// extend their three digit group key with a counter ("01201", "01202") that
// follows selection order. The counter widens past two digits once a selection
// holds more than 99 libraries.
//
// Navigation never fails: an unknown step resolves to the first step and the
// returned Position is marked Redirected.
package catalog
