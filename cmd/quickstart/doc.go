// Package main hosts the Quickstart CLI entrypoint and command graph.
//
// The Cobra-based command tree serves the wizard API, drives wizard runs
// directly against the settings store (submit, show, reset, finalize),
// runs ad-hoc credential checks, and scaffolds configuration. It
// centralizes configuration resolution and logger setup so subcommands can
// focus on output instead of wiring.
//
// Keep this package lean: add behaviour to the internal packages first,
// then surface it through dedicated commands or flags here.
package main
