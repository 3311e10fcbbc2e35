// Package daemon runs the long-lived Quickstart server.
//
// It wires configuration, the settings store and the wizard service into a
// single lifecycle with flock-based locking to prevent multiple instances
// sharing one data directory. The HTTP API exposes the wizard: run creation
// and the run cookie, step navigation and submission, resets, finalization
// and the config.yml download, plus ad-hoc credential checks.
//
// Keep orchestration here: wizard rules live in internal/wizard and the
// wire types in internal/api.
package daemon
