// Package wizard implements the Quickstart operations exposed to the HTTP
// and CLI layers: catalog and navigation, step submission, reset, and
// finalization of a run into a validated, rendered config.yml.
//
// Every operation takes the run identity explicitly; the service keeps no
// per-user state of its own beyond the settings store.
package wizard
