// Package validators checks third-party credentials entered in the wizard.
//
// Each checked section has one CheckFunc registered in a Registry. A check
// either succeeds, optionally returning metadata the wizard stores alongside
// the section (Plex library names, Trakt tokens, Radarr root folders), or
// fails with an error that Registry.Validate turns into an
// ExternalValidationError. Every call runs under the configured timeout, so a
// slow service yields a timed-out failure instead of a hung request.
package validators
