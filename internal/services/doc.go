// Package services defines shared utilities consumed by the wizard, the API
// server, and the credential checks.
//
// Key responsibilities:
//   - Context helpers that stamp run identities, step names, and correlation
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent API status codes.
//
// Use these helpers when wiring new components so operational behaviour (error
// handling, observability) stays uniform across the wizard.
package services
