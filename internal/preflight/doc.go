// Package preflight runs the environment checks behind `quickstart doctor`:
// data and log directory access, the settings database, the API bind
// address, and whether the configuration schema can be loaded.
package preflight
