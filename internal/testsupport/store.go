package testsupport

import (
	"context"
	"testing"

	"quickstart/internal/config"
	"quickstart/internal/sections"
	"quickstart/internal/settings"
)

// MustOpenStore opens the configured settings backend for tests and
// registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) settings.Store {
	t.Helper()

	store, err := settings.New(cfg)
	if err != nil {
		t.Fatalf("settings.New: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// PutSection stores data for (runID, section) with the given flags.
func PutSection(t testing.TB, store settings.Store, runID, section string, validated, userEntered bool, data *sections.Map) {
	t.Helper()

	rec := settings.Record{RunID: runID, Section: section, Validated: validated, UserEntered: userEntered, Data: data}
	if err := store.Put(context.Background(), rec); err != nil {
		t.Fatalf("store.Put %s/%s: %v", runID, section, err)
	}
}
