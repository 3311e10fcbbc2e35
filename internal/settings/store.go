package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quickstart/internal/config"
	"quickstart/internal/sections"
	"quickstart/internal/services"
)

// Record is the stored state of one section for one run.
type Record struct {
	RunID       string
	Section     string
	Validated   bool
	UserEntered bool
	// Data is nil when nothing has been stored for the section.
	Data      *sections.Map
	UpdatedAt time.Time
}

// Exists reports whether the record was loaded from storage.
func (r Record) Exists() bool {
	return r.Data != nil
}

// Store persists section records.
type Store interface {
	// Put inserts or replaces the record for (rec.RunID, rec.Section). Nil
	// Data is stored as an empty map, so the record exists afterwards.
	// Data holding invalid UTF-8 is rejected.
	Put(ctx context.Context, rec Record) error
	// Get returns the record, or a Record with nil Data when absent.
	Get(ctx context.Context, runID, section string) (Record, error)
	// List returns every record stored for the run ordered by section.
	List(ctx context.Context, runID string) ([]Record, error)
	// Runs returns the run identities that have at least one record.
	Runs(ctx context.Context) ([]string, error)
	// Reset deletes one section of a run, or the whole run when section is empty.
	Reset(ctx context.Context, runID, section string) error
	Close() error
}

// ErrClosed is reported by stores used after Close.
var ErrClosed = errors.New("store closed")

// StorageError wraps any backend failure. It matches services.ErrStorage.
type StorageError struct {
	Op      string
	RunID   string
	Section string
	Err     error
}

func (e *StorageError) Error() string {
	target := e.RunID
	if e.Section != "" {
		target += "/" + e.Section
	}
	if target == "" {
		return fmt.Sprintf("settings %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("settings %s %s: %v", e.Op, target, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{services.ErrStorage, e.Err}
}

func storageErr(op, runID, section string, err error) error {
	return &StorageError{Op: op, RunID: runID, Section: section, Err: err}
}

func checkKey(runID, section string) error {
	if runID == "" || section == "" {
		return services.Wrap(services.ErrValidation, "settings", "key", "run id and section are required", nil)
	}
	return nil
}

// checkRecord validates a record before any backend writes it.
func checkRecord(rec Record) error {
	if err := checkKey(rec.RunID, rec.Section); err != nil {
		return err
	}
	if !rec.Data.ValidUTF8() {
		return services.Wrap(services.ErrValidation, "settings", "put", "section data is not valid UTF-8", nil)
	}
	return nil
}

// New opens the backend selected by wizard.storage.
func New(cfg *config.Config) (Store, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	switch cfg.Wizard.Storage {
	case config.StorageMemory:
		return NewMemoryStore(), nil
	default:
		return Open(cfg)
	}
}
