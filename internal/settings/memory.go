package settings

import (
	"context"
	"sort"
	"sync"
	"time"

	"quickstart/internal/sections"
)

type recordKey struct {
	runID   string
	section string
}

// MemoryStore keeps records in process. Data is cloned on the way in and out
// so callers never share maps with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[recordKey]Record
	closed  bool
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[recordKey]Record)}
}

func (m *MemoryStore) Put(ctx context.Context, rec Record) error {
	if err := checkRecord(rec); err != nil {
		return err
	}
	if err := ensureContext(ctx).Err(); err != nil {
		return storageErr("put", rec.RunID, rec.Section, err)
	}
	if rec.Data == nil {
		rec.Data = sections.NewMap()
	} else {
		rec.Data = rec.Data.Clone()
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return storageErr("put", rec.RunID, rec.Section, ErrClosed)
	}
	m.records[recordKey{rec.RunID, rec.Section}] = rec
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, runID, section string) (Record, error) {
	if err := checkKey(runID, section); err != nil {
		return Record{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return Record{}, storageErr("get", runID, section, ErrClosed)
	}
	rec, ok := m.records[recordKey{runID, section}]
	if !ok {
		return Record{RunID: runID, Section: section}, nil
	}
	rec.Data = rec.Data.Clone()
	return rec, nil
}

func (m *MemoryStore) List(ctx context.Context, runID string) ([]Record, error) {
	if runID == "" {
		return nil, checkKey(runID, "-")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, storageErr("list", runID, "", ErrClosed)
	}
	var out []Record
	for key, rec := range m.records {
		if key.runID != runID {
			continue
		}
		rec.Data = rec.Data.Clone()
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Section < out[j].Section })
	return out, nil
}

func (m *MemoryStore) Runs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, storageErr("runs", "", "", ErrClosed)
	}
	latest := make(map[string]time.Time)
	for key, rec := range m.records {
		if rec.UpdatedAt.After(latest[key.runID]) {
			latest[key.runID] = rec.UpdatedAt
		} else if _, ok := latest[key.runID]; !ok {
			latest[key.runID] = rec.UpdatedAt
		}
	}
	runs := make([]string, 0, len(latest))
	for runID := range latest {
		runs = append(runs, runID)
	}
	sort.Slice(runs, func(i, j int) bool { return latest[runs[i]].After(latest[runs[j]]) })
	return runs, nil
}

func (m *MemoryStore) Reset(ctx context.Context, runID, section string) error {
	if runID == "" {
		return checkKey(runID, "-")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return storageErr("reset", runID, section, ErrClosed)
	}
	for key := range m.records {
		if key.runID == runID && (section == "" || key.section == section) {
			delete(m.records, key)
		}
	}
	return nil
}

// Close marks the store unusable.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
