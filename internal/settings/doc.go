// Package settings persists per-run section data for the wizard.
//
// Every record is keyed by (run id, section id) and carries the normalized
// section data plus two flags: validated (the section passed its credential
// check) and user_entered (the data differs from the section placeholders).
// Writes are upserts so resubmitting a step replaces the earlier record.
//
// Two backends implement Store. SQLiteStore keeps records in a single SQLite
// table with WAL journaling and busy retries; MemoryStore keeps them in
// process for tests and throwaway servers. Backend failures always surface as
// *StorageError so callers can tell a broken store from a missing record.
package settings
