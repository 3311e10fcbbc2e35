package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"quickstart/internal/config"
	"quickstart/internal/sections"
)

// SQLiteStore manages section records backed by SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the settings database at paths.database_path.
func Open(cfg *config.Config) (*SQLiteStore, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.Paths.DatabasePath)
}

// OpenPath initializes or connects to the settings database at path.
func OpenPath(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Pragmas are per connection; a single connection keeps them in force.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &SQLiteStore{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ensureContext(ctx)); err != nil {
		return storageErr("ping", "", "", err)
	}
	return nil
}

func (s *SQLiteStore) Put(ctx context.Context, rec Record) error {
	if err := checkRecord(rec); err != nil {
		return err
	}
	data := rec.Data
	if data == nil {
		data = sections.NewMap()
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return storageErr("encode", rec.RunID, rec.Section, err)
	}
	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	err = s.execWithRetry(ctx,
		`INSERT INTO section_data (run_id, section, validated, user_entered, data, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(run_id, section) DO UPDATE SET
             validated = excluded.validated,
             user_entered = excluded.user_entered,
             data = excluded.data,
             updated_at = excluded.updated_at`,
		rec.RunID,
		rec.Section,
		boolToInt(rec.Validated),
		boolToInt(rec.UserEntered),
		string(payload),
		updatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return storageErr("put", rec.RunID, rec.Section, err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, runID, section string) (Record, error) {
	if err := checkKey(runID, section); err != nil {
		return Record{}, err
	}
	ctx = ensureContext(ctx)
	var rec Record
	err := retryOnBusy(ctx, func() error {
		row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM section_data WHERE run_id = ? AND section = ?`, runID, section)
		var scanErr error
		rec, scanErr = scanRecord(row)
		return scanErr
	})
	if errors.Is(err, sql.ErrNoRows) {
		return Record{RunID: runID, Section: section}, nil
	}
	if err != nil {
		return Record{}, storageErr("get", runID, section, err)
	}
	return rec, nil
}

func (s *SQLiteStore) List(ctx context.Context, runID string) ([]Record, error) {
	if runID == "" {
		return nil, checkKey(runID, "-")
	}
	ctx = ensureContext(ctx)
	var records []Record
	err := retryOnBusy(ctx, func() error {
		records = records[:0]
		rows, err := s.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM section_data WHERE run_id = ? ORDER BY section`, runID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			rec, err := scanRecord(rows)
			if err != nil {
				return err
			}
			records = append(records, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, storageErr("list", runID, "", err)
	}
	return records, nil
}

func (s *SQLiteStore) Runs(ctx context.Context) ([]string, error) {
	ctx = ensureContext(ctx)
	var runs []string
	err := retryOnBusy(ctx, func() error {
		runs = runs[:0]
		rows, err := s.db.QueryContext(ctx, `SELECT run_id FROM section_data GROUP BY run_id ORDER BY MAX(updated_at) DESC`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var runID string
			if err := rows.Scan(&runID); err != nil {
				return err
			}
			runs = append(runs, runID)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, storageErr("runs", "", "", err)
	}
	return runs, nil
}

func (s *SQLiteStore) Reset(ctx context.Context, runID, section string) error {
	if runID == "" {
		return checkKey(runID, "-")
	}
	var err error
	if section == "" {
		err = s.execWithRetry(ctx, `DELETE FROM section_data WHERE run_id = ?`, runID)
	} else {
		err = s.execWithRetry(ctx, `DELETE FROM section_data WHERE run_id = ? AND section = ?`, runID, section)
	}
	if err != nil {
		return storageErr("reset", runID, section, err)
	}
	return nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *SQLiteStore) execWithRetry(ctx context.Context, query string, args ...any) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}
