package preflight

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quickstart/internal/config"
	"quickstart/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckDatabase(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	result := CheckDatabase(context.Background(), cfg)
	if !result.Passed {
		t.Fatalf("expected database check to pass, got: %s", result.Detail)
	}

	cfg.Wizard.Storage = config.StorageMemory
	if result := CheckDatabase(context.Background(), cfg); !result.Passed || !strings.Contains(result.Detail, "in-memory") {
		t.Fatalf("unexpected memory result: %+v", result)
	}
}

func TestCheckDatabase_Unwritable(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	blocker := filepath.Join(testsupport.BaseDir(cfg), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.Paths.DatabasePath = filepath.Join(blocker, "quickstart.db")
	if result := CheckDatabase(context.Background(), cfg); result.Passed {
		t.Fatal("expected failure when the database directory is a file")
	}
}

func TestCheckAPIBind_InUse(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer listener.Close()

	if result := CheckAPIBind(listener.Addr().String()); result.Passed {
		t.Fatal("expected failure for an address in use")
	}
	if result := CheckAPIBind("127.0.0.1:0"); !result.Passed {
		t.Fatalf("expected ephemeral bind to pass, got: %s", result.Detail)
	}
}

func TestCheckSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSchemaText(testsupport.MinimalSchema))
	result := CheckSchema(context.Background(), cfg)
	if !result.Passed || result.Detail != cfg.Schema.Path {
		t.Fatalf("expected schema check to pass, got: %+v", result)
	}
}

func TestCheckSchema_Missing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	result := CheckSchema(context.Background(), cfg)
	if result.Passed {
		t.Fatal("expected failure for a missing schema file")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSchemaText(testsupport.MinimalSchema))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	results := RunAll(context.Background(), cfg)
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	if Failed(results) {
		t.Fatalf("expected all checks to pass: %+v", results)
	}
	if RunAll(context.Background(), nil) != nil {
		t.Fatal("expected nil results for nil config")
	}
}
