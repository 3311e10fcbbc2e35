package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"quickstart/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("QUICKSTART_API_TOKEN", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "quickstart")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.DatabasePath != filepath.Join(wantData, "quickstart.db") {
		t.Fatalf("unexpected database path: %q", cfg.Paths.DatabasePath)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7171" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Wizard.Inclusion != config.InclusionValidated || !cfg.RequireValidated() {
		t.Fatalf("expected validated inclusion by default, got %q", cfg.Wizard.Inclusion)
	}
	if cfg.Wizard.HeaderStyle != "ascii" {
		t.Fatalf("unexpected header style: %q", cfg.Wizard.HeaderStyle)
	}
	if cfg.Schema.URL != config.Default().Schema.URL {
		t.Fatalf("unexpected schema url: %q", cfg.Schema.URL)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomConfig(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(tempHome, "config.toml")
	contents := `
[paths]
data_dir = "~/qs"
api_bind = "0.0.0.0:9000"

[schema]
path = "~/schema.yml"

[wizard]
storage = "Memory"
inclusion = "user_entered"
header_style = "none"

[services]
tmdb_base_url = "http://tmdb.local/3/"

[logging]
format = "JSON"
level = "DEBUG"
`
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected to load %q, got %q (exists=%v)", configPath, resolved, exists)
	}
	if cfg.Paths.DataDir != filepath.Join(tempHome, "qs") {
		t.Fatalf("unexpected data dir: %q", cfg.Paths.DataDir)
	}
	if cfg.Schema.Path != filepath.Join(tempHome, "schema.yml") {
		t.Fatalf("unexpected schema path: %q", cfg.Schema.Path)
	}
	if cfg.Wizard.Storage != config.StorageMemory {
		t.Fatalf("expected storage normalized to memory, got %q", cfg.Wizard.Storage)
	}
	if cfg.RequireValidated() {
		t.Fatal("expected user_entered inclusion")
	}
	if cfg.Services.TMDBBaseURL != "http://tmdb.local/3" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Services.TMDBBaseURL)
	}
	if cfg.Services.TraktBaseURL == "" {
		t.Fatal("expected trakt base url default")
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
}

func TestEnvOverrides(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("QUICKSTART_API_TOKEN", " secret ")
	t.Setenv("QUICKSTART_SCHEMA_URL", "http://schema.local/config-schema.json")

	cfg, _, _, err := config.Load(filepath.Join(tempHome, "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.APIToken != "secret" {
		t.Errorf("expected api token from env, got %q", cfg.Paths.APIToken)
	}
	if cfg.Schema.URL != "http://schema.local/config-schema.json" {
		t.Errorf("expected schema url from env, got %q", cfg.Schema.URL)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "config-schema.json") {
		t.Fatalf("sample config missing schema url: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Paths.DataDir, "quickstart") {
		t.Fatalf("expected data dir to contain quickstart, got %q", cfg.Paths.DataDir)
	}
	if cfg.Wizard.HeaderStyle != "ascii" {
		t.Fatalf("unexpected header style in sample: %q", cfg.Wizard.HeaderStyle)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"storage", func(c *config.Config) { c.Wizard.Storage = "redis" }},
		{"inclusion", func(c *config.Config) { c.Wizard.Inclusion = "always" }},
		{"header style", func(c *config.Config) { c.Wizard.HeaderStyle = "fancy" }},
		{"validation timeout", func(c *config.Config) { c.Wizard.ValidationTimeoutSeconds = 0 }},
		{"schema timeout", func(c *config.Config) { c.Schema.TimeoutSeconds = -1 }},
		{"schema source", func(c *config.Config) { c.Schema.URL = ""; c.Schema.Path = "" }},
		{"api bind", func(c *config.Config) { c.Paths.APIBind = "localhost" }},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}
