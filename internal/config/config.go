package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir      string `toml:"data_dir"`
	LogDir       string `toml:"log_dir"`
	DatabasePath string `toml:"database_path"`
	APIBind      string `toml:"api_bind"`
	APIToken     string `toml:"api_token"`
}

// Schema locates the Kometa configuration JSON schema.
type Schema struct {
	// URL is fetched when Path is empty.
	URL string `toml:"url"`
	// Path points at a local schema file (YAML or JSON). It takes precedence over URL.
	Path           string `toml:"path"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	CacheMinutes   int    `toml:"cache_minutes"`
}

// Wizard contains settings for step submission and final assembly.
type Wizard struct {
	// Storage selects the settings backend: "sqlite" or "memory".
	Storage string `toml:"storage"`
	// Inclusion selects which stored sections reach the final document:
	// "validated" requires validated and user_entered, "user_entered" only the latter.
	Inclusion                string `toml:"inclusion"`
	RevalidateOnSubmit       bool   `toml:"revalidate_on_submit"`
	HeaderStyle              string `toml:"header_style"`
	ValidationTimeoutSeconds int    `toml:"validation_timeout_seconds"`
}

// Services contains base URLs for the third-party APIs used by section checks.
type Services struct {
	TMDBBaseURL      string `toml:"tmdb_base_url"`
	TraktBaseURL     string `toml:"trakt_base_url"`
	OMDbBaseURL      string `toml:"omdb_base_url"`
	GitHubBaseURL    string `toml:"github_base_url"`
	MDBListBaseURL   string `toml:"mdblist_base_url"`
	NotifiarrBaseURL string `toml:"notifiarr_base_url"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Quickstart.
//
// Configuration sections by subsystem:
//   - Paths: data directory, settings database, and API bind address
//   - Schema: where the Kometa config schema is loaded from
//   - Wizard: storage backend, inclusion rule, and document header style
//   - Services: base URLs for credential checks
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Schema   Schema   `toml:"schema"`
	Wizard   Wizard   `toml:"wizard"`
	Services Services `toml:"services"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("quickstart.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir, filepath.Dir(c.Paths.DatabasePath)} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockPath returns the single-instance lock file used by the server.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "quickstart.lock")
}

// SchemaTimeout returns the bounded wait for a remote schema fetch.
func (c *Config) SchemaTimeout() time.Duration {
	return time.Duration(c.Schema.TimeoutSeconds) * time.Second
}

// SchemaCacheTTL returns how long a fetched schema is reused.
func (c *Config) SchemaCacheTTL() time.Duration {
	return time.Duration(c.Schema.CacheMinutes) * time.Minute
}

// ValidationTimeout returns the per-call budget for external credential checks.
func (c *Config) ValidationTimeout() time.Duration {
	return time.Duration(c.Wizard.ValidationTimeoutSeconds) * time.Second
}

// RequireValidated reports whether final assembly needs the validated flag in
// addition to user_entered.
func (c *Config) RequireValidated() bool {
	return c.Wizard.Inclusion != InclusionUserEntered
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
