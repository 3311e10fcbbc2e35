package testsupport

import (
	"path/filepath"
	"testing"

	"quickstart/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The API binds an ephemeral port and the schema points at a local file so
// nothing reaches the network.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.DatabasePath = filepath.Join(base, "data", "quickstart.db")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Schema.Path = filepath.Join(base, "config-schema.yml")
	cfgVal.Wizard.HeaderStyle = "none"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithMemoryStorage selects the in-memory settings backend.
func WithMemoryStorage() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Wizard.Storage = config.StorageMemory
	}
}

// WithAPIToken requires bearer authentication on the API.
func WithAPIToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.APIToken = token
	}
}

// WithSchemaText writes text to the configured schema path.
func WithSchemaText(text string) ConfigOption {
	return func(b *configBuilder) {
		WriteSchema(b.t, b.cfg.Schema.Path, text)
	}
}

// WithInclusion sets the final assembly inclusion rule.
func WithInclusion(rule string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Wizard.Inclusion = rule
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
