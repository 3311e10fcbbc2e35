package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSchema(); err != nil {
		return err
	}
	if err := c.validateWizard(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if !strings.Contains(c.Paths.APIBind, ":") {
		return fmt.Errorf("paths.api_bind must be host:port, got %q", c.Paths.APIBind)
	}
	return nil
}

func (c *Config) validateSchema() error {
	if c.Schema.URL == "" && c.Schema.Path == "" {
		return errors.New("schema.url or schema.path must be set")
	}
	if c.Schema.CacheMinutes < 0 {
		return errors.New("schema.cache_minutes must be >= 0")
	}
	return ensurePositiveMap(map[string]int{
		"schema.timeout_seconds": c.Schema.TimeoutSeconds,
	})
}

func (c *Config) validateWizard() error {
	switch c.Wizard.Storage {
	case StorageSQLite, StorageMemory:
	default:
		return fmt.Errorf("wizard.storage must be %q or %q, got %q", StorageSQLite, StorageMemory, c.Wizard.Storage)
	}
	switch c.Wizard.Inclusion {
	case InclusionValidated, InclusionUserEntered:
	default:
		return fmt.Errorf("wizard.inclusion must be %q or %q, got %q", InclusionValidated, InclusionUserEntered, c.Wizard.Inclusion)
	}
	switch c.Wizard.HeaderStyle {
	case "ascii", "divider", "none":
	default:
		return fmt.Errorf("wizard.header_style must be ascii, divider, or none, got %q", c.Wizard.HeaderStyle)
	}
	return ensurePositiveMap(map[string]int{
		"wizard.validation_timeout_seconds": c.Wizard.ValidationTimeoutSeconds,
	})
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
