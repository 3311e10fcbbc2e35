package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeSchema(); err != nil {
		return err
	}
	c.normalizeWizard()
	c.normalizeServices()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.DataDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DatabasePath) == "" {
		c.Paths.DatabasePath = filepath.Join(c.Paths.DataDir, defaultDatabaseName)
	}
	if c.Paths.DatabasePath, err = expandPath(c.Paths.DatabasePath); err != nil {
		return fmt.Errorf("paths.database_path: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	if c.Paths.APIToken == "" {
		if value, ok := os.LookupEnv("QUICKSTART_API_TOKEN"); ok {
			c.Paths.APIToken = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeSchema() error {
	if value, ok := os.LookupEnv("QUICKSTART_SCHEMA_URL"); ok && strings.TrimSpace(value) != "" {
		c.Schema.URL = strings.TrimSpace(value)
	}
	c.Schema.URL = strings.TrimSpace(c.Schema.URL)
	c.Schema.Path = strings.TrimSpace(c.Schema.Path)
	if c.Schema.Path != "" {
		expanded, err := expandPath(c.Schema.Path)
		if err != nil {
			return fmt.Errorf("schema.path: %w", err)
		}
		c.Schema.Path = expanded
	}
	return nil
}

func (c *Config) normalizeWizard() {
	c.Wizard.Storage = strings.ToLower(strings.TrimSpace(c.Wizard.Storage))
	if c.Wizard.Storage == "" {
		c.Wizard.Storage = defaultStorage
	}
	c.Wizard.Inclusion = strings.ToLower(strings.TrimSpace(c.Wizard.Inclusion))
	if c.Wizard.Inclusion == "" {
		c.Wizard.Inclusion = defaultInclusion
	}
	c.Wizard.HeaderStyle = strings.ToLower(strings.TrimSpace(c.Wizard.HeaderStyle))
	if c.Wizard.HeaderStyle == "" {
		c.Wizard.HeaderStyle = defaultHeaderStyle
	}
}

func (c *Config) normalizeServices() {
	c.Services.TMDBBaseURL = trimBaseURL(c.Services.TMDBBaseURL, defaultTMDBBaseURL)
	c.Services.TraktBaseURL = trimBaseURL(c.Services.TraktBaseURL, defaultTraktBaseURL)
	c.Services.OMDbBaseURL = trimBaseURL(c.Services.OMDbBaseURL, defaultOMDbBaseURL)
	c.Services.GitHubBaseURL = trimBaseURL(c.Services.GitHubBaseURL, defaultGitHubBaseURL)
	c.Services.MDBListBaseURL = trimBaseURL(c.Services.MDBListBaseURL, defaultMDBListBaseURL)
	c.Services.NotifiarrBaseURL = trimBaseURL(c.Services.NotifiarrBaseURL, defaultNotifiarrBaseURL)
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch format {
	case "", "console":
		c.Logging.Format = "console"
	default:
		c.Logging.Format = format
	}
	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level
}

func trimBaseURL(value, fallback string) string {
	value = strings.TrimRight(strings.TrimSpace(value), "/")
	if value == "" {
		return fallback
	}
	return value
}
