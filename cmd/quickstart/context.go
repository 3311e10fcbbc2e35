package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"quickstart/internal/config"
	"quickstart/internal/logging"
	"quickstart/internal/schema"
	"quickstart/internal/settings"
	"quickstart/internal/wizard"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// fileLogger logs to the log file only so command output stays clean.
func (c *commandContext) fileLogger(cfg *config.Config) *slog.Logger {
	logPath := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
	logger, err := logging.New(logging.Options{
		Level:            cfg.Logging.Level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

// withService opens the settings store and runs fn against a wizard service.
func (c *commandContext) withService(fn func(*wizard.Service) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger := c.fileLogger(cfg)
	store, err := settings.New(cfg)
	if err != nil {
		return fmt.Errorf("open settings: %w", err)
	}
	defer store.Close()

	loader := schema.NewLoader(cfg, schema.WithLogger(logger))
	defer loader.Close()

	return fn(wizard.New(cfg, store, wizard.WithSchemaSource(loader), wizard.WithLogger(logger)))
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
