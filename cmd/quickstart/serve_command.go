package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"quickstart/internal/config"
	"quickstart/internal/daemon"
	"quickstart/internal/logging"
	"quickstart/internal/schema"
	"quickstart/internal/settings"
	"quickstart/internal/wizard"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var (
		bind   string
		memory bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the wizard API server until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), ctx, strings.TrimSpace(bind), memory)
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "Override paths.api_bind")
	cmd.Flags().BoolVar(&memory, "memory", false, "Keep settings in memory; nothing survives a restart")
	return cmd
}

func runServer(cmdCtx context.Context, ctx *commandContext, bind string, memory bool) error {
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if bind != "" {
		cfg.Paths.APIBind = bind
	}
	if memory {
		cfg.Wizard.Storage = config.StorageMemory
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	store, err := settings.New(cfg)
	if err != nil {
		logger.Error("open settings store", logging.Error(err))
		return err
	}

	loader := schema.NewLoader(cfg, schema.WithLogger(logger))
	defer loader.Close()

	svc := wizard.New(cfg, store, wizard.WithSchemaSource(loader), wizard.WithLogger(logger))
	d, err := daemon.New(cfg, store, svc, logger)
	if err != nil {
		store.Close()
		return err
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return err
	}
	<-signalCtx.Done()
	logger.Info("shutdown requested")
	return nil
}
