// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Command daemon runs the vidgate HTTP gateway.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/ManuGH/vidgate/internal/api"
	"github.com/ManuGH/vidgate/internal/config"
	"github.com/ManuGH/vidgate/internal/daemon"
	"github.com/ManuGH/vidgate/internal/health"
	vglog "github.com/ManuGH/vidgate/internal/log"
	"github.com/ManuGH/vidgate/internal/resolver"
	"github.com/ManuGH/vidgate/internal/telemetry"
	"github.com/ManuGH/vidgate/internal/version"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "vidgate",
		Short:         "HTTP gateway that resolves and relays online video",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (YAML)")

	root.AddCommand(newVersionCmd(), newConfigCmd(&configPath))
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

func runServer(ctx context.Context, configPath string) error {
	// Safe defaults until config is loaded
	vglog.Configure(vglog.Config{
		Level:   "info",
		Service: "vidgate",
		Version: version.Version,
	})
	logger := vglog.WithComponent("daemon")

	loader := config.NewLoader(configPath)
	cfg, err := loader.Load()
	if err != nil {
		logger.Error().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", configPath).
			Msg("failed to load configuration")
		return err
	}

	vglog.Configure(vglog.Config{
		Level:   cfg.LogLevel,
		Service: cfg.LogService,
		Version: version.Version,
	})
	logger = vglog.WithComponent("daemon")

	source := "env+defaults"
	if configPath != "" {
		source = "file"
	}
	logger.Info().
		Str("event", "config.loaded").
		Str("source", source).
		Str("path", configPath).
		Str("environment", cfg.Environment).
		Msg("loaded configuration")

	provider, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    cfg.LogService,
		ServiceVersion: version.Version,
		Environment:    cfg.Environment,
		ExporterType:   cfg.Tracing.Exporter,
		Endpoint:       cfg.Tracing.Endpoint,
		SamplingRate:   cfg.Tracing.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	adapter := resolver.NewAdapter(resolver.NewYouTube(resolver.YouTubeConfig{
		ChunkSize:   cfg.Resolver.ChunkSize,
		MaxRoutines: cfg.Resolver.MaxRoutines,
	}))

	tracingService := ""
	if cfg.Tracing.Enabled {
		tracingService = cfg.LogService
	}

	hm := health.NewManager(version.Version)
	srv := api.New(api.Config{
		Development:    cfg.Development(),
		WebRoot:        cfg.Web.Root,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		TracingService: tracingService,
	}, adapter, hm)

	serverCfg := cfg.ServerConfig()
	logger.Info().
		Str("event", "startup").
		Str("version", version.Version).
		Str("commit", version.Commit).
		Str("build_date", version.Date).
		Str("addr", serverCfg.ListenAddr).
		Str("metrics_addr", cfg.Metrics.ListenAddr).
		Bool("tracing", cfg.Tracing.Enabled).
		Msg("starting vidgate")

	mgr, err := daemon.NewManager(serverCfg, daemon.Deps{
		Logger:         logger,
		APIHandler:     srv.Handler(),
		MetricsHandler: promhttp.Handler(),
		MetricsAddr:    cfg.Metrics.ListenAddr,
		Health:         hm,
	})
	if err != nil {
		return fmt.Errorf("create daemon manager: %w", err)
	}
	mgr.RegisterShutdownHook("telemetry", provider.Shutdown)

	// Start daemon app (blocks until shutdown)
	app := daemon.NewApp(logger, mgr, loader)
	if err := app.Run(ctx); err != nil {
		logger.Error().
			Err(err).
			Str("event", "manager.failed").
			Msg("daemon app failed")
		return err
	}

	logger.Info().Msg("server exiting")
	return nil
}
