// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/vidgate/internal/config"
	"github.com/ManuGH/vidgate/internal/log"
)

// App owns the long-lived runtime lifecycle (config watching, reload signals)
// and delegates server management to Manager.
type App struct {
	logger       zerolog.Logger
	manager      Manager
	loader       *config.Loader
	reloadSignal os.Signal
}

// NewApp creates a new App orchestrator. A nil loader disables reloading.
func NewApp(logger zerolog.Logger, manager Manager, loader *config.Loader) *App {
	return &App{
		logger:       logger,
		manager:      manager,
		loader:       loader,
		reloadSignal: syscall.SIGHUP,
	}
}

// Run starts all owned background subsystems and blocks until ctx is cancelled
// or the manager stops.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if a.loader != nil {
		// Best-effort: a broken watcher must not take the server down.
		g.Go(func() error {
			if err := config.Watch(ctx, a.loader, a.apply); err != nil {
				a.logger.Warn().Err(err).Str("event", "config.watcher_start_failed").Msg("failed to start config watcher")
			}
			return nil
		})
	}

	if a.loader != nil && a.reloadSignal != nil {
		g.Go(func() error {
			hupChan := make(chan os.Signal, 1)
			signal.Notify(hupChan, a.reloadSignal)
			defer signal.Stop(hupChan)

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-hupChan:
					a.logger.Info().
						Str("event", "config.reload_signal").
						Str("signal", a.reloadSignal.String()).
						Msg("received reload signal, reloading config")
					a.reload()
				}
			}
		})
	}

	g.Go(func() error {
		defer cancel()
		return a.manager.Start(ctx)
	})

	return g.Wait()
}

func (a *App) reload() {
	cfg, err := a.loader.Load()
	if err != nil {
		a.logger.Warn().
			Err(err).
			Str("event", "config.reload_failed").
			Msg("config reload failed")
		return
	}
	a.apply(cfg)
}

// apply pushes the hot-reloadable settings. Everything else needs a restart.
func (a *App) apply(cfg config.AppConfig) {
	if err := log.SetLevel(cfg.LogLevel); err != nil {
		a.logger.Warn().Err(err).Str("level", cfg.LogLevel).Msg("ignoring invalid log level")
		return
	}
	a.logger.Info().
		Str("event", "config.applied").
		Str("level", cfg.LogLevel).
		Msg("applied reloaded configuration")
}
