package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"neobridge/internal/bridge"
	"neobridge/internal/config"
	"neobridge/internal/editor"
	"neobridge/internal/logging"
	"neobridge/internal/preflight"
	"neobridge/internal/redraw"
	"neobridge/internal/settings"
	"neobridge/internal/shellint"
	"neobridge/internal/worker"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run [-- nvim args...]",
		Short: "Start Neovim and attach the bridge until it exits",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBridge(cmd.Context(), ctx, args)
		},
	}
}

func runBridge(cmdCtx context.Context, ctx *commandContext, nvimArgs []string) error {
	if cmdCtx == nil {
		cmdCtx = context.Background()
	}
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	level := new(slog.LevelVar)
	logger, err := ctx.logger(level)
	if err != nil {
		return err
	}
	logging.PruneLogDir(logger, cfg.Logging.Dir, cfg.Logging.RetentionDays, ctx.logPath)

	if cfg.Logging.Watch && ctx.configExists {
		watchConfig(signalCtx, ctx.configPath, logger, level)
	}

	pool := worker.NewPool(cfg.Bridge.BlockingWorkers, logger)
	defer pool.Close()

	store := settings.New(logger)
	if err := store.RegisterDefaults(); err != nil {
		return fmt.Errorf("register settings: %w", err)
	}

	model := editor.New(logger)
	model.OnFlush(func(s editor.Snapshot) {
		logging.Trace(signalCtx, logger, "frame flushed",
			logging.Int64("frame", int64(s.Frame)),
			logging.Int("grids", len(s.Grids)),
		)
	})

	shell := buildShellIntegration(cfg, logger)
	dispatcher := bridge.NewDispatcher(bridge.DispatcherOptions{
		Redraw:   redraw.NewDecoder(model, logger),
		Settings: store,
		Shell:    shell,
		Pool:     pool,
		Logger:   logger,
	})

	if check := preflight.CheckBinary("Neovim", cfg.Neovim.Binary); !check.Passed {
		return fmt.Errorf("start neovim: %s (set neovim.binary or NEOVIM_BIN)", check.Detail)
	}

	session, err := bridge.Start(signalCtx, bridge.Options{
		Binary:        cfg.Neovim.Binary,
		Args:          cfg.EmbedArgs(nvimArgs...),
		Dir:           cfg.Neovim.WorkingDir,
		Width:         cfg.Neovim.Width,
		Height:        cfg.Neovim.Height,
		Settings:      store,
		ShellCommands: shell != nil,
		Logger:        logger,
	}, dispatcher)
	if err != nil {
		return fmt.Errorf("start neovim: %w", err)
	}
	defer session.Close()

	select {
	case <-session.Done():
		if err := session.Wait(); err != nil {
			return fmt.Errorf("neovim session: %w", err)
		}
		logger.Info("neovim exited")
		return nil
	case <-signalCtx.Done():
		logger.Info("neobridge shutting down")
		return nil
	}
}

// watchConfig applies logging.level changes from the config file live. Other
// settings need a restart.
func watchConfig(ctx context.Context, path string, logger *slog.Logger, level *slog.LevelVar) {
	onChange := func(next *config.Config) {
		level.Set(logging.ParseLevel(next.Logging.Level))
		logger.Info("configuration reloaded",
			logging.String("path", path),
			logging.String("level", next.Logging.Level),
		)
	}
	err := config.Watch(ctx, path, onChange, func(err error) {
		reportWatchError(logger, path, err)
	})
	if err != nil {
		logging.WarnWithContext(logger, "config watcher unavailable", "config_watch_failed",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "log level changes require a restart"),
		)
	}
}

func reportWatchError(logger *slog.Logger, path string, err error) {
	if errors.Is(err, config.ErrReloadRejected) {
		logging.WarnWithContext(logger, "config reload rejected; keeping previous settings", "config_reload_rejected",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix the file and save it again"),
			logging.String(logging.FieldImpact, "previous log level stays in effect"),
		)
		return
	}
	logging.WarnWithContext(logger, "config watcher error", "config_watch_failed",
		logging.String("path", path),
		logging.Error(err),
		logging.String(logging.FieldImpact, "further config edits may be missed"),
	)
}

// buildShellIntegration returns nil when the integration is disabled or the
// platform has none.
func buildShellIntegration(cfg *config.Config, logger *slog.Logger) bridge.ShellIntegration {
	if !cfg.Shell.Enabled {
		return nil
	}
	integ, err := shellint.New(shellint.Options{
		Label:      cfg.Shell.Label,
		Executable: cfg.Shell.Executable,
		Logger:     logger,
	})
	if err != nil {
		if !errors.Is(err, shellint.ErrUnsupported) {
			logging.WarnWithContext(logger, "shell integration unavailable", "shell_integration_unavailable",
				logging.Error(err),
				logging.String(logging.FieldImpact, "right-click registration disabled"),
			)
		}
		return nil
	}
	return shellint.Serialized(integ, cfg.Shell.LockPath, logger)
}
