package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"neobridge/internal/bridge"
	"neobridge/internal/worker"
)

func newShellCommand(ctx *commandContext) *cobra.Command {
	shellCmd := &cobra.Command{
		Use:   "shell",
		Short: "Manage the Explorer context menu entries",
	}
	shellCmd.AddCommand(newShellActionCommand(ctx, "register", "Add the \"Open with\" entries", bridge.EventRegisterRightClick))
	shellCmd.AddCommand(newShellActionCommand(ctx, "unregister", "Remove the \"Open with\" entries", bridge.EventUnregisterRightClick))
	return shellCmd
}

// newShellActionCommand runs the same dispatcher branch Neovim triggers
// through :NeovideRegisterRightClick and :NeovideUnregisterRightClick.
func newShellActionCommand(ctx *commandContext, use, short, event string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := ctx.logger(new(slog.LevelVar))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !cfg.Shell.Enabled {
				fmt.Fprintln(out, "Shell integration is disabled (shell.enabled = false)")
				return nil
			}
			shell := buildShellIntegration(cfg, logger)
			if shell == nil {
				fmt.Fprintln(out, "Shell integration is not supported on this platform")
				return nil
			}

			pool := worker.NewPool(1, logger)
			defer pool.Close()
			dispatcher := bridge.NewDispatcher(bridge.DispatcherOptions{
				Shell:  shell,
				Pool:   pool,
				Logger: logger,
			})
			runCtx := cmd.Context()
			if runCtx == nil {
				runCtx = context.Background()
			}
			dispatcher.HandleNotify(runCtx, event, nil, nil)
			fmt.Fprintf(out, "Shell %s finished; check the log for failures\n", use)
			return nil
		},
	}
}
