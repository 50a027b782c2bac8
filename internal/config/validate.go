package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateNeovim(); err != nil {
		return err
	}
	if c.Bridge.BlockingWorkers < 1 {
		return errors.New("bridge.blocking_workers must be at least 1")
	}
	return c.validateLogging()
}

func (c *Config) validateNeovim() error {
	if c.Neovim.Binary == "" {
		return errors.New("neovim.binary must be set (or export NEOVIM_BIN)")
	}
	for _, arg := range c.Neovim.Args {
		if arg == "--embed" || arg == "--headless" {
			return fmt.Errorf("neovim.args must not contain %s; neobridge adds the embedding flags itself", arg)
		}
	}
	if c.Neovim.Width < 1 || c.Neovim.Height < 1 {
		return errors.New("neovim.width and neovim.height must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q (use trace, debug, info, warn or error)", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (use console or json)", c.Logging.Format)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be zero (disabled) or positive")
	}
	return nil
}
