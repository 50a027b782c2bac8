package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeNeovim(); err != nil {
		return err
	}
	if err := c.normalizeShell(); err != nil {
		return err
	}
	if c.Bridge.BlockingWorkers <= 0 {
		c.Bridge.BlockingWorkers = defaultBlockingWorkers
	}
	return c.normalizeLogging()
}

func (c *Config) normalizeNeovim() error {
	c.Neovim.Binary = strings.TrimSpace(c.Neovim.Binary)
	if value, ok := os.LookupEnv("NEOVIM_BIN"); ok && strings.TrimSpace(value) != "" {
		if c.Neovim.Binary == "" || c.Neovim.Binary == defaultNeovimBinary {
			c.Neovim.Binary = strings.TrimSpace(value)
		}
	}
	if c.Neovim.Binary == "" {
		c.Neovim.Binary = defaultNeovimBinary
	}
	if strings.TrimSpace(c.Neovim.WorkingDir) != "" {
		dir, err := expandPath(strings.TrimSpace(c.Neovim.WorkingDir))
		if err != nil {
			return fmt.Errorf("neovim.working_dir: %w", err)
		}
		c.Neovim.WorkingDir = dir
	}
	if c.Neovim.Width <= 0 {
		c.Neovim.Width = defaultNeovimWidth
	}
	if c.Neovim.Height <= 0 {
		c.Neovim.Height = defaultNeovimHeight
	}
	return nil
}

func (c *Config) normalizeShell() error {
	c.Shell.Label = strings.TrimSpace(c.Shell.Label)
	if c.Shell.Label == "" {
		c.Shell.Label = defaultShellLabel
	}
	if exe := strings.TrimSpace(c.Shell.Executable); exe != "" {
		expanded, err := expandPath(exe)
		if err != nil {
			return fmt.Errorf("shell.executable: %w", err)
		}
		c.Shell.Executable = expanded
	}
	if strings.TrimSpace(c.Shell.LockPath) == "" {
		c.Shell.LockPath = defaultLockPath
	}
	lock, err := expandPath(strings.TrimSpace(c.Shell.LockPath))
	if err != nil {
		return fmt.Errorf("shell.lock_path: %w", err)
	}
	c.Shell.LockPath = lock
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.Level == "warning" {
		c.Logging.Level = "warn"
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if strings.TrimSpace(c.Logging.Dir) != "" {
		dir, err := expandPath(strings.TrimSpace(c.Logging.Dir))
		if err != nil {
			return fmt.Errorf("logging.dir: %w", err)
		}
		c.Logging.Dir = dir
	}
	return nil
}
