package config

const (
	defaultNeovimBinary    = "nvim"
	defaultNeovimWidth     = 100
	defaultNeovimHeight    = 50
	defaultBlockingWorkers = 64
	defaultShellLabel      = "Open with Neovide"
	defaultLockPath        = "~/.local/state/neobridge/shell.lock"
	defaultLogDir          = "~/.local/state/neobridge/logs"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultRetentionDays   = 14
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Neovim: Neovim{
			Binary: defaultNeovimBinary,
			Width:  defaultNeovimWidth,
			Height: defaultNeovimHeight,
		},
		Bridge: Bridge{
			BlockingWorkers: defaultBlockingWorkers,
		},
		Shell: Shell{
			Enabled:  true,
			Label:    defaultShellLabel,
			LockPath: defaultLockPath,
		},
		Logging: Logging{
			Level:         defaultLogLevel,
			Format:        defaultLogFormat,
			Dir:           defaultLogDir,
			RetentionDays: defaultRetentionDays,
			Watch:         true,
		},
	}
}
