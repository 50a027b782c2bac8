package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Neovim describes the embedded editor process.
type Neovim struct {
	Binary     string   `toml:"binary"`
	Args       []string `toml:"args"`
	WorkingDir string   `toml:"working_dir"`
	Width      int      `toml:"width"`
	Height     int      `toml:"height"`
}

// Bridge tunes the notification dispatcher.
type Bridge struct {
	BlockingWorkers int `toml:"blocking_workers"`
}

// Shell controls the file-manager context menu integration.
type Shell struct {
	Enabled    bool   `toml:"enabled"`
	Label      string `toml:"label"`
	Executable string `toml:"executable"`
	LockPath   string `toml:"lock_path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level         string `toml:"level"`
	Format        string `toml:"format"`
	Dir           string `toml:"dir"`
	RetentionDays int    `toml:"retention_days"`
	Watch         bool   `toml:"watch"`
}

// Config encapsulates all configuration values for neobridge.
type Config struct {
	Neovim  Neovim  `toml:"neovim"`
	Bridge  Bridge  `toml:"bridge"`
	Shell   Shell   `toml:"shell"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/neobridge/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded. A missing file is not an error; defaults are
// used and exists is false.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		if err := decodeFile(resolvedPath, &cfg); err != nil {
			return nil, "", false, err
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("parse config: %s", strict.String())
		}
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the directories neobridge writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Logging.Dir}
	if c.Shell.Enabled && c.Shell.LockPath != "" {
		dirs = append(dirs, filepath.Dir(c.Shell.LockPath))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// EmbedArgs returns the argument list used to launch Neovim as an embedded
// child: --embed followed by the configured and extra user arguments.
func (c *Config) EmbedArgs(extra ...string) []string {
	args := make([]string, 0, 1+len(c.Neovim.Args)+len(extra))
	args = append(args, "--embed")
	args = append(args, c.Neovim.Args...)
	return append(args, extra...)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
