package shellint

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"neobridge/internal/logging"
)

// ErrUnsupported is returned by New on platforms without shell integration.
var ErrUnsupported = errors.New("shell integration is not supported on this platform")

// DefaultKeyName is the registry key created under each shell location.
const DefaultKeyName = "Neovide"

// Integration manipulates the context menu entries. Unregister reports
// whether both entries were removed; the Register methods report whether the
// entry was written.
type Integration interface {
	Unregister() bool
	RegisterDirectory() bool
	RegisterFile() bool
}

// Options configures a platform integration.
type Options struct {
	// KeyName defaults to DefaultKeyName.
	KeyName string
	// Label is the menu text shown in Explorer.
	Label string
	// Executable defaults to the running binary.
	Executable string
	Logger     *slog.Logger
}

func (o Options) withDefaults() (Options, error) {
	if strings.TrimSpace(o.KeyName) == "" {
		o.KeyName = DefaultKeyName
	}
	if strings.TrimSpace(o.Label) == "" {
		o.Label = "Open with " + o.KeyName
	}
	if strings.TrimSpace(o.Executable) == "" {
		exe, err := os.Executable()
		if err != nil {
			return o, fmt.Errorf("resolve executable: %w", err)
		}
		o.Executable = exe
	}
	o.Logger = logging.NewComponentLogger(o.Logger, "shellint")
	return o, nil
}

// New returns the integration for the current platform.
func New(opts Options) (Integration, error) {
	if !Supported() {
		return nil, ErrUnsupported
	}
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	return newPlatform(opts), nil
}

// Supported reports whether this build has a shell integration.
func Supported() bool {
	return platformSupported
}

// DirectoryCommand is the command line run for a folder background click.
func DirectoryCommand(exe string) string {
	return `"` + exe + `" "%V"`
}

// FileCommand is the command line run for a file click.
func FileCommand(exe string) string {
	return `"` + exe + `" "%1"`
}
