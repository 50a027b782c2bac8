//go:build windows

package shellint

import (
	"log/slog"

	"golang.org/x/sys/windows/registry"

	"neobridge/internal/logging"
)

const platformSupported = true

const (
	directoryShellPath = `Directory\Background\shell\`
	fileShellPath      = `*\shell\`
)

// registryIntegration writes below root\prefix. Production uses
// HKEY_CLASSES_ROOT with no prefix.
type registryIntegration struct {
	opts   Options
	logger *slog.Logger
	root   registry.Key
	prefix string
}

func newPlatform(opts Options) Integration {
	return &registryIntegration{opts: opts, logger: opts.Logger, root: registry.CLASSES_ROOT}
}

func (r *registryIntegration) directoryPath() string {
	return r.prefix + directoryShellPath + r.opts.KeyName
}

func (r *registryIntegration) filePath() string {
	return r.prefix + fileShellPath + r.opts.KeyName
}

func (r *registryIntegration) Unregister() bool {
	dirOK := r.deleteTree(r.directoryPath())
	fileOK := r.deleteTree(r.filePath())
	return dirOK && fileOK
}

func (r *registryIntegration) RegisterDirectory() bool {
	return r.writeEntry(r.directoryPath(), DirectoryCommand(r.opts.Executable))
}

func (r *registryIntegration) RegisterFile() bool {
	return r.writeEntry(r.filePath(), FileCommand(r.opts.Executable))
}

func (r *registryIntegration) writeEntry(path, command string) bool {
	key, _, err := registry.CreateKey(r.root, path, registry.ALL_ACCESS)
	if err != nil {
		r.logger.Debug("create registry key failed", logging.String("key", path), logging.Error(err))
		return false
	}
	defer key.Close()

	if err := key.SetStringValue("", r.opts.Label); err != nil {
		r.logger.Debug("set registry label failed", logging.String("key", path), logging.Error(err))
		return false
	}
	if err := key.SetStringValue("Icon", r.opts.Executable); err != nil {
		r.logger.Debug("set registry icon failed", logging.String("key", path), logging.Error(err))
		return false
	}

	cmdKey, _, err := registry.CreateKey(key, "command", registry.ALL_ACCESS)
	if err != nil {
		r.logger.Debug("create registry command key failed", logging.String("key", path), logging.Error(err))
		return false
	}
	defer cmdKey.Close()

	if err := cmdKey.SetStringValue("", command); err != nil {
		r.logger.Debug("set registry command failed", logging.String("key", path), logging.Error(err))
		return false
	}
	return true
}

// deleteTree removes path and its command subkey. DeleteKey refuses keys
// with children, so the subkey goes first. A missing key counts as failure.
func (r *registryIntegration) deleteTree(path string) bool {
	if err := registry.DeleteKey(r.root, path+`\command`); err != nil {
		r.logger.Debug("delete registry command key failed", logging.String("key", path), logging.Error(err))
		return false
	}
	if err := registry.DeleteKey(r.root, path); err != nil {
		r.logger.Debug("delete registry key failed", logging.String("key", path), logging.Error(err))
		return false
	}
	return true
}
