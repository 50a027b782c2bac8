package shellint

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"neobridge/internal/logging"
)

const (
	lockTimeout    = 5 * time.Second
	lockRetryDelay = 50 * time.Millisecond
)

type serialized struct {
	inner    Integration
	lockPath string
	logger   *slog.Logger
}

// Serialized wraps inner so each routine holds an exclusive file lock on
// lockPath while it runs. When the lock cannot be taken the routine runs
// anyway after a warning.
func Serialized(inner Integration, lockPath string, logger *slog.Logger) Integration {
	if inner == nil {
		return nil
	}
	return &serialized{
		inner:    inner,
		lockPath: lockPath,
		logger:   logging.NewComponentLogger(logger, "shellint"),
	}
}

func (s *serialized) Unregister() bool { return s.locked("unregister", s.inner.Unregister) }
func (s *serialized) RegisterDirectory() bool {
	return s.locked("register_directory", s.inner.RegisterDirectory)
}
func (s *serialized) RegisterFile() bool { return s.locked("register_file", s.inner.RegisterFile) }

func (s *serialized) locked(step string, fn func() bool) bool {
	release := s.acquire(step)
	defer release()
	return fn()
}

func (s *serialized) acquire(step string) func() {
	noop := func() {}
	if s.lockPath == "" {
		return noop
	}
	if err := os.MkdirAll(filepath.Dir(s.lockPath), 0o755); err != nil {
		s.warn(step, err)
		return noop
	}

	lock := flock.New(s.lockPath)
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()
	ok, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !ok {
		if err == nil {
			err = context.DeadlineExceeded
		}
		s.warn(step, err)
		return noop
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			s.logger.Debug("release shell integration lock failed",
				logging.String("lock", s.lockPath),
				logging.Error(err),
			)
		}
	}
}

func (s *serialized) warn(step string, err error) {
	logging.WarnWithContext(s.logger, "shell integration lock unavailable", "shell_lock_failed",
		logging.String("step", step),
		logging.String("lock", s.lockPath),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check permissions on shell.lock_path"),
		logging.String(logging.FieldImpact, "registry update runs without cross-process serialization"),
	)
}
