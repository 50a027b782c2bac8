package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// ErrReloadRejected marks a changed config file that failed to load. The
// previous config stays in effect.
var ErrReloadRejected = errors.New("config reload rejected")

// Watch reloads path whenever it is written or replaced and hands the new
// config to onChange. The parent directory is watched so editors that save by
// rename are picked up. Invalid reloads and watcher failures go to onError,
// which may be nil; rejected reloads wrap ErrReloadRejected. Watching stops
// when ctx is cancelled.
func Watch(ctx context.Context, path string, onChange func(*Config), onError func(error)) error {
	if onChange == nil {
		return fmt.Errorf("watch config: onChange is required")
	}
	if onError == nil {
		onError = func(error) {}
	}
	target, err := expandPath(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch config directory: %w", err)
	}

	go func() {
		defer watcher.Close()

		var pending <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				pending = time.After(reloadDebounce)
			case <-pending:
				pending = nil
				cfg, _, exists, err := Load(target)
				if err != nil {
					onError(fmt.Errorf("%w: %s: %w", ErrReloadRejected, target, err))
					continue
				}
				if !exists {
					continue
				}
				onChange(cfg)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				onError(fmt.Errorf("watch config: %w", err))
			}
		}
	}()
	return nil
}
