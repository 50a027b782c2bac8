package bridge

import (
	"context"
	"log/slog"

	"github.com/neovim/go-client/nvim"

	"neobridge/internal/logging"
	"neobridge/internal/rpcvalue"
	"neobridge/internal/worker"
)

// Notification names the dispatcher acts on.
const (
	EventRedraw               = "redraw"
	EventSettingChanged       = "setting_changed"
	EventRegisterRightClick   = "neovide.register_right_click"
	EventUnregisterRightClick = "neovide.unregister_right_click"
)

// Events returns the recognized notification names.
func Events() []string {
	return []string{EventRedraw, EventSettingChanged, EventRegisterRightClick, EventUnregisterRightClick}
}

// RedrawHandler consumes redraw batches.
type RedrawHandler interface {
	HandleRedraw(args []rpcvalue.Value)
}

// SettingsHandler consumes setting_changed notifications.
type SettingsHandler interface {
	HandleChangedNotification(args []rpcvalue.Value)
}

// ShellIntegration edits the OS context menu. Unregister reports whether the
// entries were removed, the Register methods whether they were written.
type ShellIntegration interface {
	Unregister() bool
	RegisterDirectory() bool
	RegisterFile() bool
}

const shellFailureHint = "run neobridge from an elevated (Administrator) prompt"

// Dispatcher routes notifications to collaborators. It is a small value
// that may be copied freely; copies share the same collaborators.
type Dispatcher struct {
	redraw   RedrawHandler
	settings SettingsHandler
	shell    ShellIntegration
	pool     *worker.Pool
	logger   *slog.Logger
}

// DispatcherOptions wires a Dispatcher. Nil handlers turn their branch into a
// no-op; a nil Shell disables both shell integration branches.
type DispatcherOptions struct {
	Redraw   RedrawHandler
	Settings SettingsHandler
	Shell    ShellIntegration
	Pool     *worker.Pool
	Logger   *slog.Logger
}

// NewDispatcher builds a Dispatcher. Without a pool it gets a default-sized one.
func NewDispatcher(opts DispatcherOptions) Dispatcher {
	logger := logging.NewComponentLogger(opts.Logger, "bridge")
	pool := opts.Pool
	if pool == nil {
		pool = worker.NewPool(worker.DefaultSize, logger)
	}
	return Dispatcher{
		redraw:   opts.Redraw,
		settings: opts.Settings,
		shell:    opts.Shell,
		pool:     pool,
		logger:   logger,
	}
}

// HandleNotify routes one notification and returns once the branch has run
// on a worker. It never fails: worker errors are logged at debug level and
// shell integration failures at error level. session is the live RPC client;
// no branch replies yet.
func (d Dispatcher) HandleNotify(ctx context.Context, event string, args []rpcvalue.Value, session *nvim.Nvim) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.WithContext(ctx, d.logger)
	logging.Trace(ctx, logger, "Neovim notification",
		logging.String(logging.FieldEvent, event),
		logging.Int("arg_count", len(args)),
	)

	body := d.route(logger, event, args)
	if body == nil {
		return
	}
	if err := d.pool.Submit(ctx, body).Wait(); err != nil {
		logger.Debug("notification worker did not complete",
			logging.String(logging.FieldEvent, event),
			logging.Error(err),
		)
	}
}

func (d Dispatcher) route(logger *slog.Logger, event string, args []rpcvalue.Value) func() {
	switch event {
	case EventRedraw:
		if d.redraw == nil {
			return nil
		}
		return func() { d.redraw.HandleRedraw(args) }
	case EventSettingChanged:
		if d.settings == nil {
			return nil
		}
		return func() { d.settings.HandleChangedNotification(args) }
	case EventRegisterRightClick:
		if d.shell == nil {
			return nil
		}
		return func() { registerRightClick(logger, d.shell) }
	case EventUnregisterRightClick:
		if d.shell == nil {
			return nil
		}
		return func() { unregisterRightClick(logger, d.shell) }
	default:
		return nil
	}
}

// registerRightClick clears stale entries and writes both menu entries. A
// true result from Unregister is reported as a failure here.
func registerRightClick(logger *slog.Logger, shell ShellIntegration) {
	if shell.Unregister() {
		shellFailure(logger, "Setup of Windows Registry failed during unregister. Try running as Admin?", "unregister")
	}
	if !shell.RegisterDirectory() {
		shellFailure(logger, "Setup of Windows Registry failed during directory registration. Try running as Admin?", "register_directory")
	}
	if !shell.RegisterFile() {
		shellFailure(logger, "Setup of Windows Registry failed during file registration. Try running as Admin?", "register_file")
	}
}

func unregisterRightClick(logger *slog.Logger, shell ShellIntegration) {
	if !shell.Unregister() {
		shellFailure(logger, "Removal of Windows Registry failed, probably no Admin", "unregister")
	}
}

func shellFailure(logger *slog.Logger, msg, step string) {
	logging.ErrorWithContext(logger, msg, "shell_integration_failed",
		logging.String("step", step),
		logging.String(logging.FieldErrorHint, shellFailureHint),
	)
}
