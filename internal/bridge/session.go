package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/neovim/go-client/nvim"

	"neobridge/internal/logging"
	"neobridge/internal/rpcvalue"
	"neobridge/internal/settings"
)

// Options configures the embedded Neovim process.
type Options struct {
	// Binary defaults to "nvim".
	Binary string
	// Args are passed to the binary and must already contain --embed.
	Args   []string
	Dir    string
	Env    []string
	Width  int
	Height int
	// Settings, when set, is seeded from g:neovide_* and kept in sync.
	Settings *settings.Store
	// ShellCommands defines :NeovideRegisterRightClick and
	// :NeovideUnregisterRightClick.
	ShellCommands bool
	Logger        *slog.Logger
}

// Session is one attached Neovim child process.
type Session struct {
	ID      string
	Channel int

	nvim      *nvim.Nvim
	logger    *slog.Logger
	done      chan struct{}
	err       error
	closeOnce sync.Once
}

// Start spawns Neovim, routes its notifications to d, runs the UI setup and
// attaches. The context bounds the child process lifetime.
func Start(ctx context.Context, opts Options, d Dispatcher) (*Session, error) {
	if opts.Binary == "" {
		opts.Binary = "nvim"
	}
	id := uuid.NewString()
	logger := logging.WithSessionID(logging.NewComponentLogger(opts.Logger, "session"), id)
	ctx = logging.ContextWithSessionID(ctx, id)

	childOpts := []nvim.ChildProcessOption{
		nvim.ChildProcessCommand(opts.Binary),
		nvim.ChildProcessArgs(opts.Args...),
		nvim.ChildProcessContext(ctx),
		nvim.ChildProcessServe(false),
		nvim.ChildProcessLogf(func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...))
		}),
	}
	if opts.Dir != "" {
		childOpts = append(childOpts, nvim.ChildProcessDir(opts.Dir))
	}
	if len(opts.Env) > 0 {
		childOpts = append(childOpts, nvim.ChildProcessEnv(append(os.Environ(), opts.Env...)))
	}

	v, err := nvim.NewChildProcess(childOpts...)
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", opts.Binary, err)
	}

	s := &Session{
		ID:     id,
		nvim:   v,
		logger: logger,
		done:   make(chan struct{}),
	}

	// go-client has no catch-all handler; notifications for other methods are
	// dropped by the client and only reported through ChildProcessLogf.
	for _, name := range Events() {
		event := name
		handler := func(client *nvim.Nvim, args ...any) {
			d.HandleNotify(ctx, event, rpcvalue.FromSlice(args), client)
		}
		if err := v.RegisterHandler(event, handler); err != nil {
			_ = v.Close()
			return nil, fmt.Errorf("register %s handler: %w", event, err)
		}
	}

	go s.serve()

	if err := s.setup(opts); err != nil {
		_ = s.Close()
		return nil, err
	}
	logger.Info("neovim session attached",
		logging.String("binary", opts.Binary),
		logging.Int("channel", s.Channel),
		logging.Int("width", opts.Width),
		logging.Int("height", opts.Height),
	)
	return s, nil
}

func (s *Session) serve() {
	err := s.nvim.Serve()
	if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
		err = nil
	}
	s.err = err
	close(s.done)
}

func (s *Session) setup(opts Options) error {
	info, err := s.nvim.APIInfo()
	if err != nil {
		return fmt.Errorf("query api info: %w", err)
	}
	if len(info) == 0 {
		return errors.New("query api info: empty response")
	}
	channel, ok := rpcvalue.FromAny(info[0]).AsInt()
	if !ok {
		return fmt.Errorf("query api info: unexpected channel id %v", info[0])
	}
	s.Channel = int(channel)

	if err := s.nvim.SetVar("neovide", true); err != nil {
		return fmt.Errorf("set g:neovide: %w", err)
	}
	if err := s.nvim.SetVar("neovide_channel_id", s.Channel); err != nil {
		return fmt.Errorf("set g:neovide_channel_id: %w", err)
	}

	if opts.Settings != nil {
		opts.Settings.ReadInitialValues(s.nvim)
		for _, cmd := range opts.Settings.WatcherScript(s.Channel) {
			if err := s.nvim.Command(cmd); err != nil {
				return fmt.Errorf("install settings watcher: %w", err)
			}
		}
	}

	if opts.ShellCommands {
		for _, cmd := range ShellCommands(s.Channel) {
			if err := s.nvim.Command(cmd); err != nil {
				return fmt.Errorf("define shell command: %w", err)
			}
		}
	}

	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = 100
	}
	if height <= 0 {
		height = 50
	}
	uiOpts := map[string]any{
		"rgb":          true,
		"ext_linegrid": true,
	}
	if err := s.nvim.AttachUI(width, height, uiOpts); err != nil {
		return fmt.Errorf("attach ui: %w", err)
	}
	return nil
}

// ShellCommands returns the Ex commands defining the user commands that ask
// the front-end to edit the context menu.
func ShellCommands(channel int) []string {
	return []string{
		fmt.Sprintf("command! NeovideRegisterRightClick call rpcnotify(%d, '%s')", channel, EventRegisterRightClick),
		fmt.Sprintf("command! NeovideUnregisterRightClick call rpcnotify(%d, '%s')", channel, EventUnregisterRightClick),
	}
}

// Client exposes the RPC client for callers that need to issue requests.
func (s *Session) Client() *nvim.Nvim {
	return s.nvim
}

// Done is closed when the RPC stream ends.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until Neovim exits or the stream fails.
func (s *Session) Wait() error {
	<-s.done
	return s.err
}

// Close stops the child process. It is safe to call more than once.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.nvim.Close()
		if err != nil && errors.Is(err, os.ErrClosed) {
			err = nil
		}
		s.logger.Debug("neovim session closed")
	})
	return err
}
