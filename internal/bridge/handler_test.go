package bridge_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"neobridge/internal/bridge"
	"neobridge/internal/logging"
	"neobridge/internal/rpcvalue"
	"neobridge/internal/testsupport"
	"neobridge/internal/worker"
)

// callLog records collaborator calls across all fakes in order.
type callLog struct {
	mu    sync.Mutex
	calls []string
	args  [][]rpcvalue.Value
}

func (c *callLog) add(name string, args []rpcvalue.Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, name)
	c.args = append(c.args, args)
}

func (c *callLog) snapshot() ([]string, [][]rpcvalue.Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...), append([][]rpcvalue.Value(nil), c.args...)
}

type fakeRedraw struct{ log *callLog }

func (f fakeRedraw) HandleRedraw(args []rpcvalue.Value) { f.log.add("redraw", args) }

type fakeSettings struct{ log *callLog }

func (f fakeSettings) HandleChangedNotification(args []rpcvalue.Value) {
	f.log.add("settings", args)
}

type fakeShell struct {
	log          *callLog
	unregister   bool
	registerDir  bool
	registerFile bool
}

func (f fakeShell) Unregister() bool {
	f.log.add("unregister", nil)
	return f.unregister
}

func (f fakeShell) RegisterDirectory() bool {
	f.log.add("register_directory", nil)
	return f.registerDir
}

func (f fakeShell) RegisterFile() bool {
	f.log.add("register_file", nil)
	return f.registerFile
}

type fixture struct {
	log  *callLog
	rec  *testsupport.LogRecorder
	pool *worker.Pool
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rec := testsupport.NewLogRecorder()
	pool := worker.NewPool(4, rec.Logger())
	t.Cleanup(pool.Close)
	return &fixture{log: &callLog{}, rec: rec, pool: pool}
}

func (f *fixture) dispatcher(shell bridge.ShellIntegration) bridge.Dispatcher {
	return bridge.NewDispatcher(bridge.DispatcherOptions{
		Redraw:   fakeRedraw{log: f.log},
		Settings: fakeSettings{log: f.log},
		Shell:    shell,
		Pool:     f.pool,
		Logger:   f.rec.Logger(),
	})
}

func (f *fixture) traces() []testsupport.Record {
	return f.rec.AtLevel(logging.LevelTrace)
}

func (f *fixture) errors() []testsupport.Record {
	return f.rec.AtLevel(slog.LevelError)
}

func assertCalls(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("calls = %v, want %v", got, want)
		}
	}
}

func TestRedrawForwardsArguments(t *testing.T) {
	f := newFixture(t)
	a := rpcvalue.FromAny([]any{"grid_resize", []any{int64(1), int64(80), int64(24)}})
	b := rpcvalue.FromAny([]any{"flush", []any{}})

	f.dispatcher(nil).HandleNotify(context.Background(), "redraw", []rpcvalue.Value{a, b}, nil)

	calls, args := f.log.snapshot()
	assertCalls(t, calls, "redraw")
	if len(args[0]) != 2 || !args[0][0].Equal(a) || !args[0][1].Equal(b) {
		t.Fatalf("redraw args = %v", args[0])
	}
	if len(f.errors()) != 0 {
		t.Fatalf("unexpected error logs: %+v", f.errors())
	}
}

func TestSettingChangedForwardsArguments(t *testing.T) {
	f := newFixture(t)
	payload := rpcvalue.FromAny(map[string]any{"key": "x", "value": int64(1)})

	f.dispatcher(nil).HandleNotify(context.Background(), "setting_changed", []rpcvalue.Value{payload}, nil)

	calls, args := f.log.snapshot()
	assertCalls(t, calls, "settings")
	if len(args[0]) != 1 || !args[0][0].Equal(payload) {
		t.Fatalf("settings args = %v", args[0])
	}
}

func TestEmptyArgumentsAreForwarded(t *testing.T) {
	f := newFixture(t)
	f.dispatcher(nil).HandleNotify(context.Background(), "redraw", nil, nil)

	calls, args := f.log.snapshot()
	assertCalls(t, calls, "redraw")
	if len(args[0]) != 0 {
		t.Fatalf("expected empty args, got %v", args[0])
	}
}

func TestRegisterRightClickHappyPath(t *testing.T) {
	f := newFixture(t)
	shell := fakeShell{log: f.log, unregister: false, registerDir: true, registerFile: true}

	f.dispatcher(shell).HandleNotify(context.Background(), "neovide.register_right_click", nil, nil)

	calls, _ := f.log.snapshot()
	assertCalls(t, calls, "unregister", "register_directory", "register_file")
	if errs := f.errors(); len(errs) != 0 {
		t.Fatalf("expected no error logs, got %+v", errs)
	}
}

func TestRegisterRightClickTruthyUnregisterLogsError(t *testing.T) {
	f := newFixture(t)
	shell := fakeShell{log: f.log, unregister: true, registerDir: true, registerFile: true}

	f.dispatcher(shell).HandleNotify(context.Background(), "neovide.register_right_click", nil, nil)

	calls, _ := f.log.snapshot()
	assertCalls(t, calls, "unregister", "register_directory", "register_file")
	errs := f.errors()
	if len(errs) != 1 {
		t.Fatalf("expected one error log, got %+v", errs)
	}
	if errs[0].Attrs["step"] != "unregister" {
		t.Fatalf("unexpected step: %v", errs[0].Attrs)
	}
	if errs[0].Message != "Setup of Windows Registry failed during unregister. Try running as Admin?" {
		t.Fatalf("unexpected message: %q", errs[0].Message)
	}
	if errs[0].Attrs[logging.FieldErrorHint] == "" {
		t.Fatal("expected an error hint")
	}
}

func TestRegisterRightClickRunsEveryStepOnFailure(t *testing.T) {
	f := newFixture(t)
	shell := fakeShell{log: f.log, unregister: true, registerDir: false, registerFile: false}

	f.dispatcher(shell).HandleNotify(context.Background(), "neovide.register_right_click", nil, nil)

	calls, _ := f.log.snapshot()
	assertCalls(t, calls, "unregister", "register_directory", "register_file")
	errs := f.errors()
	if len(errs) != 3 {
		t.Fatalf("expected three error logs, got %d", len(errs))
	}
	for i, step := range []string{"unregister", "register_directory", "register_file"} {
		if errs[i].Attrs["step"] != step {
			t.Fatalf("error %d step = %q, want %q", i, errs[i].Attrs["step"], step)
		}
	}
}

func TestUnregisterRightClickFailureLogsError(t *testing.T) {
	f := newFixture(t)
	shell := fakeShell{log: f.log, unregister: false}

	f.dispatcher(shell).HandleNotify(context.Background(), "neovide.unregister_right_click", nil, nil)

	calls, _ := f.log.snapshot()
	assertCalls(t, calls, "unregister")
	errs := f.errors()
	if len(errs) != 1 || errs[0].Message != "Removal of Windows Registry failed, probably no Admin" {
		t.Fatalf("unexpected error logs: %+v", errs)
	}
}

func TestUnregisterRightClickSuccessIsQuiet(t *testing.T) {
	f := newFixture(t)
	shell := fakeShell{log: f.log, unregister: true}

	f.dispatcher(shell).HandleNotify(context.Background(), "neovide.unregister_right_click", nil, nil)

	calls, _ := f.log.snapshot()
	assertCalls(t, calls, "unregister")
	if len(f.errors()) != 0 {
		t.Fatalf("unexpected error logs: %+v", f.errors())
	}
}

func TestUnknownEventIsIgnored(t *testing.T) {
	f := newFixture(t)
	shell := fakeShell{log: f.log}

	f.dispatcher(shell).HandleNotify(context.Background(), "unknown.event", []rpcvalue.Value{rpcvalue.Int(42)}, nil)

	calls, _ := f.log.snapshot()
	assertCalls(t, calls)
	if len(f.errors()) != 0 {
		t.Fatalf("unexpected error logs: %+v", f.errors())
	}
	traces := f.traces()
	if len(traces) != 1 || traces[0].Attrs[logging.FieldEvent] != "unknown.event" {
		t.Fatalf("expected one trace entry, got %+v", traces)
	}
}

func TestEveryEventEmitsOneTrace(t *testing.T) {
	for _, event := range append(bridge.Events(), "unknown.event", "") {
		t.Run(event, func(t *testing.T) {
			f := newFixture(t)
			shell := fakeShell{log: f.log, registerDir: true, registerFile: true}
			f.dispatcher(shell).HandleNotify(context.Background(), event, nil, nil)

			traces := f.traces()
			if len(traces) != 1 {
				t.Fatalf("expected exactly one trace, got %d", len(traces))
			}
			if traces[0].Attrs[logging.FieldEvent] != event {
				t.Fatalf("trace names %q, want %q", traces[0].Attrs[logging.FieldEvent], event)
			}
		})
	}
}

func TestTraceIsEmittedBeforeDispatch(t *testing.T) {
	f := newFixture(t)
	var tracesAtCall int
	redraw := redrawFunc(func([]rpcvalue.Value) { tracesAtCall = len(f.traces()) })
	d := bridge.NewDispatcher(bridge.DispatcherOptions{Redraw: redraw, Pool: f.pool, Logger: f.rec.Logger()})

	d.HandleNotify(context.Background(), "redraw", nil, nil)

	if tracesAtCall != 1 {
		t.Fatalf("expected trace before dispatch, saw %d", tracesAtCall)
	}
}

type redrawFunc func([]rpcvalue.Value)

func (fn redrawFunc) HandleRedraw(args []rpcvalue.Value) { fn(args) }

func TestNilShellIntegrationIsNoop(t *testing.T) {
	f := newFixture(t)
	d := f.dispatcher(nil)

	d.HandleNotify(context.Background(), "neovide.register_right_click", nil, nil)
	d.HandleNotify(context.Background(), "neovide.unregister_right_click", nil, nil)

	calls, _ := f.log.snapshot()
	assertCalls(t, calls)
	if len(f.errors()) != 0 {
		t.Fatalf("unexpected error logs: %+v", f.errors())
	}
}

func TestConcurrentNotificationsComplete(t *testing.T) {
	f := newFixture(t)
	d := f.dispatcher(fakeShell{log: f.log, registerDir: true, registerFile: true})

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			events := bridge.Events()
			// Copies of the dispatcher behave the same.
			copyOfD := d
			copyOfD.HandleNotify(context.Background(), events[i%len(events)], []rpcvalue.Value{rpcvalue.Int(int64(i))}, nil)
		}(i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("concurrent notifications deadlocked")
	}

	calls, _ := f.log.snapshot()
	if len(calls) == 0 {
		t.Fatal("expected collaborator calls")
	}
}

func TestPanickingCollaboratorIsSwallowed(t *testing.T) {
	f := newFixture(t)
	redraw := redrawFunc(func([]rpcvalue.Value) { panic("decoder bug") })
	d := bridge.NewDispatcher(bridge.DispatcherOptions{Redraw: redraw, Pool: f.pool, Logger: f.rec.Logger()})

	d.HandleNotify(context.Background(), "redraw", nil, nil)

	if len(f.errors()) != 0 {
		t.Fatalf("worker failures must not log at error level: %+v", f.errors())
	}
	if len(f.rec.AtLevel(slog.LevelDebug)) == 0 {
		t.Fatal("expected a debug entry for the failed worker")
	}
}

func TestClosedPoolIsSwallowed(t *testing.T) {
	f := newFixture(t)
	pool := worker.NewPool(1, nil)
	pool.Close()
	d := bridge.NewDispatcher(bridge.DispatcherOptions{Redraw: fakeRedraw{log: f.log}, Pool: pool, Logger: f.rec.Logger()})

	d.HandleNotify(context.Background(), "redraw", nil, nil)

	calls, _ := f.log.snapshot()
	assertCalls(t, calls)
	if len(f.errors()) != 0 {
		t.Fatalf("unexpected error logs: %+v", f.errors())
	}
}

func TestSessionIDFromContextIsLogged(t *testing.T) {
	f := newFixture(t)
	ctx := logging.ContextWithSessionID(context.Background(), "abc")

	f.dispatcher(nil).HandleNotify(ctx, "unknown.event", nil, nil)

	traces := f.traces()
	if len(traces) != 1 || traces[0].Attrs[logging.FieldSessionID] != "abc" {
		t.Fatalf("expected session id on trace, got %+v", traces)
	}
}
