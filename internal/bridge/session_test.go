package bridge_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"neobridge/internal/bridge"
)

func TestShellCommandsNotifyChannel(t *testing.T) {
	cmds := bridge.ShellCommands(3)
	if len(cmds) != 2 {
		t.Fatalf("expected two commands, got %d", len(cmds))
	}
	if !strings.HasPrefix(cmds[0], "command! NeovideRegisterRightClick") ||
		!strings.Contains(cmds[0], "rpcnotify(3, 'neovide.register_right_click')") {
		t.Fatalf("unexpected register command: %s", cmds[0])
	}
	if !strings.HasPrefix(cmds[1], "command! NeovideUnregisterRightClick") ||
		!strings.Contains(cmds[1], "rpcnotify(3, 'neovide.unregister_right_click')") {
		t.Fatalf("unexpected unregister command: %s", cmds[1])
	}
}

func TestEventsAreTheRecognizedNames(t *testing.T) {
	want := map[string]bool{
		"redraw":                         true,
		"setting_changed":                true,
		"neovide.register_right_click":   true,
		"neovide.unregister_right_click": true,
	}
	got := bridge.Events()
	if len(got) != len(want) {
		t.Fatalf("Events() = %v", got)
	}
	for _, name := range got {
		if !want[name] {
			t.Fatalf("unexpected event %q", name)
		}
	}
}

func TestStartFailsForMissingBinary(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-nvim")
	d := bridge.NewDispatcher(bridge.DispatcherOptions{})

	s, err := bridge.Start(context.Background(), bridge.Options{Binary: missing, Args: []string{"--embed"}}, d)
	if err == nil {
		_ = s.Close()
		t.Fatal("expected Start to fail")
	}
	if !strings.Contains(err.Error(), missing) {
		t.Fatalf("error should name the binary: %v", err)
	}
}
