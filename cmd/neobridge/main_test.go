package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"neobridge/internal/config"
	"neobridge/internal/testsupport"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeConfig(t *testing.T, opts ...testsupport.ConfigOption) (string, *config.Config) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("NEOVIM_BIN", "")
	cfg := testsupport.NewConfig(t, opts...)
	path := testsupport.WriteConfig(t, filepath.Join(testsupport.BaseDir(cfg), "config.toml"), cfg)
	return path, cfg
}

func TestConfigInitWritesSample(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	target := filepath.Join(t.TempDir(), "nested", "config.toml")

	stdout, _, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(stdout, target) {
		t.Fatalf("expected output to name %s, got %q", target, stdout)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[neovim]") {
		t.Fatalf("sample missing [neovim] section:\n%s", data)
	}

	if _, _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
	if _, _, err := runCLI(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("init with --overwrite: %v", err)
	}
}

func TestConfigValidateReportsPath(t *testing.T) {
	path, _ := writeConfig(t)

	stdout, _, err := runCLI(t, "--config", path, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(stdout, "Config path: "+path) || !strings.Contains(stdout, "Configuration valid") {
		t.Fatalf("unexpected output: %q", stdout)
	}
	if strings.Contains(stdout, "defaults were used") {
		t.Fatalf("config file exists, defaults note should be absent: %q", stdout)
	}
}

func TestConfigValidateRejectsBadFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	testsupport.WriteFile(t, path, []byte("[logging]\nformat = \"xml\"\n"))

	if _, _, err := runCLI(t, "--config", path, "config", "validate"); err == nil {
		t.Fatal("expected validation failure")
	}
}

func TestConfigShowListsKeys(t *testing.T) {
	path, cfg := writeConfig(t, testsupport.WithWorkers(12))

	stdout, _, err := runCLI(t, "--config", path, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	for _, want := range []string{"bridge.blocking_workers", "12", "logging.dir", cfg.Logging.Dir} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("expected %q in output:\n%s", want, stdout)
		}
	}
	// Non-terminal output uses the plain style.
	if strings.Contains(stdout, "╭") {
		t.Fatalf("expected plain borders off a terminal:\n%s", stdout)
	}
}

func TestLogLevelFlagOverridesConfig(t *testing.T) {
	path, _ := writeConfig(t)

	stdout, _, err := runCLI(t, "--config", path, "--log-level", "TRACE", "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(stdout, "trace") {
		t.Fatalf("expected trace level in output:\n%s", stdout)
	}

	if _, _, err := runCLI(t, "--config", path, "--log-level", "loud", "config", "show"); err == nil {
		t.Fatal("expected invalid --log-level to fail")
	}
}

func TestSettingsCommandListsVariables(t *testing.T) {
	stdout, _, err := runCLI(t, "settings")
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	for _, want := range []string{"g:neovide_refresh_rate", "g:neovide_transparency", "float", "60"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("expected %q in output:\n%s", want, stdout)
		}
	}
}

func TestShellRegisterUnsupportedOffWindows(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("registry integration is active on windows")
	}
	path, _ := writeConfig(t)

	stdout, _, err := runCLI(t, "--config", path, "shell", "register")
	if err != nil {
		t.Fatalf("shell register: %v", err)
	}
	if !strings.Contains(stdout, "not supported") {
		t.Fatalf("unexpected output: %q", stdout)
	}
}

func TestShellCommandsRespectDisabledFlag(t *testing.T) {
	path, cfg := writeConfig(t)
	cfg.Shell.Enabled = false
	testsupport.WriteConfig(t, path, cfg)

	stdout, _, err := runCLI(t, "--config", path, "shell", "unregister")
	if err != nil {
		t.Fatalf("shell unregister: %v", err)
	}
	if !strings.Contains(stdout, "disabled") {
		t.Fatalf("unexpected output: %q", stdout)
	}
}

func TestRunFailsForMissingNeovim(t *testing.T) {
	path, cfg := writeConfig(t)
	missing := filepath.Join(testsupport.BaseDir(cfg), "bin", "missing-nvim")
	cfg.Neovim.Binary = missing
	testsupport.WriteConfig(t, path, cfg)

	_, _, err := runCLI(t, "--config", path, "run")
	if err == nil {
		t.Fatal("expected run to fail without a neovim binary")
	}
	if !strings.Contains(err.Error(), "start neovim") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunPrunesStaleLogsButKeepsActiveFile(t *testing.T) {
	path, cfg := writeConfig(t)
	cfg.Neovim.Binary = filepath.Join(testsupport.BaseDir(cfg), "bin", "missing-nvim")
	cfg.Logging.RetentionDays = 7
	testsupport.WriteConfig(t, path, cfg)

	stale := filepath.Join(cfg.Logging.Dir, "neobridge-20200101.log")
	testsupport.WriteFile(t, stale, []byte("old\n"))
	past := time.Now().AddDate(0, 0, -30)
	if err := os.Chtimes(stale, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	if _, _, err := runCLI(t, "--config", path, "run"); err == nil {
		t.Fatal("expected run to fail without a neovim binary")
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("expected stale log to be pruned, stat err=%v", err)
	}
	active := filepath.Join(cfg.Logging.Dir, "neobridge-"+time.Now().Format("20060102")+".log")
	if _, err := os.Stat(active); err != nil {
		t.Fatalf("expected active log %s to remain: %v", active, err)
	}
}

func TestDoctorReportsMissingNeovim(t *testing.T) {
	path, cfg := writeConfig(t)
	cfg.Neovim.Binary = filepath.Join(testsupport.BaseDir(cfg), "bin", "missing-nvim")
	testsupport.WriteConfig(t, path, cfg)

	stdout, _, err := runCLI(t, "--config", path, "doctor")
	if err == nil {
		t.Fatal("expected doctor to fail")
	}
	if !strings.Contains(stdout, "FAIL") || !strings.Contains(stdout, "Log directory") {
		t.Fatalf("unexpected output:\n%s", stdout)
	}
}
