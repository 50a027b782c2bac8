package preflight

import (
	"context"
	"path/filepath"

	"neobridge/internal/config"
	"neobridge/internal/shellint"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
	// Optional results do not fail the overall run.
	Optional bool
}

// Failed reports whether any required check did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed && !r.Optional {
			return true
		}
	}
	return false
}

// RunAll executes every check that applies to cfg.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckNeovim(ctx, cfg.Neovim.Binary)}

	if cfg.Logging.Dir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Logging.Dir))
	}

	if cfg.Shell.Enabled {
		shell := Result{Name: "Shell integration", Optional: true}
		if shellint.Supported() {
			shell.Passed = true
			shell.Detail = "registry integration available"
		} else {
			shell.Detail = "not supported on this platform"
		}
		results = append(results, shell)
		if shellint.Supported() && cfg.Shell.LockPath != "" {
			results = append(results, CheckDirectoryAccess("Shell lock directory", filepath.Dir(cfg.Shell.LockPath)))
		}
	}

	return results
}
