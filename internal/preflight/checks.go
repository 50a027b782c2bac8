package preflight

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MinimumNeovim is the oldest release with the ext_linegrid UI protocol and
// nvim_exec_lua.
var MinimumNeovim = Version{Major: 0, Minor: 5, Patch: 0}

const versionTimeout = 5 * time.Second

// Version is a Neovim release number.
type Version struct {
	Major, Minor, Patch int
}

func (v Version) String() string {
	return fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Less reports whether v is older than o.
func (v Version) Less(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	if v.Minor != o.Minor {
		return v.Minor < o.Minor
	}
	return v.Patch < o.Patch
}

var versionPattern = regexp.MustCompile(`NVIM v(\d+)\.(\d+)\.(\d+)`)

// ParseVersion extracts the release from `nvim --version` output.
func ParseVersion(output string) (Version, error) {
	m := versionPattern.FindStringSubmatch(output)
	if m == nil {
		first, _, _ := strings.Cut(strings.TrimSpace(output), "\n")
		return Version{}, fmt.Errorf("unrecognized version output %q", first)
	}
	var parts [3]int
	for i := range parts {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return Version{}, fmt.Errorf("parse version: %w", err)
		}
		parts[i] = n
	}
	return Version{Major: parts[0], Minor: parts[1], Patch: parts[2]}, nil
}

// CheckBinary verifies that command resolves on PATH or as a path.
func CheckBinary(name, command string) Result {
	cmd := strings.TrimSpace(command)
	if cmd == "" {
		return Result{Name: name, Detail: "command not configured"}
	}
	path, err := exec.LookPath(cmd)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("binary %q not found", cmd)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckNeovim resolves binary and verifies its version.
func CheckNeovim(ctx context.Context, binary string) Result {
	result := CheckBinary("Neovim", binary)
	if !result.Passed {
		return result
	}
	path := result.Detail

	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, path, "--version").Output()
	if err != nil {
		return Result{Name: "Neovim", Detail: fmt.Sprintf("%s (error: --version failed: %v)", path, err)}
	}
	version, err := ParseVersion(string(out))
	if err != nil {
		return Result{Name: "Neovim", Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if version.Less(MinimumNeovim) {
		return Result{Name: "Neovim", Detail: fmt.Sprintf("%s %s (error: %s or newer required)", path, version, MinimumNeovim)}
	}
	return Result{Name: "Neovim", Passed: true, Detail: fmt.Sprintf("%s %s", path, version)}
}

// CheckDirectoryAccess verifies that path is an existing, writable directory.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := checkWritable(path); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}
