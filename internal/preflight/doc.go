// Package preflight checks that the host can run the bridge: the Neovim
// binary resolves and reports a usable version, and the log and lock
// directories are writable.
//
// The CLI "neobridge doctor" command prints every result. "neobridge run"
// checks only the Neovim binary so a missing editor fails with a readable
// message instead of an exec error.
package preflight
