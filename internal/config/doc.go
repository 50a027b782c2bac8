// Package config loads, normalizes, and validates neobridge configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours the NEOVIM_BIN environment fallback. Watch reloads
// the file when it changes on disk so verbosity can be adjusted without
// restarting the front-end.
//
// Obtain settings through this package so downstream code receives sanitized
// paths, canonical log levels, and clear validation errors.
package config
