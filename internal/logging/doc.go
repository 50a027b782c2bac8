// Package logging assembles the structured slog loggers used across neobridge.
//
// It owns the console and JSON handlers, the extra trace level used for
// per-notification entries, and the shared level variable that lets a config
// reload change verbosity while the front-end is running. Context helpers tag
// log lines with the RPC session identifier, and a no-op logger is provided for
// tests and wiring code that cannot fail.
package logging
