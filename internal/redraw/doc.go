// Package redraw decodes the "redraw" notification batches Neovim sends to an
// attached UI (ext_linegrid protocol) into typed events.
package redraw
