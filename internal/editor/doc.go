// Package editor holds the UI-side model of the attached Neovim instance:
// grids, highlights, cursor, mode and window placement. It is the sink for
// decoded redraw events; rendering is left to consumers of Snapshot.
package editor
