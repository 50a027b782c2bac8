// Package bridge connects an embedded Neovim process to the front-end.
//
// Session spawns nvim --embed, attaches as a UI and forwards every
// notification it receives to a Dispatcher. The Dispatcher routes by event
// name to the redraw decoder, the settings store or the shell integration,
// running each branch on the blocking worker pool.
package bridge
