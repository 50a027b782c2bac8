// Package main hosts the neobridge CLI.
//
// The run command spawns Neovim and keeps the notification bridge attached
// until the editor exits. The remaining commands inspect configuration,
// list front-end settings and drive the shell integration without an editor.
package main
