// Package settings keeps the front-end settings Neovim users change through
// g:neovide_* variables.
//
// Values arrive as setting_changed notifications from dictwatchers installed
// in the editor. The store coerces them to the registered kind and notifies
// observers after the store lock has been released.
package settings
