// Package shellint installs and removes the "Open with Neovide" entries in
// the Windows Explorer context menu. Other platforms have no implementation;
// New reports ErrUnsupported there.
package shellint
