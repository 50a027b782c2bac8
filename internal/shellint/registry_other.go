//go:build !windows

package shellint

const platformSupported = false

func newPlatform(Options) Integration {
	return nil
}
