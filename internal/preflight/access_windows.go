//go:build windows

package preflight

import "os"

func checkWritable(path string) error {
	f, err := os.CreateTemp(path, ".neobridge-access-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}
