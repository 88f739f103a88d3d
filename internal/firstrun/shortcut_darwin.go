//go:build darwin

package firstrun

import "os"

func createShortcut(path, target, _ string) error {
	os.Remove(path)
	return os.Symlink(target, path)
}
