//go:build !windows

package instance

import "testing"

func isolateLockDir(t *testing.T) {
	dir := t.TempDir()
	prev := lockDir
	lockDir = func() string { return dir }
	t.Cleanup(func() { lockDir = prev })
}
