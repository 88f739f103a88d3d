//go:build windows

package instance

import "testing"

// Named events live in the session namespace; nothing to isolate.
func isolateLockDir(t *testing.T) {}
