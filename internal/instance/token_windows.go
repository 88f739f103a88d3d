//go:build windows

package instance

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows"
)

// acquire creates a manual-reset, initially signalled named event. The name
// may not contain backslashes, which Name already guarantees.
func acquire(name string) (*Token, bool, error) {
	p, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, false, fmt.Errorf("encoding token name: %w", err)
	}

	h, err := windows.CreateEvent(nil, 1, 1, p)
	if err != nil {
		if errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
			if h != 0 {
				windows.CloseHandle(h)
			}
			return nil, true, nil
		}
		return nil, false, fmt.Errorf("creating token event: %w", err)
	}

	return &Token{
		name: name,
		release: func() error {
			return windows.CloseHandle(h)
		},
	}, false, nil
}
