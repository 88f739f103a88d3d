//go:build !windows

package instance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// lockDir is where token lock files live; a variable so tests can isolate it.
var lockDir = os.TempDir

// acquire takes a non-blocking exclusive flock on a per-name lock file. The
// kernel drops the lock when the owner exits, crashed or not.
func acquire(name string) (*Token, bool, error) {
	path := filepath.Join(lockDir(), "vitalis-instance-"+shortName(name)+".lock")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, false, fmt.Errorf("opening token file: %w", err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, true, nil
		}
		return nil, false, fmt.Errorf("locking token file: %w", err)
	}

	// Record the owner for diagnostics; the lock is what matters.
	_ = f.Truncate(0)
	_, _ = f.WriteAt([]byte(fmt.Sprintf("%d\n%s\n", os.Getpid(), name)), 0)

	return &Token{
		name: name,
		release: func() error {
			// The file stays so a racing launch never locks an unlinked inode.
			return f.Close()
		},
	}, false, nil
}
