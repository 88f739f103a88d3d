package singleton

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	lockFileName   = "SingletonLock"
	socketFileName = "SingletonSocket"

	// maxSocketPath stays below the smallest sun_path limit (104 on darwin).
	maxSocketPath = 100
)

var errNoOwner = errors.New("no owner recorded")

// owner is the host and PID recorded in the lock file.
type owner struct {
	host string
	pid  int
}

func (o owner) String() string { return o.host + "-" + strconv.Itoa(o.pid) }

// parseOwner decodes "host-pid". Host names may contain dashes, the PID is
// everything after the last one.
func parseOwner(s string) (owner, error) {
	s = strings.TrimSpace(s)
	i := strings.LastIndex(s, "-")
	if i <= 0 {
		return owner{}, fmt.Errorf("%w: %q", errNoOwner, s)
	}
	pid, err := strconv.Atoi(s[i+1:])
	if err != nil || pid <= 0 {
		return owner{}, fmt.Errorf("%w: bad pid in %q", errNoOwner, s)
	}
	return owner{host: s[:i], pid: pid}, nil
}

func readOwner(lockPath string) (owner, error) {
	data, err := os.ReadFile(lockPath)
	if err != nil {
		return owner{}, err
	}
	return parseOwner(string(data))
}

// createLock atomically creates the lock file holding self.
func createLock(lockPath string, self owner) error {
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(self.String()); err != nil {
		f.Close()
		os.Remove(lockPath)
		return fmt.Errorf("writing lock file: %w", err)
	}
	return f.Close()
}

// socketPath returns the rendezvous socket of userDataDir. Paths that do
// not fit in a sockaddr_un move to the temp dir under a hashed name.
func socketPath(userDataDir string) string {
	p := filepath.Join(userDataDir, socketFileName)
	if len(p) <= maxSocketPath {
		return p
	}
	sum := sha256.Sum256([]byte(filepath.Clean(userDataDir)))
	return filepath.Join(os.TempDir(), "vitalis-"+hex.EncodeToString(sum[:])[:16]+".sock")
}

func self() owner {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	return owner{host: host, pid: os.Getpid()}
}
