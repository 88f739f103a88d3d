// Package instance detects whether another launch of the same executable is
// already in progress or running. The token is a test-and-set primitive only:
// it says nothing about which user-data directory the sibling serves.
package instance

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Token is held for the lifetime of the owning process.
type Token struct {
	name    string
	release func() error
}

// Name returns the system-wide name the token was created under.
func (t *Token) Name() string { return t.name }

// Release drops the token. Safe to call more than once and on a nil Token.
func (t *Token) Release() error {
	if t == nil || t.release == nil {
		return nil
	}
	release := t.release
	t.release = nil
	return release()
}

// Name derives the token name from an executable path. Both separator styles
// become '!' and the result is lower-cased, so launches through different
// casings or separators of the same path collide.
func Name(executablePath string) string {
	r := strings.NewReplacer(`\`, "!", "/", "!")
	return strings.ToLower(r.Replace(executablePath))
}

// CanonicalExecutable resolves symlinks and makes path absolute, so a launch
// through a link and one through the target name the same token. The input
// is returned unchanged when it cannot be resolved.
func CanonicalExecutable(path string) string {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return path
	}
	if abs, err := filepath.Abs(resolved); err == nil {
		return abs
	}
	return resolved
}

// shortName is a filesystem-safe digest of Name, used where the raw name is
// too long or contains characters the backing object rejects.
func shortName(name string) string {
	sum := sha256.Sum256([]byte(name))
	return hex.EncodeToString(sum[:])[:16]
}

// AcquireOrDetect creates the token for executablePath or finds it already
// created by a sibling launch.
//
// When alreadyExisted is true the returned token is nil: the sibling owns it
// and this launch only needed the detection. Failure to create the backing
// object is logged and reported as alreadyExisted=false with a nil token, so
// a broken primitive never blocks startup.
func AcquireOrDetect(executablePath string, logger *zap.Logger) (tok *Token, alreadyExisted bool) {
	name := Name(executablePath)
	tok, alreadyExisted, err := acquire(name)
	if err != nil {
		logger.Warn("Instance token unavailable, assuming no sibling instance",
			zap.String("token", name),
			zap.Error(err))
		return nil, false
	}
	if alreadyExisted {
		logger.Info("Another launch of this executable is running", zap.String("token", name))
		return nil, true
	}
	logger.Debug("Instance token acquired", zap.String("token", name))
	return tok, false
}
