// Package profile loads or creates the on-disk profile inside a user data
// directory.
package profile

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Guliveer/vitalis/desktop/internal/prefs"
)

const (
	// DefaultDirName is the directory of the default profile.
	DefaultDirName = "Default"
	// PreferencesFile is the per-profile preferences file.
	PreferencesFile = "Preferences.yaml"
)

// Profile is one loaded profile.
type Profile struct {
	path  string
	prefs *prefs.Store
}

// Path returns the profile directory.
func (p *Profile) Path() string { return p.path }

// Prefs returns the per-profile preference store.
func (p *Profile) Prefs() *prefs.Store { return p.prefs }

// Manager loads profiles.
type Manager struct {
	logger *zap.Logger
}

// NewManager returns a profile manager.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{logger: logger.Named("profile")}
}

// DefaultProfileDir returns the default profile directory inside userDataDir.
func DefaultProfileDir(userDataDir string) string {
	return filepath.Join(userDataDir, DefaultDirName)
}

// GetDefaultProfile loads the default profile of userDataDir, creating the
// directory and an empty preferences file when missing.
func (m *Manager) GetDefaultProfile(userDataDir string) (*Profile, error) {
	if userDataDir == "" {
		return nil, fmt.Errorf("user data directory is empty")
	}
	dir := DefaultProfileDir(userDataDir)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("creating profile directory: %w", err)
	}

	store, err := prefs.Load(filepath.Join(dir, PreferencesFile))
	if err != nil {
		return nil, fmt.Errorf("loading profile preferences: %w", err)
	}
	prefs.RegisterProfile(store)

	if _, err := os.Stat(store.Path()); os.IsNotExist(err) {
		if err := store.Save(); err != nil {
			return nil, fmt.Errorf("creating profile preferences: %w", err)
		}
		m.logger.Info("Created profile", zap.String("path", dir))
	} else {
		m.logger.Debug("Loaded profile", zap.String("path", dir))
	}

	return &Profile{path: dir, prefs: store}, nil
}
