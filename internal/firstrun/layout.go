// Package firstrun owns the files that make a machine "already set up":
// the first-run sentinel next to the executable and the desktop and
// quick-launch shortcuts. It also runs the first-run wizard.
package firstrun

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// SentinelName is the marker file written once first run completes.
const SentinelName = "First Run"

// Layout is where the first-run files of one installation live.
type Layout struct {
	ProductName string
	Executable  string
	// ExeDir holds the sentinel and installer settings.
	ExeDir string
	// DesktopShortcut and QuickLaunchShortcut are full shortcut paths.
	// An empty path means the OS has no such location.
	DesktopShortcut     string
	QuickLaunchShortcut string
}

// DefaultLayout returns the layout for an executable on this OS.
func DefaultLayout(executable, productName string) Layout {
	desktop, quickLaunch := shortcutDirs()
	name := shortcutFileName(productName)
	l := Layout{
		ProductName: productName,
		Executable:  executable,
		ExeDir:      filepath.Dir(executable),
	}
	if desktop != "" {
		l.DesktopShortcut = filepath.Join(desktop, name)
	}
	if quickLaunch != "" {
		l.QuickLaunchShortcut = filepath.Join(quickLaunch, name)
	}
	return l
}

// SentinelPath returns the first-run sentinel path.
func (l Layout) SentinelPath() string { return filepath.Join(l.ExeDir, SentinelName) }

// IsFirstRun reports whether the sentinel is absent.
func (l Layout) IsFirstRun() bool {
	_, err := os.Stat(l.SentinelPath())
	return errors.Is(err, os.ErrNotExist)
}

// CreateSentinel marks first run as done.
func (l Layout) CreateSentinel() error {
	f, err := os.OpenFile(l.SentinelPath(), os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("creating first-run sentinel: %w", err)
	}
	return f.Close()
}

// RemoveSentinel deletes the sentinel. A missing sentinel is not an error.
func (l Layout) RemoveSentinel() error {
	return removeIfExists(l.SentinelPath(), "first-run sentinel")
}

// CreateDesktopShortcut creates the desktop shortcut.
func (l Layout) CreateDesktopShortcut() error {
	return l.create(l.DesktopShortcut, "desktop shortcut")
}

// RemoveDesktopShortcut removes the desktop shortcut if present.
func (l Layout) RemoveDesktopShortcut() error {
	return removeIfExists(l.DesktopShortcut, "desktop shortcut")
}

// CreateQuickLaunchShortcut creates the quick-launch shortcut.
func (l Layout) CreateQuickLaunchShortcut() error {
	return l.create(l.QuickLaunchShortcut, "quick-launch shortcut")
}

// RemoveQuickLaunchShortcut removes the quick-launch shortcut if present.
func (l Layout) RemoveQuickLaunchShortcut() error {
	return removeIfExists(l.QuickLaunchShortcut, "quick-launch shortcut")
}

func (l Layout) create(path, what string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating %s directory: %w", what, err)
	}
	if err := createShortcut(path, l.Executable, l.ProductName); err != nil {
		return fmt.Errorf("creating %s: %w", what, err)
	}
	return nil
}

func removeIfExists(path, what string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", what, err)
	}
	return nil
}
