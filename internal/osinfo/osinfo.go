// Package osinfo detects the running OS version and the facility the OS
// offers for managing installed programs.
package osinfo

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/shirou/gopsutil/v3/host"
)

// Info describes the running operating system.
type Info struct {
	GOOS     string
	Platform string // e.g. "ubuntu", "Microsoft Windows 11 Pro"
	Version  string // raw platform version
	Major    int
	Minor    int
	// Known is false when the version could not be read or parsed.
	Known bool
}

var (
	detectOnce sync.Once
	detected   Info
)

// Detect returns the running OS. The result is cached after the first call.
func Detect(ctx context.Context) Info {
	detectOnce.Do(func() {
		detected = detect(ctx)
	})
	return detected
}

func detect(ctx context.Context) Info {
	info := Info{GOOS: runtime.GOOS}
	platform, _, version, err := host.PlatformInformationWithContext(ctx)
	if err != nil {
		return info
	}
	info.Platform = platform
	info.Version = version
	info.Major, info.Minor, info.Known = parseVersion(version)
	return info
}

// New builds an Info from a raw version string for goos.
func New(goos, version string) Info {
	info := Info{GOOS: goos, Version: version}
	info.Major, info.Minor, info.Known = parseVersion(version)
	return info
}

// parseVersion reads the leading "major.minor" of strings such as
// "10.0.22631 Build 22631", "14.2.1" or "22.04".
func parseVersion(s string) (major, minor int, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, false
	}
	field := strings.Fields(s)[0]
	parts := strings.Split(field, ".")
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	if len(parts) > 1 {
		if minor, err = strconv.Atoi(parts[1]); err != nil {
			minor = 0
		}
	}
	return major, minor, true
}

// AtLeast reports whether the version is major.minor or newer.
func (i Info) AtLeast(major, minor int) bool {
	if !i.Known {
		return false
	}
	if i.Major != major {
		return i.Major > major
	}
	return i.Minor >= minor
}

// Supported reports whether the product still supports this OS. Windows
// releases before XP (5.1) are not supported.
func (i Info) Supported() bool {
	if i.GOOS != "windows" || !i.Known {
		return true
	}
	return i.AtLeast(5, 1)
}

func (i Info) String() string {
	if !i.Known {
		return i.GOOS + " (unknown version)"
	}
	return fmt.Sprintf("%s %d.%d", i.GOOS, i.Major, i.Minor)
}

// Facility is the OS surface for managing installed programs.
type Facility struct {
	// NameKey is the resource key of the facility's localized name.
	NameKey string
	command []string
}

// ProgramsFacility returns the program-management facility for this OS.
// ok is false on Windows before XP and whenever the version is unknown.
func (i Info) ProgramsFacility() (Facility, bool) {
	switch i.GOOS {
	case "windows":
		switch {
		case i.AtLeast(6, 0):
			return Facility{NameKey: "programs_and_features", command: []string{"control", "appwiz.cpl"}}, true
		case i.AtLeast(5, 1):
			return Facility{NameKey: "add_remove_programs", command: []string{"control", "appwiz.cpl"}}, true
		default:
			return Facility{}, false
		}
	case "darwin":
		if !i.Known {
			return Facility{}, false
		}
		return Facility{NameKey: "applications_folder", command: []string{"open", "/Applications"}}, true
	case "linux":
		if !i.Known {
			return Facility{}, false
		}
		return Facility{NameKey: "software_manager", command: []string{"gnome-software"}}, true
	default:
		return Facility{}, false
	}
}

// Open launches the facility without waiting for it to exit.
func (f Facility) Open() error {
	if len(f.command) == 0 {
		return fmt.Errorf("no program-management facility")
	}
	path, err := exec.LookPath(f.command[0])
	if err != nil {
		return fmt.Errorf("locating %s: %w", f.command[0], err)
	}
	cmd := exec.Command(path, f.command[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", f.command[0], err)
	}
	go cmd.Wait()
	return nil
}
