//go:build linux || darwin

package config

import (
	"os"
	"path/filepath"
	"runtime"
)

func configSearchPaths() []string {
	home, _ := os.UserHomeDir()
	return []string{
		filepath.Join(home, ".vitalis", "config.yaml"),
		"/etc/vitalis/desktop.yaml",
	}
}

func defaultUserDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support", "Vitalis")
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "vitalis")
	}
	return filepath.Join(home, ".config", "vitalis")
}
