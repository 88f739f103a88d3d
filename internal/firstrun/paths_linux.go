//go:build linux

package firstrun

import (
	"os"
	"path/filepath"
	"strings"
)

func shortcutDirs() (desktop, quickLaunch string) {
	home, _ := os.UserHomeDir()
	desktop = os.Getenv("XDG_DESKTOP_DIR")
	if desktop == "" {
		desktop = filepath.Join(home, "Desktop")
	}
	data := os.Getenv("XDG_DATA_HOME")
	if data == "" {
		data = filepath.Join(home, ".local", "share")
	}
	return desktop, filepath.Join(data, "applications")
}

func shortcutFileName(productName string) string {
	return strings.ToLower(productName) + ".desktop"
}
