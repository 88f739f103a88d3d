//go:build darwin

package firstrun

import (
	"os"
	"path/filepath"
)

func shortcutDirs() (desktop, quickLaunch string) {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Desktop"), filepath.Join(home, "Applications")
}

func shortcutFileName(productName string) string {
	return productName
}
