//go:build windows

package firstrun

import (
	"os"
	"path/filepath"
)

func shortcutDirs() (desktop, quickLaunch string) {
	desktop = filepath.Join(os.Getenv("USERPROFILE"), "Desktop")
	quickLaunch = filepath.Join(os.Getenv("APPDATA"), "Microsoft", "Internet Explorer", "Quick Launch")
	return desktop, quickLaunch
}

func shortcutFileName(productName string) string {
	return productName + ".lnk"
}
