package upgrade

import (
	"fmt"
	"strings"
)

// binaryNameForPlatform returns the expected release asset name.
func binaryNameForPlatform(goos, goarch string) string {
	name := fmt.Sprintf("vitalis-%s-%s", goos, goarch)
	if goos == "windows" {
		name += ".exe"
	}
	return name
}

// isNewer compares two version strings in v{N} format.
// Returns true if latest has a higher number than current.
func isNewer(latest, current string) bool {
	latestNum := parseVersionNumber(latest)
	currentNum := parseVersionNumber(current)
	if latestNum <= 0 || currentNum <= 0 {
		return false
	}
	return latestNum > currentNum
}

// parseVersionNumber extracts the integer from a version string like "v42" or "42".
func parseVersionNumber(v string) int {
	v = strings.TrimPrefix(v, "v")
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
		return 0
	}
	return n
}
