package switches

import "fmt"

// ShowMode is the requested initial window state, forwarded to a running
// instance on hand-off.
type ShowMode int

const (
	ShowNormal ShowMode = iota
	ShowMinimized
	ShowMaximized
)

func (m ShowMode) String() string {
	switch m {
	case ShowNormal:
		return "normal"
	case ShowMinimized:
		return "minimized"
	case ShowMaximized:
		return "maximized"
	default:
		return "unknown"
	}
}

// ParseShowMode maps a --show-mode value. An empty string is ShowNormal.
func ParseShowMode(s string) (ShowMode, error) {
	switch s {
	case "", "normal":
		return ShowNormal, nil
	case "minimized":
		return ShowMinimized, nil
	case "maximized":
		return ShowMaximized, nil
	default:
		return ShowNormal, fmt.Errorf("invalid show mode %q (expected normal, minimized or maximized)", s)
	}
}
