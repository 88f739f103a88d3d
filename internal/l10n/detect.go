package l10n

import (
	"strings"

	"github.com/jeandeaual/go-locale"
)

// SystemLocale returns the user's OS locale as a BCP 47 tag, or "" when it
// cannot be determined.
func SystemLocale() string {
	loc, err := locale.GetLocale()
	if err != nil {
		return ""
	}
	// POSIX style "en_US" is accepted by some platforms' answers.
	return strings.ReplaceAll(loc, "_", "-")
}
