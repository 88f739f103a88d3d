// Package recovery writes the crash-recovery record into the process
// environment so the crash handler can show a restart prompt without
// locale services of its own.
package recovery

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/Guliveer/vitalis/desktop/internal/l10n"
	"github.com/Guliveer/vitalis/desktop/internal/switches"
)

// Environment variables shared with the crash handler.
const (
	EnvCrashed  = "VITALIS_CRASHED"
	EnvRestart  = "VITALIS_RESTART"
	EnvHeadless = "VITALIS_HEADLESS"
)

// Direction markers of the record.
const (
	LeftToRight = "LEFT_TO_RIGHT"
	RightToLeft = "RIGHT_TO_LEFT"
)

// ErrMalformed is returned by Parse for values that are not a record.
var ErrMalformed = errors.New("malformed recovery record")

// Record is the title, body and text direction of the restart prompt.
type Record struct {
	Title     string
	Body      string
	Direction l10n.Direction
}

// Encode returns the "title|body|direction" form.
func (r Record) Encode() string {
	marker := LeftToRight
	if r.Direction == l10n.RightToLeft {
		marker = RightToLeft
	}
	return r.Title + "|" + r.Body + "|" + marker
}

// Parse decodes an encoded record. The title ends at the first separator
// and the marker starts after the last one, so a body may contain "|".
func Parse(value string) (Record, error) {
	first := strings.Index(value, "|")
	last := strings.LastIndex(value, "|")
	if first < 0 || first == last {
		return Record{}, fmt.Errorf("%w: %q", ErrMalformed, value)
	}
	r := Record{Title: value[:first], Body: value[first+1 : last]}
	switch value[last+1:] {
	case LeftToRight:
		r.Direction = l10n.LeftToRight
	case RightToLeft:
		r.Direction = l10n.RightToLeft
	default:
		return Record{}, fmt.Errorf("%w: unknown direction %q", ErrMalformed, value[last+1:])
	}
	return r, nil
}

// Clear removes any record and restart flag left by a previous launch.
// It is the first thing every launch does and is safe to repeat.
func Clear() {
	os.Unsetenv(EnvCrashed)
	os.Unsetenv(EnvRestart)
}

// Strings is the subset of the resource bundle the writer needs.
type Strings interface {
	String(key string) string
	TextDirection() l10n.Direction
}

// Writer prepares the record once startup is known to reach the main loop.
type Writer struct {
	logger *zap.Logger
}

// NewWriter returns a Writer.
func NewWriter(logger *zap.Logger) *Writer {
	return &Writer{logger: logger.Named("recovery")}
}

// suppressed reports the reason no record should be written, if any.
func suppressed(cmd *switches.CommandLine) string {
	if _, ok := os.LookupEnv(EnvHeadless); ok {
		return EnvHeadless
	}
	for _, name := range []string{switches.CrashTest, switches.AssertionTest, switches.NoErrorDialogs} {
		if cmd.HasSwitch(name) {
			return "--" + name
		}
	}
	return ""
}

// Prepare clears any existing record and, unless suppressed by the headless
// marker or one of the crash-test, assertion-test and no-error-dialogs
// switches, writes a fresh one. It reports whether a record was written.
func (w *Writer) Prepare(cmd *switches.CommandLine, strs Strings) bool {
	Clear()

	if reason := suppressed(cmd); reason != "" {
		w.logger.Debug("Crash recovery record suppressed", zap.String("by", reason))
		return false
	}

	r := Record{
		Title:     strs.String("crash_recovery_title"),
		Body:      strs.String("crash_recovery_content"),
		Direction: strs.TextDirection(),
	}
	if err := os.Setenv(EnvRestart, r.Encode()); err != nil {
		w.logger.Warn("Failed to write crash recovery record", zap.Error(err))
		return false
	}
	w.logger.Debug("Crash recovery record written", zap.String("direction", r.Direction.String()))
	return true
}
