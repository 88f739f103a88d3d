package startup

import (
	"fmt"

	"github.com/Guliveer/vitalis/desktop/internal/switches"
)

// LaunchContext is what this launch was asked to do. It is built once at
// process entry and never changed.
type LaunchContext struct {
	Cmd            *switches.CommandLine
	Executable     string
	ShowMode       switches.ShowMode
	AlreadyRunning bool
}

// NewLaunchContext validates the show mode of cmd.
func NewLaunchContext(cmd *switches.CommandLine, executable string, alreadyRunning bool) (LaunchContext, error) {
	mode, err := switches.ParseShowMode(cmd.SwitchValue(switches.ShowModeSwitch))
	if err != nil {
		return LaunchContext{}, fmt.Errorf("parsing --%s: %w", switches.ShowModeSwitch, err)
	}
	return LaunchContext{
		Cmd:            cmd,
		Executable:     executable,
		ShowMode:       mode,
		AlreadyRunning: alreadyRunning,
	}, nil
}

// Has reports whether the launch carries switch name.
func (l LaunchContext) Has(name string) bool { return l.Cmd.HasSwitch(name) }
