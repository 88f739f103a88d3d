package startup

import "github.com/Guliveer/vitalis/desktop/internal/resultcodes"

// Kind tags a startup decision.
type Kind int

const (
	RunNormal Kind = iota
	RunUninstall
	RunIconCommand
	RunSetDefaultBrowser
	RunImport
	RunHandOff
	RunUpgradeRelaunch
	RunFirstRun
)

var kindNames = map[Kind]string{
	RunNormal:            "normal",
	RunUninstall:         "uninstall",
	RunIconCommand:       "icon-command",
	RunSetDefaultBrowser: "set-default-browser",
	RunImport:            "import",
	RunHandOff:           "hand-off",
	RunUpgradeRelaunch:   "upgrade-relaunch",
	RunFirstRun:          "first-run",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Decision is the outcome of the gate sequence. Terminal decisions end the
// process with Code; RunFirstRun and RunNormal continue startup.
type Decision struct {
	Kind Kind
	Code resultcodes.Code
}

// Terminal reports whether the process exits with d.Code.
func (d Decision) Terminal() bool {
	return d.Kind != RunNormal && d.Kind != RunFirstRun
}

func terminal(kind Kind, code resultcodes.Code) Decision {
	return Decision{Kind: kind, Code: code}
}
