// Package resultcodes defines the closed set of process exit codes produced
// by startup and its administrative flows.
package resultcodes

import "fmt"

// Code is a process exit code.
type Code int

const (
	NormalExit         Code = 0
	Killed             Code = 1
	Hung               Code = 2
	InvalidCommandLine Code = 3

	// Startup could not resolve a required path or load required data.
	MissingPath Code = 8
	MissingData Code = 9

	ShellIntegrationFailed Code = 10

	// Uninstall flow
	UninstallDeleteFileError Code = 12
	UninstallAppAlive        Code = 13
	UninstallUserCancel      Code = 15

	UnsupportedParam Code = 17

	// Import flow
	ImporterCancel Code = 19
	ImporterFailed Code = 20
)

var names = map[Code]string{
	NormalExit:               "normal-exit",
	Killed:                   "killed",
	Hung:                     "hung",
	InvalidCommandLine:       "invalid-command-line",
	MissingPath:              "missing-path",
	MissingData:              "missing-data",
	ShellIntegrationFailed:   "shell-integration-failed",
	UninstallDeleteFileError: "uninstall-delete-file-error",
	UninstallAppAlive:        "uninstall-app-alive",
	UninstallUserCancel:      "uninstall-user-cancel",
	UnsupportedParam:         "unsupported-param",
	ImporterCancel:           "importer-cancel",
	ImporterFailed:           "importer-failed",
}

// String returns the symbolic name of the code.
func (c Code) String() string {
	if name, ok := names[c]; ok {
		return name
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// Int returns the code as an int suitable for os.Exit.
func (c Code) Int() int { return int(c) }

// IsKnown reports whether c belongs to the taxonomy.
func (c Code) IsKnown() bool {
	_, ok := names[c]
	return ok
}
