// Package switches defines the command-line switches understood by the
// launcher and parses a process command line into an immutable CommandLine.
package switches

// Switch names, used without the leading "--".
const (
	Uninstall               = "uninstall"
	HideIcons               = "hide-icons"
	ShowIcons               = "show-icons"
	MakeDefaultBrowser      = "make-default-browser"
	Import                  = "import"
	FirstRun                = "first-run"
	NoErrorDialogs          = "noerrdialogs"
	CrashTest               = "crash-test"
	AssertionTest           = "assertion-test"
	DisableMetrics          = "disable-metrics"
	DisableMetricsReporting = "disable-metrics-reporting"
	DebugPrint              = "debug-print"
	UserDataDir             = "user-data-dir"
	NewNetworkStack         = "new-network-stack"
	ShowModeSwitch          = "show-mode"
	Config                  = "config"
	Version                 = "version"
)

// boolSwitches take no value.
var boolSwitches = []struct {
	name  string
	usage string
}{
	{Uninstall, "Remove shortcuts and first-run markers, then exit"},
	{HideIcons, "Handle the OS request to hide program icons"},
	{ShowIcons, "Handle the OS request to show program icons"},
	{MakeDefaultBrowser, "Register as the default handler and exit"},
	{Import, "Import settings from another installation and exit"},
	{FirstRun, "Force the first-run experience"},
	{NoErrorDialogs, "Suppress error dialogs and the crash recovery prompt"},
	{CrashTest, "Crash on purpose right before the main loop"},
	{AssertionTest, "Trip an assertion right before the main loop"},
	{DisableMetrics, "Do not start the metrics service"},
	{DisableMetricsReporting, "Start metrics recording without reporting"},
	{NewNetworkStack, "Use the new network stack"},
	{Version, "Show version and exit"},
}

// valueSwitches take a value.
var valueSwitches = []struct {
	name  string
	usage string
}{
	{UserDataDir, "Directory holding profiles and local state"},
	{ShowModeSwitch, "Initial window state: normal, minimized or maximized"},
	{Config, "Path to configuration file"},
}

// optionalValueSwitches may appear with or without a value.
var optionalValueSwitches = []struct {
	name  string
	usage string
}{
	{DebugPrint, "Dump print jobs to the given directory"},
}
