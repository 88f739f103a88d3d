package prefs

// Local state preference names.
const (
	ApplicationLocale       = "intl.app_locale"
	MetricsReportingEnabled = "metrics.reporting_enabled"
	MetricsIsRecording      = "metrics.is_recording"
	MetricsClientID         = "metrics.client_id"
	LastShutdownType        = "shutdown.type"
	LastShutdownTime        = "shutdown.time"
)

// Profile preference names.
const (
	HomePage          = "homepage"
	ImportedFrom      = "import.source"
	ImportedAt        = "import.time"
	DefaultCheckDone  = "browser.check_default_browser"
	PrintDebugDumpDir = "printing.debug_dump_dir"
)

// RegisterLocalState registers every local state preference on s.
func RegisterLocalState(s *Store) {
	s.RegisterString(ApplicationLocale, "")
	s.RegisterBool(MetricsReportingEnabled, false)
	s.RegisterBool(MetricsIsRecording, true)
	s.RegisterString(MetricsClientID, "")
	s.RegisterString(LastShutdownType, "")
	s.RegisterString(LastShutdownTime, "")
}

// RegisterProfile registers every per-profile preference on s.
func RegisterProfile(s *Store) {
	s.RegisterString(HomePage, "about:blank")
	s.RegisterString(ImportedFrom, "")
	s.RegisterString(ImportedAt, "")
	s.RegisterBool(DefaultCheckDone, false)
	s.RegisterString(PrintDebugDumpDir, "")
}
