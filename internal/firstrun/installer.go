package firstrun

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Guliveer/vitalis/desktop/internal/prefs"
)

// InstallerFile holds the choices the installer made, next to the executable.
const InstallerFile = "installer.yaml"

// InstallerSettings are the installer's choices for first run.
type InstallerSettings struct {
	Language             string `yaml:"language"`
	StatsConsent         bool   `yaml:"stats_consent"`
	DoNotCreateShortcuts bool   `yaml:"do_not_create_shortcuts"`
	MakeDefaultBrowser   bool   `yaml:"make_default_browser"`
	SkipFirstRunUI       bool   `yaml:"skip_first_run_ui"`
	ImportSource         string `yaml:"import_source"`
}

// LoadInstallerSettings reads installer.yaml from exeDir. A missing file
// yields zero settings and found=false.
func LoadInstallerSettings(exeDir string) (settings InstallerSettings, found bool, err error) {
	data, err := os.ReadFile(filepath.Join(exeDir, InstallerFile))
	if errors.Is(err, os.ErrNotExist) {
		return InstallerSettings{}, false, nil
	}
	if err != nil {
		return InstallerSettings{}, false, fmt.Errorf("reading installer settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return InstallerSettings{}, false, fmt.Errorf("parsing installer settings: %w", err)
	}
	return settings, true, nil
}

// ApplyToLocalState stores the installer's language as the app locale and
// its stats consent as the metrics reporting choice.
func (s InstallerSettings) ApplyToLocalState(local *prefs.Store) {
	if s.Language != "" {
		local.SetString(prefs.ApplicationLocale, s.Language)
	}
	if s.StatsConsent {
		local.SetBool(prefs.MetricsReportingEnabled, true)
	}
}
