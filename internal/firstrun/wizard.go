package firstrun

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Guliveer/vitalis/desktop/internal/dialog"
	"github.com/Guliveer/vitalis/desktop/internal/prefs"
	"github.com/Guliveer/vitalis/desktop/internal/profile"
)

// Strings looks up localized text.
type Strings interface {
	String(key string) string
	StringF(key string, args ...string) string
}

// SettingsImporter copies settings from another installation into target.
type SettingsImporter interface {
	ImportSettings(ctx context.Context, source string, target *profile.Profile) error
}

// DefaultSetter registers the app as the default handler.
type DefaultSetter interface {
	SetAsDefault() error
}

// Wizard is the first-run experience.
type Wizard struct {
	Layout     Layout
	Prompter   dialog.Prompter
	Strings    Strings
	Importer   SettingsImporter
	Shell      DefaultSetter
	LocalState *prefs.Store // receives the stats consent answer, optional
	Logger     *zap.Logger
}

// Result records what the wizard did.
type Result struct {
	Imported         bool
	MadeDefault      bool
	ShortcutsCreated bool
	StatsConsent     bool
}

// Run walks through import, default registration and shortcuts, then
// writes the sentinel. Individual steps are best effort; only a sentinel
// failure is returned.
func (w *Wizard) Run(ctx context.Context, target *profile.Profile, settings InstallerSettings) (Result, error) {
	logger := w.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("firstrun")
	interactive := !settings.SkipFirstRunUI
	title := w.Strings.String("product_name")
	var res Result

	if interactive {
		w.Prompter.Alert(title, w.Strings.String("first_run_welcome"))
	}

	source := settings.ImportSource
	if source == "" && interactive && w.Prompter.Confirm(title, w.Strings.String("first_run_import")) {
		if dir, ok := w.Prompter.AskDirectory(title, w.Strings.String("import_source_prompt"), ""); ok {
			source = dir
		}
	}
	if source != "" && w.Importer != nil {
		if err := w.Importer.ImportSettings(ctx, source, target); err != nil {
			logger.Warn("First-run import failed", zap.String("source", source), zap.Error(err))
		} else {
			res.Imported = true
		}
	}

	makeDefault := settings.MakeDefaultBrowser ||
		(interactive && w.Prompter.Confirm(title, w.Strings.String("first_run_make_default")))
	if makeDefault && w.Shell != nil {
		if err := w.Shell.SetAsDefault(); err != nil {
			logger.Warn("Failed to register as default", zap.Error(err))
		} else {
			res.MadeDefault = true
		}
	}

	if !settings.DoNotCreateShortcuts &&
		(!interactive || w.Prompter.Confirm(title, w.Strings.String("first_run_shortcuts"))) {
		res.ShortcutsCreated = true
		for _, create := range []func() error{w.Layout.CreateDesktopShortcut, w.Layout.CreateQuickLaunchShortcut} {
			if err := create(); err != nil {
				logger.Warn("Failed to create shortcut", zap.Error(err))
				res.ShortcutsCreated = false
			}
		}
	}

	res.StatsConsent = settings.StatsConsent
	if !res.StatsConsent && interactive && w.LocalState != nil {
		res.StatsConsent = w.Prompter.Confirm(title, w.Strings.String("first_run_stats"))
		w.LocalState.SetBool(prefs.MetricsReportingEnabled, res.StatsConsent)
	}

	if err := w.Layout.CreateSentinel(); err != nil {
		return res, fmt.Errorf("finishing first run: %w", err)
	}
	logger.Info("First run complete",
		zap.Bool("imported", res.Imported),
		zap.Bool("made_default", res.MadeDefault),
		zap.Bool("shortcuts", res.ShortcutsCreated))
	return res, nil
}
