package startup

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Guliveer/vitalis/desktop/internal/config"
	"github.com/Guliveer/vitalis/desktop/internal/firstrun"
	"github.com/Guliveer/vitalis/desktop/internal/l10n"
	"github.com/Guliveer/vitalis/desktop/internal/prefs"
)

// LocalStateFile is the machine-wide settings store inside the user data dir.
const LocalStateFile = "Local State.yaml"

// Process holds the process-wide services of one launch. It is built once
// by BrowserMain and passed explicitly to whatever needs it.
type Process struct {
	Config     *config.Config
	Logger     *zap.Logger
	LocalState *prefs.Store
	Installer  firstrun.InstallerSettings
	Bundle     *l10n.Bundle
}

// NewProcess loads local state and the resource bundle. On first run, from
// a missing sentinel or forceFirstRun (--first-run), the installer's choices
// are applied to local state before the locale is picked. systemLocale is
// used when no locale preference is stored.
func NewProcess(cfg *config.Config, logger *zap.Logger, layout firstrun.Layout, systemLocale string, forceFirstRun bool) (*Process, error) {
	p := &Process{Config: cfg, Logger: logger}

	path := filepath.Join(cfg.Paths.UserDataDir, LocalStateFile)
	local, err := prefs.Load(path)
	if err != nil {
		logger.Warn("Local state unreadable, starting fresh", zap.String("path", path), zap.Error(err))
		local = prefs.New(path)
	}
	prefs.RegisterLocalState(local)
	p.LocalState = local

	installer, found, err := firstrun.LoadInstallerSettings(layout.ExeDir)
	if err != nil {
		logger.Warn("Ignoring installer settings", zap.Error(err))
	}
	p.Installer = installer
	if found && (forceFirstRun || layout.IsFirstRun()) {
		installer.ApplyToLocalState(local)
	}

	locale := local.GetString(prefs.ApplicationLocale)
	if locale == "" {
		locale = systemLocale
	}
	bundle, err := l10n.New(locale)
	if err != nil {
		return nil, fmt.Errorf("loading resource bundle: %w", err)
	}
	p.Bundle = bundle
	logger.Debug("Resource bundle loaded",
		zap.String("locale", bundle.Locale()),
		zap.Stringer("direction", bundle.TextDirection()))
	return p, nil
}
