// Package startup decides, on every launch, which single path the process
// takes: an administrative command, a hand-off to the running instance, an
// upgrade relaunch, first run or a normal start. BrowserMain drives the
// whole launch around that decision.
package startup

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Guliveer/vitalis/desktop/internal/dialog"
	"github.com/Guliveer/vitalis/desktop/internal/osinfo"
	"github.com/Guliveer/vitalis/desktop/internal/profile"
	"github.com/Guliveer/vitalis/desktop/internal/resultcodes"
	"github.com/Guliveer/vitalis/desktop/internal/switches"
)

// ErrInconsistentUpgrade means a staged binary was swapped in but the
// relaunch under it failed, so the binary on disk no longer matches the
// running process.
var ErrInconsistentUpgrade = errors.New("upgrade swapped in but relaunch failed")

// Strings looks up localized text.
type Strings interface {
	String(key string) string
	StringF(key string, args ...string) string
}

// Installation removes the files uninstall cleans up and tells whether
// this is the first run.
type Installation interface {
	IsFirstRun() bool
	RemoveSentinel() error
	RemoveDesktopShortcut() error
	RemoveQuickLaunchShortcut() error
}

// DefaultRegistrar registers the app as the default handler.
type DefaultRegistrar interface {
	SetAsDefault() error
}

// ImportFlow runs the settings import with its own UI.
type ImportFlow interface {
	ImportWithUI(ctx context.Context, source string, target *profile.Profile) resultcodes.Code
}

// Rendezvous is the part of the notification channel the gates use.
type Rendezvous interface {
	NotifyOtherProcess(mode switches.ShowMode, argv []string, cwd string) bool
	HuntForZombieProcesses(ctx context.Context)
}

// Upgrader swaps in a staged binary and relaunches under it.
type Upgrader interface {
	SwapIfPresent(executable string) (bool, error)
	Relaunch(executable string, argv []string) error
}

// Sequencer evaluates the startup gates in fixed order. Collaborators are
// injected so each gate can be exercised without real dialogs or OS state.
type Sequencer struct {
	Prompter dialog.Prompter
	Strings  Strings
	Install  Installation
	OS       func(ctx context.Context) osinfo.Info
	// OpenFacility launches the OS program-management facility.
	OpenFacility func(osinfo.Facility) error
	Shell        DefaultRegistrar
	Importer     ImportFlow
	Channel      Rendezvous
	Upgrader     Upgrader
	Cwd          string
	Logger       *zap.Logger
	// Fatal aborts the process on an unrecoverable inconsistency. It must
	// not return; nil means Logger.Panic.
	Fatal func(err error)
}

// gate returns matched=false to fall through to the next gate.
type gate func(ctx context.Context, launch LaunchContext, p *profile.Profile) (d Decision, matched bool)

func (s *Sequencer) gates() []gate {
	return []gate{
		s.uninstall,
		s.iconCommand,
		s.setDefaultBrowser,
		s.importSettings,
		s.handOff,
		s.upgradeRelaunch,
		s.firstRun,
	}
}

// Decide runs the gates in order; the first that matches wins.
func (s *Sequencer) Decide(ctx context.Context, launch LaunchContext, p *profile.Profile) Decision {
	for _, g := range s.gates() {
		if d, ok := g(ctx, launch, p); ok {
			s.logger().Info("Launch decided",
				zap.Stringer("decision", d.Kind),
				zap.Bool("terminal", d.Terminal()),
				zap.Stringer("code", d.Code))
			return d
		}
	}
	s.logger().Debug("Launch decided", zap.Stringer("decision", RunNormal))
	return Decision{Kind: RunNormal}
}

func (s *Sequencer) logger() *zap.Logger {
	if s.Logger == nil {
		s.Logger = zap.NewNop()
	}
	return s.Logger
}

func (s *Sequencer) title() string { return s.Strings.String("product_name") }

func (s *Sequencer) uninstall(_ context.Context, launch LaunchContext, _ *profile.Profile) (Decision, bool) {
	if !launch.Has(switches.Uninstall) {
		return Decision{}, false
	}
	if launch.AlreadyRunning {
		s.Prompter.Alert(s.title(), s.Strings.String("uninstall_close_app"))
		return terminal(RunUninstall, resultcodes.UninstallAppAlive), true
	}
	if !s.Prompter.Confirm(s.title(), s.Strings.String("uninstall_verify")) {
		return terminal(RunUninstall, resultcodes.UninstallUserCancel), true
	}

	// Every step runs even if an earlier one failed.
	var err error
	err = multierr.Append(err, s.Install.RemoveSentinel())
	err = multierr.Append(err, s.Install.RemoveDesktopShortcut())
	err = multierr.Append(err, s.Install.RemoveQuickLaunchShortcut())
	if err != nil {
		s.logger().Warn("Uninstall cleanup incomplete",
			zap.Int("failures", len(multierr.Errors(err))),
			zap.Error(err))
		return terminal(RunUninstall, resultcodes.UninstallDeleteFileError), true
	}
	return terminal(RunUninstall, resultcodes.NormalExit), true
}

func (s *Sequencer) iconCommand(ctx context.Context, launch LaunchContext, _ *profile.Profile) (Decision, bool) {
	switch {
	case launch.Has(switches.HideIcons):
	case launch.Has(switches.ShowIcons):
		// Icons are never hidden, so there is nothing to show again.
		return terminal(RunIconCommand, resultcodes.UnsupportedParam), true
	default:
		return Decision{}, false
	}

	info := s.OS(ctx)
	facility, ok := info.ProgramsFacility()
	if !ok {
		s.logger().Info("Hiding icons is not supported", zap.Stringer("os", info))
		return terminal(RunIconCommand, resultcodes.UnsupportedParam), true
	}

	text := s.Strings.StringF("hide_icons_not_supported", s.Strings.String(facility.NameKey))
	if s.Prompter.Confirm(s.title(), text) && s.OpenFacility != nil {
		if err := s.OpenFacility(facility); err != nil {
			s.logger().Warn("Failed to open program management", zap.Error(err))
		}
	}
	return terminal(RunIconCommand, resultcodes.NormalExit), true
}

func (s *Sequencer) setDefaultBrowser(_ context.Context, launch LaunchContext, _ *profile.Profile) (Decision, bool) {
	if !launch.Has(switches.MakeDefaultBrowser) {
		return Decision{}, false
	}
	if err := s.Shell.SetAsDefault(); err != nil {
		s.logger().Error("Failed to register as default", zap.Error(err))
		return terminal(RunSetDefaultBrowser, resultcodes.ShellIntegrationFailed), true
	}
	return terminal(RunSetDefaultBrowser, resultcodes.NormalExit), true
}

func (s *Sequencer) importSettings(ctx context.Context, launch LaunchContext, p *profile.Profile) (Decision, bool) {
	if !launch.Has(switches.Import) {
		return Decision{}, false
	}
	var source string
	if args := launch.Cmd.Args(); len(args) > 0 {
		source = args[0]
	}
	return terminal(RunImport, s.Importer.ImportWithUI(ctx, source, p)), true
}

func (s *Sequencer) handOff(ctx context.Context, launch LaunchContext, _ *profile.Profile) (Decision, bool) {
	if s.Channel.NotifyOtherProcess(launch.ShowMode, launch.Cmd.Argv(), s.Cwd) {
		return terminal(RunHandOff, resultcodes.NormalExit), true
	}
	// Nobody answered; clear out an owner that can no longer answer.
	s.Channel.HuntForZombieProcesses(ctx)
	return Decision{}, false
}

func (s *Sequencer) upgradeRelaunch(_ context.Context, launch LaunchContext, _ *profile.Profile) (Decision, bool) {
	swapped, err := s.Upgrader.SwapIfPresent(launch.Executable)
	if err != nil {
		s.logger().Warn("Staged upgrade not applied", zap.Error(err))
		return Decision{}, false
	}
	if !swapped {
		return Decision{}, false
	}
	if err := s.Upgrader.Relaunch(launch.Executable, launch.Cmd.Argv()); err != nil {
		s.fatal(fmt.Errorf("%w: %v", ErrInconsistentUpgrade, err))
	}
	return terminal(RunUpgradeRelaunch, resultcodes.NormalExit), true
}

func (s *Sequencer) fatal(err error) {
	if s.Fatal != nil {
		s.Fatal(err)
		return
	}
	s.logger().Panic("Unrecoverable startup state", zap.Error(err))
}

func (s *Sequencer) firstRun(_ context.Context, launch LaunchContext, _ *profile.Profile) (Decision, bool) {
	if launch.Has(switches.FirstRun) || s.Install.IsFirstRun() {
		return Decision{Kind: RunFirstRun}, true
	}
	return Decision{}, false
}
