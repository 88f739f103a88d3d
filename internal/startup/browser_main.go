package startup

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Guliveer/vitalis/desktop/internal/browser"
	"github.com/Guliveer/vitalis/desktop/internal/config"
	"github.com/Guliveer/vitalis/desktop/internal/dialog"
	"github.com/Guliveer/vitalis/desktop/internal/firstrun"
	"github.com/Guliveer/vitalis/desktop/internal/importer"
	"github.com/Guliveer/vitalis/desktop/internal/instance"
	"github.com/Guliveer/vitalis/desktop/internal/l10n"
	"github.com/Guliveer/vitalis/desktop/internal/metrics"
	"github.com/Guliveer/vitalis/desktop/internal/osinfo"
	"github.com/Guliveer/vitalis/desktop/internal/prefs"
	"github.com/Guliveer/vitalis/desktop/internal/profile"
	"github.com/Guliveer/vitalis/desktop/internal/recovery"
	"github.com/Guliveer/vitalis/desktop/internal/resultcodes"
	"github.com/Guliveer/vitalis/desktop/internal/shell"
	"github.com/Guliveer/vitalis/desktop/internal/singleton"
	"github.com/Guliveer/vitalis/desktop/internal/switches"
	"github.com/Guliveer/vitalis/desktop/internal/upgrade"
)

const (
	notifyRetries    = 3
	notifyRetryDelay = 500 * time.Millisecond

	shutdownClean    = "clean"
	shutdownNotClean = "not_clean"
)

var (
	errCrashTest     = errors.New("crash requested by --crash-test")
	errAssertionTest = errors.New("assertion requested by --assertion-test")
)

// Main wires one launch of the application.
type Main struct {
	Config     *config.Config
	Logger     *zap.Logger
	Version    string
	Executable string
	Cwd        string
	Prompter   dialog.Prompter

	// Optional overrides; nil selects the real implementation.
	Shell        shell.Manager
	OS           func(ctx context.Context) osinfo.Info
	OpenFacility func(osinfo.Facility) error
	SystemLocale func() string
	Layout       *firstrun.Layout
	Fatal        func(err error)

	onRunning func(app *browser.App)
}

// BrowserMain runs one launch with the real collaborators and returns the
// process exit code.
func BrowserMain(ctx context.Context, m *Main, cmd *switches.CommandLine) resultcodes.Code {
	return m.Run(ctx, cmd)
}

// Run executes the launch: recovery reset, instance detection, process
// services, profile, gates, then either exits or runs the main loop.
func (m *Main) Run(ctx context.Context, cmd *switches.CommandLine) resultcodes.Code {
	start := time.Now()
	recovery.Clear()

	logger := m.Logger
	cfg := m.Config

	network := browser.SelectNetworkStack(cmd)

	token, alreadyRunning := instance.AcquireOrDetect(m.Executable, logger)
	defer token.Release()

	launch, err := NewLaunchContext(cmd, m.Executable, alreadyRunning)
	if err != nil {
		logger.Error("Invalid command line", zap.Error(err))
		return resultcodes.InvalidCommandLine
	}

	userDataDir := cfg.Paths.UserDataDir
	channel := singleton.New(userDataDir, singleton.Options{
		NotifyTimeout: cfg.Singleton.NotifyTimeout.Duration,
		Executable:    m.Executable,
		Logger:        logger,
	})
	defer channel.Close()

	layout := m.layout()
	proc, err := NewProcess(cfg, logger, layout, m.systemLocale(), cmd.HasSwitch(switches.FirstRun))
	if err != nil {
		logger.Error("Failed to initialize process services", zap.Error(err))
		return resultcodes.MissingData
	}
	title := proc.Bundle.String("product_name")

	if info := m.osInfo(ctx); !info.Supported() && !cmd.HasSwitch(switches.NoErrorDialogs) {
		m.Prompter.Alert(title, proc.Bundle.String("unsupported_os"))
	}

	prof, err := profile.NewManager(logger).GetDefaultProfile(userDataDir)
	if err != nil {
		return m.chooseUserDataDir(launch, proc, err)
	}

	shellMgr := m.shell()
	seq := &Sequencer{
		Prompter:     m.Prompter,
		Strings:      proc.Bundle,
		Install:      layout,
		OS:           m.osInfo,
		OpenFacility: m.openFacility,
		Shell:        shellMgr,
		Importer:     importer.New(m.Prompter, proc.Bundle, logger),
		Channel:      channel,
		Upgrader:     upgrade.NewSwapper(logger),
		Cwd:          m.Cwd,
		Logger:       logger.Named("startup"),
		Fatal:        m.Fatal,
	}
	decision := seq.Decide(ctx, launch, prof)
	if decision.Terminal() {
		return decision.Code
	}

	// From here on this launch owns the user data directory.
	metricsSvc := m.newMetrics(cmd, proc, prof)
	app := browser.New(prof, metricsSvc, network, logger)
	if err := channel.Create(app.HandleLaunchRequest); err != nil {
		if errors.Is(err, singleton.ErrOwnedByOtherProcess) {
			if m.retryNotify(ctx, channel, launch) {
				return resultcodes.NormalExit
			}
			logger.Error("Instance owning the user data directory does not respond", zap.Error(err))
			return resultcodes.Hung
		}
		logger.Warn("Running without notification channel", zap.Error(err))
	}

	defer m.save("local state", proc.LocalState)
	defer m.save("profile preferences", prof.Prefs())
	m.recordSessionStart(proc.LocalState)

	metricsSvc.Start()
	code := resultcodes.NormalExit
	defer func() {
		metricsSvc.RecordExit(code)
		if err := metricsSvc.Stop(); err != nil {
			logger.Warn("Failed to stop metrics", zap.Error(err))
		}
	}()
	metricsSvc.RecordDecision(decision.Kind.String())

	if decision.Kind == RunFirstRun {
		channel.Lock()
		wizard := &firstrun.Wizard{
			Layout:     layout,
			Prompter:   m.Prompter,
			Strings:    proc.Bundle,
			Importer:   importer.New(m.Prompter, proc.Bundle, logger),
			Shell:      shellMgr,
			LocalState: proc.LocalState,
			Logger:     logger,
		}
		if _, err := wizard.Run(ctx, prof, proc.Installer); err != nil {
			logger.Warn("First run did not complete", zap.Error(err))
		}
		channel.Unlock()
	}

	if cmd.HasSwitch(switches.DebugPrint) {
		app.ConfigureDebugPrint(cmd.SwitchValue(switches.DebugPrint))
	}
	shell.VerifyInstallation(shellMgr, logger)

	recovery.NewWriter(logger).Prepare(cmd, proc.Bundle)

	stager := upgrade.NewStager(m.Version, m.Executable, upgrade.StagerConfig{
		Enabled:       cfg.Update.Enabled,
		CheckInterval: cfg.Update.CheckInterval.Duration,
		RepoOwner:     cfg.Update.RepoOwner,
		RepoName:      cfg.Update.RepoName,
	}, logger)
	stager.Start(ctx)
	defer stager.Stop()

	m.runTestHooks(cmd)

	app.ProcessCommandLine(cmd, launch.ShowMode, m.Cwd)
	metricsSvc.ObserveStartup(time.Since(start))
	if m.onRunning != nil {
		m.onRunning(app)
	}

	code = app.Run(ctx)
	m.recordCleanShutdown(proc.LocalState)
	return code
}

// chooseUserDataDir asks for another user data directory when the profile
// cannot be loaded and relaunches with it.
func (m *Main) chooseUserDataDir(launch LaunchContext, proc *Process, loadErr error) resultcodes.Code {
	logger := m.Logger
	dir := m.Config.Paths.UserDataDir
	logger.Error("Failed to load profile", zap.String("user_data_dir", dir), zap.Error(loadErr))

	title := proc.Bundle.String("product_name")
	chosen, ok := m.Prompter.AskDirectory(title, proc.Bundle.StringF("user_data_dir_prompt", dir), "")
	if !ok {
		return resultcodes.MissingPath
	}
	relaunch := launch.Cmd.AppendSwitchWithValue(switches.UserDataDir, chosen)
	if err := upgrade.NewSwapper(logger).Relaunch(m.Executable, relaunch.Argv()); err != nil {
		logger.Error("Relaunch with new user data directory failed", zap.Error(err))
		return resultcodes.MissingPath
	}
	return resultcodes.NormalExit
}

// retryNotify covers the window where the owner holds the lock but is not
// listening yet.
func (m *Main) retryNotify(ctx context.Context, channel *singleton.Channel, launch LaunchContext) bool {
	for i := 0; i < notifyRetries; i++ {
		if channel.NotifyOtherProcess(launch.ShowMode, launch.Cmd.Argv(), m.Cwd) {
			return true
		}
		select {
		case <-time.After(notifyRetryDelay):
		case <-ctx.Done():
			return false
		}
	}
	return false
}

func (m *Main) newMetrics(cmd *switches.CommandLine, proc *Process, prof *profile.Profile) *metrics.Service {
	if cmd.HasSwitch(switches.DisableMetrics) {
		m.Logger.Info("Metrics disabled")
		return nil
	}
	if cmd.HasSwitch(switches.DisableMetricsReporting) {
		proc.LocalState.Transient().SetBool(prefs.MetricsReportingEnabled, false)
	}
	textfile := ""
	if m.Config.Metrics.Textfile != "" {
		textfile = filepath.Join(prof.Path(), m.Config.Metrics.Textfile)
	}
	return metrics.New(proc.LocalState, textfile, m.Logger)
}

func (m *Main) recordSessionStart(local *prefs.Store) {
	if prev := local.GetString(prefs.LastShutdownType); prev != "" {
		m.Logger.Info("Previous session",
			zap.String("shutdown", prev),
			zap.String("at", local.GetString(prefs.LastShutdownTime)))
	}
	local.SetString(prefs.LastShutdownType, shutdownNotClean)
	m.save("local state", local)
}

func (m *Main) recordCleanShutdown(local *prefs.Store) {
	local.SetString(prefs.LastShutdownType, shutdownClean)
	local.SetString(prefs.LastShutdownTime, time.Now().UTC().Format(time.RFC3339))
}

func (m *Main) save(what string, s *prefs.Store) {
	if err := s.Save(); err != nil {
		m.Logger.Warn("Failed to save "+what, zap.Error(err))
	}
}

func (m *Main) runTestHooks(cmd *switches.CommandLine) {
	if cmd.HasSwitch(switches.CrashTest) {
		m.Logger.Warn("Crashing on request")
		panic(errCrashTest)
	}
	if cmd.HasSwitch(switches.AssertionTest) {
		if m.Fatal != nil {
			m.Fatal(errAssertionTest)
			return
		}
		m.Logger.Panic("Assertion failed", zap.Error(errAssertionTest))
	}
}

func (m *Main) layout() firstrun.Layout {
	if m.Layout != nil {
		return *m.Layout
	}
	return firstrun.DefaultLayout(m.Executable, m.Config.App.ProductName)
}

func (m *Main) osInfo(ctx context.Context) osinfo.Info {
	if m.OS != nil {
		return m.OS(ctx)
	}
	return osinfo.Detect(ctx)
}

func (m *Main) openFacility(f osinfo.Facility) error {
	if m.OpenFacility != nil {
		return m.OpenFacility(f)
	}
	return f.Open()
}

func (m *Main) systemLocale() string {
	if m.SystemLocale != nil {
		return m.SystemLocale()
	}
	return l10n.SystemLocale()
}

func (m *Main) shell() shell.Manager {
	if m.Shell != nil {
		return m.Shell
	}
	return shell.New(shell.App{
		ProductName:    m.Config.App.ProductName,
		Executable:     m.Executable,
		Schemes:        m.Config.App.Schemes,
		FileExtensions: m.Config.App.FileExtensions,
	})
}
