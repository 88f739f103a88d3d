// Package browser is the normal-run application: it opens what a command
// line asks for and runs the main loop until shutdown.
package browser

import (
	"context"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/Guliveer/vitalis/desktop/internal/metrics"
	"github.com/Guliveer/vitalis/desktop/internal/prefs"
	"github.com/Guliveer/vitalis/desktop/internal/profile"
	"github.com/Guliveer/vitalis/desktop/internal/resultcodes"
	"github.com/Guliveer/vitalis/desktop/internal/singleton"
	"github.com/Guliveer/vitalis/desktop/internal/switches"
)

// NetworkStack selects the network implementation.
type NetworkStack int

const (
	ClassicNetworkStack NetworkStack = iota
	NewNetworkStack
)

func (n NetworkStack) String() string {
	if n == NewNetworkStack {
		return "new"
	}
	return "classic"
}

// SelectNetworkStack picks the stack requested by the command line.
func SelectNetworkStack(cmd *switches.CommandLine) NetworkStack {
	if cmd.HasSwitch(switches.NewNetworkStack) {
		return NewNetworkStack
	}
	return ClassicNetworkStack
}

// Window is one opened browser window.
type Window struct {
	Mode switches.ShowMode
	URLs []string
}

// App is the running application.
type App struct {
	logger  *zap.Logger
	profile *profile.Profile
	metrics *metrics.Service
	network NetworkStack

	// wake signals Run that pending has grown.
	wake chan struct{}

	mu            sync.Mutex
	pending       []singleton.Request
	windows       []Window
	debugPrintDir string
}

// New returns the application for a loaded profile. m may be nil.
func New(p *profile.Profile, m *metrics.Service, network NetworkStack, logger *zap.Logger) *App {
	return &App{
		logger:   logger.Named("browser"),
		profile:  p,
		metrics:  m,
		network:  network,
		wake:     make(chan struct{}, 1),
	}
}

// ConfigureDebugPrint enables print dumps. An empty dir selects a
// directory inside the profile.
func (a *App) ConfigureDebugPrint(dir string) {
	if dir == "" {
		dir = filepath.Join(a.profile.Path(), "print_dumps")
	}
	a.mu.Lock()
	a.debugPrintDir = dir
	a.mu.Unlock()
	a.profile.Prefs().SetString(prefs.PrintDebugDumpDir, dir)
	a.logger.Info("Print debug dumps enabled", zap.String("dir", dir))
}

// DebugPrintDir returns the configured print dump directory, if any.
func (a *App) DebugPrintDir() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.debugPrintDir
}

// ProcessCommandLine opens a window for cmd. Relative file arguments are
// resolved against cwd. Without arguments the home page opens.
func (a *App) ProcessCommandLine(cmd *switches.CommandLine, mode switches.ShowMode, cwd string) {
	var urls []string
	for _, arg := range cmd.Args() {
		urls = append(urls, resolveArg(arg, cwd))
	}
	if len(urls) == 0 {
		urls = []string{a.profile.Prefs().GetString(prefs.HomePage)}
	}

	a.mu.Lock()
	a.windows = append(a.windows, Window{Mode: mode, URLs: urls})
	a.mu.Unlock()
	a.logger.Info("Opened window",
		zap.Stringer("show_mode", mode),
		zap.Strings("urls", urls))
}

// HandleLaunchRequest queues a request handed off by another launch for
// the main loop. It is the notification channel handler and never blocks:
// the sender was already acknowledged, so the queue is unbounded.
func (a *App) HandleLaunchRequest(req singleton.Request) {
	a.metrics.RecordHandOff()
	a.mu.Lock()
	a.pending = append(a.pending, req)
	a.mu.Unlock()
	select {
	case a.wake <- struct{}{}:
	default:
	}
}

func (a *App) processPending() {
	a.mu.Lock()
	reqs := a.pending
	a.pending = nil
	a.mu.Unlock()
	for _, req := range reqs {
		a.process(req)
	}
}

func (a *App) process(req singleton.Request) {
	cmd, err := switches.Parse(req.Argv)
	if err != nil {
		a.logger.Warn("Ignoring launch request with bad command line", zap.Error(err))
		return
	}
	mode, err := switches.ParseShowMode(req.ShowMode)
	if err != nil {
		mode = switches.ShowNormal
	}
	a.ProcessCommandLine(cmd, mode, req.Cwd)
}

// Windows returns the windows opened so far.
func (a *App) Windows() []Window {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Window(nil), a.windows...)
}

// Run is the main loop. It serves handed-off launch requests until ctx is
// cancelled.
func (a *App) Run(ctx context.Context) resultcodes.Code {
	a.logger.Info("Main loop running", zap.Stringer("network_stack", a.network))
	for {
		select {
		case <-a.wake:
			a.processPending()
		case <-ctx.Done():
			// Serve what was already acknowledged.
			a.processPending()
			a.logger.Info("Main loop stopped")
			return resultcodes.NormalExit
		}
	}
}

func resolveArg(arg, cwd string) string {
	if looksLikeURL(arg) || filepath.IsAbs(arg) || cwd == "" {
		return arg
	}
	return filepath.Join(cwd, arg)
}

func looksLikeURL(s string) bool {
	for i, r := range s {
		switch {
		case r == ':':
			return i > 1
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return false
}
