package startup

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Guliveer/vitalis/desktop/internal/osinfo"
	"github.com/Guliveer/vitalis/desktop/internal/profile"
	"github.com/Guliveer/vitalis/desktop/internal/resultcodes"
	"github.com/Guliveer/vitalis/desktop/internal/switches"
)

type fakePrompter struct {
	confirm bool
	alerts  []string
	asks    int
}

func (p *fakePrompter) Confirm(_, text string) bool {
	p.alerts = append(p.alerts, text)
	return p.confirm
}

func (p *fakePrompter) Alert(_, text string) { p.alerts = append(p.alerts, text) }

func (p *fakePrompter) AskDirectory(_, _, _ string) (string, bool) {
	p.asks++
	return "", false
}

type keyStrings struct{}

func (keyStrings) String(key string) string { return key }

func (keyStrings) StringF(key string, args ...string) string {
	out := key
	for _, a := range args {
		out += ":" + a
	}
	return out
}

type fakeInstall struct {
	firstRun    bool
	sentinelErr error
	removed     []string
}

func (f *fakeInstall) IsFirstRun() bool { return f.firstRun }

func (f *fakeInstall) RemoveSentinel() error {
	f.removed = append(f.removed, "sentinel")
	return f.sentinelErr
}

func (f *fakeInstall) RemoveDesktopShortcut() error {
	f.removed = append(f.removed, "desktop")
	return nil
}

func (f *fakeInstall) RemoveQuickLaunchShortcut() error {
	f.removed = append(f.removed, "quick-launch")
	return nil
}

type fakeShell struct {
	err   error
	calls int
}

func (f *fakeShell) SetAsDefault() error {
	f.calls++
	return f.err
}

type fakeImport struct {
	code   resultcodes.Code
	source string
	calls  int
}

func (f *fakeImport) ImportWithUI(_ context.Context, source string, _ *profile.Profile) resultcodes.Code {
	f.calls++
	f.source = source
	return f.code
}

type fakeChannel struct {
	delivered bool
	notified  int
	hunted    int
}

func (f *fakeChannel) NotifyOtherProcess(switches.ShowMode, []string, string) bool {
	f.notified++
	return f.delivered
}

func (f *fakeChannel) HuntForZombieProcesses(context.Context) { f.hunted++ }

type fakeUpgrader struct {
	swapped     bool
	swapErr     error
	relaunchErr error
	relaunched  []string
}

func (f *fakeUpgrader) SwapIfPresent(string) (bool, error) { return f.swapped, f.swapErr }

func (f *fakeUpgrader) Relaunch(_ string, argv []string) error {
	f.relaunched = argv
	return f.relaunchErr
}

type harness struct {
	seq      *Sequencer
	prompter *fakePrompter
	install  *fakeInstall
	shell    *fakeShell
	importer *fakeImport
	channel  *fakeChannel
	upgrader *fakeUpgrader
	opened   []osinfo.Facility
	os       osinfo.Info
}

func newHarness(t *testing.T) *harness {
	h := &harness{
		prompter: &fakePrompter{confirm: true},
		install:  &fakeInstall{},
		shell:    &fakeShell{},
		importer: &fakeImport{},
		channel:  &fakeChannel{},
		upgrader: &fakeUpgrader{},
		os:       osinfo.New("windows", "10.0.19045"),
	}
	h.seq = &Sequencer{
		Prompter: h.prompter,
		Strings:  keyStrings{},
		Install:  h.install,
		OS:       func(context.Context) osinfo.Info { return h.os },
		OpenFacility: func(f osinfo.Facility) error {
			h.opened = append(h.opened, f)
			return nil
		},
		Shell:    h.shell,
		Importer: h.importer,
		Channel:  h.channel,
		Upgrader: h.upgrader,
		Logger:   zaptest.NewLogger(t),
	}
	return h
}

func launchWith(t *testing.T, alreadyRunning bool, args ...string) LaunchContext {
	t.Helper()
	cmd, err := switches.Parse(append([]string{"vitalis"}, args...))
	require.NoError(t, err)
	l, err := NewLaunchContext(cmd, "/opt/vitalis/vitalis", alreadyRunning)
	require.NoError(t, err)
	return l
}

func (h *harness) decide(t *testing.T, l LaunchContext) Decision {
	return h.seq.Decide(context.Background(), l, nil)
}

func TestDecide_UninstallBeatsEverythingElse(t *testing.T) {
	h := newHarness(t)
	d := h.decide(t, launchWith(t, false, "--uninstall", "--import", "--make-default-browser"))

	assert.Equal(t, RunUninstall, d.Kind)
	assert.Equal(t, resultcodes.NormalExit, d.Code)
	assert.Equal(t, []string{"sentinel", "desktop", "quick-launch"}, h.install.removed)
	assert.Zero(t, h.importer.calls)
	assert.Zero(t, h.shell.calls)
	assert.Zero(t, h.channel.notified)
}

func TestDecide_UninstallWhileRunning(t *testing.T) {
	h := newHarness(t)
	d := h.decide(t, launchWith(t, true, "--uninstall"))

	assert.Equal(t, resultcodes.UninstallAppAlive, d.Code)
	assert.Equal(t, []string{"uninstall_close_app"}, h.prompter.alerts)
	assert.Empty(t, h.install.removed)
}

func TestDecide_UninstallDeclined(t *testing.T) {
	h := newHarness(t)
	h.prompter.confirm = false
	d := h.decide(t, launchWith(t, false, "--uninstall"))

	assert.Equal(t, resultcodes.UninstallUserCancel, d.Code)
	assert.Empty(t, h.install.removed)
}

func TestDecide_UninstallSentinelFailureStillRemovesShortcuts(t *testing.T) {
	h := newHarness(t)
	h.install.sentinelErr = errors.New("permission denied")
	d := h.decide(t, launchWith(t, false, "--uninstall"))

	assert.Equal(t, resultcodes.UninstallDeleteFileError, d.Code)
	assert.Equal(t, []string{"sentinel", "desktop", "quick-launch"}, h.install.removed)
}

func TestDecide_HideIcons(t *testing.T) {
	tests := []struct {
		name     string
		os       osinfo.Info
		confirm  bool
		wantCode resultcodes.Code
		wantOpen int
		wantText string
	}{
		{"vista opens programs and features", osinfo.New("windows", "6.0.6002"), true, resultcodes.NormalExit, 1, "hide_icons_not_supported:programs_and_features"},
		{"xp opens add remove programs", osinfo.New("windows", "5.1.2600"), true, resultcodes.NormalExit, 1, "hide_icons_not_supported:add_remove_programs"},
		{"declined opens nothing", osinfo.New("windows", "10.0"), false, resultcodes.NormalExit, 0, "hide_icons_not_supported:programs_and_features"},
		{"pre xp is unsupported", osinfo.New("windows", "5.0.2195"), true, resultcodes.UnsupportedParam, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.os = tt.os
			h.prompter.confirm = tt.confirm
			d := h.decide(t, launchWith(t, false, "--hide-icons"))

			assert.Equal(t, RunIconCommand, d.Kind)
			assert.Equal(t, tt.wantCode, d.Code)
			assert.Len(t, h.opened, tt.wantOpen)
			if tt.wantText == "" {
				assert.Empty(t, h.prompter.alerts)
			} else {
				assert.Equal(t, []string{tt.wantText}, h.prompter.alerts)
			}
		})
	}
}

func TestDecide_ShowIconsAloneIsUnsupported(t *testing.T) {
	h := newHarness(t)
	d := h.decide(t, launchWith(t, false, "--show-icons"))

	assert.Equal(t, resultcodes.UnsupportedParam, d.Code)
	assert.Empty(t, h.prompter.alerts)
}

func TestDecide_MakeDefaultBrowser(t *testing.T) {
	h := newHarness(t)
	d := h.decide(t, launchWith(t, false, "--make-default-browser"))
	assert.Equal(t, resultcodes.NormalExit, d.Code)
	assert.Equal(t, 1, h.shell.calls)

	h = newHarness(t)
	h.shell.err = errors.New("xdg-settings missing")
	d = h.decide(t, launchWith(t, false, "--make-default-browser"))
	assert.Equal(t, RunSetDefaultBrowser, d.Kind)
	assert.Equal(t, resultcodes.ShellIntegrationFailed, d.Code)
}

func TestDecide_ImportPassesCodeThrough(t *testing.T) {
	h := newHarness(t)
	h.importer.code = resultcodes.ImporterCancel
	d := h.decide(t, launchWith(t, false, "--import", "/home/me/old-profile"))

	assert.Equal(t, RunImport, d.Kind)
	assert.Equal(t, resultcodes.ImporterCancel, d.Code)
	assert.Equal(t, "/home/me/old-profile", h.importer.source)
	assert.Zero(t, h.channel.notified)
}

func TestDecide_HandOff(t *testing.T) {
	h := newHarness(t)
	h.channel.delivered = true
	h.upgrader.swapped = true
	h.install.firstRun = true
	d := h.decide(t, launchWith(t, true, "https://example.com"))

	assert.Equal(t, RunHandOff, d.Kind)
	assert.Equal(t, resultcodes.NormalExit, d.Code)
	assert.Zero(t, h.channel.hunted)
	assert.Nil(t, h.upgrader.relaunched)
}

func TestDecide_UndeliveredHuntsZombies(t *testing.T) {
	h := newHarness(t)
	d := h.decide(t, launchWith(t, false))

	assert.Equal(t, RunNormal, d.Kind)
	assert.False(t, d.Terminal())
	assert.Equal(t, 1, h.channel.notified)
	assert.Equal(t, 1, h.channel.hunted)
}

func TestDecide_UpgradeRelaunch(t *testing.T) {
	h := newHarness(t)
	h.upgrader.swapped = true
	h.install.firstRun = true
	d := h.decide(t, launchWith(t, false, "--show-mode=maximized"))

	assert.Equal(t, RunUpgradeRelaunch, d.Kind)
	assert.Equal(t, resultcodes.NormalExit, d.Code)
	assert.Equal(t, []string{"vitalis", "--show-mode=maximized"}, h.upgrader.relaunched)
}

func TestDecide_UpgradeSwapErrorFallsThrough(t *testing.T) {
	h := newHarness(t)
	h.upgrader.swapErr = errors.New("rename failed")
	d := h.decide(t, launchWith(t, false))
	assert.Equal(t, RunNormal, d.Kind)
}

func TestDecide_RelaunchFailureIsFatal(t *testing.T) {
	h := newHarness(t)
	h.upgrader.swapped = true
	h.upgrader.relaunchErr = errors.New("exec format error")

	assert.Panics(t, func() { h.decide(t, launchWith(t, false)) })

	var got error
	h.seq.Fatal = func(err error) { got = err }
	h.decide(t, launchWith(t, false))
	assert.ErrorIs(t, got, ErrInconsistentUpgrade)
}

func TestDecide_FirstRun(t *testing.T) {
	h := newHarness(t)
	h.install.firstRun = true
	d := h.decide(t, launchWith(t, false))
	assert.Equal(t, RunFirstRun, d.Kind)
	assert.False(t, d.Terminal())

	h = newHarness(t)
	d = h.decide(t, launchWith(t, false, "--first-run"))
	assert.Equal(t, RunFirstRun, d.Kind)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "normal", RunNormal.String())
	assert.Equal(t, "hand-off", RunHandOff.String())
	assert.Equal(t, "upgrade-relaunch", RunUpgradeRelaunch.String())
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestNewLaunchContext_BadShowMode(t *testing.T) {
	cmd, err := switches.Parse([]string{"vitalis", "--show-mode=sideways"})
	require.NoError(t, err)
	_, err = NewLaunchContext(cmd, "vitalis", false)
	assert.Error(t, err)
}
