package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Guliveer/vitalis/desktop/internal/prefs"
	"github.com/Guliveer/vitalis/desktop/internal/resultcodes"
)

func localState(t *testing.T) *prefs.Store {
	t.Helper()
	s, err := prefs.Load(filepath.Join(t.TempDir(), "Local State.yaml"))
	require.NoError(t, err)
	prefs.RegisterLocalState(s)
	return s
}

func TestService_RecordsAndWrites(t *testing.T) {
	local := localState(t)
	local.SetBool(prefs.MetricsReportingEnabled, true)
	textfile := filepath.Join(t.TempDir(), "Default", "metrics.prom")

	s := New(local, textfile, zap.NewNop())
	s.Start()
	require.True(t, s.Recording())
	assert.True(t, local.GetBool(prefs.MetricsIsRecording))
	_, err := uuid.Parse(local.GetString(prefs.MetricsClientID))
	assert.NoError(t, err)

	s.RecordDecision("normal")
	s.RecordDecision("normal")
	s.RecordExit(resultcodes.NormalExit)
	s.RecordHandOff()
	s.ObserveStartup(1500 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(s.decisions.WithLabelValues("normal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.handoffs))
	assert.Equal(t, 1.5, testutil.ToFloat64(s.startup))

	require.NoError(t, s.Stop())
	assert.False(t, s.Recording())
	assert.False(t, local.GetBool(prefs.MetricsIsRecording))

	data, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `vitalis_launch_decisions_total{decision="normal"} 2`)
	assert.Contains(t, string(data), `vitalis_exit_codes_total{code="normal-exit"} 1`)
}

func TestService_ReportingDisabledSkipsTextfile(t *testing.T) {
	local := localState(t)
	local.SetBool(prefs.MetricsReportingEnabled, true)
	local.Transient().SetBool(prefs.MetricsReportingEnabled, false)
	textfile := filepath.Join(t.TempDir(), "metrics.prom")

	s := New(local, textfile, zap.NewNop())
	s.Start()
	assert.False(t, s.Reporting())
	s.RecordDecision("normal")
	require.NoError(t, s.Stop())

	assert.NoFileExists(t, textfile)
}

func TestService_ClientIDIsStable(t *testing.T) {
	local := localState(t)
	local.SetString(prefs.MetricsClientID, "existing-id")

	New(local, "", zap.NewNop()).Start()
	assert.Equal(t, "existing-id", local.GetString(prefs.MetricsClientID))
}

func TestService_NilIsDisabled(t *testing.T) {
	var s *Service
	s.Start()
	s.RecordDecision("normal")
	s.RecordExit(resultcodes.Killed)
	s.RecordHandOff()
	s.ObserveStartup(time.Second)
	assert.False(t, s.Recording())
	assert.False(t, s.Reporting())
	assert.NoError(t, s.Stop())
}

func TestService_NotRecordingBeforeStart(t *testing.T) {
	s := New(localState(t), "", zap.NewNop())
	s.RecordDecision("normal")
	assert.Equal(t, 0.0, testutil.ToFloat64(s.decisions.WithLabelValues("normal")))
}
