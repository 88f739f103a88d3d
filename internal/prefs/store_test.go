package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_DefaultsAndPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Local State.yaml")

	s, err := Load(path)
	require.NoError(t, err)
	RegisterLocalState(s)

	assert.Equal(t, "", s.GetString(ApplicationLocale))
	assert.True(t, s.GetBool(MetricsIsRecording))

	s.SetString(ApplicationLocale, "de")
	s.SetBool(MetricsReportingEnabled, true)
	require.NoError(t, s.Save())

	reloaded, err := Load(path)
	require.NoError(t, err)
	RegisterLocalState(reloaded)
	assert.Equal(t, "de", reloaded.GetString(ApplicationLocale))
	assert.True(t, reloaded.GetBool(MetricsReportingEnabled))
}

func TestStore_TransientIsNotPersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Local State.yaml")
	s, err := Load(path)
	require.NoError(t, err)
	RegisterLocalState(s)

	s.SetBool(MetricsReportingEnabled, true)
	s.Transient().SetBool(MetricsReportingEnabled, false)
	assert.False(t, s.GetBool(MetricsReportingEnabled))
	require.NoError(t, s.Save())

	reloaded, err := Load(path)
	require.NoError(t, err)
	RegisterLocalState(reloaded)
	assert.True(t, reloaded.GetBool(MetricsReportingEnabled))
}

func TestStore_WrongTypeFallsBackToDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Local State.yaml")
	require.NoError(t, os.WriteFile(path, []byte("metrics.is_recording: \"yes\"\n"), 0640))

	s, err := Load(path)
	require.NoError(t, err)
	RegisterLocalState(s)
	assert.True(t, s.GetBool(MetricsIsRecording))
}

func TestLoad_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Local State.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n  - [unbalanced"), 0640))

	_, err := Load(path)
	assert.Error(t, err)
}
