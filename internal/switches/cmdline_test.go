package switches

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SwitchesAndArgs(t *testing.T) {
	cl, err := Parse([]string{"/opt/vitalis/vitalis", "--uninstall", "--user-data-dir=/tmp/ud", "https://example.com"})
	require.NoError(t, err)

	assert.True(t, cl.HasSwitch(Uninstall))
	assert.False(t, cl.HasSwitch(Import))
	assert.Equal(t, "/tmp/ud", cl.SwitchValue(UserDataDir))
	assert.Equal(t, []string{"https://example.com"}, cl.Args())
	assert.Equal(t, "/opt/vitalis/vitalis", cl.Program())
}

func TestParse_OptionalValue(t *testing.T) {
	cl, err := Parse([]string{"vitalis", "--debug-print"})
	require.NoError(t, err)
	assert.True(t, cl.HasSwitch(DebugPrint))
	assert.Equal(t, "", cl.SwitchValue(DebugPrint))

	cl, err = Parse([]string{"vitalis", "--debug-print=/tmp/print"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/print", cl.SwitchValue(DebugPrint))
}

func TestParse_ExplicitFalseIsAbsent(t *testing.T) {
	cl, err := Parse([]string{"vitalis", "--first-run=false"})
	require.NoError(t, err)
	assert.False(t, cl.HasSwitch(FirstRun))
}

func TestParse_UnknownSwitchSurvivesInArgv(t *testing.T) {
	cl, err := Parse([]string{"vitalis", "--enable-something=1", "--import"})
	require.NoError(t, err)
	assert.True(t, cl.HasSwitch(Import))
	assert.Equal(t, []string{"vitalis", "--enable-something=1", "--import"}, cl.Argv())
}

func TestParse_UnknownSwitchKeepsFollowingArgument(t *testing.T) {
	cl, err := Parse([]string{"vitalis", "--enable-feature", "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com"}, cl.Args())
	assert.True(t, cl.HasSwitch("enable-feature"))
	assert.Equal(t, []string{"vitalis", "--enable-feature", "https://example.com"}, cl.Argv())
}

func TestParse_SwitchForms(t *testing.T) {
	tests := []struct {
		name     string
		argv     []string
		wantDir  string
		wantArgs []string
	}{
		{"separate value", []string{"vitalis", "--user-data-dir", "/tmp/ud", "a.html"}, "/tmp/ud", []string{"a.html"}},
		{"single dash", []string{"vitalis", "-user-data-dir=/tmp/ud", "a.html"}, "/tmp/ud", []string{"a.html"}},
		{"unknown with value", []string{"vitalis", "-x=1", "--lang", "a.html"}, "", []string{"a.html"}},
		{"terminator", []string{"vitalis", "--", "--uninstall"}, "", []string{"--uninstall"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cl, err := Parse(tt.argv)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDir, cl.SwitchValue(UserDataDir))
			assert.Equal(t, tt.wantArgs, cl.Args())
			assert.False(t, cl.HasSwitch(Uninstall))
		})
	}
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse(nil)
	assert.Error(t, err)
}

func TestAppendSwitchWithValue_LastWins(t *testing.T) {
	cl, err := Parse([]string{"vitalis", "--user-data-dir=/old"})
	require.NoError(t, err)

	next := cl.AppendSwitchWithValue(UserDataDir, "/new")
	assert.Equal(t, "/new", next.SwitchValue(UserDataDir))
	assert.Equal(t, "/old", cl.SwitchValue(UserDataDir), "original must be unchanged")
	assert.Equal(t, []string{"vitalis", "--user-data-dir=/old", "--user-data-dir=/new"}, next.Argv())

	reparsed, err := Parse(next.Argv())
	require.NoError(t, err)
	assert.Equal(t, "/new", reparsed.SwitchValue(UserDataDir))
}

func TestParseShowMode(t *testing.T) {
	tests := []struct {
		input   string
		want    ShowMode
		wantErr bool
	}{
		{"", ShowNormal, false},
		{"normal", ShowNormal, false},
		{"minimized", ShowMinimized, false},
		{"maximized", ShowMaximized, false},
		{"fullscreen", ShowNormal, true},
	}
	for _, tt := range tests {
		got, err := ParseShowMode(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseShowMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseShowMode(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestUsageListsSwitches(t *testing.T) {
	var buf bytes.Buffer
	Usage(&buf)
	assert.Contains(t, buf.String(), "--uninstall")
	assert.Contains(t, buf.String(), "--user-data-dir")
}
