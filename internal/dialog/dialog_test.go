package dialog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsole_Confirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"ok\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			c := NewConsole(strings.NewReader(tt.input), &out)
			assert.Equal(t, tt.want, c.Confirm("Uninstall", "Remove it?"))
			assert.Contains(t, out.String(), "Remove it?")
		})
	}
}

func TestConsole_AskDirectory(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		initial string
		want    string
		wantOK  bool
	}{
		{"typed", "/data/vitalis\n", "/home/u", "/data/vitalis", true},
		{"accept initial", "\n", "/home/u", "/home/u", true},
		{"no initial", "\n", "", "", false},
		{"cancel", "-\n", "/home/u", "", false},
		{"eof", "", "/home/u", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConsole(strings.NewReader(tt.input), &bytes.Buffer{})
			got, ok := c.AskDirectory("Data", "Choose", tt.initial)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConsole_AlertWritesText(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader("\n"), &out)
	c.Alert("Vitalis", "Please close Vitalis first.")
	assert.Contains(t, out.String(), "Please close Vitalis first.")
}
