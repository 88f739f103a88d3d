package resultcodes

import "testing"

func TestCodeValuesAreStable(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{NormalExit, 0},
		{ShellIntegrationFailed, 10},
		{UninstallDeleteFileError, 12},
		{UninstallAppAlive, 13},
		{UninstallUserCancel, 15},
		{UnsupportedParam, 17},
		{ImporterCancel, 19},
	}
	for _, tt := range tests {
		if tt.code.Int() != tt.want {
			t.Errorf("%s = %d, want %d", tt.code, tt.code.Int(), tt.want)
		}
	}
}

func TestCodeString(t *testing.T) {
	if got := UninstallUserCancel.String(); got != "uninstall-user-cancel" {
		t.Errorf("String() = %q", got)
	}
	if got := Code(99).String(); got != "code(99)" {
		t.Errorf("String() = %q, want code(99)", got)
	}
	if Code(99).IsKnown() {
		t.Error("Code(99) should not be known")
	}
}
