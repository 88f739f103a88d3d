package osinfo

import (
	"context"
	"runtime"
	"testing"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		input        string
		major, minor int
		ok           bool
	}{
		{"10.0.22631 Build 22631", 10, 0, true},
		{"5.1.2600", 5, 1, true},
		{"14.2.1", 14, 2, true},
		{"22.04", 22, 4, true},
		{"12", 12, 0, true},
		{"", 0, 0, false},
		{"rolling", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			major, minor, ok := parseVersion(tt.input)
			if major != tt.major || minor != tt.minor || ok != tt.ok {
				t.Errorf("parseVersion(%q) = %d, %d, %v, want %d, %d, %v",
					tt.input, major, minor, ok, tt.major, tt.minor, tt.ok)
			}
		})
	}
}

func TestProgramsFacility(t *testing.T) {
	tests := []struct {
		goos    string
		version string
		wantKey string
		wantOK  bool
	}{
		{"windows", "10.0.19045", "programs_and_features", true},
		{"windows", "6.0.6000", "programs_and_features", true},
		{"windows", "5.1.2600", "add_remove_programs", true},
		{"windows", "5.0.2195", "", false},
		{"windows", "4.10", "", false},
		{"windows", "", "", false},
		{"darwin", "14.2.1", "applications_folder", true},
		{"linux", "22.04", "software_manager", true},
		{"linux", "", "", false},
		{"plan9", "4", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.goos+"_"+tt.version, func(t *testing.T) {
			f, ok := New(tt.goos, tt.version).ProgramsFacility()
			if ok != tt.wantOK || f.NameKey != tt.wantKey {
				t.Errorf("ProgramsFacility() = %q, %v, want %q, %v", f.NameKey, ok, tt.wantKey, tt.wantOK)
			}
		})
	}
}

func TestSupported(t *testing.T) {
	if New("windows", "5.0.2195").Supported() {
		t.Error("Windows 2000 should be unsupported")
	}
	if !New("windows", "5.1.2600").Supported() {
		t.Error("Windows XP should be supported")
	}
	if !New("linux", "").Supported() {
		t.Error("unknown linux version should be supported")
	}
}

func TestDetect_Cached(t *testing.T) {
	first := Detect(context.Background())
	second := Detect(context.Background())
	if first != second {
		t.Errorf("Detect not cached: %v vs %v", first, second)
	}
	if first.GOOS != runtime.GOOS {
		t.Errorf("GOOS = %q, want %q", first.GOOS, runtime.GOOS)
	}
}

func TestFacilityOpen_Empty(t *testing.T) {
	if err := (Facility{}).Open(); err == nil {
		t.Error("expected error for empty facility")
	}
}
