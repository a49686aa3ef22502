package refetch

import (
	"strings"
	"testing"
)

func TestVersionString(t *testing.T) {
	s := VersionString()
	if !strings.HasPrefix(s, "refetch ") {
		t.Errorf("Unexpected version string: %q", s)
	}
	if !strings.Contains(s, Version) {
		t.Errorf("Version string missing version: %q", s)
	}
}

func TestVersionInfo(t *testing.T) {
	info := VersionInfo()
	for _, key := range []string{"version", "commit", "build_date", "go_version"} {
		if info[key] == "" {
			t.Errorf("VersionInfo missing %q", key)
		}
	}
	if info["version"] != Version {
		t.Errorf("version = %q, want %q", info["version"], Version)
	}
}
