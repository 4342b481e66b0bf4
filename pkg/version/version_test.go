package version

import "testing"

func TestDefaults(t *testing.T) {
	if Version != "dev" {
		t.Errorf("default Version = %q, want %q", Version, "dev")
	}
	if GitCommit != "unknown" {
		t.Errorf("default GitCommit = %q, want %q", GitCommit, "unknown")
	}
}

func TestInfo(t *testing.T) {
	old := Version
	defer func() { Version = old }()
	Version = "v0.3.0"

	if got := Info(); got != "v0.3.0 (unknown) built unknown" {
		t.Errorf("Info() = %q", got)
	}
	if b := Get(); b.Version != "v0.3.0" || b.BuildDate != "unknown" {
		t.Errorf("Get() = %+v", b)
	}
}
