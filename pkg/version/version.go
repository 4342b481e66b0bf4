package version

// Version, GitCommit, and BuildDate are set at build time via ldflags:
//
//	go build -ldflags "-X github.com/newtron-network/newtmn/pkg/version.Version=v0.3.0 \
//	  -X github.com/newtron-network/newtmn/pkg/version.GitCommit=abc1234 \
//	  -X github.com/newtron-network/newtmn/pkg/version.BuildDate=2026-01-01T00:00:00Z" ./cmd/newtmn
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// BuildInfo is the machine-readable form printed by "newtmn version --json".
type BuildInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
}

// Get returns the build information.
func Get() BuildInfo {
	return BuildInfo{Version: Version, GitCommit: GitCommit, BuildDate: BuildDate}
}

// Info returns a formatted version string for display.
func Info() string {
	return Version + " (" + GitCommit + ") built " + BuildDate
}
