package version

import (
	"fmt"
	"runtime"
	"time"
)

// Values below are overridden at link time, e.g.
// -ldflags "-X github.com/telekom/nestctl/pkg/version.Version=v0.3.0".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = runtime.Version()
	Platform  = runtime.GOOS + "/" + runtime.GOARCH
)

// BuildInfo is what `nestctl version -o json|yaml` prints.
type BuildInfo struct {
	Version   string    `json:"version"`
	GitCommit string    `json:"gitCommit"`
	BuildDate string    `json:"buildDate"`
	GoVersion string    `json:"goVersion"`
	Platform  string    `json:"platform"`
	BuildTime time.Time `json:"buildTime,omitempty"`
}

func GetBuildInfo() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: GoVersion,
		Platform:  Platform,
	}
	if t, err := time.Parse(time.RFC3339, BuildDate); err == nil {
		info.BuildTime = t
	}
	return info
}

// String renders the single line shown by `nestctl version`.
func (b BuildInfo) String() string {
	return fmt.Sprintf("nestctl %s (commit: %s, built: %s)", b.Version, b.GitCommit, b.BuildDate)
}

// UserAgent is sent with every Device Access request.
func UserAgent() string {
	return fmt.Sprintf("nestctl/%s (%s)", Version, Platform)
}
