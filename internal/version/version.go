// Package version provides build-time version information.
package version

import (
	"fmt"
	"runtime"
)

// These variables are set at build time using -ldflags, e.g.
//
//	-ldflags "-X plan-takeoff/internal/version.Version=1.2.0"
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String returns a one-line description of the build.
func String() string {
	return fmt.Sprintf("plan-takeoff %s (commit %s, built %s, %s)", Version, short(GitCommit), BuildTime, runtime.Version())
}

func short(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}
