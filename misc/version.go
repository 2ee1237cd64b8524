// Package misc keeps application identity: name, version and VCS revision.
package misc

import (
	"runtime/debug"
)

const appName = "cssuss"

var (
	// version is set via ldflags: -X cssuss/misc.version=1.2.3
	version = "dev"
	// githash is set via ldflags, otherwise taken from build information.
	githash = ""
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

// GetGitHash returns VCS revision the binary was built from, with "-dirty"
// suffix for modified trees.
func GetGitHash() string {
	if githash != "" {
		return githash
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	rev, modified := "unknown", false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	if modified {
		return rev + "-dirty"
	}
	return rev
}
