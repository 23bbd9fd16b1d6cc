// Package version reports the build identity of greelink binaries.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"
)

// These variables can be set at build time via ldflags:
//
//	go build -ldflags="-X github.com/muurk/greelink/internal/version.Version=v0.3.0 \
//	                   -X github.com/muurk/greelink/internal/version.Commit=abc123"
//
// Otherwise they are filled from the VCS stamp in the build info, or fall back to
// "dev" and "unknown".
var (
	// Version is the semantic version of the application
	Version = ""
	// Commit is the short git commit hash
	Commit = ""
	// Date is the commit or build date, YYYY-MM-DD
	Date = ""
)

func init() {
	if Version == "" || Commit == "" || Date == "" {
		fill(readVCS())
	}
	if Version == "" {
		Version = "dev"
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

type vcsInfo struct {
	revision string
	modified bool
	time     time.Time
}

func readVCS() vcsInfo {
	var v vcsInfo
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return v
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			v.revision = setting.Value
		case "vcs.modified":
			v.modified = setting.Value == "true"
		case "vcs.time":
			if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
				v.time = t
			}
		}
	}
	return v
}

// fill sets the unset variables from v.
func fill(v vcsInfo) {
	if Commit == "" && v.revision != "" {
		Commit = v.revision
		if len(Commit) > 7 {
			Commit = Commit[:7]
		}
		if v.modified {
			Commit += "-dirty"
		}
	}
	if !v.time.IsZero() {
		if Date == "" {
			Date = v.time.UTC().Format("2006-01-02")
		}
		if Version == "" {
			Version = "dev-" + v.time.UTC().Format("20060102")
		}
	}
}

// Full returns the version line printed by the CLI.
func Full() string {
	s := fmt.Sprintf("%s (commit: %s", Version, Commit)
	if Date != "" {
		s += ", " + Date
	}
	return s + ", " + runtime.Version() + ")"
}
