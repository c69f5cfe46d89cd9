// Package version holds finch's build identity.
package version

import "runtime/debug"

// Overridable at build time:
// go build -ldflags "-X finch/internal/version.Version=0.2.0 -X finch/internal/version.Commit=abc123"
var (
	Version   = "0.1.0"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// readBuildInfo is swapped in tests
var readBuildInfo = debug.ReadBuildInfo

// commit returns Commit, falling back to the VCS revision the toolchain embedded
func commit() string {
	if Commit != "unknown" {
		return Commit
	}
	info, ok := readBuildInfo()
	if !ok {
		return Commit
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			return s.Value
		}
	}
	return Commit
}

// Info returns the version with an abbreviated commit when one is known, e.g. "0.1.0 (abc1234)"
func Info() string {
	if c := commit(); c != "unknown" && len(c) > 7 {
		return Version + " (" + c[:7] + ")"
	}
	return Version
}

// Full returns the multi-line version report printed by --version
func Full() string {
	return "finch " + Version + "\n" +
		"commit: " + commit() + "\n" +
		"built:  " + BuildDate
}
