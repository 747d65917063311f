// Package buildinfo reports ei's own version, for the CLI's --version
// flag and for the User-Agent header ei sends on every outbound
// request (so a registry or mirror's access log can tell which ei
// build made a request without the caller adding a flag for it).
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

// shortHashLen is the number of leading hex characters of a VCS
// revision kept in a dev pseudo-version, matching a standard Git short
// hash.
const shortHashLen = 12

// Version returns the version string for the current build.
//
// For tagged releases (built with `go install` against a tag), it
// returns the tag itself (e.g. "v0.1.0"). For anything else it falls
// back to devVersion's pseudo-version, or "unknown" if the Go runtime
// can't report build info at all (possible under non-module builds).
func Version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	return devVersion(info)
}

// devVersion builds a "dev-<hash>[-dirty]" pseudo-version out of the
// VCS settings Go's build tooling stamps into the binary, or "dev" if
// no revision was stamped (e.g. building outside a VCS checkout).
func devVersion(info *debug.BuildInfo) string {
	revision, dirty := vcsState(info)
	if revision == "" {
		return "dev"
	}
	if len(revision) > shortHashLen {
		revision = revision[:shortHashLen]
	}
	v := fmt.Sprintf("dev-%s", revision)
	if dirty {
		v += "-dirty"
	}
	return v
}

// vcsState pulls the revision hash and working-tree-modified flag out
// of the build info's free-form settings list.
func vcsState(info *debug.BuildInfo) (revision string, modified bool) {
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}
	return revision, modified
}
