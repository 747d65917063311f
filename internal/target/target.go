// Package target models the host platform triple and scores release
// asset filenames against it. This is ei's implementation of the
// "target-guessing collaborator" spec.md names as an external interface —
// here provided as a default, swappable implementation.
package target

import (
	"regexp"
	"runtime"
	"strings"

	"github.com/easy-install/ei/internal/platform"
)

// HostTarget identifies an operating system, processor architecture, and
// (on Linux) C library implementation.
type HostTarget struct {
	OS   string // "linux", "darwin", "windows"
	Arch string // "amd64", "arm64", "386", "arm"
	Abi  string // "musl", "gnu", "" (non-Linux)
}

// Triple renders the Rust-style target triple ei's asset names are keyed
// by, e.g. "x86_64-unknown-linux-musl", "aarch64-apple-darwin".
func (t HostTarget) Triple() string {
	arch := rustArch(t.Arch)
	switch t.OS {
	case "linux":
		abi := t.Abi
		if abi == "" {
			abi = "gnu"
		}
		return arch + "-unknown-linux-" + abi
	case "darwin":
		return arch + "-apple-darwin"
	case "windows":
		return arch + "-pc-windows-msvc"
	default:
		return arch + "-unknown-" + t.OS
	}
}

func rustArch(goArch string) string {
	switch goArch {
	case "amd64":
		return "x86_64"
	case "386":
		return "i686"
	case "arm64":
		return "aarch64"
	case "arm":
		return "armv7"
	default:
		return goArch
	}
}

// DetectHost returns the triples a binary can run on for this host process.
// On Linux, a host running glibc can still run statically-linked musl
// binaries, so both triples are offered; a musl host can only run musl
// binaries.
func DetectHost() []HostTarget {
	goos, goarch := runtime.GOOS, runtime.GOARCH

	if goos != "linux" {
		return []HostTarget{{OS: goos, Arch: goarch}}
	}

	libc := platform.DetectLibc()
	if libc == "musl" {
		return []HostTarget{{OS: goos, Arch: goarch, Abi: "musl"}}
	}
	return []HostTarget{
		{OS: goos, Arch: goarch, Abi: "gnu"},
		{OS: goos, Arch: goarch, Abi: "musl"},
	}
}

// Match is the result of guessing a platform and logical tool name from an
// asset's base filename (extension already stripped by the caller).
type Match struct {
	Target HostTarget
	Name   string
	Rank   int
}

var osTokens = []struct {
	pattern *regexp.Regexp
	os      string
}{
	{regexp.MustCompile(`(?i)(^|[._-])(linux|unknown-linux-\w+)([._-]|$)`), "linux"},
	{regexp.MustCompile(`(?i)(^|[._-])(darwin|macos|osx|apple-darwin)([._-]|$)`), "darwin"},
	{regexp.MustCompile(`(?i)(^|[._-])(windows|win32|win64|win|pc-windows-\w+)([._-]|$)`), "windows"},
}

var archTokens = []struct {
	pattern *regexp.Regexp
	arch    string
}{
	{regexp.MustCompile(`(?i)(^|[._-])(x86_64|amd64|x64)([._-]|$)`), "amd64"},
	{regexp.MustCompile(`(?i)(^|[._-])(aarch64|arm64)([._-]|$)`), "arm64"},
	{regexp.MustCompile(`(?i)(^|[._-])(armv7\w*|armhf|arm)([._-]|$)`), "arm"},
	{regexp.MustCompile(`(?i)(^|[._-])(i686|i386|x86|386)([._-]|$)`), "386"},
}

var abiTokens = []struct {
	pattern *regexp.Regexp
	abi     string
}{
	{regexp.MustCompile(`(?i)(^|[._-])(musl)([._-]|$)`), "musl"},
	{regexp.MustCompile(`(?i)(^|[._-])(gnu|glibc)([._-]|$)`), "gnu"},
}

// Guess scores base (an asset filename with its extension already
// stripped) against every (os, arch) token combination it can find. It
// returns zero or more candidate matches, each ranked by how many tokens
// (os, arch, abi) were positively identified — more specific matches rank
// higher. The "logical name" is base with every matched token removed and
// separators collapsed.
func Guess(base string) []Match {
	var foundOS []string
	for _, tok := range osTokens {
		if tok.pattern.MatchString(base) {
			foundOS = append(foundOS, tok.os)
		}
	}
	var foundArch []string
	for _, tok := range archTokens {
		if tok.pattern.MatchString(base) {
			foundArch = append(foundArch, tok.arch)
		}
	}
	// A filename carrying neither an OS nor an architecture token (e.g. a
	// plain "yt-dlp" release asset) gives us nothing to score against, so
	// it yields no match and the resolver does not select it.
	if len(foundOS) == 0 && len(foundArch) == 0 {
		return nil
	}
	if len(foundOS) == 0 {
		foundOS = []string{""}
	}
	if len(foundArch) == 0 {
		foundArch = []string{""}
	}

	var foundAbi []string
	for _, tok := range abiTokens {
		if tok.pattern.MatchString(base) {
			foundAbi = append(foundAbi, tok.abi)
		}
	}
	if len(foundAbi) == 0 {
		foundAbi = []string{""}
	}

	name := stripTokens(base)

	var matches []Match
	for _, os_ := range foundOS {
		for _, arch := range foundArch {
			for _, abi := range foundAbi {
				rank := 0
				if os_ != "" {
					rank++
				}
				if arch != "" {
					rank++
				}
				if abi != "" {
					rank++
				}
				matches = append(matches, Match{
					Target: HostTarget{OS: os_, Arch: arch, Abi: abi},
					Name:   name,
					Rank:   rank,
				})
			}
		}
	}
	return matches
}

var allTokenPatterns = func() []*regexp.Regexp {
	var all []*regexp.Regexp
	for _, t := range osTokens {
		all = append(all, t.pattern)
	}
	for _, t := range archTokens {
		all = append(all, t.pattern)
	}
	for _, t := range abiTokens {
		all = append(all, t.pattern)
	}
	return all
}()

func stripTokens(base string) string {
	out := base
	for _, p := range allTokenPatterns {
		out = p.ReplaceAllStringFunc(out, func(m string) string {
			// Preserve a single separator boundary so neighbouring
			// tokens don't get glued together.
			if strings.HasPrefix(m, "-") || strings.HasPrefix(m, "_") || strings.HasPrefix(m, ".") {
				return string(m[0])
			}
			return ""
		})
	}
	out = regexp.MustCompile(`[._-]{2,}`).ReplaceAllString(out, "-")
	out = strings.Trim(out, "._-")
	if out == "" {
		out = base
	}
	return out
}

// Matches reports whether host can run a binary built for want, applying
// the musl-over-gnu portability rule: a musl host cannot run a binary
// that requires glibc, but the reverse (musl binary on glibc host) is
// fine since it's statically linked.
func (host HostTarget) Matches(want HostTarget) bool {
	if want.OS != "" && host.OS != want.OS {
		return false
	}
	if want.Arch != "" && host.Arch != want.Arch {
		return false
	}
	if host.OS != "linux" || want.Abi == "" {
		return true
	}
	if host.Abi == "musl" {
		return want.Abi == "musl"
	}
	return true
}
