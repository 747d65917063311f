// Package resolve scores a set of candidate release assets against the
// host platform and produces one download URL per logical binary name.
package resolve

import (
	"strings"

	"github.com/easy-install/ei/internal/archive"
	"github.com/easy-install/ei/internal/githubrepo"
	"github.com/easy-install/ei/internal/proxy"
	"github.com/easy-install/ei/internal/target"
)

// Selection is one resolved (logical name, download URL) pair.
type Selection struct {
	Name string
	URL  string
}

var installerExtensions = []string{
	".msi", ".msix", ".appx", ".deb", ".rpm", ".dmg", ".pkg", ".app", ".apk", ".ipa", ".appimage",
}

var textExtensions = []string{
	".txt", ".md", ".json", ".yaml", ".yml", ".toml", ".html", ".xml", ".log",
}

var checksumSuffixes = []string{
	".sha256sum", ".sha256", ".sha1", ".md5", ".sum", ".sig", ".asc", ".intoto.jsonl", ".jsonl",
}

var windowsExecutableExtensions = []string{".exe", ".ps1", ".bat", ".cmd", ".com", ".vbs"}

func shouldSkip(filename string) bool {
	if strings.HasPrefix(filename, ".") {
		return true
	}
	lower := strings.ToLower(filename)
	for _, list := range [][]string{installerExtensions, textExtensions, checksumSuffixes} {
		for _, ext := range list {
			if strings.HasSuffix(lower, ext) {
				return true
			}
		}
	}
	return false
}

func isWindowsExecutable(filename string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range windowsExecutableExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func hostHasWindows(hosts []target.HostTarget) bool {
	for _, h := range hosts {
		if h.OS == "windows" {
			return true
		}
	}
	return false
}

func isArmLinux(t target.HostTarget) bool {
	return t.OS == "linux" && (t.Arch == "arm" || t.Arch == "arm64")
}

type candidate struct {
	asset  githubrepo.Asset
	target target.HostTarget
	name   string
	rank   int
}

// Resolve filters and scores candidates against hosts, deduplicating by
// logical name, and rewrites each surviving URL through the named proxy
// selector. forcedTarget, when non-empty, pins the host filter to a
// single explicit triple rather than every auto-detected host triple.
func Resolve(candidates []githubrepo.Asset, hosts []target.HostTarget, forcedTarget string, owner, repo, tag, selector string) []Selection {
	survivors := rankedSurvivors(candidates, hosts, forcedTarget)

	seen := map[string]bool{}
	rewriter := proxy.Resolve(selector)
	var out []Selection
	for _, s := range survivors {
		if seen[s.name] {
			continue
		}
		seen[s.name] = true
		url := rewriter(proxy.Request{Owner: owner, Repo: repo, Tag: tag, Filename: s.asset.Name})
		out = append(out, Selection{Name: s.name, URL: url})
	}

	return out
}

// ResolveDirect filters and scores candidates the same way Resolve does,
// but keeps each surviving asset's own URL unchanged. It is for sources
// whose assets already carry their final download URL — nightly.link
// workflow artifacts — rather than one the GitHub proxy rewriter can
// reconstruct from owner/repo/tag/filename.
func ResolveDirect(candidates []githubrepo.Asset, hosts []target.HostTarget, forcedTarget string) []Selection {
	survivors := rankedSurvivors(candidates, hosts, forcedTarget)

	seen := map[string]bool{}
	var out []Selection
	for _, s := range survivors {
		if seen[s.name] {
			continue
		}
		seen[s.name] = true
		out = append(out, Selection{Name: s.name, URL: s.asset.BrowserDownloadURL})
	}

	return out
}

func rankedSurvivors(candidates []githubrepo.Asset, hosts []target.HostTarget, forcedTarget string) []candidate {
	var matches []candidate

	for _, asset := range candidates {
		if shouldSkip(asset.Name) {
			continue
		}
		if isWindowsExecutable(asset.Name) && !hostHasWindows(hosts) {
			continue
		}

		base := archive.NameNoExt(asset.Name)
		guesses := target.Guess(base)
		for _, g := range guesses {
			if !hostAccepts(g.Target, hosts, forcedTarget) {
				continue
			}
			rank := g.Rank
			if isArmLinux(g.Target) && g.Target.Abi == "musl" {
				rank += 10
			}
			matches = append(matches, candidate{asset: asset, target: g.Target, name: g.Name, rank: rank})
		}
	}

	if len(matches) == 0 {
		return nil
	}

	maxRank := matches[0].rank
	for _, m := range matches {
		if m.rank > maxRank {
			maxRank = m.rank
		}
	}

	var survivors []candidate
	for _, m := range matches {
		if m.rank == maxRank {
			survivors = append(survivors, m)
		}
	}
	return survivors
}

func hostAccepts(want target.HostTarget, hosts []target.HostTarget, forcedTarget string) bool {
	if forcedTarget != "" {
		return want.Triple() == forcedTarget
	}
	for _, h := range hosts {
		if h.Matches(want) {
			return true
		}
	}
	return false
}
