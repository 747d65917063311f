// Package reference classifies a user-supplied string into one of the
// shapes ei knows how to resolve: a local file, a direct archive or
// executable URL, a distribution-manifest URL, a GitHub repo/release
// reference, or a nightly-build link.
package reference

import (
	"fmt"
	"os"
	"path"
	"regexp"
	"strings"
)

// Kind discriminates the Reference variants.
type Kind int

const (
	KindLocalFile Kind = iota
	KindDirectArchiveURL
	KindDirectExecutableURL
	KindDistManifestURL
	KindRepo
	KindNightlyLink
)

// Reference is the tagged classification result. Only the fields
// relevant to Kind are populated.
type Reference struct {
	Kind Kind

	// KindLocalFile
	Path string

	// KindDirectArchiveURL, KindDirectExecutableURL, KindDistManifestURL, KindNightlyLink
	URL string

	// KindRepo
	Owner string
	Name  string
	Tag   string // empty means "latest"
}

var archiveExtensions = []string{
	".tar.gz", ".tar.bz2", ".tar.xz", ".tar.zst",
	".tgz", ".tbz2", ".txz", ".tzst",
	".tar", ".zip",
}

var windowsExecutableExtensions = []string{".exe", ".ps1", ".bat", ".cmd", ".com", ".vbs"}

var (
	nightlyLinkRe = regexp.MustCompile(`^https://nightly\.link/[^/]+/[^/]+/workflows/[^/]+/[^/?]+/[^/?]+(\?preview)?$`)

	repoURLRe = regexp.MustCompile(
		`^https://github\.com/(?P<owner>[\w.-]+)/(?P<repo>[\w.-]+?)(\.git)?` +
			`(/releases(/(tag|download)/(?P<tag>[^/]+))?(/[^/]+)?)?/?$`,
	)

	shortFormRe = regexp.MustCompile(`^(?P<owner>[\w.-]+)/(?P<repo>[\w.-]+)(@(?P<tag>[\w.-]+))?$`)

	releaseDownloadShapeRe = regexp.MustCompile(`^https://github\.com/[\w.-]+/[\w.-]+/releases/`)
)

// Parse classifies input, returning an error wrapping errUnresolvable
// when nothing matches.
func Parse(input string) (Reference, error) {
	input = strings.TrimSpace(input)

	if strings.HasSuffix(strings.ToLower(input), ".json") {
		return Reference{Kind: KindDistManifestURL, URL: input}, nil
	}

	if nightlyLinkRe.MatchString(input) {
		return Reference{Kind: KindNightlyLink, URL: input}, nil
	}

	if m := repoURLRe.FindStringSubmatch(input); m != nil {
		owner := m[repoURLRe.SubexpIndex("owner")]
		repo := strings.TrimSuffix(m[repoURLRe.SubexpIndex("repo")], ".git")
		tag := m[repoURLRe.SubexpIndex("tag")]
		return Reference{Kind: KindRepo, Owner: owner, Name: repo, Tag: tag}, nil
	}

	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		filename := path.Base(stripQuery(input))
		if hasArchiveExtension(filename) {
			return Reference{Kind: KindDirectArchiveURL, URL: input}, nil
		}
		if isExecutableLike(input, filename) {
			return Reference{Kind: KindDirectExecutableURL, URL: input}, nil
		}
		return Reference{}, fmt.Errorf("%w: %q looks like a URL but matches no known asset shape", errUnresolvable, input)
	}

	if m := shortFormRe.FindStringSubmatch(input); m != nil {
		owner := m[shortFormRe.SubexpIndex("owner")]
		repo := m[shortFormRe.SubexpIndex("repo")]
		tag := m[shortFormRe.SubexpIndex("tag")]
		return Reference{Kind: KindRepo, Owner: owner, Name: repo, Tag: tag}, nil
	}

	if fileExists(input) {
		return Reference{Kind: KindLocalFile, Path: input}, nil
	}

	return Reference{}, fmt.Errorf("%w: %q", errUnresolvable, input)
}

var errUnresolvable = fmt.Errorf("unresolvable reference")

func stripQuery(u string) string {
	if idx := strings.IndexAny(u, "?#"); idx >= 0 {
		return u[:idx]
	}
	return u
}

func hasArchiveExtension(filename string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range archiveExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func isExecutableLike(url, filename string) bool {
	if !releaseDownloadShapeRe.MatchString(url) {
		return false
	}
	lower := strings.ToLower(filename)
	for _, ext := range windowsExecutableExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return !strings.Contains(filename, ".")
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// Display renders a Repo reference back to its short form: "owner/name"
// or "owner/name@tag". It is the inverse of the Repo-producing branches
// of Parse, and round-trips: Parse(Display(r)) == r for every valid Repo.
func (r Reference) Display() string {
	if r.Kind != KindRepo {
		return ""
	}
	if r.Tag == "" {
		return fmt.Sprintf("%s/%s", r.Owner, r.Name)
	}
	return fmt.Sprintf("%s/%s@%s", r.Owner, r.Name, r.Tag)
}
