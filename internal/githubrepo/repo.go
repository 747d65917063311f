// Package githubrepo resolves a GitHub repository reference to its
// latest tag and enumerates its release assets, cascading across the
// REST API, the releases HTML page, and the jsDelivr metadata API so a
// single outage doesn't block resolution.
package githubrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"

	"github.com/easy-install/ei/internal/httputil"
)

// Repo identifies a GitHub repository and, optionally, a release tag.
// An empty Tag means "latest".
type Repo struct {
	Owner string
	Name  string
	Tag   string
}

// Asset is one release asset: its filename and download URL. Equality is
// by Name; Assets below coalesces on that key.
type Asset struct {
	Name               string
	BrowserDownloadURL string
}

// Assets is a set of Asset values keyed by name, preserving first-seen
// order for deterministic iteration.
type Assets struct {
	order []string
	byName map[string]Asset
}

// NewAssets builds an empty Assets set, which deduplicates by name (first
// insertion wins).
func NewAssets() *Assets {
	return &Assets{byName: map[string]Asset{}}
}

// Add inserts asset, coalescing with any existing entry of the same name
// (the existing entry is kept).
func (a *Assets) Add(asset Asset) {
	if _, exists := a.byName[asset.Name]; exists {
		return
	}
	a.order = append(a.order, asset.Name)
	a.byName[asset.Name] = asset
}

// List returns the assets in first-seen order.
func (a *Assets) List() []Asset {
	out := make([]Asset, 0, len(a.order))
	for _, name := range a.order {
		out = append(out, a.byName[name])
	}
	return out
}

func (a *Assets) Len() int { return len(a.order) }

func newGithubClient(timeout time.Duration) *github.Client {
	httpClient := httputil.Shared(httputil.ClientOptions{Timeout: timeout})
	client := github.NewClient(httpClient)
	if tok, ok := httputil.GithubToken(); ok {
		client = client.WithAuthToken(tok)
	}
	return client
}

// ResolveLatestTag finds the latest release tag for a repo with no tag
// pinned, cascading the REST latest-release lookup, then the
// releases-HTML scrape, then jsDelivr metadata.
func ResolveLatestTag(ctx context.Context, owner, name string, retry uint64, timeout time.Duration) (string, error) {
	client := newGithubClient(timeout)
	if rel, _, err := client.Repositories.GetLatestRelease(ctx, owner, name); err == nil && rel.GetTagName() != "" {
		return rel.GetTagName(), nil
	}

	if tag, ok := latestTagFromHTML(owner, name, retry, timeout); ok {
		return tag, nil
	}

	if tag, ok := latestTagFromJsDelivr(owner, name, retry, timeout); ok {
		return tag, nil
	}

	return "", fmt.Errorf("could not resolve latest tag for %s/%s from REST, HTML, or jsDelivr", owner, name)
}

var releasesTagHrefRe = func(owner, name string) *regexp.Regexp {
	return regexp.MustCompile(`href="/` + regexp.QuoteMeta(owner) + `/` + regexp.QuoteMeta(name) + `/releases/tag/([^"]+)"`)
}

func latestTagFromHTML(owner, name string, retry uint64, timeout time.Duration) (string, bool) {
	url := fmt.Sprintf("https://github.com/%s/%s/releases", owner, name)
	body, err := httputil.GetBytes(url, retry, timeout)
	if err != nil {
		return "", false
	}
	m := releasesTagHrefRe(owner, name).FindSubmatch(body)
	if m == nil {
		return "", false
	}
	return string(m[1]), true
}

type jsDelivrPackage struct {
	Tags struct {
		Latest string `json:"latest"`
	} `json:"tags"`
	Versions []string `json:"versions"`
}

func latestTagFromJsDelivr(owner, name string, retry uint64, timeout time.Duration) (string, bool) {
	url := fmt.Sprintf("https://data.jsdelivr.com/v1/package/gh/%s/%s", owner, name)
	return latestTagFromJsDelivrURL(url, retry, timeout)
}

func latestTagFromJsDelivrURL(url string, retry uint64, timeout time.Duration) (string, bool) {
	body, err := httputil.GetBytes(url, retry, timeout)
	if err != nil {
		return "", false
	}
	var pkg jsDelivrPackage
	if err := json.Unmarshal(body, &pkg); err != nil {
		return "", false
	}
	if pkg.Tags.Latest != "" {
		return pkg.Tags.Latest, true
	}
	if len(pkg.Versions) > 0 {
		return pkg.Versions[0], true
	}
	return "", false
}

// EnumerateAssets lists the release assets for a repo at tag (or latest
// when tag is empty), cascading REST then the expanded-assets HTML page.
func EnumerateAssets(ctx context.Context, owner, name, tag string, retry uint64, timeout time.Duration) (*Assets, error) {
	client := newGithubClient(timeout)

	var release *github.RepositoryRelease
	var err error
	if tag == "" {
		release, _, err = client.Repositories.GetLatestRelease(ctx, owner, name)
	} else {
		release, _, err = client.Repositories.GetReleaseByTag(ctx, owner, name, tag)
	}
	if err == nil && release != nil {
		assets := NewAssets()
		for _, a := range release.Assets {
			assets.Add(Asset{Name: a.GetName(), BrowserDownloadURL: a.GetBrowserDownloadURL()})
		}
		if assets.Len() > 0 {
			return assets, nil
		}
	}

	resolvedTag := tag
	if resolvedTag == "" {
		resolvedTag, err = ResolveLatestTag(ctx, owner, name, retry, timeout)
		if err != nil {
			return nil, err
		}
	}

	assets, err := assetsFromExpandedHTML(owner, name, resolvedTag, retry, timeout)
	if err != nil {
		return nil, fmt.Errorf("asset enumeration failed via both REST and HTML for %s/%s@%s: %w", owner, name, resolvedTag, err)
	}
	return assets, nil
}

var downloadHrefRe = regexp.MustCompile(`href="(/[\w.-]+/[\w.-]+/releases/download/[^"]+)"[^>]*rel="nofollow"`)

func assetsFromExpandedHTML(owner, name, tag string, retry uint64, timeout time.Duration) (*Assets, error) {
	url := fmt.Sprintf("https://github.com/%s/%s/releases/expanded_assets/%s", owner, name, tag)
	body, err := httputil.GetBytes(url, retry, timeout)
	if err != nil {
		return nil, err
	}

	assets := NewAssets()
	for _, m := range downloadHrefRe.FindAllSubmatch(body, -1) {
		href := string(m[1])
		filename := href[strings.LastIndex(href, "/")+1:]
		assets.Add(Asset{Name: filename, BrowserDownloadURL: "https://github.com" + href})
	}
	return assets, nil
}
