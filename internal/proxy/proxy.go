// Package proxy rewrites GitHub release download URLs through an
// optional mirror, preserving the filename component exactly. The
// default selector ("github") is the identity transform.
package proxy

import "fmt"

// Request is the input to a rewrite: the repository, release tag, and
// filename being downloaded.
type Request struct {
	Owner    string
	Repo     string
	Tag      string
	Filename string
}

// Rewriter maps a Request to a download URL.
type Rewriter func(Request) string

var registry = map[string]Rewriter{
	"github": githubRewriter,
	"":       githubRewriter,
	"gh-proxy": ghProxyRewriter,
	"hk":       hkMirrorRewriter,
}

// Resolve looks up the rewriter for selector, falling back to the
// identity GitHub transform for an unknown selector.
func Resolve(selector string) Rewriter {
	if r, ok := registry[selector]; ok {
		return r
	}
	return githubRewriter
}

func githubDownloadURL(req Request) string {
	tag := req.Tag
	if tag == "" {
		return fmt.Sprintf("https://github.com/%s/%s/releases/latest/download/%s", req.Owner, req.Repo, req.Filename)
	}
	return fmt.Sprintf("https://github.com/%s/%s/releases/download/%s/%s", req.Owner, req.Repo, tag, req.Filename)
}

func githubRewriter(req Request) string {
	return githubDownloadURL(req)
}

// ghProxyRewriter mirrors through ghproxy.com, a common GitHub release
// accelerator in regions with restricted GitHub access.
func ghProxyRewriter(req Request) string {
	return "https://ghproxy.com/" + githubDownloadURL(req)
}

// hkMirrorRewriter mirrors through a hk.gh-proxy.com-style regional mirror.
func hkMirrorRewriter(req Request) string {
	return "https://hk.gh-proxy.com/" + githubDownloadURL(req)
}

// ManifestURL builds the dist-manifest.json URL for a repo/tag, using the
// given selector's rewrite rule.
func ManifestURL(selector, owner, repo, tag string) string {
	rewriter := Resolve(selector)
	return rewriter(Request{Owner: owner, Repo: repo, Tag: tag, Filename: "dist-manifest.json"})
}
