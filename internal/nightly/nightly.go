// Package nightly scrapes a nightly.link workflow-artifact page for the
// assets a GitHub Actions build published, since nightly.link has no
// JSON API of its own.
package nightly

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/easy-install/ei/internal/githubrepo"
	"github.com/easy-install/ei/internal/httputil"
)

// FetchAssets scrapes url (a nightly.link workflow-artifact page) for its
// listed (name, download URL) pairs. A page carrying no artifacts (an
// expired or non-existent workflow run) renders an "absent" marker
// instead of a table and yields an empty, non-error result.
func FetchAssets(url string, retry uint64, timeout time.Duration) ([]githubrepo.Asset, error) {
	body, err := httputil.GetBytes(url, retry, timeout)
	if err != nil {
		return nil, fmt.Errorf("fetching nightly.link page %s: %w", url, err)
	}
	if strings.Contains(string(body), `class="absent"`) {
		return nil, nil
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parsing nightly.link page %s: %w", url, err)
	}
	return extractAssets(doc), nil
}

// extractAssets walks the parsed artifact table looking for <tr> rows
// shaped like nightly.link's listing: a <th><a> carrying the artifact's
// filename, followed by a <td><a> carrying its download link.
func extractAssets(n *html.Node) []githubrepo.Asset {
	var assets []githubrepo.Asset
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			if a, ok := rowAsset(n); ok {
				assets = append(assets, a)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return assets
}

// rowAsset extracts (name, URL) from a single <tr>, pairing the first
// <th><a> it finds with the first <td><a> that follows it.
func rowAsset(tr *html.Node) (githubrepo.Asset, bool) {
	var name, url string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "th":
			if name == "" {
				name = anchorText(c)
			}
		case "td":
			if url == "" {
				url = anchorHref(c)
			}
		}
	}
	if name == "" || url == "" {
		return githubrepo.Asset{}, false
	}
	return githubrepo.Asset{Name: name, BrowserDownloadURL: url}, true
}

func anchorText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func anchorHref(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "a" {
		for _, attr := range n.Attr {
			if attr.Key == "href" {
				return attr.Val
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if href := anchorHref(c); href != "" {
			return href
		}
	}
	return ""
}
