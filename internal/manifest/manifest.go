// Package manifest models a cargo-dist-style distribution manifest
// (dist-manifest.json): a map of artifact id to artifact metadata,
// selectable by host target triple.
package manifest

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"
)

// DistManifest is the top-level manifest document.
type DistManifest struct {
	Artifacts map[string]Artifact `json:"artifacts"`
}

// Artifact describes one distributable bundle: its kind, target triples,
// and the assets it contains. An artifact with an empty Kind is treated
// as "executable-zip" — the only installable kind.
type Artifact struct {
	Kind          string   `json:"kind,omitempty"`
	Name          string   `json:"name,omitempty"`
	TargetTriples []string `json:"target_triples,omitempty"`
	Assets        []Asset  `json:"assets,omitempty"`
}

// EffectiveKind returns Kind, defaulting to "executable-zip" when absent.
func (a Artifact) EffectiveKind() string {
	if a.Kind == "" {
		return "executable-zip"
	}
	return a.Kind
}

// Installable reports whether this artifact's kind should be downloaded
// and installed. Only executable-zip artifacts are; symbols, installers,
// checksums, and source tarballs are not.
func (a Artifact) Installable() bool {
	return a.EffectiveKind() == "executable-zip"
}

// Asset is one file inside an artifact (executable, library, doc).
type Asset struct {
	ExecutableName string `json:"executable_name,omitempty"`
	Name           string `json:"name,omitempty"`
	Path           string `json:"path,omitempty"`
	Kind           string `json:"kind,omitempty"`
}

// Parse decodes a dist-manifest.json document.
func Parse(data []byte) (DistManifest, error) {
	var m DistManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return DistManifest{}, err
	}
	if m.Artifacts == nil {
		m.Artifacts = map[string]Artifact{}
	}
	return m, nil
}

// Selected is one artifact chosen for the host, with its resolved
// download URL and logical name.
type Selected struct {
	ArtifactID string
	Name       string
	URL        string
}

// SelectForTriples filters the manifest's artifacts down to the
// installable ones whose target_triples intersects hostTriples, resolving
// each selected artifact's download URL: the artifact id itself when it is
// an absolute URL, otherwise manifestURL with its last path segment
// replaced by the artifact id.
func (m DistManifest) SelectForTriples(hostTriples []string, manifestURL string) []Selected {
	wanted := make(map[string]bool, len(hostTriples))
	for _, t := range hostTriples {
		wanted[t] = true
	}

	var out []Selected
	for id, art := range m.Artifacts {
		if !art.Installable() {
			continue
		}
		if !intersects(art.TargetTriples, wanted) {
			continue
		}
		name := art.Name
		if name == "" {
			name = logicalNameFromID(id)
		}
		out = append(out, Selected{
			ArtifactID: id,
			Name:       name,
			URL:        resolveArtifactURL(id, manifestURL),
		})
	}
	return out
}

func intersects(triples []string, wanted map[string]bool) bool {
	for _, t := range triples {
		if wanted[t] {
			return true
		}
	}
	return false
}

func resolveArtifactURL(artifactID, manifestURL string) string {
	if u, err := url.Parse(artifactID); err == nil && u.IsAbs() {
		return artifactID
	}
	base, err := url.Parse(manifestURL)
	if err != nil {
		return artifactID
	}
	dir := path.Dir(base.Path)
	base.Path = path.Join(dir, artifactID)
	return base.String()
}

func logicalNameFromID(id string) string {
	base := path.Base(id)
	if idx := strings.IndexByte(base, '.'); idx > 0 {
		return base[:idx]
	}
	return base
}
