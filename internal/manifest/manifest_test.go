package manifest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const sample = `{
  "artifacts": {
    "mujs-x86_64-unknown-linux-gnu.tar.gz": {
      "name": "mujs",
      "target_triples": ["x86_64-unknown-linux-gnu"],
      "assets": [{"name": "mujs", "path": "mujs", "kind": "executable"}]
    },
    "mujs-x86_64-unknown-linux-gnu.tar.gz.sha256": {
      "kind": "checksum",
      "target_triples": ["x86_64-unknown-linux-gnu"]
    }
  }
}`

func TestParse(t *testing.T) {
	m, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.Len(t, m.Artifacts, 2)
}

func TestArtifact_EffectiveKindDefaultsToExecutableZip(t *testing.T) {
	var a Artifact
	require.Equal(t, "executable-zip", a.EffectiveKind())
	require.True(t, a.Installable())
}

func TestArtifact_ChecksumNotInstallable(t *testing.T) {
	a := Artifact{Kind: "checksum"}
	require.False(t, a.Installable())
}

func TestSelectForTriples_SkipsChecksumKeepsExecutableZip(t *testing.T) {
	m, err := Parse([]byte(sample))
	require.NoError(t, err)

	selected := m.SelectForTriples([]string{"x86_64-unknown-linux-gnu"},
		"https://github.com/ahaoboy/mujs-build/releases/latest/download/dist-manifest.json")

	require.Len(t, selected, 1)
	require.Equal(t, "mujs", selected[0].Name)
	require.Equal(t, "https://github.com/ahaoboy/mujs-build/releases/latest/download/mujs-x86_64-unknown-linux-gnu.tar.gz", selected[0].URL)
}

func TestSelectForTriples_NoMatchingTripleExcludes(t *testing.T) {
	m, err := Parse([]byte(sample))
	require.NoError(t, err)

	selected := m.SelectForTriples([]string{"aarch64-apple-darwin"}, "https://example.com/dist-manifest.json")
	require.Empty(t, selected)
}

func TestResolveArtifactURL_AbsoluteIDPassesThrough(t *testing.T) {
	u := resolveArtifactURL("https://cdn.example.com/foo.tar.gz", "https://example.com/dist-manifest.json")
	require.Equal(t, "https://cdn.example.com/foo.tar.gz", u)
}
