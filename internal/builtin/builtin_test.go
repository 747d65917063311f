package builtin

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFetchManifestFromURL_SubstitutesTagIntoLatestURLs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"artifacts":{"https://github.com/pnpm/pnpm/releases/latest/download/pnpm-linux-x64":{"target_triples":["x86_64-unknown-linux-gnu"]}}}`))
	}))
	defer server.Close()

	m, err := fetchManifestFromURL(server.URL, "v9.15.3", 1, 2*time.Second)
	require.NoError(t, err)
	_, ok := m.Artifacts["https://github.com/pnpm/pnpm/releases/download/v9.15.3/pnpm-linux-x64"]
	require.True(t, ok)
}

func TestFetchManifestFromURL_LeavesLatestUntouchedWhenNoTag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"artifacts":{"https://github.com/pnpm/pnpm/releases/latest/download/pnpm-linux-x64":{}}}`))
	}))
	defer server.Close()

	m, err := fetchManifestFromURL(server.URL, "", 1, 2*time.Second)
	require.NoError(t, err)
	_, ok := m.Artifacts["https://github.com/pnpm/pnpm/releases/latest/download/pnpm-linux-x64"]
	require.True(t, ok)
}

func TestLookupName_MatchesRepoURLKey(t *testing.T) {
	registryCached = map[string]string{
		"https://github.com/pnpm/pnpm": "pnpm",
	}
	registryOnce.Do(func() {}) // mark satisfied so loadRegistry returns registryCached as-is

	name, ok := LookupName("pnpm", "pnpm", 1, time.Second)
	require.True(t, ok)
	require.Equal(t, "pnpm", name)

	_, ok = LookupName("nonexistent", "nope", 1, time.Second)
	require.False(t, ok)
}
