package download

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFetch_ReturnsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("payload-bytes"))
	}))
	defer server.Close()

	body, err := Fetch(server.URL, 1, 2*time.Second, true)
	require.NoError(t, err)
	require.Equal(t, []byte("payload-bytes"), body)
}

func TestFetch_PropagatesErrorOnExhaustedRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := Fetch(server.URL, 0, 2*time.Second, true)
	require.Error(t, err)
}

func TestShouldShowProgress_RespectsQuiet(t *testing.T) {
	orig := IsTerminalFunc
	defer func() { IsTerminalFunc = orig }()
	IsTerminalFunc = func(uintptr) bool { return true }

	require.True(t, ShouldShowProgress(false))
	require.False(t, ShouldShowProgress(true))
}

func TestShouldShowProgress_FalseWhenNotATerminal(t *testing.T) {
	orig := IsTerminalFunc
	defer func() { IsTerminalFunc = orig }()
	IsTerminalFunc = func(uintptr) bool { return false }

	require.False(t, ShouldShowProgress(false))
}

func TestProgressWriter_FormatBytes(t *testing.T) {
	require.Equal(t, "512B", formatBytes(512))
	require.Equal(t, "1.0KB", formatBytes(1024))
	require.Equal(t, "1.0MB", formatBytes(1024*1024))
}

func TestProgressWriter_FormatDuration(t *testing.T) {
	require.Equal(t, "1:00", formatDuration(60))
	require.Equal(t, "1:01:01", formatDuration(3661))
}
