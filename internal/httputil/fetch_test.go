package httputil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIsGithubHost(t *testing.T) {
	cases := map[string]bool{
		"github.com":                 true,
		"api.github.com":             true,
		"objects.githubusercontent.com": true,
		"githubusercontent.com":      true,
		"example.com":                false,
		"notgithub.com":              false,
		"evilgithub.com":             false,
	}
	for host, want := range cases {
		require.Equal(t, want, IsGithubHost(host), host)
	}
}

func TestBackoff_Exponential(t *testing.T) {
	require.Equal(t, 100*time.Millisecond, backoff(0))
	require.Equal(t, 200*time.Millisecond, backoff(1))
	require.Equal(t, 400*time.Millisecond, backoff(2))
}

func TestGetBytes_RetriesOnFailureThenSucceeds(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	sharedOnce = sync.Once{}
	body, err := GetBytes(server.URL, 5, 2*time.Second)
	require.NoError(t, err)
	require.Equal(t, "ok", string(body))
	require.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(3))
}

func TestGetBytes_GivesUpAfterRetryBudget(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	sharedOnce = sync.Once{}
	_, err := GetBytes(server.URL, 1, 2*time.Second)
	require.Error(t, err)
}
