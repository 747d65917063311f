package httputil

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/easy-install/ei/internal/buildinfo"
)

var userAgent = "ei/" + buildinfo.Version()

var (
	sharedOnce   sync.Once
	sharedClient *http.Client
	sharedOpts   ClientOptions
)

// Shared returns the process-wide HTTP client, lazily created on first use
// with opts. Once created, its configuration is fixed — callers that need
// a different timeout must pass it explicitly to Get/Fetch rather than
// reconfiguring the shared client.
func Shared(opts ClientOptions) *http.Client {
	sharedOnce.Do(func() {
		sharedOpts = opts
		sharedClient = NewSecureClient(opts)
	})
	return sharedClient
}

// Get performs an HTTP GET against url with the given timeout, retrying
// up to retry times with exponential backoff (100ms * 2^attempt). When the
// destination host is GitHub, an Authorization header is attached using
// the token resolved by GithubToken.
//
// The caller owns the returned response body and must close it.
func Get(url_ string, retry uint64, timeout time.Duration) (*http.Response, error) {
	client := *Shared(ClientOptions{Timeout: timeout})
	if timeout > 0 {
		client.Timeout = timeout
	}

	var lastErr error
	for attempt := uint64(0); attempt <= retry; attempt++ {
		resp, err := doGet(&client, url_)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if attempt < retry {
			time.Sleep(backoff(attempt))
		}
	}
	return nil, fmt.Errorf("GET %s failed after %d attempt(s): %w", url_, retry+1, lastErr)
}

func backoff(attempt uint64) time.Duration {
	return 100 * time.Millisecond * time.Duration(1<<attempt)
}

func doGet(client *http.Client, rawURL string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", userAgent)

	if u, err := url.Parse(rawURL); err == nil && IsGithubHost(u.Hostname()) {
		if tok, ok := GithubToken(); ok {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s timed out or failed: %w", rawURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s returned status %d", rawURL, resp.StatusCode)
	}
	return resp, nil
}

// GetBytes is Get followed by a full body read; the response is always
// closed before returning.
func GetBytes(url_ string, retry uint64, timeout time.Duration) ([]byte, error) {
	resp, err := Get(url_, retry, timeout)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
