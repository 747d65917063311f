package httputil

import (
	"bufio"
	"context"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

const credentialDiscoveryTimeout = 5 * time.Second

var (
	tokenOnce   sync.Once
	tokenCached string
	tokenFound  bool
)

// GithubToken returns the GitHub token resolved from, in order: `gh auth
// token`, `git credential fill`, then the GITHUB_TOKEN environment
// variable. The result (including a "no token available" result) is
// cached process-wide so the discovery chain runs only once.
func GithubToken() (string, bool) {
	tokenOnce.Do(func() {
		tokenCached, tokenFound = discoverGithubToken()
	})
	return tokenCached, tokenFound
}

func discoverGithubToken() (string, bool) {
	if tok, ok := tokenFromGhCLI(); ok {
		return tok, true
	}
	if tok, ok := tokenFromGitCredential(); ok {
		return tok, true
	}
	if tok := os.Getenv("GITHUB_TOKEN"); tok != "" {
		return tok, true
	}
	return "", false
}

func tokenFromGhCLI() (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), credentialDiscoveryTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "gh", "auth", "token").Output()
	if err != nil {
		return "", false
	}
	tok := strings.TrimSpace(string(out))
	if tok == "" {
		return "", false
	}
	return tok, true
}

func tokenFromGitCredential() (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), credentialDiscoveryTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "credential", "fill")
	cmd.Stdin = strings.NewReader("protocol=https\nhost=github.com\n\n")
	out, err := cmd.Output()
	if err != nil {
		return "", false
	}

	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for scanner.Scan() {
		line := scanner.Text()
		if after, ok := strings.CutPrefix(line, "password="); ok {
			tok := strings.TrimSpace(after)
			if tok != "" {
				return tok, true
			}
		}
	}
	return "", false
}

// IsGithubHost reports whether host is github.com, any *.github.com,
// githubusercontent.com, or any *.githubusercontent.com. Only these hosts
// receive the Authorization header built from GithubToken.
func IsGithubHost(host string) bool {
	host = strings.ToLower(host)
	switch {
	case host == "github.com", strings.HasSuffix(host, ".github.com"):
		return true
	case host == "githubusercontent.com", strings.HasSuffix(host, ".githubusercontent.com"):
		return true
	default:
		return false
	}
}
