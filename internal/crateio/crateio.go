// Package crateio resolves a crates.io crate name to the GitHub
// repository its Cargo.toml declares, so a bare crate name (neither a
// local path nor an owner/repo form) can still be installed.
package crateio

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/easy-install/ei/internal/httputil"
	"github.com/easy-install/ei/internal/reference"
)

// ResolveRepo looks up crateName's published metadata on crates.io and
// returns the GitHub Repo its repository field points to.
func ResolveRepo(crateName string, retry uint64, timeout time.Duration) (reference.Reference, error) {
	apiURL := fmt.Sprintf("https://crates.io/api/v1/crates/%s", crateName)
	return resolveRepoFromURL(crateName, apiURL, retry, timeout)
}

func resolveRepoFromURL(crateName, apiURL string, retry uint64, timeout time.Duration) (reference.Reference, error) {
	body, err := httputil.GetBytes(apiURL, retry, timeout)
	if err != nil {
		return reference.Reference{}, fmt.Errorf("fetching crates.io metadata for %q: %w", crateName, err)
	}

	var doc struct {
		Crate struct {
			Repository string `json:"repository"`
		} `json:"crate"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return reference.Reference{}, fmt.Errorf("decoding crates.io metadata for %q: %w", crateName, err)
	}
	if doc.Crate.Repository == "" {
		return reference.Reference{}, fmt.Errorf("crate %q declares no repository", crateName)
	}

	ref, err := reference.Parse(doc.Crate.Repository)
	if err != nil || ref.Kind != reference.KindRepo {
		return reference.Reference{}, fmt.Errorf("crate %q's repository %q is not a GitHub reference", crateName, doc.Crate.Repository)
	}
	return ref, nil
}
