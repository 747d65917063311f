// Package builtin consults ei's community-maintained registry of
// distribution manifests for repositories that don't publish their own
// dist-manifest.json, used as a last-resort fallback after a repo's own
// manifest and release-asset enumeration both come up empty.
package builtin

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/easy-install/ei/internal/httputil"
	"github.com/easy-install/ei/internal/manifest"
	"github.com/easy-install/ei/internal/reference"
)

const registryURL = "https://github.com/easy-install/ei/raw/refs/heads/main/builtin.json"

var (
	registryOnce   sync.Once
	registryCached map[string]string
)

func loadRegistry(retry uint64, timeout time.Duration) map[string]string {
	registryOnce.Do(func() {
		body, err := httputil.GetBytes(registryURL, retry, timeout)
		if err != nil {
			registryCached = map[string]string{}
			return
		}
		var m map[string]string
		if err := json.Unmarshal(body, &m); err != nil {
			registryCached = map[string]string{}
			return
		}
		registryCached = m
	})
	return registryCached
}

// LookupName finds the builtin logical name registered for owner/name,
// by scanning the registry's GitHub-URL keys for a matching repo.
func LookupName(owner, name string, retry uint64, timeout time.Duration) (string, bool) {
	registry := loadRegistry(retry, timeout)
	for url, logicalName := range registry {
		ref, err := reference.Parse(url)
		if err != nil || ref.Kind != reference.KindRepo {
			continue
		}
		if strings.EqualFold(ref.Owner, owner) && strings.EqualFold(ref.Name, name) {
			return logicalName, true
		}
	}
	return "", false
}

func manifestURL(logicalName string) string {
	return fmt.Sprintf("https://github.com/easy-install/ei/raw/refs/heads/main/dist-manifest/%s.json", logicalName)
}

// FetchManifest downloads the builtin dist-manifest for logicalName,
// substituting tag into any "/releases/latest/download/" URL when tag is
// non-empty (the stored manifest is always pinned to "latest").
func FetchManifest(logicalName, tag string, retry uint64, timeout time.Duration) (manifest.DistManifest, string, error) {
	url := manifestURL(logicalName)
	m, err := fetchManifestFromURL(url, tag, retry, timeout)
	if err != nil {
		return manifest.DistManifest{}, "", fmt.Errorf("fetching builtin manifest for %s: %w", logicalName, err)
	}
	return m, url, nil
}

func fetchManifestFromURL(url, tag string, retry uint64, timeout time.Duration) (manifest.DistManifest, error) {
	body, err := httputil.GetBytes(url, retry, timeout)
	if err != nil {
		return manifest.DistManifest{}, err
	}

	if tag != "" {
		body = []byte(strings.ReplaceAll(string(body), "/releases/latest/download/", "/releases/download/"+tag+"/"))
	}

	return manifest.Parse(body)
}
