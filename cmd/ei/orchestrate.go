package main

import (
	"context"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/easy-install/ei/internal/archive"
	"github.com/easy-install/ei/internal/builtin"
	"github.com/easy-install/ei/internal/config"
	"github.com/easy-install/ei/internal/crateio"
	"github.com/easy-install/ei/internal/download"
	"github.com/easy-install/ei/internal/githubrepo"
	"github.com/easy-install/ei/internal/install"
	"github.com/easy-install/ei/internal/log"
	"github.com/easy-install/ei/internal/manifest"
	"github.com/easy-install/ei/internal/nightly"
	"github.com/easy-install/ei/internal/pathreg"
	"github.com/easy-install/ei/internal/proxy"
	"github.com/easy-install/ei/internal/reference"
	"github.com/easy-install/ei/internal/resolve"
	"github.com/easy-install/ei/internal/target"
)

// candidate is one (logical name, download source) pair produced by
// classifying a Reference, ready to be filtered, fetched, and installed.
type candidate struct {
	name      string
	url       string
	localPath string
}

func runInstall(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	logger := log.Default()

	ref, err := parseReference(args[0])
	if err != nil {
		return err
	}

	hosts := target.DetectHost()

	candidates, err := classify(cmd.Context(), ref, cfg, hosts)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		fmt.Fprintf(os.Stderr, "not found asset for %s on %s\n", tripleSummary(cfg, hosts), describeReference(ref))
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool { return sourceKey(candidates[i]) < sourceKey(candidates[j]) })

	output := install.Output{}
	var allFiles []install.OutputFile

	for _, c := range candidates {
		if !nameWanted(cfg.Names, c.name) {
			continue
		}

		body, filename, err := fetchCandidate(cmd.Context(), c, cfg)
		if err != nil {
			logger.Error("download failed", "name", c.name, "error", err)
			continue
		}

		var entries []archive.Entry
		if archive.IsArchive(filename) {
			entries, err = archive.Decode(body, archive.DetectFormat(filename))
			if err != nil {
				logger.Error("extraction failed", "name", c.name, "error", err)
				continue
			}
		} else {
			entries = []archive.Entry{{Path: filename, Buffer: body, Mode: 0755}}
		}

		item, err := install.Plan(entries, c.name, cfg)
		if err != nil {
			logger.Error("planning failed", "name", c.name, "error", err)
			continue
		}
		if err := install.Write(item); err != nil {
			logger.Error("write failed", "name", c.name, "error", err)
			continue
		}

		for _, f := range item.Files {
			if f.Mode&0111 != 0 {
				install.Optimise(f.InstallPath, cfg.Strip, cfg.Upx, logger)
			}
		}

		output[sourceKey(c)] = item
		allFiles = append(allFiles, item.Files...)
	}

	if len(allFiles) == 0 {
		fmt.Fprintln(os.Stderr, "warning: no file installed")
		return nil
	}

	if !cfg.InstallOnly {
		if err := pathreg.Register(allFiles, nil, logger); err != nil {
			logger.Warn("path registration failed", "error", err)
		}
	}

	if !cfg.Quiet {
		for src, item := range output {
			for _, f := range item.Files {
				fmt.Printf("installed %s -> %s\n", src, f.InstallPath)
			}
		}
	}

	return nil
}

func sourceKey(c candidate) string {
	if c.localPath != "" {
		return c.localPath
	}
	return c.url
}

func buildConfig() (config.InstallConfig, error) {
	cfg := config.DefaultInstallConfig()
	cfg.Dir = dirFlag
	cfg.Alias = aliasFlag
	cfg.Target = targetFlag
	cfg.Proxy = proxyFlag
	cfg.Retry = retryFlag
	cfg.Timeout = time.Duration(timeoutFlag) * time.Second
	cfg.Strip = stripFlag
	cfg.Upx = upxFlag
	cfg.InstallOnly = installOnlyFlag
	cfg.Quiet = quietFlag
	if namesFlag != "" {
		cfg.Names = strings.Split(namesFlag, ",")
	}

	fc, err := config.Load()
	if err != nil {
		return config.InstallConfig{}, err
	}
	return cfg.Merge(fc), nil
}

// parseReference classifies input, falling back to crates.io when it
// looks like a bare crate name (no "/" or "." to make it a short-form
// repo reference or a URL/path) that reference.Parse could not place.
func parseReference(input string) (reference.Reference, error) {
	ref, err := reference.Parse(input)
	if err == nil {
		return ref, nil
	}
	if strings.ContainsAny(input, "/.") {
		return reference.Reference{}, err
	}
	if crateRef, crateErr := crateio.ResolveRepo(input, config.DefaultRetry, config.DefaultTimeout); crateErr == nil {
		return crateRef, nil
	}
	return reference.Reference{}, err
}

func classify(ctx context.Context, ref reference.Reference, cfg config.InstallConfig, hosts []target.HostTarget) ([]candidate, error) {
	switch ref.Kind {
	case reference.KindLocalFile:
		return []candidate{{name: archive.NameNoExt(path.Base(ref.Path)), localPath: ref.Path}}, nil

	case reference.KindDirectArchiveURL, reference.KindDirectExecutableURL:
		filename := path.Base(stripQuery(ref.URL))
		return []candidate{{name: archive.NameNoExt(filename), url: ref.URL}}, nil

	case reference.KindDistManifestURL:
		return classifyManifestURL(ref.URL, cfg, hosts)

	case reference.KindNightlyLink:
		return classifyNightly(ref.URL, cfg, hosts)

	case reference.KindRepo:
		return classifyRepo(ctx, ref, cfg, hosts)
	}
	return nil, fmt.Errorf("unhandled reference kind for %q", ref.Display())
}

func stripQuery(u string) string {
	if idx := strings.IndexAny(u, "?#"); idx >= 0 {
		return u[:idx]
	}
	return u
}

func classifyManifestURL(manifestURL string, cfg config.InstallConfig, hosts []target.HostTarget) ([]candidate, error) {
	body, err := download.Fetch(manifestURL, cfg.Retry, cfg.Timeout, true)
	if err != nil {
		return nil, fmt.Errorf("fetching dist manifest %s: %w", manifestURL, err)
	}
	m, err := manifest.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parsing dist manifest %s: %w", manifestURL, err)
	}
	return candidatesFromManifest(m, manifestURL, cfg, hosts), nil
}

func classifyNightly(nightlyURL string, cfg config.InstallConfig, hosts []target.HostTarget) ([]candidate, error) {
	assets, err := nightly.FetchAssets(nightlyURL, cfg.Retry, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return candidatesFromSelections(resolve.ResolveDirect(assets, hosts, cfg.Target)), nil
}

// classifyRepo tries, in order: the repo's own dist-manifest.json, its
// enumerated release assets, and finally the builtin community registry
// fallback for repos that publish neither.
func classifyRepo(ctx context.Context, ref reference.Reference, cfg config.InstallConfig, hosts []target.HostTarget) ([]candidate, error) {
	owner, name, tag := ref.Owner, ref.Name, ref.Tag

	resolvedTag := tag
	if resolvedTag == "" {
		if t, err := githubrepo.ResolveLatestTag(ctx, owner, name, cfg.Retry, cfg.Timeout); err == nil {
			resolvedTag = t
		}
	}

	manifestURL := proxy.ManifestURL(cfg.Proxy, owner, name, resolvedTag)
	if body, err := download.Fetch(manifestURL, 0, cfg.Timeout, true); err == nil {
		if m, err := manifest.Parse(body); err == nil {
			if out := candidatesFromManifest(m, manifestURL, cfg, hosts); len(out) > 0 {
				return out, nil
			}
		}
	}

	if assets, err := githubrepo.EnumerateAssets(ctx, owner, name, tag, cfg.Retry, cfg.Timeout); err == nil {
		selections := resolve.Resolve(assets.List(), hosts, cfg.Target, owner, name, resolvedTag, cfg.Proxy)
		if len(selections) > 0 {
			return candidatesFromSelections(selections), nil
		}
	}

	if logicalName, ok := builtin.LookupName(owner, name, cfg.Retry, cfg.Timeout); ok {
		if m, builtinURL, err := builtin.FetchManifest(logicalName, resolvedTag, cfg.Retry, cfg.Timeout); err == nil {
			if out := candidatesFromManifest(m, builtinURL, cfg, hosts); len(out) > 0 {
				return out, nil
			}
		}
	}

	return nil, nil
}

func candidatesFromManifest(m manifest.DistManifest, manifestURL string, cfg config.InstallConfig, hosts []target.HostTarget) []candidate {
	selected := m.SelectForTriples(triplesFor(cfg, hosts), manifestURL)
	out := make([]candidate, 0, len(selected))
	for _, s := range selected {
		out = append(out, candidate{name: s.Name, url: s.URL})
	}
	return out
}

func candidatesFromSelections(selections []resolve.Selection) []candidate {
	out := make([]candidate, 0, len(selections))
	for _, s := range selections {
		out = append(out, candidate{name: s.Name, url: s.URL})
	}
	return out
}

func triplesFor(cfg config.InstallConfig, hosts []target.HostTarget) []string {
	if cfg.Target != "" {
		return []string{cfg.Target}
	}
	triples := make([]string, len(hosts))
	for i, h := range hosts {
		triples[i] = h.Triple()
	}
	return triples
}

func nameWanted(whitelist []string, name string) bool {
	if len(whitelist) == 0 {
		return true
	}
	for _, w := range whitelist {
		if w == name {
			return true
		}
	}
	return false
}

func fetchCandidate(ctx context.Context, c candidate, cfg config.InstallConfig) ([]byte, string, error) {
	if c.localPath != "" {
		body, err := os.ReadFile(c.localPath)
		if err != nil {
			return nil, "", err
		}
		return body, path.Base(c.localPath), nil
	}
	body, err := download.Fetch(c.url, cfg.Retry, cfg.Timeout, cfg.Quiet)
	if err != nil {
		return nil, "", err
	}
	return body, path.Base(stripQuery(c.url)), nil
}

func tripleSummary(cfg config.InstallConfig, hosts []target.HostTarget) string {
	triples := triplesFor(cfg, hosts)
	return strings.Join(triples, ",")
}

func describeReference(ref reference.Reference) string {
	switch ref.Kind {
	case reference.KindRepo:
		return ref.Display()
	case reference.KindLocalFile:
		return ref.Path
	default:
		return ref.URL
	}
}
