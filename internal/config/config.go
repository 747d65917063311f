// Package config loads ei's persistent configuration and derives the
// effective InstallConfig used by the resolver, downloader, and installer.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// DefaultTimeout is the default per-request timeout.
	DefaultTimeout = 600 * time.Second

	// DefaultRetry is the default number of retry attempts for a fetch.
	DefaultRetry = 3

	// ConfigFileName is the basename persistent configuration is read from.
	ConfigFileName = "ei_config.json"

	// EnvHome overrides the default ei home directory (~/.ei).
	EnvHome = "EI_HOME"

	// EnvGithubToken is the fallback source for a GitHub token, used only
	// when `gh auth token` and `git credential fill` both fail.
	EnvGithubToken = "GITHUB_TOKEN"
)

// FileConfig is the on-disk schema for ei_config.json. All fields are
// optional; zero values mean "not set" and fall back to CLI flags or
// built-in defaults.
type FileConfig struct {
	Proxy   string `json:"proxy,omitempty"`
	Dir     string `json:"dir,omitempty"`
	Target  string `json:"target,omitempty"`
	Timeout *uint64 `json:"timeout,omitempty"`
	Retry   *uint64 `json:"retry,omitempty"`
	Upx     *bool  `json:"upx,omitempty"`
	Strip   *bool  `json:"strip,omitempty"`
}

// InstallConfig holds the host-wide settings visible to the resolver and
// installer: install directory, alias, forced target, proxy selector,
// retry/timeout budgets, name whitelist, and optimisation/output flags.
//
// It is not a tagged algorithm input like Reference or DistManifest; it
// carries ambient policy that every stage may consult.
type InstallConfig struct {
	Dir          string
	Alias        string
	Target       string
	Proxy        string
	Retry        uint64
	Timeout      time.Duration
	Names        []string
	Strip        bool
	Upx          bool
	InstallOnly  bool
	Quiet        bool
}

// DefaultInstallConfig returns an InstallConfig with built-in defaults and
// no install directory set (the caller resolves that via DefaultHomeDir).
func DefaultInstallConfig() InstallConfig {
	return InstallConfig{
		Retry:   DefaultRetry,
		Timeout: DefaultTimeout,
		Proxy:   "github",
	}
}

// DefaultHomeOverride can be set by the binary's main package (via ldflags)
// to point dev builds at a scratch home directory instead of ~/.ei.
// EI_HOME still takes precedence.
var DefaultHomeOverride string

// DefaultHomeDir returns the default install directory: $EI_HOME if set,
// else DefaultHomeOverride if set, else "$HOME/.ei".
func DefaultHomeDir() (string, error) {
	if home := os.Getenv(EnvHome); home != "" {
		return home, nil
	}
	if DefaultHomeOverride != "" {
		return DefaultHomeOverride, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".ei"), nil
}

// Load reads persistent configuration, preferring "<exe_dir>/ei_config.json"
// and falling back to "~/.ei/ei_config.json". It is not an error for
// neither file to exist: Load then returns a zero FileConfig.
func Load() (FileConfig, error) {
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		if fc, ok, err := loadFile(filepath.Join(exeDir, ConfigFileName)); err != nil {
			return FileConfig{}, err
		} else if ok {
			return fc, nil
		}
	}

	home, err := DefaultHomeDir()
	if err != nil {
		return FileConfig{}, nil
	}
	fc, ok, err := loadFile(filepath.Join(home, ConfigFileName))
	if err != nil {
		return FileConfig{}, err
	}
	if !ok {
		return FileConfig{}, nil
	}
	return fc, nil
}

func loadFile(path string) (FileConfig, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var fc FileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return FileConfig{}, false, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return fc, true, nil
}

// Merge layers a FileConfig underneath the receiver's already-set fields:
// any field on cfg still at its zero value (or, for Proxy, Timeout and
// Retry, at its built-in default) is replaced by the corresponding fc field.
// CLI flags are expected to have already populated cfg before Merge runs,
// so flags win over the persistent file and the file wins over defaults.
func (cfg InstallConfig) Merge(fc FileConfig) InstallConfig {
	if cfg.Dir == "" && fc.Dir != "" {
		cfg.Dir = fc.Dir
	}
	if cfg.Target == "" && fc.Target != "" {
		cfg.Target = fc.Target
	}
	if (cfg.Proxy == "" || cfg.Proxy == "github") && fc.Proxy != "" {
		cfg.Proxy = fc.Proxy
	}
	if cfg.Timeout == DefaultTimeout && fc.Timeout != nil {
		cfg.Timeout = time.Duration(*fc.Timeout) * time.Second
	}
	if cfg.Retry == DefaultRetry && fc.Retry != nil {
		cfg.Retry = *fc.Retry
	}
	if !cfg.Upx && fc.Upx != nil {
		cfg.Upx = *fc.Upx
	}
	if !cfg.Strip && fc.Strip != nil {
		cfg.Strip = *fc.Strip
	}
	return cfg
}
