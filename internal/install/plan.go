// Package install computes, from a decoded archive and the host's
// configuration, the set of files to write to disk and then writes and
// optimises them. PATH registration is done by package pathreg.
package install

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/easy-install/ei/internal/archive"
	"github.com/easy-install/ei/internal/config"
)

// OutputFile is one staged file destined for install_dir.
type OutputFile struct {
	InstallPath string
	OriginPath  string
	Mode        os.FileMode
	Size        int64
	IsDir       bool
	Buffer      []byte
}

// OutputItem groups every file produced by extracting one source URL.
type OutputItem struct {
	InstallDir string
	Files      []OutputFile
}

// Output maps a source URL to the files it produced. No two InstallPath
// values across the whole Output may collide unless they are the same
// logical entry.
type Output map[string]OutputItem

var promotableExtensions = []string{
	".out", ".sh", ".bash", ".zsh", ".py", ".pl", ".js", ".ts", ".jsx", ".tsx", ".wasm", ".fish", ".nu",
}

// Plan computes install destinations for a decoded archive's entries.
func Plan(entries []archive.Entry, name string, cfg config.InstallConfig) (OutputItem, error) {
	base, err := resolveInstallBaseDir(cfg)
	if err != nil {
		return OutputItem{}, err
	}

	var files []archive.Entry
	for _, e := range entries {
		if !e.IsDir {
			files = append(files, e)
		}
	}

	subdir := ""
	if len(files) > 1 {
		if cfg.Alias != "" {
			subdir = cfg.Alias
		} else {
			subdir = name
		}
	}
	installDir := filepath.Join(base, subdir)

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	prefixLen := CommonPrefixLen(paths)

	out := make([]OutputFile, 0, len(files))
	for _, f := range files {
		rel := f.Path
		if prefixLen <= len(f.Path) {
			rel = f.Path[prefixLen:]
		} else {
			rel = filepath.Base(f.Path)
		}
		if rel == "" {
			rel = filepath.Base(f.Path)
		}
		out = append(out, OutputFile{
			InstallPath: filepath.Join(installDir, filepath.FromSlash(rel)),
			OriginPath:  f.Path,
			Mode:        f.Mode,
			Size:        int64(len(f.Buffer)),
			Buffer:      f.Buffer,
		})
	}

	applyAliasRename(out, cfg.Alias)
	applyExecutableInference(out)

	return OutputItem{InstallDir: installDir, Files: out}, nil
}

// CommonPrefixLen returns the length, in bytes, of the longest leading
// sequence of path segments shared by every path in paths. For a single
// path it returns len(path)+1 — there being nothing to diverge from, the
// whole path (plus one separator's worth) counts as "common".
func CommonPrefixLen(paths []string) int {
	if len(paths) == 0 {
		return 0
	}

	first := strings.Split(paths[0], "/")
	commonSegs := len(first)

	for _, p := range paths[1:] {
		segs := strings.Split(p, "/")
		limit := commonSegs
		if len(segs) < limit {
			limit = len(segs)
		}
		match := 0
		for i := 0; i < limit; i++ {
			if first[i] != segs[i] {
				break
			}
			match++
		}
		commonSegs = match
	}

	length := 0
	for i := 0; i < commonSegs; i++ {
		length += len(first[i]) + 1
	}
	return length
}

func resolveInstallBaseDir(cfg config.InstallConfig) (string, error) {
	if cfg.Dir == "" {
		return config.DefaultHomeDir()
	}
	if strings.ContainsAny(cfg.Dir, "/\\") {
		return expandTilde(cfg.Dir), nil
	}
	home, err := config.DefaultHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, cfg.Dir), nil
}

func expandTilde(p string) string {
	if p == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return p
	}
	if strings.HasPrefix(p, "~/") || strings.HasPrefix(p, `~\`) {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}

func hasExecBit(mode os.FileMode) bool {
	return mode&0111 != 0
}

func isExecutableLikeName(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range []string{".exe", ".ps1", ".bat", ".cmd", ".com", ".vbs"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// applyAliasRename renames the sole (or sole-executable) entry's
// basename to alias, preserving its extension.
func applyAliasRename(files []OutputFile, alias string) {
	if alias == "" || len(files) == 0 {
		return
	}

	idx := -1
	if len(files) == 1 {
		idx = 0
	} else {
		count := 0
		for i, f := range files {
			if hasExecBit(f.Mode) || isExecutableLikeName(f.InstallPath) {
				count++
				idx = i
			}
		}
		if count != 1 {
			return
		}
	}

	base := filepath.Base(files[idx].InstallPath)
	stripped := archive.NameNoExt(base)
	ext := base[len(stripped):]
	newBase := alias + ext
	files[idx].InstallPath = filepath.Join(filepath.Dir(files[idx].InstallPath), newBase)
}

// applyExecutableInference promotes a single extension-less (or
// known-script-extension) entry to mode 0755 when nothing in the output
// already carries an executable bit.
func applyExecutableInference(files []OutputFile) {
	for _, f := range files {
		if hasExecBit(f.Mode) {
			return
		}
	}

	extensionless := -1
	extensionlessCount := 0
	for i, f := range files {
		base := filepath.Base(f.InstallPath)
		if !strings.Contains(base, ".") {
			extensionlessCount++
			extensionless = i
		}
	}
	if extensionlessCount == 1 {
		files[extensionless].Mode = 0755
		return
	}

	promoted := -1
	promotedCount := 0
	for i, f := range files {
		lower := strings.ToLower(f.InstallPath)
		for _, ext := range promotableExtensions {
			if strings.HasSuffix(lower, ext) {
				promotedCount++
				promoted = i
				break
			}
		}
	}
	if promotedCount == 1 {
		files[promoted].Mode = 0755
	}
}
