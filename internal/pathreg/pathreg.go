// Package pathreg detects pre-existing executables that collide with a
// planned install and drives the external PATH-editor collaborator that
// actually mutates shell rc files or GitHub Actions' $GITHUB_PATH.
package pathreg

import (
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/easy-install/ei/internal/install"
	"github.com/easy-install/ei/internal/log"
)

// maxArchiveDepth bounds how deep inside the source archive a file may
// sit and still be checked for a PATH conflict; deeply nested entries
// are almost never meant to land on PATH.
const maxArchiveDepth = 3

// PathEditor is the external collaborator that actually mutates PATH —
// shell rc files on Unix, the user/session environment on Windows, or a
// GitHub Actions $GITHUB_PATH entry in CI. ei's core only decides which
// directories need to be added; the editor is supplied by the caller.
type PathEditor interface {
	AddToPath(dir string) error
}

// Locate finds the first existing executable named name on PATH, using
// the platform's native locator.
func Locate(name string) (string, bool) {
	if runtime.GOOS == "windows" {
		return locateWindows(name)
	}
	return locateUnix(name)
}

func locateUnix(name string) (string, bool) {
	out, err := exec.Command("which", name).Output()
	if err != nil {
		return "", false
	}
	path := strings.TrimSpace(string(out))
	if path == "" {
		return "", false
	}
	return path, true
}

func locateWindows(name string) (string, bool) {
	script := "(Get-Command " + name + " -ErrorAction SilentlyContinue).Source"
	out, err := exec.Command("powershell", "-NoProfile", "-Command", script).Output()
	if err != nil {
		return "", false
	}
	path := strings.TrimSpace(string(out))
	if path == "" {
		return "", false
	}
	return path, true
}

func archiveDepth(originPath string) int {
	clean := strings.Trim(filepath.ToSlash(originPath), "/")
	if clean == "" {
		return 0
	}
	return len(strings.Split(clean, "/"))
}

func isExecutableFile(f install.OutputFile) bool {
	return f.Mode&0111 != 0
}

// Register checks every executable, shallow-enough file in files for a
// conflicting pre-existing executable of the same leaf name, logging a
// warning for each conflict, then asks editor to add the distinct parent
// directory of every executable file to PATH. A directory that holds no
// executable file (such as an install directory whose executables all sit
// in subdirectories) is not added.
func Register(files []install.OutputFile, editor PathEditor, logger log.Logger) error {
	if logger == nil {
		logger = log.NewNoop()
	}

	dirs := map[string]bool{}
	for _, f := range files {
		if !isExecutableFile(f) {
			continue
		}
		dirs[filepath.Dir(f.InstallPath)] = true

		if archiveDepth(f.OriginPath) > maxArchiveDepth {
			continue
		}

		leaf := filepath.Base(f.InstallPath)
		existing, found := Locate(leaf)
		if !found {
			continue
		}
		if filepath.Clean(existing) == filepath.Clean(f.InstallPath) {
			continue
		}
		logger.Warn("conflicting executable already on PATH", "name", leaf, "existing", existing, "installed", f.InstallPath)
	}

	if editor == nil {
		return nil
	}
	for dir := range dirs {
		if err := editor.AddToPath(dir); err != nil {
			return err
		}
	}
	return nil
}
