package install

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Write writes every file in item to disk: creating parent directories,
// removing any pre-existing file or directory at the destination, then
// writing the bytes and (on Unix) the recorded mode. Writes are not
// transactionally atomic across the set — each file is written directly,
// which is acceptable because installs are idempotent and rerunnable.
func Write(item OutputItem) error {
	for _, f := range item.Files {
		if err := os.MkdirAll(filepath.Dir(f.InstallPath), 0755); err != nil {
			return err
		}
		if err := removeExisting(f.InstallPath); err != nil {
			return err
		}
		if err := os.WriteFile(f.InstallPath, f.Buffer, 0644); err != nil {
			return err
		}
		if runtime.GOOS != "windows" && f.Mode != 0 {
			if err := os.Chmod(f.InstallPath, f.Mode); err != nil {
				return err
			}
		}
	}

	if runtime.GOOS != "windows" && len(item.Files) == 1 {
		if err := ensureExecutable(item.Files[0].InstallPath); err != nil {
			return err
		}
	}

	return nil
}

func removeExisting(path string) error {
	info, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if info.IsDir() {
		return os.RemoveAll(path)
	}
	return os.Remove(path)
}

// ensureExecutable guarantees path carries +x, preferring the chmod
// syscall and falling back to the external chmod command when that
// fails (e.g. on a filesystem that rejects in-process mode changes).
func ensureExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	want := info.Mode() | 0111
	if err := os.Chmod(path, want); err == nil {
		return nil
	}
	return exec.Command("chmod", "+x", path).Run()
}
