package platform

import "path/filepath"

// ValidLibcTypes lists the libc values ei's target matcher and asset
// ranking understand. A release commonly ships separate glibc and musl
// builds for the same OS/arch (Alpine and other musl-based distros
// can't run a glibc-linked binary), so picking the wrong one here means
// downloading an asset that won't execute.
var ValidLibcTypes = []string{"glibc", "musl"}

// DetectLibc reports the host's libc implementation, for filtering
// candidate release assets down to the ones this machine can actually
// run.
func DetectLibc() string {
	return DetectLibcWithRoot("")
}

// DetectLibcWithRoot is DetectLibc with the filesystem root overridden,
// so tests can point it at a fixture tree instead of the real root.
func DetectLibcWithRoot(root string) string {
	if muslLinkerPresent(root) {
		return "musl"
	}
	return "glibc"
}

// muslLinkerPresent looks for musl's dynamic linker, whose path is
// architecture-qualified (ld-musl-x86_64.so.1, ld-musl-aarch64.so.1,
// ...) but always lives directly under /lib regardless of arch.
func muslLinkerPresent(root string) bool {
	matches, _ := filepath.Glob(filepath.Join(root, "lib", "ld-musl-*.so.1"))
	return len(matches) > 0
}
