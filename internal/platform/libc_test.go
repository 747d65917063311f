package platform

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectLibcWithRoot(t *testing.T) {
	tests := []struct {
		name string
		dir  string
		want string
	}{
		{"musl linker present", "musl", "musl"},
		{"musl linker present, arm64 naming", "musl-arm64", "musl"},
		{"no musl linker, glibc assumed", "glibc", "glibc"},
		{"no lib directory at all", "empty", "glibc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := filepath.Join("testdata", "libc", tt.dir)
			require.Equal(t, tt.want, DetectLibcWithRoot(root))
		})
	}
}

func TestDetectLibc(t *testing.T) {
	// DetectLibc reads the real filesystem root; just check it returns a
	// value DetectLibcWithRoot could also return.
	libc := DetectLibc()
	require.Contains(t, ValidLibcTypes, libc)
}

func TestValidLibcTypes(t *testing.T) {
	require.Equal(t, []string{"glibc", "musl"}, ValidLibcTypes)
}
