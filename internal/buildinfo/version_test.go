package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDevVersion(t *testing.T) {
	tests := []struct {
		name string
		info *debug.BuildInfo
		want string
	}{
		{
			name: "no vcs settings falls back to dev",
			info: &debug.BuildInfo{},
			want: "dev",
		},
		{
			name: "long revision is truncated to short hash length",
			info: &debug.BuildInfo{Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "abc123def456789"},
			}},
			want: "dev-abc123def456",
		},
		{
			name: "revision shorter than truncation length is kept whole",
			info: &debug.BuildInfo{Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "abc123"},
			}},
			want: "dev-abc123",
		},
		{
			name: "modified working tree appends dirty suffix",
			info: &debug.BuildInfo{Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "abc123def456789"},
				{Key: "vcs.modified", Value: "true"},
			}},
			want: "dev-abc123def456-dirty",
		},
		{
			name: "clean working tree has no suffix",
			info: &debug.BuildInfo{Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "abc123def456789"},
				{Key: "vcs.modified", Value: "false"},
			}},
			want: "dev-abc123def456",
		},
		{
			name: "empty revision value falls back to dev",
			info: &debug.BuildInfo{Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: ""},
			}},
			want: "dev",
		},
		{
			name: "unrelated settings keys are ignored",
			info: &debug.BuildInfo{Settings: []debug.BuildSetting{
				{Key: "vcs", Value: "git"},
				{Key: "vcs.time", Value: "2025-01-15T12:00:00Z"},
				{Key: "vcs.revision", Value: "abc123def456"},
			}},
			want: "dev-abc123def456",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, devVersion(tt.info))
		})
	}
}

// TestVersion_Integration exercises the real build info stamped into the
// test binary, rather than a synthesized debug.BuildInfo. Its exact value
// depends on how `go test` built the binary, so it only asserts the shape
// Version() promises: a tagged release, a dev pseudo-version, or "unknown".
func TestVersion_Integration(t *testing.T) {
	v := Version()
	require.NotEmpty(t, v)

	validPrefixes := []string{"v", "dev", "unknown"}
	ok := false
	for _, prefix := range validPrefixes {
		if strings.HasPrefix(v, prefix) {
			ok = true
			break
		}
	}
	require.True(t, ok, "Version() = %q, expected to start with one of %v", v, validPrefixes)
}
