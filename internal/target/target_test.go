package target

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTriple(t *testing.T) {
	cases := []struct {
		in   HostTarget
		want string
	}{
		{HostTarget{OS: "linux", Arch: "amd64", Abi: "musl"}, "x86_64-unknown-linux-musl"},
		{HostTarget{OS: "linux", Arch: "amd64", Abi: "gnu"}, "x86_64-unknown-linux-gnu"},
		{HostTarget{OS: "darwin", Arch: "arm64"}, "aarch64-apple-darwin"},
		{HostTarget{OS: "windows", Arch: "amd64"}, "x86_64-pc-windows-msvc"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, c.in.Triple())
	}
}

func TestGuess_LinuxAmd64Musl(t *testing.T) {
	matches := Guess("mytool-x86_64-unknown-linux-musl")
	require.NotEmpty(t, matches)

	found := false
	for _, m := range matches {
		if m.Target.OS == "linux" && m.Target.Arch == "amd64" && m.Target.Abi == "musl" {
			found = true
			require.Equal(t, "mytool", m.Name)
		}
	}
	require.True(t, found)
}

func TestGuess_NoOSOrArchReturnsNil(t *testing.T) {
	require.Nil(t, Guess("README"))
	require.Nil(t, Guess("checksums"))
}

func TestGuess_OSOnlyNoArch(t *testing.T) {
	matches := Guess("yt-dlp_macos")
	require.NotEmpty(t, matches)
	require.Equal(t, "darwin", matches[0].Target.OS)
	require.Empty(t, matches[0].Target.Arch)
}

func TestHostTarget_Matches(t *testing.T) {
	glibcHost := HostTarget{OS: "linux", Arch: "amd64", Abi: "gnu"}
	muslHost := HostTarget{OS: "linux", Arch: "amd64", Abi: "musl"}

	require.True(t, glibcHost.Matches(HostTarget{OS: "linux", Arch: "amd64", Abi: "gnu"}))
	require.True(t, glibcHost.Matches(HostTarget{OS: "linux", Arch: "amd64", Abi: "musl"}))
	require.True(t, muslHost.Matches(HostTarget{OS: "linux", Arch: "amd64", Abi: "musl"}))
	require.False(t, muslHost.Matches(HostTarget{OS: "linux", Arch: "amd64", Abi: "gnu"}))
	require.False(t, glibcHost.Matches(HostTarget{OS: "darwin", Arch: "amd64"}))
}

func TestHostTarget_Matches_WildcardArch(t *testing.T) {
	glibcHost := HostTarget{OS: "linux", Arch: "amd64", Abi: "gnu"}
	require.True(t, glibcHost.Matches(HostTarget{OS: "linux"}))
}
