package resolve

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/easy-install/ei/internal/githubrepo"
	"github.com/easy-install/ei/internal/target"
)

func TestResolve_SkipsChecksumsAndInstallers(t *testing.T) {
	candidates := []githubrepo.Asset{
		{Name: "mujs-x86_64-unknown-linux-gnu.tar.gz", BrowserDownloadURL: "https://example.com/a"},
		{Name: "mujs-x86_64-unknown-linux-gnu.tar.gz.sha256", BrowserDownloadURL: "https://example.com/b"},
		{Name: "mujs.msi", BrowserDownloadURL: "https://example.com/c"},
	}
	hosts := []target.HostTarget{{OS: "linux", Arch: "amd64", Abi: "gnu"}}

	got := Resolve(candidates, hosts, "", "ahaoboy", "mujs-build", "v0.0.1", "github")
	require.Len(t, got, 1)
	require.Equal(t, "mujs", got[0].Name)
}

func TestResolve_SkipsWindowsExeWithoutWindowsHost(t *testing.T) {
	candidates := []githubrepo.Asset{{Name: "tool-windows.exe", BrowserDownloadURL: "https://example.com/a"}}
	hosts := []target.HostTarget{{OS: "linux", Arch: "amd64", Abi: "gnu"}}

	got := Resolve(candidates, hosts, "", "o", "r", "", "github")
	require.Empty(t, got)
}

func TestResolve_ArmLinuxPrefersMusl(t *testing.T) {
	candidates := []githubrepo.Asset{
		{Name: "tool-aarch64-unknown-linux-gnu.tar.gz", BrowserDownloadURL: "https://example.com/gnu"},
		{Name: "tool-aarch64-unknown-linux-musl.tar.gz", BrowserDownloadURL: "https://example.com/musl"},
	}
	hosts := []target.HostTarget{
		{OS: "linux", Arch: "arm64", Abi: "gnu"},
		{OS: "linux", Arch: "arm64", Abi: "musl"},
	}

	got := Resolve(candidates, hosts, "", "o", "r", "v1", "github")
	require.Len(t, got, 1)
	require.Contains(t, got[0].URL, "musl")
}

func TestResolve_DedupesByLogicalName(t *testing.T) {
	candidates := []githubrepo.Asset{
		{Name: "tool-x86_64-unknown-linux-gnu.tar.gz", BrowserDownloadURL: "https://example.com/1"},
		{Name: "tool-x86_64-unknown-linux-gnu.zip", BrowserDownloadURL: "https://example.com/2"},
	}
	hosts := []target.HostTarget{{OS: "linux", Arch: "amd64", Abi: "gnu"}}

	got := Resolve(candidates, hosts, "", "o", "r", "v1", "github")
	require.Len(t, got, 1)
}

func TestResolve_Deterministic(t *testing.T) {
	candidates := []githubrepo.Asset{
		{Name: "tool-x86_64-unknown-linux-gnu.tar.gz", BrowserDownloadURL: "https://example.com/1"},
		{Name: "tool-aarch64-unknown-linux-gnu.tar.gz", BrowserDownloadURL: "https://example.com/2"},
	}
	hosts := []target.HostTarget{{OS: "linux", Arch: "amd64", Abi: "gnu"}}

	first := Resolve(candidates, hosts, "", "o", "r", "v1", "github")
	second := Resolve(candidates, hosts, "", "o", "r", "v1", "github")
	require.Equal(t, first, second)
}

func TestResolve_ForcedTargetPinsTriple(t *testing.T) {
	candidates := []githubrepo.Asset{
		{Name: "tool-x86_64-unknown-linux-gnu.tar.gz", BrowserDownloadURL: "https://example.com/1"},
		{Name: "tool-aarch64-unknown-linux-gnu.tar.gz", BrowserDownloadURL: "https://example.com/2"},
	}
	hosts := []target.HostTarget{{OS: "linux", Arch: "amd64", Abi: "gnu"}}

	got := Resolve(candidates, hosts, "aarch64-unknown-linux-gnu", "o", "r", "v1", "github")
	require.Len(t, got, 1)
	require.Contains(t, got[0].URL, "aarch64")
}
