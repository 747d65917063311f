package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildTar(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name: name,
			Mode: 0755,
			Size: int64(len(content)),
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	return buf.Bytes()
}

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDetectFormat(t *testing.T) {
	cases := map[string]string{
		"mujs.tar.gz":       "tar.gz",
		"mujs.tgz":          "tar.gz",
		"mujs.tar.bz2":      "tar.bz2",
		"mujs.tar.xz":       "tar.xz",
		"mujs.tar.zst":      "tar.zst",
		"mujs.tar.lz":       "tar.lz",
		"mujs.tar":          "tar",
		"mujs.zip":          "zip",
		"mujs-pp":           "",
		"pnpm-win-x64":      "",
	}
	for name, want := range cases {
		require.Equal(t, want, DetectFormat(name), name)
	}
}

func TestDecode_Tar(t *testing.T) {
	data := buildTar(t, map[string]string{
		"mujs-build/mujs":       "binary-a",
		"mujs-build/libmujs.a":  "binary-b",
	})

	entries, err := Decode(data, "tar")
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestDecode_Zip(t *testing.T) {
	data := buildZip(t, map[string]string{"mujs.exe": "binary"})

	entries, err := Decode(data, "zip")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "mujs.exe", entries[0].Path)
	require.Equal(t, []byte("binary"), entries[0].Buffer)
}

func TestDecode_DropsMacOSJunk(t *testing.T) {
	data := buildZip(t, map[string]string{
		"tool":                    "binary",
		"__MACOSX/._tool":         "junk",
	})

	entries, err := Decode(data, "zip")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "tool", entries[0].Path)
}

func TestDecode_UnwrapsSingleNestedArchive(t *testing.T) {
	inner := buildTar(t, map[string]string{"tool": "real-binary"})
	outer := buildZip(t, map[string]string{"inner.tar": string(inner)})

	entries, err := Decode(outer, "zip")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "tool", entries[0].Path)
	require.Equal(t, []byte("real-binary"), entries[0].Buffer)
}

func TestDecode_NoUnwrapWhenMultipleEntries(t *testing.T) {
	data := buildZip(t, map[string]string{
		"tool":        "a",
		"tool.tar.gz": "b",
	})

	entries, err := Decode(data, "zip")
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestDecode_UnsupportedFormat(t *testing.T) {
	_, err := Decode([]byte("whatever"), "rar")
	require.Error(t, err)
}
