// Package archive decodes a downloaded archive into an ordered list of
// in-memory file entries, guessing format from filename extension and
// unwrapping a single level of nested archive when the payload is
// itself an archive.
package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	lzip "github.com/sorairolake/lzip-go"
	"github.com/ulikunitz/xz"
)

// Entry is one decoded archive member.
type Entry struct {
	Path   string
	Buffer []byte
	Mode   os.FileMode // zero when the source format carries no mode (zip directories, etc.)
	IsDir  bool
}

var extensionsByLength = []struct {
	suffix string
	format string
}{
	{".tar.gz", "tar.gz"}, {".tgz", "tar.gz"},
	{".tar.bz2", "tar.bz2"}, {".tbz2", "tar.bz2"}, {".tbz", "tar.bz2"},
	{".tar.xz", "tar.xz"}, {".txz", "tar.xz"},
	{".tar.zst", "tar.zst"}, {".tzst", "tar.zst"},
	{".tar.lz", "tar.lz"}, {".tlz", "tar.lz"},
	{".tar", "tar"},
	{".zip", "zip"},
}

// DetectFormat guesses an archive format from filename. The empty string
// means "not a recognised archive" (the filename is a bare executable).
func DetectFormat(filename string) string {
	lower := strings.ToLower(filename)
	for _, e := range extensionsByLength {
		if strings.HasSuffix(lower, e.suffix) {
			return e.format
		}
	}
	return ""
}

// IsArchive reports whether filename carries a recognised archive extension.
func IsArchive(filename string) bool {
	return DetectFormat(filename) != ""
}

// Decode extracts data (interpreted as format) into an ordered list of
// entries, drops macOS resource-fork junk, and unwraps one level of
// nested archive when exactly one non-directory entry remains and it is
// itself archive-shaped.
func Decode(data []byte, format string) ([]Entry, error) {
	entries, err := decodeOnce(data, format)
	if err != nil {
		return nil, err
	}

	entries = dropMacOSJunk(entries)

	if nested, ok := soleNestedArchive(entries); ok {
		innerFormat := DetectFormat(nested.Path)
		inner, err := decodeOnce(nested.Buffer, innerFormat)
		if err != nil {
			return nil, fmt.Errorf("unwrapping nested archive %q: %w", nested.Path, err)
		}
		return dropMacOSJunk(inner), nil
	}

	return entries, nil
}

func decodeOnce(data []byte, format string) ([]Entry, error) {
	switch format {
	case "tar.gz":
		gzr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer gzr.Close()
		return decodeTar(tar.NewReader(gzr))
	case "tar.bz2":
		return decodeTar(tar.NewReader(bzip2.NewReader(bytes.NewReader(data))))
	case "tar.xz":
		xzr, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("xz: %w", err)
		}
		return decodeTar(tar.NewReader(xzr))
	case "tar.zst":
		zr, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer zr.Close()
		return decodeTar(tar.NewReader(zr))
	case "tar.lz":
		lr, err := lzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("lzip: %w", err)
		}
		return decodeTar(tar.NewReader(lr))
	case "tar":
		return decodeTar(tar.NewReader(bytes.NewReader(data)))
	case "zip":
		return decodeZip(data)
	default:
		return nil, fmt.Errorf("unsupported archive format: %q", format)
	}
}

func decodeTar(tr *tar.Reader) ([]Entry, error) {
	var entries []Entry
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading tar header: %w", err)
		}

		path := strings.TrimPrefix(header.Name, "./")
		switch header.Typeflag {
		case tar.TypeDir:
			entries = append(entries, Entry{Path: path, IsDir: true, Mode: header.FileInfo().Mode()})
		case tar.TypeReg:
			buf := make([]byte, header.Size)
			if _, err := io.ReadFull(tr, buf); err != nil {
				return nil, fmt.Errorf("reading tar entry %q: %w", path, err)
			}
			entries = append(entries, Entry{Path: path, Buffer: buf, Mode: header.FileInfo().Mode()})
		default:
			// symlinks and other special types carry no payload ei needs to install
		}
	}
	return entries, nil
}

func decodeZip(data []byte) ([]Entry, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("zip: %w", err)
	}

	var entries []Entry
	for _, f := range r.File {
		path := strings.TrimPrefix(f.Name, "./")
		if f.FileInfo().IsDir() {
			entries = append(entries, Entry{Path: path, IsDir: true})
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening zip entry %q: %w", path, err)
		}
		buf, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading zip entry %q: %w", path, err)
		}
		entries = append(entries, Entry{Path: path, Buffer: buf, Mode: f.Mode()})
	}
	return entries, nil
}

func dropMacOSJunk(entries []Entry) []Entry {
	out := entries[:0:0]
	for _, e := range entries {
		if strings.HasPrefix(e.Path, "__MACOSX/") {
			continue
		}
		out = append(out, e)
	}
	return out
}

var windowsExecutableExtensions = []string{".exe", ".ps1", ".bat", ".cmd", ".com", ".vbs"}

// NameNoExt strips the longest extension archive or target naming knows
// about from filename: a multi-part archive suffix (.tar.gz, .tgz, ...)
// or a single Windows executable suffix. Stripping twice is a no-op,
// since the result carries no recognised extension of its own.
func NameNoExt(filename string) string {
	lower := strings.ToLower(filename)
	for _, e := range extensionsByLength {
		if strings.HasSuffix(lower, e.suffix) {
			return filename[:len(filename)-len(e.suffix)]
		}
	}
	for _, ext := range windowsExecutableExtensions {
		if strings.HasSuffix(lower, ext) {
			return filename[:len(filename)-len(ext)]
		}
	}
	return filename
}

// soleNestedArchive reports the one non-directory entry when entries
// contains exactly one such entry and its name is itself archive-shaped.
func soleNestedArchive(entries []Entry) (Entry, bool) {
	var files []Entry
	for _, e := range entries {
		if !e.IsDir {
			files = append(files, e)
		}
	}
	if len(files) != 1 {
		return Entry{}, false
	}
	if !IsArchive(files[0].Path) {
		return Entry{}, false
	}
	return files[0], true
}
