// Package archive builds a Walk abstraction on top of "archive/zip" for
// containers held fully in memory. Codecs read a container once into a
// zip.Reader and never touch the original bytes again.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"
)

// Open validates the bytes as a zip archive and returns a reader over it.
func Open(data []byte) (*zip.Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("not a valid archive: %w", err)
	}
	return zr, nil
}

// WalkFunc is the type of the function called for each file in the archive
// visited by Walk. If an error is returned, processing stops.
type WalkFunc func(file *zip.File) error

// Walk walks all files in the archive whose name starts with pattern, calling
// walkFn for each. Entries with path traversal components ("..") or absolute
// paths make the walk fail to prevent Zip Slip attacks.
func Walk(zr *zip.Reader, pattern string, walkFn WalkFunc) error {
	for _, f := range zr.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if !f.FileInfo().IsDir() && strings.HasPrefix(normalize(name), pattern) {
			if err := walkFn(f); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReadFile returns the decompressed content of the named entry, or false when
// the archive has no such entry. Name comparison normalizes Windows-style
// separators, which grid containers commonly use.
func ReadFile(zr *zip.Reader, name string) ([]byte, bool, error) {
	want := normalize(name)
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || normalize(f.FileHeader.Name) != want {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, true, fmt.Errorf("unable to open zip entry %q: %w", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, true, fmt.Errorf("unable to read zip entry %q: %w", name, err)
		}
		return data, true, nil
	}
	return nil, false, nil
}

// Has reports whether the archive contains the named file entry.
func Has(zr *zip.Reader, name string) bool {
	want := normalize(name)
	for _, f := range zr.File {
		if !f.FileInfo().IsDir() && normalize(f.FileHeader.Name) == want {
			return true
		}
	}
	return false
}

func normalize(name string) string {
	return strings.ReplaceAll(name, `\`, "/")
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(normalize(name), "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
