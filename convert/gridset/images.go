package gridset

import (
	"fmt"
	"strings"

	"github.com/h2non/filetype"

	"aacc/archive"
)

// ImageRequest identifies a cell image to locate inside the container.
type ImageRequest struct {
	// BaseDir is the page directory inside the archive, e.g. "Grids/Home".
	BaseDir string
	// ImageName is the explicit image reference from the cell, empty when
	// the cell carries only a library reference or no reference at all.
	ImageName string
	// X, Y are the cell coordinates, used to match generated image names.
	X, Y int
	// DynamicFiles are the generated file names registered for this page.
	DynamicFiles []string
}

var imageExtensions = []string{"png", "jpg", "jpeg", "gif", "bmp", "wmf", "emf", "svg"}

// ResolveCellImage locates the archive entry holding a cell's image. Lookup
// is layered: an explicit name under the page's Images directory, then a
// generated name registered in the file map, then a bare coordinate-derived
// guess validated by content sniffing. A miss is a normal outcome, the cell
// keeps its unresolved reference.
func ResolveCellImage(zr archiveReader, req ImageRequest) (string, bool) {
	if req.ImageName != "" {
		candidate := req.BaseDir + "/" + imagesDir + "/" + req.ImageName
		if archive.Has(zr, candidate) {
			return candidate, true
		}
		if archive.Has(zr, req.BaseDir+"/"+req.ImageName) {
			return req.BaseDir + "/" + req.ImageName, true
		}
	}

	prefix := fmt.Sprintf("%d-%d-", req.X, req.Y)
	for _, name := range req.DynamicFiles {
		if strings.HasPrefix(name, prefix) {
			candidate := req.BaseDir + "/" + name
			if archive.Has(zr, candidate) {
				return candidate, true
			}
		}
	}

	for _, ext := range imageExtensions {
		candidate := fmt.Sprintf("%s/%d-%d.%s", req.BaseDir, req.X, req.Y, ext)
		if !archive.Has(zr, candidate) {
			continue
		}
		if looksLikeImage(zr, candidate) {
			return candidate, true
		}
	}
	return "", false
}

// looksLikeImage sniffs entry content because coordinate-named entries are a
// guess: the name scheme is shared with non-image auxiliary files.
func looksLikeImage(zr archiveReader, name string) bool {
	data, found, err := archive.ReadFile(zr, name)
	if err != nil || !found {
		return false
	}
	if filetype.IsImage(data) {
		return true
	}
	// vector formats are not covered by content sniffing
	trimmed := strings.TrimSpace(string(data))
	return strings.HasPrefix(trimmed, "<?xml") || strings.HasPrefix(trimmed, "<svg")
}
