package convert

import (
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"

	"aacc/common"
)

// BuildOutputPath derives the destination file name for a conversion. When a
// name template is configured it is expanded with the document values;
// otherwise the source base name is reused. Transliteration turns the base
// name into a filesystem-safe ASCII slug.
func BuildOutputPath(src, dstDir string, format common.Format, nameTemplate string, values TemplateValues, transliterate bool) string {
	base := ""
	if nameTemplate != "" {
		if expanded, err := ExpandNameTemplate(nameTemplate, values); err == nil {
			base = cleanFileName(expanded)
		}
	}
	if base == "" {
		// fallback to source name if template expansion failed
		base = strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	}
	if transliterate {
		base = slug.Make(base)
	}
	return filepath.Join(dstDir, base+format.Ext())
}

// cleanFileName drops path separators and other characters that commonly
// break file names on at least one supported platform.
func cleanFileName(in string) string {
	return strings.Map(func(sym rune) rune {
		if strings.ContainsRune(`<>":/\|?*`, sym) {
			return -1
		}
		return sym
	}, strings.TrimSpace(in))
}
