package gridset

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	fixzip "github.com/hidez8891/zip"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"aacc/archive"
	"aacc/convert"
)

// extractText collects every translatable string of a container in document
// order, deduplicated: the settings description, then per page all captions,
// rich text parameters and word list entries.
func extractText(data []byte, opts *convert.Options) ([]string, error) {
	log := opts.Log.Named("gridset")

	zr, err := archive.Open(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", convert.ErrInvalidContainer, err)
	}

	var texts []string
	seen := make(map[string]struct{})
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		texts = append(texts, s)
	}

	if cfg := readSettings(zr, log); cfg.Description != "" {
		add(cfg.Description)
	}

	dirs, err := pageDirs(zr)
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		raw, found, err := archive.ReadFile(zr, gridPath(dir))
		if err != nil || !found {
			continue
		}
		gdoc := etree.NewDocument()
		if err := gdoc.ReadFromBytes(raw); err != nil {
			log.Warn("Skipping malformed grid document", zap.String("page", dir), zap.Error(err))
			continue
		}
		collectGridTexts(gdoc, add)
	}
	return texts, nil
}

func collectGridTexts(gdoc *etree.Document, add func(string)) {
	for _, el := range gdoc.FindElements("//Caption") {
		add(el.Text())
	}
	for _, el := range gdoc.FindElements("//Parameter[@Key='text']") {
		if rt := parseSymbolRuns(el); rt != nil {
			add(rt.Text())
		} else {
			add(el.Text())
		}
	}
	for _, el := range gdoc.FindElements("//WordListItem/Text//r") {
		add(el.Text())
	}
}

// applyTranslations rewrites every matched string in place and returns the
// repackaged container. Entries without translatable content are copied
// through byte for byte. When the options carry a target language, the
// settings language is updated to its container spelling.
func applyTranslations(data []byte, translations map[string]string, opts *convert.Options) ([]byte, error) {
	log := opts.Log.Named("gridset")

	zr, err := fixzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", convert.ErrInvalidContainer, err)
	}

	var buf bytes.Buffer
	zw := fixzip.NewWriter(&buf)

	for _, f := range zr.File {
		var updated []byte
		switch {
		case isGridEntry(f.Name):
			updated, err = translateGrid(f, translations, log)
		case archivePathEqual(f.Name, settingsPath):
			updated, err = translateSettings(f, translations, opts.TargetLanguage)
		}
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", f.Name, err)
		}
		if updated == nil {
			if err := zw.CopyFile(f); err != nil {
				return nil, fmt.Errorf("unable to copy container entry %q: %w", f.Name, err)
			}
			continue
		}
		w, err := zw.Create(f.Name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(updated); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isGridEntry(name string) bool {
	_, ok := pageDirOf(name)
	return ok
}

func archivePathEqual(entryName, path string) bool {
	return strings.ReplaceAll(entryName, `\`, "/") == path
}

// translateGrid rewrites one grid document. Returns nil bytes when nothing
// matched, so the caller can copy the original entry untouched.
func translateGrid(f *fixzip.File, translations map[string]string, log *zap.Logger) ([]byte, error) {
	raw, err := readEntry(f)
	if err != nil {
		return nil, err
	}
	gdoc := etree.NewDocument()
	if err := gdoc.ReadFromBytes(raw); err != nil {
		log.Warn("Skipping malformed grid document", zap.String("entry", f.Name), zap.Error(err))
		return nil, nil
	}

	modified := false
	for _, el := range gdoc.FindElements("//Caption") {
		if tr, ok := translations[strings.TrimSpace(el.Text())]; ok {
			el.SetText(tr)
			modified = true
		}
	}
	for _, el := range gdoc.FindElements("//Parameter[@Key='text']") {
		if translateRichParameter(el, translations) {
			modified = true
		}
	}
	for _, el := range gdoc.FindElements("//WordListItem/Text//r") {
		if tr, ok := translations[strings.TrimSpace(el.Text())]; ok {
			el.SetText(tr)
			modified = true
		}
	}
	if !modified {
		return nil, nil
	}
	gdoc.Indent(2)
	return gdoc.WriteToBytes()
}

// translateRichParameter matches the flattened run text against the
// translation table and, on a hit, rebuilds the run structure word by word.
// Attributes of the original runs (symbol images) carry over positionally.
func translateRichParameter(el *etree.Element, translations map[string]string) bool {
	rt := parseSymbolRuns(el)
	var text string
	if rt != nil {
		text = strings.TrimSpace(rt.Text())
	} else {
		text = strings.TrimSpace(el.Text())
	}
	tr, ok := translations[text]
	if !ok {
		return false
	}
	if rt == nil {
		el.SetText(tr)
		return true
	}

	var images []string
	for _, run := range rt.Runs {
		images = append(images, run.Image)
	}

	for _, child := range el.ChildElements() {
		el.RemoveChild(child)
	}
	p := el.CreateElement("p")
	for i, word := range strings.Fields(tr) {
		if i > 0 {
			sp := p.CreateElement("s")
			sp.CreateElement("r").CreateCData(" ")
		}
		s := p.CreateElement("s")
		if i < len(images) && images[i] != "" {
			s.CreateAttr("Image", images[i])
		}
		s.CreateElement("r").SetText(word)
	}
	return true
}

func translateSettings(f *fixzip.File, translations map[string]string, targetLanguage string) ([]byte, error) {
	raw, err := readEntry(f)
	if err != nil {
		return nil, err
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, nil
	}
	root := doc.Root()
	if root == nil {
		return nil, nil
	}

	modified := false
	if el := root.SelectElement("Description"); el != nil {
		if tr, ok := translations[strings.TrimSpace(el.Text())]; ok {
			el.SetText(tr)
			modified = true
		}
	}
	if targetLanguage != "" {
		el := root.SelectElement("Language")
		if el == nil {
			el = root.CreateElement("Language")
		}
		el.SetText(MapLanguageCode(targetLanguage))
		modified = true
	}
	if !modified {
		return nil, nil
	}
	doc.Indent(2)
	return doc.WriteToBytes()
}

// gridLanguages maps bare language codes to the region-qualified spelling
// the container expects. Codes already carrying a region pass through.
var gridLanguages = map[string]string{
	"af": "af-ZA",
	"ar": "ar-SA",
	"ca": "ca-ES",
	"cs": "cs-CZ",
	"cy": "cy-GB",
	"da": "da-DK",
	"de": "de-DE",
	"el": "el-GR",
	"en": "en-GB",
	"es": "es-ES",
	"eu": "eu-ES",
	"fi": "fi-FI",
	"fo": "fo-FO",
	"fr": "fr-FR",
	"he": "he-IL",
	"hr": "hr-HR",
	"it": "it-IT",
	"ja": "ja-JP",
	"ko": "ko-KR",
	"nb": "nb-NO",
	"nl": "nl-NL",
	"no": "nb-NO",
	"pl": "pl-PL",
	"pt": "pt-PT",
	"ru": "ru-RU",
	"sk": "sk-SK",
	"sl": "sl-SI",
	"sv": "sv-SE",
	"uk": "uk-UA",
	"zh": "zh-CN",
}

// rtlFallback lists right-to-left languages without an entry of their own;
// the container only ships an Arabic right-to-left voice configuration.
var rtlFallback = map[string]struct{}{
	"fa": {}, "ur": {}, "yi": {}, "dv": {}, "ha": {}, "ps": {},
}

// MapLanguageCode converts a standard language code to the container's
// region-qualified form. Unknown codes are canonicalized when parseable and
// otherwise returned unchanged.
func MapLanguageCode(code string) string {
	if mapped, ok := gridLanguages[code]; ok {
		return mapped
	}
	if _, ok := rtlFallback[code]; ok {
		return "ar-SA"
	}
	if strings.Contains(code, "-") {
		return code
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	return tag.String()
}
