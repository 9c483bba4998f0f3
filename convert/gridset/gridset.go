// Package gridset implements the grid container codec: a ZIP archive of
// cross-referencing XML documents, one grid document per page plus a shared
// style sheet, a settings document and a file map. It is the structurally
// richest format in scope, so this codec also defines the reference behavior
// for symbol references, embedded word lists and accessibility data.
//
// Container layout:
//
//	settings in  Settings0/settings.xml   (StartGrid, Description, Language)
//	style sheet  Styles/styles.xml        (at most one, shared records)
//	pages under  Grids/<PageName>/grid.xml
//	cell images  Grids/<PageName>/Images/...
//	file index   FileMap.xml
package gridset

import (
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"aacc/archive"
	"aacc/board"
	"aacc/common"
	"aacc/convert"
)

const (
	gridsRoot    = "Grids/"
	gridFileName = "grid.xml"
	imagesDir    = "Images"
	settingsPath = "Settings0/settings.xml"
	stylesPath   = "Styles/styles.xml"
	fileMapPath  = "FileMap.xml"
)

// Codec is the grid container codec. The zero value is not usable, construct
// with New.
type Codec struct{}

func New() *Codec {
	return &Codec{}
}

func (*Codec) Format() common.Format {
	return common.FormatGridset
}

func (c *Codec) Decode(data []byte, opts *convert.Options) (*board.Document, error) {
	return decodeContainer(data, opts.Normalized())
}

func (c *Codec) Encode(doc *board.Document, opts *convert.Options) ([]byte, error) {
	return encodeContainer(doc, opts.Normalized())
}

func (c *Codec) ExtractText(data []byte, opts *convert.Options) ([]string, error) {
	return extractText(data, opts.Normalized())
}

func (c *Codec) ApplyTranslations(data []byte, translations map[string]string, opts *convert.Options) ([]byte, error) {
	return applyTranslations(data, translations, opts.Normalized())
}

// gridPath returns the archive path of a page's grid document.
func gridPath(pageDir string) string {
	return gridsRoot + pageDir + "/" + gridFileName
}

// pageDirOf extracts the page directory name from a grid document path.
func pageDirOf(entryName string) (string, bool) {
	name := strings.ReplaceAll(entryName, `\`, "/")
	if !strings.HasPrefix(name, gridsRoot) || !strings.HasSuffix(name, "/"+gridFileName) {
		return "", false
	}
	dir := strings.TrimSuffix(strings.TrimPrefix(name, gridsRoot), "/"+gridFileName)
	if dir == "" || strings.Contains(dir, "/") {
		return "", false
	}
	return dir, true
}

// settings is the decoded Settings0/settings.xml document.
type settings struct {
	StartGrid   string
	Description string
	Language    string
}

func readSettings(zr archiveReader, log *zap.Logger) settings {
	var s settings
	data, found, err := archive.ReadFile(zr, settingsPath)
	if err != nil || !found {
		if err != nil {
			log.Warn("Unable to read settings document", zap.Error(err))
		}
		return s
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		log.Warn("Malformed settings document, ignoring", zap.Error(err))
		return s
	}
	root := doc.Root()
	if root == nil {
		return s
	}
	if el := root.FindElement(".//StartGrid"); el != nil {
		s.StartGrid = strings.TrimSpace(el.Text())
	}
	if el := root.SelectElement("Description"); el != nil {
		s.Description = strings.TrimSpace(el.Text())
	}
	if el := root.SelectElement("Language"); el != nil {
		s.Language = strings.TrimSpace(el.Text())
	}
	return s
}

func settingsToXML(s settings) *etree.Document {
	doc := etree.NewDocument()
	root := doc.CreateElement("GridSetSettings")
	if s.Description != "" {
		root.CreateElement("Description").SetText(s.Description)
	}
	if s.Language != "" {
		root.CreateElement("Language").SetText(s.Language)
	}
	root.CreateElement("StartGrid").SetText(s.StartGrid)
	return doc
}

// fileMap lists, per static grid document path, the dynamically named files
// (generated cell images) belonging to that page.
type fileMap map[string][]string

func readFileMap(zr archiveReader, log *zap.Logger) fileMap {
	fm := make(fileMap)
	data, found, err := archive.ReadFile(zr, fileMapPath)
	if err != nil || !found {
		if err != nil {
			log.Warn("Unable to read file map", zap.Error(err))
		}
		return fm
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		log.Warn("Malformed file map, ignoring", zap.Error(err))
		return fm
	}
	for _, entry := range doc.FindElements("//Entries/Entry") {
		static := strings.ReplaceAll(entry.SelectAttrValue("StaticFile", ""), `\`, "/")
		if static == "" {
			continue
		}
		var dynamic []string
		for _, f := range entry.FindElements("DynamicFiles/File") {
			if name := strings.TrimSpace(f.Text()); name != "" {
				dynamic = append(dynamic, name)
			}
		}
		fm[static] = dynamic
	}
	return fm
}

func fileMapToXML(fm fileMap, order []string) *etree.Document {
	doc := etree.NewDocument()
	entries := doc.CreateElement("FileMap").CreateElement("Entries")
	for _, static := range order {
		entry := entries.CreateElement("Entry")
		entry.CreateAttr("StaticFile", strings.ReplaceAll(static, "/", `\`))
		if dynamic := fm[static]; len(dynamic) > 0 {
			files := entry.CreateElement("DynamicFiles")
			for _, name := range dynamic {
				files.CreateElement("File").SetText(name)
			}
		}
	}
	return doc
}
