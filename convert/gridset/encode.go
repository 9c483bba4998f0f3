package gridset

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/beevik/etree"
	"github.com/gosimple/slug"

	"aacc/board"
	"aacc/commands"
	"aacc/convert"
	"aacc/styling"
)

func encodeContainer(doc *board.Document, opts *convert.Options) ([]byte, error) {
	sheet := styling.NewSheet()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	// containers reference grids by name, while canonical navigation
	// targets hold page ids
	nameOf := make(map[string]string)
	dirOf := gridDirectories(doc, nameOf)

	var staticPaths []string
	err := doc.Traverse(func(p *board.Page) error {
		gdoc, err := encodeGrid(p, sheet, nameOf)
		if err != nil {
			return fmt.Errorf("page %q: %w", p.ID, err)
		}
		path := gridPath(dirOf[p.ID])
		staticPaths = append(staticPaths, path)
		return writeXMLToZip(zw, path, gdoc)
	})
	if err != nil {
		return nil, err
	}

	if sheet.Len() > 0 {
		if err := writeXMLToZip(zw, stylesPath, styling.SheetToXML(sheet)); err != nil {
			return nil, err
		}
	}

	cfg := settings{Language: opts.TargetLanguage}
	if root, ok := doc.Root(); ok {
		cfg.StartGrid = root.Name
	}
	if err := writeXMLToZip(zw, settingsPath, settingsToXML(cfg)); err != nil {
		return nil, err
	}

	fm := make(fileMap, len(staticPaths))
	if err := writeXMLToZip(zw, fileMapPath, fileMapToXML(fm, staticPaths)); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// gridDirectories assigns each page a container directory. Page names carry
// arbitrary user text, so directories use a slug of the name, uniquified on
// collision and falling back to the page id for names that slug to nothing.
// Readers identify pages by the Name and GridGuid attributes, not the
// directory, so the layout stays readable without being load bearing.
func gridDirectories(doc *board.Document, nameOf map[string]string) map[string]string {
	dirOf := make(map[string]string)
	used := make(map[string]struct{})
	_ = doc.Traverse(func(p *board.Page) error {
		nameOf[p.ID] = p.Name
		dir := slug.Make(p.Name)
		if dir == "" {
			dir = p.ID
		}
		if dir == "" {
			dir = "grid"
		}
		if _, taken := used[dir]; taken {
			base := dir
			for n := 2; ; n++ {
				dir = fmt.Sprintf("%s-%d", base, n)
				if _, taken := used[dir]; !taken {
					break
				}
			}
		}
		used[dir] = struct{}{}
		dirOf[p.ID] = dir
		return nil
	})
	return dirOf
}

func writeXMLToZip(zw *zip.Writer, name string, doc *etree.Document) error {
	doc.Indent(2)
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("unable to create container entry %q: %w", name, err)
	}
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("unable to write container entry %q: %w", name, err)
	}
	return nil
}

func encodeGrid(p *board.Page, sheet *styling.Sheet, nameOf map[string]string) (*etree.Document, error) {
	gdoc := etree.NewDocument()
	gdoc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)
	root := gdoc.CreateElement("Grid")
	root.CreateAttr("xmlns:xsi", "http://www.w3.org/2001/XMLSchema-instance")
	root.CreateAttr("Name", p.Name)
	if p.ID != "" {
		root.CreateAttr("GridGuid", p.ID)
	}

	rows, cols := gridDimensions(p)
	writeDefinitions(root.CreateElement("RowDefinitions"), "RowDefinition", rows)
	writeDefinitions(root.CreateElement("ColumnDefinitions"), "ColumnDefinition", cols)

	if p.Style != nil && !p.Style.IsZero() {
		styling.WriteCellStyle(root, p.Style, sheet)
	}

	cells := root.CreateElement("Cells")
	for _, b := range p.Buttons {
		if err := encodeCell(cells, b, sheet, nameOf); err != nil {
			return nil, fmt.Errorf("button %q: %w", b.ID, err)
		}
	}

	if p.Words != nil && len(p.Words.Items) > 0 {
		root.AddChild(WordlistToXML(p.Words))
	}
	return gdoc, nil
}

// gridDimensions derives the definition counts from the declared grid,
// growing them to cover every placed cell and falling back to the default
// square for pages that declare nothing.
func gridDimensions(p *board.Page) (rows, cols int) {
	if p.Grid != nil {
		rows, cols = p.Grid.Rows, p.Grid.Columns
	}
	for _, b := range p.Buttons {
		if b.Position == nil {
			continue
		}
		if need := b.Position.Y + max(b.Position.RowSpan, 1); need > rows {
			rows = need
		}
		if need := b.Position.X + max(b.Position.ColSpan, 1); need > cols {
			cols = need
		}
	}
	if rows <= 0 {
		rows = defaultGridDim
	}
	if cols <= 0 {
		cols = defaultGridDim
	}
	return rows, cols
}

func writeDefinitions(list *etree.Element, tag string, n int) {
	for i := 0; i < n; i++ {
		list.CreateElement(tag)
	}
}

func encodeCell(cells *etree.Element, b *board.Button, sheet *styling.Sheet, nameOf map[string]string) error {
	cell := cells.CreateElement("Cell")
	if b.Position != nil {
		cell.CreateAttr("X", fmt.Sprint(b.Position.X))
		cell.CreateAttr("Y", fmt.Sprint(b.Position.Y))
		if b.Position.ColSpan > 1 {
			cell.CreateAttr("ColumnSpan", fmt.Sprint(b.Position.ColSpan))
		}
		if b.Position.RowSpan > 1 {
			cell.CreateAttr("RowSpan", fmt.Sprint(b.Position.RowSpan))
		}
	}
	if b.Access != nil && len(b.Access.ScanBlocks) == 1 {
		cell.CreateAttr("ScanBlock", fmt.Sprint(b.Access.ScanBlocks[0]))
	}

	content := cell.CreateElement("Content")
	if b.Content != board.ContentNormal {
		content.CreateElement("ContentType").SetText(b.Content.String())
	}
	if b.SubType != "" {
		content.CreateElement("ContentSubType").SetText(b.SubType)
	}

	ci := content.CreateElement("CaptionAndImage")
	if b.Label != "" {
		ci.CreateElement("Caption").SetText(b.Label)
	}
	if b.Symbol != nil {
		ci.CreateElement("Image").SetText(b.Symbol.String())
	}

	if err := encodeCommands(content, b, nameOf); err != nil {
		return err
	}
	encodeAccessibility(content, b.Access)

	if b.Audio != nil && len(b.Audio.Data) > 0 {
		el := content.CreateElement("Audio")
		if b.Audio.ID != "" {
			el.CreateAttr("Id", b.Audio.ID)
		}
		el.SetText(base64.StdEncoding.EncodeToString(b.Audio.Data))
	}

	if b.Style != nil && !b.Style.IsZero() {
		styling.WriteCellStyle(content, b.Style, sheet)
	}
	return nil
}

func encodeCommands(content *etree.Element, b *board.Button, nameOf map[string]string) error {
	action := b.Action
	if action == nil {
		if b.Message == "" && b.Label == "" {
			return nil
		}
		text := b.Message
		if text == "" {
			text = b.Label
		}
		action = board.NewAction(board.SpeakText)
		action.Text = text
	}
	native, err := commands.ToNative("gridset", action)
	if err != nil {
		return err
	}
	cmdEl := content.CreateElement("Commands").CreateElement("Command")
	cmdEl.CreateAttr("ID", native.ID)
	for _, p := range native.Params {
		param := cmdEl.CreateElement("Parameter")
		param.CreateAttr("Key", p.Key)
		switch {
		case p.Key == commands.ParamText && action.Rich != nil && len(action.Rich.Runs) > 0:
			writeSymbolRuns(param, action.Rich)
		case p.Key == commands.ParamGrid:
			if name, ok := nameOf[p.Value]; ok && name != "" {
				param.SetText(name)
			} else {
				param.SetText(p.Value)
			}
		default:
			param.SetText(p.Value)
		}
	}
	return nil
}

// writeSymbolRuns emits the <p><s><r> run structure. Inter-run spaces are
// written as CDATA so readers preserve them verbatim.
func writeSymbolRuns(parent *etree.Element, rt *board.RichText) {
	p := parent.CreateElement("p")
	for i, run := range rt.Runs {
		if i > 0 {
			sp := p.CreateElement("s")
			sp.CreateElement("r").CreateCData(" ")
		}
		s := p.CreateElement("s")
		if run.Image != "" {
			s.CreateAttr("Image", run.Image)
		}
		s.CreateElement("r").SetText(run.Text)
	}
}

func encodeAccessibility(content *etree.Element, acc *board.Accessibility) {
	if acc == nil || acc.IsDefault() {
		return
	}
	if len(acc.ScanBlocks) > 1 {
		blocks := content.CreateElement("ScanBlocks")
		for _, n := range acc.ScanBlocks {
			blocks.CreateElement("ScanBlock").SetText(fmt.Sprint(n))
		}
	}
	if acc.Visibility != board.Visible {
		content.CreateElement("Visibility").SetText(acc.Visibility.String())
	}
	if acc.DirectActivate {
		content.CreateElement("DirectActivate").SetText("true")
	}
}
