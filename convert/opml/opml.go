// Package opml implements the outline codec. Outlines have no grid geometry
// and no ids of their own, so decoding synthesizes a navigation skeleton: a
// one-button super root, a one-button root below it, then the outline's own
// hierarchy as single-column pages. Ids come from the injected generator,
// which keeps decoding deterministic under a fixed generator.
package opml

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"aacc/board"
	"aacc/common"
	"aacc/convert"
)

type Codec struct{}

func New() *Codec {
	return &Codec{}
}

func (*Codec) Format() common.Format {
	return common.FormatOPML
}

// readOutline parses outline bytes. The parser accepts root-less input when
// it only holds character data, so a missing document element is treated as
// an invalid container here.
func readOutline(data []byte) (*etree.Document, error) {
	odoc := etree.NewDocument()
	if err := odoc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %v", convert.ErrInvalidContainer, err)
	}
	if odoc.Root() == nil {
		return nil, fmt.Errorf("%w: no document element", convert.ErrInvalidContainer)
	}
	return odoc, nil
}

func (c *Codec) Decode(data []byte, opts *convert.Options) (*board.Document, error) {
	opts = opts.Normalized()

	odoc, err := readOutline(data)
	if err != nil {
		return nil, err
	}
	doc := board.NewDocument()

	body := odoc.Root().SelectElement("body")
	if body == nil {
		return doc, nil
	}
	outlines := body.SelectElements("outline")
	if len(outlines) == 0 {
		return doc, nil
	}

	ids := opts.IDs
	superRoot := &board.Page{
		ID:   ids.NewID(),
		Name: "Super Root",
		Grid: &board.Grid{Rows: 1, Columns: 1},
	}
	rootPage := &board.Page{
		ID:       ids.NewID(),
		Name:     "Root",
		ParentID: superRoot.ID,
		Grid:     &board.Grid{Rows: 1, Columns: 1},
	}
	superRoot.Buttons = append(superRoot.Buttons, navButton(ids, "Root", rootPage.ID, 0))

	main := outlines[0]
	mainText := main.SelectAttrValue("text", "Main Page")
	children := main.SelectElements("outline")
	mainPage := &board.Page{
		ID:       ids.NewID(),
		Name:     mainText,
		ParentID: rootPage.ID,
		Grid:     &board.Grid{Rows: max(len(children), 1), Columns: 1},
	}
	rootPage.Buttons = append(rootPage.Buttons, navButton(ids, mainText, mainPage.ID, 0))

	for i, child := range children {
		if btn := decodeOutline(doc, ids, child, mainPage.ID, i); btn != nil {
			mainPage.Buttons = append(mainPage.Buttons, btn)
		}
	}

	doc.AddPage(mainPage)
	doc.AddPage(rootPage)
	doc.AddPage(superRoot)
	doc.RootID = superRoot.ID
	return doc, nil
}

// decodeOutline turns one outline into a button: outlines with children
// become single-column pages behind a navigation button, leaves speak their
// text. Outlines without text are dropped.
func decodeOutline(doc *board.Document, ids board.IDGenerator, outline *etree.Element, parentID string, row int) *board.Button {
	text := outline.SelectAttrValue("text", "")
	if strings.TrimSpace(text) == "" {
		return nil
	}

	children := outline.SelectElements("outline")
	if len(children) == 0 {
		btn := &board.Button{
			ID:       ids.NewID(),
			Label:    text,
			Message:  text,
			Position: &board.GridPosition{X: 0, Y: row},
		}
		btn.Action = board.NewAction(board.SpeakText)
		btn.Action.Text = text
		return btn
	}

	page := &board.Page{
		ID:       ids.NewID(),
		Name:     text,
		ParentID: parentID,
		Grid:     &board.Grid{Rows: len(children), Columns: 1},
	}
	for i, child := range children {
		if btn := decodeOutline(doc, ids, child, page.ID, i); btn != nil {
			page.Buttons = append(page.Buttons, btn)
		}
	}
	doc.AddPage(page)
	return navButton(ids, text, page.ID, row)
}

func navButton(ids board.IDGenerator, label, target string, row int) *board.Button {
	btn := &board.Button{
		ID:       ids.NewID(),
		Label:    label,
		Message:  label,
		Position: &board.GridPosition{X: 0, Y: row},
	}
	btn.Action = board.NewAction(board.NavigateTo)
	btn.Action.Target = target
	return btn
}

func (c *Codec) Encode(doc *board.Document, opts *convert.Options) ([]byte, error) {
	odoc := etree.NewDocument()
	odoc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)
	opml := odoc.CreateElement("opml")
	opml.CreateAttr("version", "2.0")
	opml.CreateElement("head").CreateElement("title").SetText("AAC Tree Export")
	body := opml.CreateElement("body")

	main, ok := mainPage(doc)
	if !ok {
		return nil, fmt.Errorf("document has no pages to export")
	}

	outline := body.CreateElement("outline")
	outline.CreateAttr("text", main.Name)
	visited := map[string]struct{}{main.ID: {}}
	encodePage(doc, main, outline, visited)

	odoc.Indent(2)
	return odoc.WriteToBytes()
}

// mainPage descends the synthetic navigation skeleton: as long as a page
// holds a single navigation button to a known page, the content lives below.
// Documents decoded from other formats enter here with their root directly.
func mainPage(doc *board.Document) (*board.Page, bool) {
	p, ok := doc.Root()
	if !ok {
		return nil, false
	}
	for hops := 0; hops < 2; hops++ {
		if len(p.Buttons) != 1 {
			break
		}
		b := p.Buttons[0]
		if b.Action == nil || b.Action.Intent != board.NavigateTo {
			break
		}
		next, ok := doc.Page(b.Action.Target)
		if !ok {
			break
		}
		p = next
	}
	return p, true
}

// encodePage writes a page's buttons as child outlines, recursing into
// navigation targets. Pages already on the path are not re-entered, which
// turns navigation cycles into plain leaves.
func encodePage(doc *board.Document, p *board.Page, parent *etree.Element, visited map[string]struct{}) {
	for _, b := range p.Buttons {
		label := b.Label
		if label == "" {
			label = b.Message
		}
		if label == "" {
			continue
		}
		outline := parent.CreateElement("outline")
		outline.CreateAttr("text", label)

		if b.Action == nil || b.Action.Intent != board.NavigateTo {
			continue
		}
		target, ok := doc.Page(b.Action.Target)
		if !ok {
			continue
		}
		if _, seen := visited[target.ID]; seen {
			continue
		}
		visited[target.ID] = struct{}{}
		encodePage(doc, target, outline, visited)
		delete(visited, target.ID)
	}
}

func (c *Codec) ExtractText(data []byte, opts *convert.Options) ([]string, error) {
	odoc, err := readOutline(data)
	if err != nil {
		return nil, err
	}
	var texts []string
	if body := odoc.Root().SelectElement("body"); body != nil {
		collectOutlineTexts(body, &texts)
	}
	return texts, nil
}

func collectOutlineTexts(el *etree.Element, texts *[]string) {
	for _, outline := range el.SelectElements("outline") {
		if text := strings.TrimSpace(outline.SelectAttrValue("text", "")); text != "" {
			*texts = append(*texts, text)
		}
		collectOutlineTexts(outline, texts)
	}
}

func (c *Codec) ApplyTranslations(data []byte, translations map[string]string, opts *convert.Options) ([]byte, error) {
	odoc, err := readOutline(data)
	if err != nil {
		return nil, err
	}
	if body := odoc.Root().SelectElement("body"); body != nil {
		translateOutlines(body, translations)
	}
	odoc.Indent(2)
	return odoc.WriteToBytes()
}

func translateOutlines(el *etree.Element, translations map[string]string) {
	for _, outline := range el.SelectElements("outline") {
		text := strings.TrimSpace(outline.SelectAttrValue("text", ""))
		if tr, ok := translations[text]; ok && text != "" {
			outline.CreateAttr("text", tr)
		}
		translateOutlines(outline, translations)
	}
}
