package gridset

import (
	"archive/zip"
	"encoding/base64"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/maruel/natural"
	"go.uber.org/zap"

	"aacc/archive"
	"aacc/board"
	"aacc/commands"
	"aacc/convert"
	"aacc/styling"
)

type archiveReader = *zip.Reader

const defaultGridDim = 4

func decodeContainer(data []byte, opts *convert.Options) (*board.Document, error) {
	log := opts.Log.Named("gridset")

	zr, err := archive.Open(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", convert.ErrInvalidContainer, err)
	}

	doc := board.NewDocument()
	cfg := readSettings(zr, log)
	fm := readFileMap(zr, log)
	sheet := readSheet(zr, log)

	dirs, err := pageDirs(zr)
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		page, err := decodeGrid(zr, dir, fm, sheet, opts, log)
		if err != nil {
			return nil, fmt.Errorf("page %q: %w", dir, err)
		}
		doc.AddPage(page)
	}

	// second pass: resolve name-based navigation targets to page ids;
	// unresolved targets stay recorded as dangling references
	resolveNavigationTargets(doc)

	if cfg.StartGrid != "" {
		if _, ok := doc.Page(cfg.StartGrid); ok {
			doc.RootID = cfg.StartGrid
		} else if p := pageByName(doc, cfg.StartGrid); p != nil {
			doc.RootID = p.ID
		} else {
			log.Warn("Start grid does not match any page", zap.String("start", cfg.StartGrid))
		}
	}
	return doc, nil
}

// pageDirs enumerates page sub-directories in natural name order, so decode
// results are deterministic regardless of archive entry order.
func pageDirs(zr archiveReader) ([]string, error) {
	seen := make(map[string]struct{})
	var dirs []string
	err := archive.Walk(zr, gridsRoot, func(f *zip.File) error {
		if dir, ok := pageDirOf(f.FileHeader.Name); ok {
			if _, dup := seen[dir]; !dup {
				seen[dir] = struct{}{}
				dirs = append(dirs, dir)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", convert.ErrInvalidContainer, err)
	}
	sort.Sort(natural.StringSlice(dirs))
	return dirs, nil
}

func readSheet(zr archiveReader, log *zap.Logger) *styling.Sheet {
	data, found, err := archive.ReadFile(zr, stylesPath)
	if err != nil || !found {
		if err != nil {
			log.Warn("Unable to read style sheet", zap.Error(err))
		}
		return styling.NewSheet()
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		log.Warn("Malformed style sheet, ignoring", zap.Error(err))
		return styling.NewSheet()
	}
	sheet, err := styling.ParseSheet(doc)
	if err != nil {
		log.Warn("Unable to parse style sheet, ignoring", zap.Error(err))
		return styling.NewSheet()
	}
	return sheet
}

// decodeGrid parses one grid document into a canonical page. A structurally
// invalid document is fatal for full decoding: a page whose structure cannot
// be parsed cannot be safely represented.
func decodeGrid(zr archiveReader, dir string, fm fileMap, sheet *styling.Sheet, opts *convert.Options, log *zap.Logger) (*board.Page, error) {
	data, found, err := archive.ReadFile(zr, gridPath(dir))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: missing grid document", convert.ErrMalformedPage)
	}

	gdoc := etree.NewDocument()
	if err := gdoc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %v", convert.ErrMalformedPage, err)
	}
	root := gdoc.Root()
	if root == nil || root.Tag != "Grid" {
		return nil, fmt.Errorf("%w: unexpected root element", convert.ErrMalformedPage)
	}

	page := &board.Page{
		ID:   root.SelectAttrValue("GridGuid", dir),
		Name: root.SelectAttrValue("Name", dir),
	}
	if page.ID == "" {
		page.ID = dir
	}
	if page.Name == "" {
		page.Name = dir
	}

	rows := countDefinitions(root.SelectElement("RowDefinitions"), "RowDefinition")
	cols := countDefinitions(root.SelectElement("ColumnDefinitions"), "ColumnDefinition")
	page.Grid = &board.Grid{Rows: rows, Columns: cols}

	if el := root.SelectElement("Style"); el != nil {
		page.Style = styling.ParseCellStyle(el, sheet)
	}

	for _, cellEl := range root.FindElements("Cells/Cell") {
		btn := decodeCell(cellEl, dir, page.ID, zr, fm, sheet, opts, log)
		if btn != nil {
			page.Buttons = append(page.Buttons, btn)
		}
	}

	if wl := root.FindElement("WordList"); wl != nil {
		page.Words = parseWordListElement(wl)
	}
	return page, nil
}

// countDefinitions sizes one grid axis. An absent definition list falls back
// to the default; a list that collapsed to a single entry counts as one, not
// zero.
func countDefinitions(list *etree.Element, tag string) int {
	if list == nil {
		return defaultGridDim
	}
	n := len(list.SelectElements(tag))
	if n == 0 {
		return defaultGridDim
	}
	return n
}

// decodeCell builds a button from a cell element. Cells without content are
// layout spacers and produce no button.
func decodeCell(cellEl *etree.Element, dir, pageID string, zr archiveReader, fm fileMap, sheet *styling.Sheet, opts *convert.Options, log *zap.Logger) *board.Button {
	content := cellEl.SelectElement("Content")
	if content == nil {
		return nil
	}

	pos := cellPosition(cellEl)
	btn := &board.Button{
		ID:       fmt.Sprintf("%s_button_%d_%d", pageID, pos.X, pos.Y),
		Position: &pos,
	}

	if ci := content.SelectElement("CaptionAndImage"); ci != nil {
		if caption := ci.SelectElement("Caption"); caption != nil {
			btn.Label = strings.TrimSpace(caption.Text())
			btn.Message = btn.Label
		}
		if img := ci.SelectElement("Image"); img != nil {
			if raw := strings.TrimSpace(img.Text()); raw != "" {
				ref := board.ParseSymbolRef(raw)
				btn.Symbol = &ref
			}
		}
	}

	btn.Content = board.ParseContentKind(contentAttr(content, "ContentType"))
	btn.SubType = contentAttr(content, "ContentSubType")

	params, extra := decodeParameters(content.SelectElement("Parameters"))
	btn.Extra = extra
	if rich, ok := params["text"]; ok && rich != nil {
		if btn.Message == "" {
			btn.Message = rich.Text()
		}
	}

	btn.Access = decodeAccessibility(cellEl, content)

	if el := content.SelectElement("Audio"); el != nil {
		id := el.SelectAttrValue("Id", "")
		if data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(el.Text())); err == nil && len(data) > 0 {
			btn.Audio = &board.AudioRef{ID: id, Data: data}
		} else if err != nil {
			log.Warn("Unable to decode cell audio, ignoring", zap.String("id", id), zap.Error(err))
		}
	}

	if el := content.SelectElement("Style"); el != nil {
		btn.Style = styling.ParseCellStyle(el, sheet)
	}

	btn.Action = decodeCommands(content.SelectElement("Commands"), params, log)

	if btn.Symbol != nil {
		resolveSymbol(btn, zr, dir, fm, pos, opts)
	}
	return btn
}

// cellPosition parses coordinates and spans, defaulting coordinates to 0 and
// spans to 1 when absent or non-numeric.
func cellPosition(cellEl *etree.Element) board.GridPosition {
	return board.GridPosition{
		X:       intAttr(cellEl, "X", 0),
		Y:       intAttr(cellEl, "Y", 0),
		ColSpan: spanAttr(cellEl, "ColumnSpan"),
		RowSpan: spanAttr(cellEl, "RowSpan"),
	}
}

func intAttr(el *etree.Element, name string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(el.SelectAttrValue(name, "")))
	if err != nil {
		return def
	}
	return v
}

func spanAttr(el *etree.Element, name string) int {
	if v := intAttr(el, name, 1); v >= 1 {
		return v
	}
	return 1
}

// contentAttr reads a content property that appears either as an attribute
// or as a child element, depending on container version.
func contentAttr(content *etree.Element, name string) string {
	if v := content.SelectAttrValue(name, ""); v != "" {
		return v
	}
	if el := content.SelectElement(name); el != nil {
		return strings.TrimSpace(el.Text())
	}
	return ""
}

// decodeParameters turns the open Parameters list into rich values for the
// known keys and a verbatim extension bag for everything else. A parameter
// value is either plain text, a rich-text run sequence, or an embedded word
// list fragment.
func decodeParameters(list *etree.Element) (map[string]*board.RichText, map[string]string) {
	if list == nil {
		return nil, nil
	}
	rich := make(map[string]*board.RichText)
	var extra map[string]string
	for _, p := range list.SelectElements("Parameter") {
		key := p.SelectAttrValue("Key", "")
		if key == "" {
			continue
		}
		if wl := p.FindElement("WordList"); wl != nil {
			// wordlist-valued parameters ride along as flat text of
			// their items; the page-level wordlist owns the data
			flat := strings.Join(parseWordListElement(wl).Texts(), " ")
			if extra == nil {
				extra = make(map[string]string)
			}
			extra[key] = flat
			continue
		}
		if runs := parseSymbolRuns(p); runs != nil {
			rich[key] = runs
			continue
		}
		if extra == nil {
			extra = make(map[string]string)
		}
		extra[key] = strings.TrimSpace(p.Text())
	}
	return rich, extra
}

// parseSymbolRuns reads the <p><s><r> run structure of a rich-text value.
// Returns nil when the element holds no run markup.
func parseSymbolRuns(el *etree.Element) *board.RichText {
	sElems := el.FindElements(".//s")
	if len(sElems) == 0 {
		return nil
	}
	rt := &board.RichText{}
	for _, s := range sElems {
		image := s.SelectAttrValue("Image", "")
		for _, r := range s.FindElements(".//r") {
			rt.Runs = append(rt.Runs, board.SymbolRun{Text: r.Text(), Image: image})
		}
	}
	if len(rt.Runs) == 0 {
		return nil
	}
	return rt
}

// decodeAccessibility merges the single scan-block attribute with the
// list-valued element into one set, dropping out-of-range values.
func decodeAccessibility(cellEl, content *etree.Element) *board.Accessibility {
	acc := &board.Accessibility{Visibility: board.Visible}

	if v, err := strconv.Atoi(strings.TrimSpace(cellEl.SelectAttrValue("ScanBlock", ""))); err == nil {
		acc.AddScanBlock(v)
	}
	for _, el := range content.FindElements("ScanBlocks/ScanBlock") {
		if v, err := strconv.Atoi(strings.TrimSpace(el.Text())); err == nil {
			acc.AddScanBlock(v)
		}
	}
	if el := content.SelectElement("Visibility"); el != nil {
		acc.Visibility = board.ParseVisibility(el.Text())
	}
	if el := content.SelectElement("DirectActivate"); el != nil {
		v := strings.TrimSpace(el.Text())
		acc.DirectActivate = strings.EqualFold(v, "true") || v == "1"
	}
	if acc.IsDefault() {
		return nil
	}
	return acc
}

// decodeCommands parses the cell's command list into one semantic action.
// Containers chain commands; the first command carrying semantic weight wins
// and the rest stay reachable through the platform bag of their own actions
// only if needed - in practice multi-command cells are rare.
func decodeCommands(list *etree.Element, params map[string]*board.RichText, log *zap.Logger) *board.SemanticAction {
	if list == nil {
		return nil
	}
	var action *board.SemanticAction
	for _, cmdEl := range list.SelectElements("Command") {
		id := cmdEl.SelectAttrValue("ID", "")
		if id == "" {
			continue
		}
		native := board.NativeCommand{ID: id}
		for _, p := range cmdEl.SelectElements("Parameter") {
			key := p.SelectAttrValue("Key", "")
			if key == "" {
				continue
			}
			value := strings.TrimSpace(p.Text())
			if rt := parseSymbolRuns(p); rt != nil {
				value = rt.Text()
			}
			native.Params = append(native.Params, board.CommandParam{Key: key, Value: value})
		}
		a, err := commands.FromNative("gridset", native)
		if err != nil {
			log.Warn("Unable to map native command", zap.String("command", id), zap.Error(err))
			continue
		}
		if action == nil {
			action = a
		}
	}
	if action != nil {
		if rich, ok := params["text"]; ok {
			action.Rich = rich
			if action.Text == "" {
				action.Text = rich.Text()
			}
		}
	}
	return action
}

// resolveSymbol fills the button's resolved image location using the layered
// lookup of ResolveCellImage. Unresolved references are recorded, not errors.
func resolveSymbol(btn *board.Button, zr archiveReader, dir string, fm fileMap, pos board.GridPosition, opts *convert.Options) {
	if btn.Symbol.IsLibrary {
		if opts.BuiltinAssets != nil {
			if path, ok := opts.BuiltinAssets(*btn.Symbol); ok {
				btn.Symbol.ResolvedPath = path
			}
		}
		return
	}
	req := ImageRequest{
		BaseDir:      gridsRoot + dir,
		X:            pos.X,
		Y:            pos.Y,
		ImageName:    btn.Symbol.Path,
		DynamicFiles: fm[gridPath(dir)],
	}
	if path, ok := ResolveCellImage(zr, req); ok {
		btn.Symbol.ResolvedPath = path
	}
}

// resolveNavigationTargets rewrites name-based navigation targets to page
// ids where a page with that name exists; everything else stays as read.
func resolveNavigationTargets(doc *board.Document) {
	byName := make(map[string]string)
	_ = doc.Traverse(func(p *board.Page) error {
		if _, dup := byName[p.Name]; !dup {
			byName[p.Name] = p.ID
		}
		return nil
	})
	_ = doc.Traverse(func(p *board.Page) error {
		for _, b := range p.Buttons {
			if b.Action == nil || b.Action.Category != board.Navigation || b.Action.Target == "" {
				continue
			}
			if _, ok := doc.Page(b.Action.Target); ok {
				continue
			}
			if id, ok := byName[b.Action.Target]; ok {
				b.Action.Target = id
			}
		}
		return nil
	})
}

func pageByName(doc *board.Document, name string) *board.Page {
	var found *board.Page
	_ = doc.Traverse(func(p *board.Page) error {
		if found == nil && p.Name == name {
			found = p
		}
		return nil
	})
	return found
}
