package gridset

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	fixzip "github.com/hidez8891/zip"
	"go.uber.org/zap"

	"aacc/archive"
	"aacc/board"
	"aacc/convert"
)

// CreateWordlist builds a word list from loosely typed input: a slice of
// strings, a slice of item records, or a map keyed by text. Map input loses
// its iteration order, so callers needing stable output pass a slice.
func CreateWordlist(input any) (*board.WordList, error) {
	switch v := input.(type) {
	case *board.WordList:
		return v, nil
	case []string:
		return board.WordListFromStrings(v), nil
	case []board.WordListItem:
		return &board.WordList{Items: v}, nil
	case map[string]string:
		wl := &board.WordList{}
		for text, image := range v {
			wl.Items = append(wl.Items, board.WordListItem{Text: text, Image: image})
		}
		return wl, nil
	case map[string]board.WordListItem:
		wl := &board.WordList{}
		for text, item := range v {
			if item.Text == "" {
				item.Text = text
			}
			wl.Items = append(wl.Items, item)
		}
		return wl, nil
	default:
		return nil, fmt.Errorf("unsupported word list input type %T", input)
	}
}

// WordlistToXML serializes a word list to its container fragment. Items keep
// their order and are written with the s/r run structure the container uses
// for all item text, so readers addressing runs see every item; part of
// speech defaults to the unknown marker the container expects rather than an
// empty element.
func WordlistToXML(wl *board.WordList) *etree.Element {
	root := etree.NewElement("WordList")
	items := root.CreateElement("Items")
	for _, item := range wl.Items {
		el := items.CreateElement("WordListItem")
		s := el.CreateElement("Text").CreateElement("s")
		if item.Image != "" {
			s.CreateAttr("Image", item.Image)
		}
		s.CreateElement("r").SetText(item.Text)
		if item.Image != "" {
			el.CreateElement("Image").SetText(item.Image)
		}
		pos := item.PartOfSpeech
		if pos == "" {
			pos = "Unknown"
		}
		el.CreateElement("PartOfSpeech").SetText(pos)
	}
	return root
}

func parseWordListElement(el *etree.Element) *board.WordList {
	wl := &board.WordList{}
	for _, itemEl := range el.FindElements("Items/WordListItem") {
		var item board.WordListItem
		if text := itemEl.SelectElement("Text"); text != nil {
			if rt := parseSymbolRuns(text); rt != nil {
				item.Text = rt.Text()
				if len(rt.Runs) > 0 {
					item.Image = rt.Runs[0].Image
				}
			} else {
				item.Text = strings.TrimSpace(text.Text())
			}
		}
		if img := itemEl.SelectElement("Image"); img != nil && item.Image == "" {
			item.Image = strings.TrimSpace(img.Text())
		}
		if pos := itemEl.SelectElement("PartOfSpeech"); pos != nil {
			if v := strings.TrimSpace(pos.Text()); v != "" && v != "Unknown" {
				item.PartOfSpeech = v
			}
		}
		if item.Text != "" {
			wl.Items = append(wl.Items, item)
		}
	}
	return wl
}

// ExtractWordlists collects per-page word lists from a container, keyed by
// page name. Pages without a word list are omitted; a malformed grid
// document skips that page with a warning instead of failing the whole
// extraction, since the caller wants whatever lists are readable.
func ExtractWordlists(data []byte, opts *convert.Options) (map[string]*board.WordList, error) {
	opts = opts.Normalized()
	log := opts.Log.Named("gridset")

	zr, err := archive.Open(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", convert.ErrInvalidContainer, err)
	}
	dirs, err := pageDirs(zr)
	if err != nil {
		return nil, err
	}

	lists := make(map[string]*board.WordList)
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
		root := gdoc.Root()
		if root == nil {
			continue
		}
		wlEl := root.FindElement("WordList")
		if wlEl == nil {
			continue
		}
		name := root.SelectAttrValue("Name", dir)
		if name == "" {
			name = dir
		}
		lists[name] = parseWordListElement(wlEl)
	}
	return lists, nil
}

// UpdateWordlist replaces the word list of one named grid inside a container
// and returns the repackaged archive. Every entry except the target grid
// document is copied through byte for byte, compressed data included, so an
// update never disturbs unrelated pages or media.
func UpdateWordlist(data []byte, gridName string, wl *board.WordList, opts *convert.Options) ([]byte, error) {
	opts = opts.Normalized()

	zr, err := fixzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", convert.ErrInvalidContainer, err)
	}

	target, err := findGridEntry(zr, gridName)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := fixzip.NewWriter(&buf)
	for _, f := range zr.File {
		if f.Name == target.Name {
			continue
		}
		if err := zw.CopyFile(f); err != nil {
			return nil, fmt.Errorf("unable to copy container entry %q: %w", f.Name, err)
		}
	}

	updated, err := replaceWordlist(target, wl)
	if err != nil {
		return nil, err
	}
	w, err := zw.Create(target.Name)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(updated); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// findGridEntry locates the grid document for a page by name, checking the
// directory name first and the Name attribute of each grid second.
func findGridEntry(zr *fixzip.Reader, gridName string) (*fixzip.File, error) {
	byDir := make(map[string]*fixzip.File)
	for _, f := range zr.File {
		if dir, ok := pageDirOf(f.Name); ok {
			byDir[dir] = f
		}
	}
	if f, ok := byDir[gridName]; ok {
		return f, nil
	}
	for _, f := range byDir {
		raw, err := readEntry(f)
		if err != nil {
			continue
		}
		gdoc := etree.NewDocument()
		if err := gdoc.ReadFromBytes(raw); err != nil {
			continue
		}
		if root := gdoc.Root(); root != nil && root.SelectAttrValue("Name", "") == gridName {
			return f, nil
		}
	}
	return nil, &convert.GridNotFoundError{Grid: gridName}
}

func readEntry(f *fixzip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(rc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func replaceWordlist(f *fixzip.File, wl *board.WordList) ([]byte, error) {
	raw, err := readEntry(f)
	if err != nil {
		return nil, err
	}
	gdoc := etree.NewDocument()
	if err := gdoc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", convert.ErrMalformedPage, err)
	}
	root := gdoc.Root()
	if root == nil {
		return nil, fmt.Errorf("%w: empty grid document", convert.ErrMalformedPage)
	}
	if old := root.FindElement("WordList"); old != nil {
		root.RemoveChild(old)
	}
	root.AddChild(WordlistToXML(wl))
	gdoc.Indent(2)
	return gdoc.WriteToBytes()
}
