// Package board defines the canonical in-memory representation of an AAC
// board: a set of pages linked by navigation buttons. Every format codec
// decodes into this model and encodes from it, so it has to be able to carry
// each format's concepts (layout, styling, navigation, rich actions) without
// loss. The package performs no I/O.
package board

import (
	"strings"
)

// Document owns all pages of a single board. Page ids are unique, insertion
// order is preserved. RootID designates the entry page - the first page added
// unless a codec or caller overrides it.
//
// Navigation targets referenced by buttons are not required to resolve to a
// page of the document: formats may define external or unresolved targets and
// those are carried through as dangling references, not errors.
type Document struct {
	RootID string

	pages map[string]*Page
	order []string
}

func NewDocument() *Document {
	return &Document{pages: make(map[string]*Page)}
}

// AddPage inserts the page, overwriting any page with the same id. The first
// page added becomes the root unless RootID was already set, so callers
// building documents programmatically must add the intended root page first.
func (d *Document) AddPage(p *Page) {
	if p == nil {
		return
	}
	if _, ok := d.pages[p.ID]; !ok {
		d.order = append(d.order, p.ID)
	}
	d.pages[p.ID] = p
	if d.RootID == "" {
		d.RootID = p.ID
	}
}

// Page returns the page with the given id.
func (d *Document) Page(id string) (*Page, bool) {
	p, ok := d.pages[id]
	return p, ok
}

// Root returns the designated root page if it resolves.
func (d *Document) Root() (*Page, bool) {
	return d.Page(d.RootID)
}

// Len returns the number of stored pages.
func (d *Document) Len() int {
	return len(d.pages)
}

// Traverse visits every stored page exactly once, in insertion order. Cyclic
// navigation between pages cannot affect termination since traversal iterates
// storage rather than following links. Returning an error from the visitor
// stops the walk.
func (d *Document) Traverse(visit func(*Page) error) error {
	for _, id := range d.order {
		if p, ok := d.pages[id]; ok {
			if err := visit(p); err != nil {
				return err
			}
		}
	}
	return nil
}

// Page is a single screen of a board. Buttons keep insertion order, which is
// the reading order for formats without explicit cell coordinates. ParentID is
// a back-reference only, never an ownership link.
type Page struct {
	ID       string
	Name     string
	ParentID string
	Grid     *Grid
	Buttons  []*Button
	Style    *Style
	Words    *WordList
}

// Grid describes the explicit rectangular layout of a page. Order holds
// button ids laid out row by row and may be nil or sparse (empty strings for
// unoccupied cells).
type Grid struct {
	Rows    int
	Columns int
	Order   [][]string
}

// ContentKind tags special cell content observed in grid containers.
type ContentKind int

const (
	ContentNormal ContentKind = iota
	ContentAutoContent
	ContentWorkspace
	ContentLiveCell
)

func (c ContentKind) String() string {
	switch c {
	case ContentAutoContent:
		return "AutoContent"
	case ContentWorkspace:
		return "Workspace"
	case ContentLiveCell:
		return "LiveCell"
	default:
		return "Normal"
	}
}

// ParseContentKind maps a container's content type string to ContentKind,
// defaulting to ContentNormal for anything unrecognized.
func ParseContentKind(s string) ContentKind {
	switch strings.TrimSpace(s) {
	case "AutoContent":
		return ContentAutoContent
	case "Workspace":
		return ContentWorkspace
	case "LiveCell":
		return ContentLiveCell
	default:
		return ContentNormal
	}
}

// Visibility controls how accessibility scanning and pointer input treat a
// button.
type Visibility int

const (
	Visible Visibility = iota
	Hidden
	Disabled
	PointerAndTouchOnly
	Empty
)

func (v Visibility) String() string {
	switch v {
	case Hidden:
		return "Hidden"
	case Disabled:
		return "Disabled"
	case PointerAndTouchOnly:
		return "PointerAndTouchOnly"
	case Empty:
		return "Empty"
	default:
		return "Visible"
	}
}

func ParseVisibility(s string) Visibility {
	switch strings.TrimSpace(s) {
	case "Hidden":
		return Hidden
	case "Disabled":
		return Disabled
	case "PointerAndTouchOnly":
		return PointerAndTouchOnly
	case "Empty":
		return Empty
	default:
		return Visible
	}
}

const (
	ScanBlockMin = 1
	ScanBlockMax = 8
)

// Accessibility holds switch-scanning attributes of a button. ScanBlocks is a
// de-duplicated, ordered set of block numbers in [ScanBlockMin, ScanBlockMax].
type Accessibility struct {
	ScanBlocks     []int
	Visibility     Visibility
	DirectActivate bool
}

// AddScanBlock inserts the block keeping the set ordered and de-duplicated.
// Values outside the valid range are dropped.
func (a *Accessibility) AddScanBlock(n int) {
	if n < ScanBlockMin || n > ScanBlockMax {
		return
	}
	for i, v := range a.ScanBlocks {
		if v == n {
			return
		}
		if v > n {
			a.ScanBlocks = append(a.ScanBlocks[:i], append([]int{n}, a.ScanBlocks[i:]...)...)
			return
		}
	}
	a.ScanBlocks = append(a.ScanBlocks, n)
}

// IsDefault reports whether all attributes carry default values, in which
// case codecs omit them entirely on encode.
func (a *Accessibility) IsDefault() bool {
	return a == nil || (len(a.ScanBlocks) == 0 && a.Visibility == Visible && !a.DirectActivate)
}

// GridPosition places a cell in a page grid. Spans are always at least one.
type GridPosition struct {
	X       int
	Y       int
	ColSpan int
	RowSpan int
}

// SymbolRef points into a symbol library or at a file shipped with the
// container. Library references use the bracketed form "[Library]path".
type SymbolRef struct {
	Library   string
	Path      string
	IsLibrary bool

	// resolved archive location of the image, when resolution succeeded
	ResolvedPath string
}

// ParseSymbolRef splits a raw symbol string into its library and path parts.
// A leading bracketed token "[WIDGIT]greetings/hello.emf" marks a library
// reference; without it the whole string is a plain path.
func ParseSymbolRef(raw string) SymbolRef {
	if strings.HasPrefix(raw, "[") {
		if end := strings.Index(raw, "]"); end > 0 {
			return SymbolRef{
				Library:   raw[1:end],
				Path:      raw[end+1:],
				IsLibrary: true,
			}
		}
	}
	return SymbolRef{Path: raw}
}

// String renders the reference back to its container form.
func (s SymbolRef) String() string {
	if s.IsLibrary {
		return "[" + s.Library + "]" + s.Path
	}
	return s.Path
}

// AudioRef is an opaque recorded-audio attachment.
type AudioRef struct {
	ID   string
	Data []byte
}

// Button is a single cell of a page. It carries at most one action, in its
// semantic form; the legacy three-way action kind is a projection (see Kind).
// All remaining fields are optional annotations a format may or may not be
// able to express.
type Button struct {
	ID      string
	Label   string
	Message string

	Action   *SemanticAction
	Style    *Style
	Position *GridPosition
	Content  ContentKind
	SubType  string
	Access   *Accessibility
	Symbol   *SymbolRef
	Audio    *AudioRef

	// parameters the codec did not recognize, carried through verbatim
	Extra map[string]string
}

// TargetPageID returns the navigation target when the button navigates.
func (b *Button) TargetPageID() string {
	if b.Action != nil && b.Action.Category == Navigation {
		return b.Action.Target
	}
	return ""
}
