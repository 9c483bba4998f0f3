package board

import (
	"maps"
	"slices"
	"sort"

	"github.com/maruel/natural"

	"aacc/utils/debug"
)

// String returns a readable tree of the whole document. It exists solely for
// manual inspection during debugging.
func (d *Document) String() string {
	if d == nil {
		return "<nil Document>"
	}

	tw := debug.NewTreeWriter()
	tw.Line(0, "Document: %d page(s), root %q", len(d.order), d.RootID)

	names := slices.Collect(maps.Keys(d.pages))
	sort.Sort(natural.StringSlice(names))
	for _, id := range names {
		p := d.pages[id]
		tw.Line(1, "Page[%q] name=%q buttons=%d", p.ID, p.Name, len(p.Buttons))
		if p.Grid != nil {
			tw.Line(2, "Grid: %dx%d", p.Grid.Rows, p.Grid.Columns)
		}
		if p.ParentID != "" {
			tw.Line(2, "Parent: %q", p.ParentID)
		}
		if p.Words != nil {
			tw.Line(2, "WordList: %d item(s)", len(p.Words.Items))
		}
		for _, b := range p.Buttons {
			tw.Line(2, "Button[%q] kind=%s", b.ID, b.Kind())
			tw.TextBlock(3, "Label", b.Label)
			if b.Message != "" && b.Message != b.Label {
				tw.TextBlock(3, "Message", b.Message)
			}
			if b.Action != nil {
				tw.Line(3, "Action: %s/%s target=%q", b.Action.Category, b.Action.Intent, b.Action.Target)
			}
			if b.Position != nil {
				tw.Line(3, "Position: (%d,%d) span %dx%d", b.Position.X, b.Position.Y, b.Position.ColSpan, b.Position.RowSpan)
			}
			if b.Symbol != nil {
				tw.Line(3, "Symbol: %s", b.Symbol)
			}
			if !b.Access.IsDefault() {
				tw.Line(3, "Access: blocks=%v visibility=%s direct=%t", b.Access.ScanBlocks, b.Access.Visibility, b.Access.DirectActivate)
			}
		}
	}
	return tw.String()
}
