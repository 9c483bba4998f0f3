// Package styling maps canonical styles to and from a format's style
// capabilities. Shared-style formats keep named records in one style sheet
// and let cells override individual fields, each override carrying an
// explicit force marker; inline-only formats write every field directly on
// the element. Decoding flattens shared record plus overrides into one
// canonical Style; encoding decides per field whether it belongs to the
// shared record or becomes a forced override.
package styling

import (
	"fmt"

	"aacc/board"
)

// Sheet is the shared style table of a container, preserving record order.
type Sheet struct {
	order   []string
	records map[string]*board.Style
}

func NewSheet() *Sheet {
	return &Sheet{records: make(map[string]*board.Style)}
}

// Add inserts or replaces a named record.
func (s *Sheet) Add(key string, style *board.Style) {
	if _, ok := s.records[key]; !ok {
		s.order = append(s.order, key)
	}
	s.records[key] = style
}

// Get returns the named record.
func (s *Sheet) Get(key string) (*board.Style, bool) {
	st, ok := s.records[key]
	return st, ok
}

// Keys returns record names in insertion order.
func (s *Sheet) Keys() []string {
	return s.order
}

func (s *Sheet) Len() int {
	return len(s.order)
}

// Flatten resolves a shared record and a per-cell override set into one
// canonical style. Override fields win regardless of force state; flattened
// override fields keep the forced marker so a later encode can reproduce the
// shared/override split.
func Flatten(base, override *board.Style) *board.Style {
	if base == nil && override == nil {
		return nil
	}
	out := &board.Style{}
	if base != nil {
		*out = *base
	}
	if override != nil {
		if override.BackColor.Set() {
			out.BackColor = board.ForcedText(override.BackColor.Value)
		}
		if override.FontColor.Set() {
			out.FontColor = board.ForcedText(override.FontColor.Value)
		}
		if override.BorderColor.Set() {
			out.BorderColor = board.ForcedText(override.BorderColor.Value)
		}
		if override.BorderWidth.Set() {
			out.BorderWidth = board.ForcedInt(override.BorderWidth.Value)
		}
		if override.FontSize.Set() {
			out.FontSize = board.ForcedInt(override.FontSize.Value)
		}
		if override.FontFamily.Set() {
			out.FontFamily = board.ForcedText(override.FontFamily.Value)
		}
		if override.FontWeight.Set() {
			out.FontWeight = board.ForcedText(override.FontWeight.Value)
		}
		if override.FontStyle.Set() {
			out.FontStyle = board.ForcedText(override.FontStyle.Value)
		}
		if override.Underline.Set() {
			out.Underline = board.ForcedBool(override.Underline.Value)
		}
		if override.LabelAbove.Set() {
			out.LabelAbove = board.ForcedBool(override.LabelAbove.Value)
		}
		if override.Transparent.Set() {
			out.Transparent = board.ForcedBool(override.Transparent.Value)
		}
	}
	if out.IsZero() {
		return nil
	}
	return out
}

// Place decides how a resolved style is written to a shared-style format: it
// picks the shared record to reference and the set of fields that must be
// emitted as forced overrides. Only records whose set fields are all set on
// the style are candidates, since overrides can force a different value but
// cannot unset a field the record carries; among candidates the one needing
// the fewest overrides wins. With no candidate a new record is allocated.
// Records allocated from a style are always candidates for that style again,
// so repeated encodes do not grow the table.
func (s *Sheet) Place(style *board.Style) (key string, overrides *board.Style) {
	if style.IsZero() {
		return "", nil
	}
	best := ""
	bestCost := -1
	for _, k := range s.order {
		rec := s.records[k]
		if extraCount(rec, style) > 0 {
			continue
		}
		cost := mismatchCount(rec, style)
		if bestCost < 0 || cost < bestCost {
			best, bestCost = k, cost
		}
	}
	if best == "" {
		best = s.allocate(style)
	}
	return best, diff(s.records[best], style)
}

// allocate creates a shared record holding the style's explicit fields;
// forced fields stay per-cell by definition.
func (s *Sheet) allocate(style *board.Style) string {
	rec := &board.Style{}
	copyExplicit := func(dst *board.TextField, src board.TextField) {
		if src.State == board.FieldExplicit {
			*dst = src
		}
	}
	copyExplicit(&rec.BackColor, style.BackColor)
	copyExplicit(&rec.FontColor, style.FontColor)
	copyExplicit(&rec.BorderColor, style.BorderColor)
	copyExplicit(&rec.FontFamily, style.FontFamily)
	copyExplicit(&rec.FontWeight, style.FontWeight)
	copyExplicit(&rec.FontStyle, style.FontStyle)
	if style.BorderWidth.State == board.FieldExplicit {
		rec.BorderWidth = style.BorderWidth
	}
	if style.FontSize.State == board.FieldExplicit {
		rec.FontSize = style.FontSize
	}
	if style.Underline.State == board.FieldExplicit {
		rec.Underline = style.Underline
	}
	if style.LabelAbove.State == board.FieldExplicit {
		rec.LabelAbove = style.LabelAbove
	}
	if style.Transparent.State == board.FieldExplicit {
		rec.Transparent = style.Transparent
	}

	key := fmt.Sprintf("Style%d", s.Len()+1)
	s.Add(key, rec)
	return key
}

// extraCount counts fields the record sets while the style leaves inherited.
// Referencing such a record would attach those fields to the cell on the next
// decode.
func extraCount(rec, style *board.Style) int {
	n := 0
	text := func(r, s board.TextField) {
		if r.Set() && !s.Set() {
			n++
		}
	}
	num := func(r, s board.IntField) {
		if r.Set() && !s.Set() {
			n++
		}
	}
	flag := func(r, s board.BoolField) {
		if r.Set() && !s.Set() {
			n++
		}
	}
	text(rec.BackColor, style.BackColor)
	text(rec.FontColor, style.FontColor)
	text(rec.BorderColor, style.BorderColor)
	text(rec.FontFamily, style.FontFamily)
	text(rec.FontWeight, style.FontWeight)
	text(rec.FontStyle, style.FontStyle)
	num(rec.BorderWidth, style.BorderWidth)
	num(rec.FontSize, style.FontSize)
	flag(rec.Underline, style.Underline)
	flag(rec.LabelAbove, style.LabelAbove)
	flag(rec.Transparent, style.Transparent)
	return n
}

// mismatchCount counts fields where the record and the style disagree: either
// the record sets a different value, or the style sets a field the record
// does not carry.
func mismatchCount(rec, style *board.Style) int {
	n := 0
	text := func(r, s board.TextField) {
		if s.Set() && (!r.Set() || r.Value != s.Value) {
			n++
		}
	}
	num := func(r, s board.IntField) {
		if s.Set() && (!r.Set() || r.Value != s.Value) {
			n++
		}
	}
	flag := func(r, s board.BoolField) {
		if s.Set() && (!r.Set() || r.Value != s.Value) {
			n++
		}
	}
	text(rec.BackColor, style.BackColor)
	text(rec.FontColor, style.FontColor)
	text(rec.BorderColor, style.BorderColor)
	text(rec.FontFamily, style.FontFamily)
	text(rec.FontWeight, style.FontWeight)
	text(rec.FontStyle, style.FontStyle)
	num(rec.BorderWidth, style.BorderWidth)
	num(rec.FontSize, style.FontSize)
	flag(rec.Underline, style.Underline)
	flag(rec.LabelAbove, style.LabelAbove)
	flag(rec.Transparent, style.Transparent)
	return n
}

// diff returns the fields of style that must be emitted as forced overrides
// on top of the record, or nil when the record already covers everything.
func diff(rec, style *board.Style) *board.Style {
	out := &board.Style{}
	text := func(o *board.TextField, r, s board.TextField) {
		if s.Set() && (!r.Set() || r.Value != s.Value) {
			*o = board.ForcedText(s.Value)
		}
	}
	num := func(o *board.IntField, r, s board.IntField) {
		if s.Set() && (!r.Set() || r.Value != s.Value) {
			*o = board.ForcedInt(s.Value)
		}
	}
	flag := func(o *board.BoolField, r, s board.BoolField) {
		if s.Set() && (!r.Set() || r.Value != s.Value) {
			*o = board.ForcedBool(s.Value)
		}
	}
	text(&out.BackColor, rec.BackColor, style.BackColor)
	text(&out.FontColor, rec.FontColor, style.FontColor)
	text(&out.BorderColor, rec.BorderColor, style.BorderColor)
	text(&out.FontFamily, rec.FontFamily, style.FontFamily)
	text(&out.FontWeight, rec.FontWeight, style.FontWeight)
	text(&out.FontStyle, rec.FontStyle, style.FontStyle)
	num(&out.BorderWidth, rec.BorderWidth, style.BorderWidth)
	num(&out.FontSize, rec.FontSize, style.FontSize)
	flag(&out.Underline, rec.Underline, style.Underline)
	flag(&out.LabelAbove, rec.LabelAbove, style.LabelAbove)
	flag(&out.Transparent, rec.Transparent, style.Transparent)
	if out.IsZero() {
		return nil
	}
	return out
}
