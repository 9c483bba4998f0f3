package styling

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"aacc/board"
)

// XML shapes of the grid container style documents.
//
// Shared sheet (container root, Styles/styles.xml):
//
//	<StyleData><Styles>
//	  <Style Key="Style1"><BackColour>#FFFFB3</BackColour>...</Style>
//	</Styles></StyleData>
//
// Per-cell element (inside a Cell):
//
//	<Style BasedOnStyle="Style1"><FontSize Force="true">28</FontSize></Style>

const (
	attrKey     = "Key"
	attrBasedOn = "BasedOnStyle"
	attrForce   = "Force"
)

// ParseSheet reads the shared style document. A missing Styles element yields
// an empty sheet, not an error.
func ParseSheet(doc *etree.Document) (*Sheet, error) {
	sheet := NewSheet()
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("style document has no root element")
	}
	styles := root.SelectElement("Styles")
	if styles == nil {
		return sheet, nil
	}
	for _, el := range styles.SelectElements("Style") {
		key := el.SelectAttrValue(attrKey, "")
		if key == "" {
			continue
		}
		sheet.Add(key, parseStyleFields(el, false))
	}
	return sheet, nil
}

// SheetToXML serializes the sheet, keeping record order.
func SheetToXML(sheet *Sheet) *etree.Document {
	doc := etree.NewDocument()
	root := doc.CreateElement("StyleData")
	styles := root.CreateElement("Styles")
	for _, key := range sheet.Keys() {
		rec, _ := sheet.Get(key)
		el := styles.CreateElement("Style")
		el.CreateAttr(attrKey, key)
		writeStyleFields(el, rec, false)
	}
	return doc
}

// ParseCellStyle reads a per-cell style element: the shared record reference
// plus the override fields, flattened against the sheet into one canonical
// style. Unknown record references resolve to overrides only.
func ParseCellStyle(el *etree.Element, sheet *Sheet) *board.Style {
	if el == nil {
		return nil
	}
	var base *board.Style
	if key := el.SelectAttrValue(attrBasedOn, ""); key != "" && sheet != nil {
		base, _ = sheet.Get(key)
	}
	return Flatten(base, parseStyleFields(el, true))
}

// WriteCellStyle emits the per-cell style element for a resolved style,
// splitting it into a shared record reference and forced overrides per the
// sheet's placement policy. Nothing is written for an empty style.
func WriteCellStyle(parent *etree.Element, style *board.Style, sheet *Sheet) {
	if style.IsZero() {
		return
	}
	key, overrides := sheet.Place(style)
	if key == "" && overrides == nil {
		return
	}
	el := parent.CreateElement("Style")
	if key != "" {
		el.CreateAttr(attrBasedOn, key)
	}
	if overrides != nil {
		writeStyleFields(el, overrides, true)
	}
}

// parseStyleFields reads the field elements of a style record. In override
// position a Force attribute (or mere presence) marks the field as forced.
func parseStyleFields(el *etree.Element, override bool) *board.Style {
	st := &board.Style{}

	text := func(tag string, dst *board.TextField) {
		child := el.SelectElement(tag)
		if child == nil {
			return
		}
		v := strings.TrimSpace(child.Text())
		if forcedAttr(child) || override {
			*dst = board.ForcedText(v)
		} else {
			*dst = board.Text(v)
		}
	}
	num := func(tag string, dst *board.IntField) {
		child := el.SelectElement(tag)
		if child == nil {
			return
		}
		v, err := strconv.Atoi(strings.TrimSpace(child.Text()))
		if err != nil {
			return
		}
		if forcedAttr(child) || override {
			*dst = board.ForcedInt(v)
		} else {
			*dst = board.Int(v)
		}
	}
	flag := func(tag string, dst *board.BoolField) {
		child := el.SelectElement(tag)
		if child == nil {
			return
		}
		v := strings.EqualFold(strings.TrimSpace(child.Text()), "true") || strings.TrimSpace(child.Text()) == "1"
		if forcedAttr(child) || override {
			*dst = board.ForcedBool(v)
		} else {
			*dst = board.Bool(v)
		}
	}

	text("BackColour", &st.BackColor)
	text("FontColour", &st.FontColor)
	text("BorderColour", &st.BorderColor)
	text("FontName", &st.FontFamily)
	text("FontWeight", &st.FontWeight)
	text("FontStyle", &st.FontStyle)
	num("BorderWidth", &st.BorderWidth)
	num("FontSize", &st.FontSize)
	flag("Underline", &st.Underline)
	flag("LabelAboveImage", &st.LabelAbove)
	flag("Transparent", &st.Transparent)

	if st.IsZero() {
		return nil
	}
	return st
}

func writeStyleFields(el *etree.Element, st *board.Style, override bool) {
	put := func(tag, value string, forced bool) {
		child := el.CreateElement(tag)
		if override && forced {
			child.CreateAttr(attrForce, "true")
		}
		child.SetText(value)
	}
	if st.BackColor.Set() {
		put("BackColour", st.BackColor.Value, st.BackColor.State == board.FieldForced)
	}
	if st.FontColor.Set() {
		put("FontColour", st.FontColor.Value, st.FontColor.State == board.FieldForced)
	}
	if st.BorderColor.Set() {
		put("BorderColour", st.BorderColor.Value, st.BorderColor.State == board.FieldForced)
	}
	if st.BorderWidth.Set() {
		put("BorderWidth", strconv.Itoa(st.BorderWidth.Value), st.BorderWidth.State == board.FieldForced)
	}
	if st.FontFamily.Set() {
		put("FontName", st.FontFamily.Value, st.FontFamily.State == board.FieldForced)
	}
	if st.FontSize.Set() {
		put("FontSize", strconv.Itoa(st.FontSize.Value), st.FontSize.State == board.FieldForced)
	}
	if st.FontWeight.Set() {
		put("FontWeight", st.FontWeight.Value, st.FontWeight.State == board.FieldForced)
	}
	if st.FontStyle.Set() {
		put("FontStyle", st.FontStyle.Value, st.FontStyle.State == board.FieldForced)
	}
	if st.Underline.Set() {
		put("Underline", strconv.FormatBool(st.Underline.Value), st.Underline.State == board.FieldForced)
	}
	if st.LabelAbove.Set() {
		put("LabelAboveImage", strconv.FormatBool(st.LabelAbove.Value), st.LabelAbove.State == board.FieldForced)
	}
	if st.Transparent.Set() {
		put("Transparent", strconv.FormatBool(st.Transparent.Value), st.Transparent.State == board.FieldForced)
	}
}

func forcedAttr(el *etree.Element) bool {
	v := el.SelectAttrValue(attrForce, "")
	return strings.EqualFold(v, "true") || v == "1"
}
