package board

// WordList is an ordered vocabulary list embedded in a page, used by dynamic
// word-prediction cells. Within a container word lists are keyed by the name
// of the grid that owns them.
type WordList struct {
	Items []WordListItem
}

// WordListItem is a single vocabulary entry. PartOfSpeech is free-form; an
// absent value is serialized as the literal "Unknown" by the grid container.
type WordListItem struct {
	Text         string
	Image        string
	PartOfSpeech string
}

// WordListFromStrings builds a list of plain text items in the given order.
func WordListFromStrings(words []string) *WordList {
	wl := &WordList{Items: make([]WordListItem, 0, len(words))}
	for _, w := range words {
		wl.Items = append(wl.Items, WordListItem{Text: w})
	}
	return wl
}

// Texts returns item texts in order.
func (w *WordList) Texts() []string {
	if w == nil {
		return nil
	}
	out := make([]string, 0, len(w.Items))
	for _, it := range w.Items {
		out = append(out, it.Text)
	}
	return out
}
