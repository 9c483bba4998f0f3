package board

import (
	"errors"
	"reflect"
	"testing"
)

func TestDocumentRootDefaultsToFirstPage(t *testing.T) {
	d := NewDocument()
	d.AddPage(&Page{ID: "home"})
	d.AddPage(&Page{ID: "food"})

	if d.RootID != "home" {
		t.Fatalf("expected first page to become root, got %q", d.RootID)
	}

	d.AddPage(&Page{ID: "home", Name: "replaced"})
	if d.Len() != 2 {
		t.Fatalf("expected overwrite by id, got %d pages", d.Len())
	}
	p, ok := d.Page("home")
	if !ok || p.Name != "replaced" {
		t.Fatalf("expected replaced page, got %+v", p)
	}
}

func TestTraverseVisitsEachPageOnceWithCycles(t *testing.T) {
	d := NewDocument()
	a := &Page{ID: "a"}
	b := &Page{ID: "b"}
	// a -> b -> a navigation cycle
	a.Buttons = append(a.Buttons, &Button{ID: "1", Action: &SemanticAction{Category: Navigation, Intent: NavigateTo, Target: "b"}})
	b.Buttons = append(b.Buttons, &Button{ID: "2", Action: &SemanticAction{Category: Navigation, Intent: NavigateTo, Target: "a"}})
	d.AddPage(a)
	d.AddPage(b)

	var visited []string
	if err := d.Traverse(func(p *Page) error {
		visited = append(visited, p.ID)
		return nil
	}); err != nil {
		t.Fatalf("traverse failed: %v", err)
	}
	if !reflect.DeepEqual(visited, []string{"a", "b"}) {
		t.Fatalf("unexpected traversal order: %v", visited)
	}

	stop := errors.New("stop")
	count := 0
	if err := d.Traverse(func(*Page) error {
		count++
		return stop
	}); !errors.Is(err, stop) {
		t.Fatalf("expected visitor error to propagate, got %v", err)
	}
	if count != 1 {
		t.Fatalf("expected traversal to stop after error, visited %d", count)
	}
}

func TestParseSymbolRef(t *testing.T) {
	ref := ParseSymbolRef("[WIDGIT]greetings/hello.emf")
	if ref.Library != "WIDGIT" || ref.Path != "greetings/hello.emf" || !ref.IsLibrary {
		t.Fatalf("unexpected library reference: %+v", ref)
	}
	if ref.String() != "[WIDGIT]greetings/hello.emf" {
		t.Fatalf("round trip failed: %q", ref.String())
	}

	ref = ParseSymbolRef("hello.png")
	if ref.Library != "" || ref.Path != "hello.png" || ref.IsLibrary {
		t.Fatalf("unexpected plain reference: %+v", ref)
	}

	// unterminated bracket is not a library reference
	ref = ParseSymbolRef("[oops")
	if ref.IsLibrary || ref.Path != "[oops" {
		t.Fatalf("unexpected parse of unterminated bracket: %+v", ref)
	}
}

func TestScanBlockSetFiltersAndOrders(t *testing.T) {
	var a Accessibility
	for _, n := range []int{1, 9, 3, 0, 3, 2, -1} {
		a.AddScanBlock(n)
	}
	if !reflect.DeepEqual(a.ScanBlocks, []int{1, 2, 3}) {
		t.Fatalf("unexpected scan block set: %v", a.ScanBlocks)
	}
}

func TestButtonKindProjection(t *testing.T) {
	cases := []struct {
		action *SemanticAction
		want   ActionKind
	}{
		{nil, KindSpeak},
		{NewAction(SpeakText), KindSpeak},
		{NewAction(InsertText), KindSpeak},
		{NewAction(NavigateTo), KindNavigate},
		{NewAction(GoHome), KindNavigate},
		{NewAction(DeleteWord), KindAction},
		{NewAction(MouseClick), KindAction},
		{NewAction(PlatformSpecific), KindAction},
	}
	for _, c := range cases {
		b := &Button{Action: c.action}
		if got := b.Kind(); got != c.want {
			t.Fatalf("projection of %v: got %s, want %s", c.action, got, c.want)
		}
	}
}

func TestCategoryOf(t *testing.T) {
	if CategoryOf(NavigateKeyboard) != Navigation {
		t.Fatalf("navigateKeyboard should be Navigation")
	}
	if CategoryOf(Correction) != TextEditing {
		t.Fatalf("correction should be TextEditing")
	}
	if CategoryOf(ScanSelect) != Access {
		t.Fatalf("scanSelect should be Access")
	}
}

func TestSequenceGenerator(t *testing.T) {
	gen := &Sequence{Prefix: "page"}
	if id := gen.NewID(); id != "page-1" {
		t.Fatalf("unexpected first id %q", id)
	}
	if id := gen.NewID(); id != "page-2" {
		t.Fatalf("unexpected second id %q", id)
	}
}

func TestRichTextFlattens(t *testing.T) {
	r := &RichText{Runs: []SymbolRun{{Text: "I "}, {Text: "want", Image: "[WIDGIT]want.wmf"}, {Text: " this"}}}
	if r.Text() != "I want this" {
		t.Fatalf("unexpected flat text %q", r.Text())
	}
}
