package gridset

import (
	"archive/zip"
	"bytes"
	"errors"
	"sort"
	"testing"

	"go.uber.org/zap/zaptest"

	"aacc/board"
	"aacc/convert"
)

func testOpts(t *testing.T) *convert.Options {
	t.Helper()
	return &convert.Options{Log: zaptest.NewLogger(t), IDs: &board.Sequence{Prefix: "p"}}
}

func buildContainer(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("unable to create entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("unable to write entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("unable to close archive: %v", err)
	}
	return buf.Bytes()
}

const minimalGrid = `<Grid Name="Home" GridGuid="g-home">
  <Cells>
    <Cell X="0" Y="0">
      <Content>
        <CaptionAndImage><Caption>hello</Caption></CaptionAndImage>
        <Commands>
          <Command ID="Action.Speak"><Parameter Key="text">hello</Parameter></Command>
        </Commands>
      </Content>
    </Cell>
  </Cells>
</Grid>`

func TestDecodeDefaultsGridDimensions(t *testing.T) {
	data := buildContainer(t, map[string]string{
		"Grids/Home/grid.xml": minimalGrid,
	})
	doc, err := New().Decode(data, testOpts(t))
	if err != nil {
		t.Fatalf("unable to decode container: %v", err)
	}
	p, ok := doc.Page("g-home")
	if !ok {
		t.Fatal("page g-home not decoded")
	}
	if p.Grid.Rows != 4 || p.Grid.Columns != 4 {
		t.Fatalf("expected 4x4 default grid, got %dx%d", p.Grid.Rows, p.Grid.Columns)
	}
}

func TestDecodeCellSpanDefaults(t *testing.T) {
	data := buildContainer(t, map[string]string{
		"Grids/Home/grid.xml": `<Grid Name="Home">
  <Cells>
    <Cell X="1" Y="2" ColumnSpan="2">
      <Content><CaptionAndImage><Caption>wide</Caption></CaptionAndImage></Content>
    </Cell>
  </Cells>
</Grid>`,
	})
	doc, err := New().Decode(data, testOpts(t))
	if err != nil {
		t.Fatalf("unable to decode container: %v", err)
	}
	p, _ := doc.Root()
	if len(p.Buttons) != 1 {
		t.Fatalf("expected 1 button, got %d", len(p.Buttons))
	}
	pos := p.Buttons[0].Position
	if pos.X != 1 || pos.Y != 2 || pos.ColSpan != 2 || pos.RowSpan != 1 {
		t.Fatalf("unexpected position %+v", *pos)
	}
}

func TestDecodeScanBlocksMerged(t *testing.T) {
	data := buildContainer(t, map[string]string{
		"Grids/Home/grid.xml": `<Grid Name="Home">
  <Cells>
    <Cell X="0" Y="0" ScanBlock="1">
      <Content>
        <CaptionAndImage><Caption>a</Caption></CaptionAndImage>
        <ScanBlocks><ScanBlock>9</ScanBlock><ScanBlock>3</ScanBlock><ScanBlock>1</ScanBlock></ScanBlocks>
      </Content>
    </Cell>
  </Cells>
</Grid>`,
	})
	doc, err := New().Decode(data, testOpts(t))
	if err != nil {
		t.Fatalf("unable to decode container: %v", err)
	}
	p, _ := doc.Root()
	acc := p.Buttons[0].Access
	if acc == nil {
		t.Fatal("expected accessibility data")
	}
	want := []int{1, 3}
	if len(acc.ScanBlocks) != len(want) {
		t.Fatalf("expected scan blocks %v, got %v", want, acc.ScanBlocks)
	}
	for i, v := range want {
		if acc.ScanBlocks[i] != v {
			t.Fatalf("expected scan blocks %v, got %v", want, acc.ScanBlocks)
		}
	}
}

func TestDecodeMalformedGridFatal(t *testing.T) {
	data := buildContainer(t, map[string]string{
		"Grids/Home/grid.xml":   minimalGrid,
		"Grids/Broken/grid.xml": "<Grid Name='Broken'><Cells>",
	})
	_, err := New().Decode(data, testOpts(t))
	if !errors.Is(err, convert.ErrMalformedPage) {
		t.Fatalf("expected malformed page error, got %v", err)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := New().Decode([]byte("not a zip at all"), testOpts(t))
	if !errors.Is(err, convert.ErrInvalidContainer) {
		t.Fatalf("expected invalid container error, got %v", err)
	}
}

func TestDecodeStartGridByName(t *testing.T) {
	data := buildContainer(t, map[string]string{
		"Grids/Home/grid.xml":     minimalGrid,
		"Grids/Keyboard/grid.xml": `<Grid Name="Keyboard" GridGuid="g-kbd"><Cells/></Grid>`,
		settingsPath:              `<GridSetSettings><StartGrid>Keyboard</StartGrid></GridSetSettings>`,
	})
	doc, err := New().Decode(data, testOpts(t))
	if err != nil {
		t.Fatalf("unable to decode container: %v", err)
	}
	if doc.RootID != "g-kbd" {
		t.Fatalf("expected root g-kbd, got %q", doc.RootID)
	}
}

func TestRoundTripPreservesContent(t *testing.T) {
	src := board.NewDocument()
	home := &board.Page{
		ID:   "home",
		Name: "Home",
		Grid: &board.Grid{Rows: 2, Columns: 2},
	}
	speak := &board.Button{
		ID:       "b1",
		Label:    "hello",
		Message:  "hello there",
		Position: &board.GridPosition{X: 0, Y: 0},
	}
	speak.Action = board.NewAction(board.SpeakText)
	speak.Action.Text = "hello there"
	nav := &board.Button{
		ID:       "b2",
		Label:    "more",
		Position: &board.GridPosition{X: 1, Y: 0},
	}
	nav.Action = board.NewAction(board.NavigateTo)
	nav.Action.Target = "extra"
	home.Buttons = []*board.Button{speak, nav}

	extra := &board.Page{
		ID:    "extra",
		Name:  "Extra",
		Words: board.WordListFromStrings([]string{"yes", "no", "maybe"}),
	}
	src.AddPage(home)
	src.AddPage(extra)

	opts := testOpts(t)
	data, err := New().Encode(src, opts)
	if err != nil {
		t.Fatalf("unable to encode container: %v", err)
	}
	got, err := New().Decode(data, opts)
	if err != nil {
		t.Fatalf("unable to decode container: %v", err)
	}

	if got.Len() != 2 {
		t.Fatalf("expected 2 pages, got %d", got.Len())
	}
	var names, labels []string
	_ = got.Traverse(func(p *board.Page) error {
		names = append(names, p.Name)
		for _, b := range p.Buttons {
			labels = append(labels, b.Label)
		}
		return nil
	})
	sort.Strings(names)
	sort.Strings(labels)
	if names[0] != "Extra" || names[1] != "Home" {
		t.Fatalf("unexpected page names %v", names)
	}
	if labels[0] != "hello" || labels[1] != "more" {
		t.Fatalf("unexpected labels %v", labels)
	}

	root, ok := got.Root()
	if !ok || root.Name != "Home" {
		t.Fatalf("expected root Home, got %+v", root)
	}
	var navBtn *board.Button
	for _, b := range root.Buttons {
		if b.Label == "more" {
			navBtn = b
		}
	}
	if navBtn == nil || navBtn.Action == nil {
		t.Fatal("navigation button lost its action")
	}
	if navBtn.Action.Intent != board.NavigateTo {
		t.Fatalf("expected NavigateTo, got %v", navBtn.Action.Intent)
	}
	target, ok := got.Page(navBtn.Action.Target)
	if !ok || target.Name != "Extra" {
		t.Fatalf("navigation target %q does not resolve to Extra", navBtn.Action.Target)
	}

	extraPage, _ := got.Page(target.ID)
	wantWords := []string{"yes", "no", "maybe"}
	gotWords := extraPage.Words.Texts()
	if len(gotWords) != len(wantWords) {
		t.Fatalf("expected words %v, got %v", wantWords, gotWords)
	}
	for i := range wantWords {
		if gotWords[i] != wantWords[i] {
			t.Fatalf("expected words %v, got %v", wantWords, gotWords)
		}
	}
}

func TestEncodeDuplicatePageNamesKeepSeparateEntries(t *testing.T) {
	src := board.NewDocument()
	for _, id := range []string{"p1", "p2"} {
		p := &board.Page{ID: id, Name: "Stuff"}
		p.Buttons = []*board.Button{{
			ID:       id + "_b",
			Label:    "word " + id,
			Position: &board.GridPosition{X: 0, Y: 0},
		}}
		src.AddPage(p)
	}

	opts := testOpts(t)
	data, err := New().Encode(src, opts)
	if err != nil {
		t.Fatalf("unable to encode container: %v", err)
	}
	got, err := New().Decode(data, opts)
	if err != nil {
		t.Fatalf("unable to decode container: %v", err)
	}
	if got.Len() != 2 {
		t.Fatalf("got %d pages, want 2", got.Len())
	}
	for _, id := range []string{"p1", "p2"} {
		p, ok := got.Page(id)
		if !ok {
			t.Fatalf("page %s lost in round trip", id)
		}
		if p.Name != "Stuff" {
			t.Fatalf("page %s name changed to %q", id, p.Name)
		}
	}
}

func TestEncodePageNameWithSeparatorRoundTrips(t *testing.T) {
	src := board.NewDocument()
	p := &board.Page{ID: "p1", Name: "A/B"}
	p.Buttons = []*board.Button{{
		ID:       "b1",
		Label:    "hi",
		Position: &board.GridPosition{X: 0, Y: 0},
	}}
	src.AddPage(p)

	opts := testOpts(t)
	data, err := New().Encode(src, opts)
	if err != nil {
		t.Fatalf("unable to encode container: %v", err)
	}
	got, err := New().Decode(data, opts)
	if err != nil {
		t.Fatalf("unable to decode container: %v", err)
	}
	if got.Len() != 1 {
		t.Fatalf("got %d pages, want 1", got.Len())
	}
	page, ok := got.Page("p1")
	if !ok || page.Name != "A/B" {
		t.Fatalf("page with separator in name lost, got %+v", page)
	}
}

func TestDanglingNavigationTargetKept(t *testing.T) {
	data := buildContainer(t, map[string]string{
		"Grids/Home/grid.xml": `<Grid Name="Home">
  <Cells>
    <Cell X="0" Y="0">
      <Content>
        <CaptionAndImage><Caption>go</Caption></CaptionAndImage>
        <Commands>
          <Command ID="Jump.To"><Parameter Key="grid">Nowhere</Parameter></Command>
        </Commands>
      </Content>
    </Cell>
  </Cells>
</Grid>`,
	})
	doc, err := New().Decode(data, testOpts(t))
	if err != nil {
		t.Fatalf("unable to decode container: %v", err)
	}
	p, _ := doc.Root()
	if got := p.Buttons[0].Action.Target; got != "Nowhere" {
		t.Fatalf("expected dangling target to stay recorded, got %q", got)
	}
}

func TestCreateWordlistInputs(t *testing.T) {
	wl, err := CreateWordlist([]string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(wl.Items) != 2 || wl.Items[0].Text != "a" || wl.Items[1].Text != "b" {
		t.Fatalf("unexpected items %+v", wl.Items)
	}

	wl, err = CreateWordlist([]board.WordListItem{{Text: "x", Image: "x.png"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wl.Items[0].Image != "x.png" {
		t.Fatalf("unexpected items %+v", wl.Items)
	}

	if _, err := CreateWordlist(42); err == nil {
		t.Fatal("expected error for unsupported input type")
	}
}

func TestWordlistXMLRoundTrip(t *testing.T) {
	src := &board.WordList{Items: []board.WordListItem{
		{Text: "cat", Image: "cat.png"},
		{Text: "dog", PartOfSpeech: "Noun"},
		{Text: "run"},
	}}
	got := parseWordListElement(WordlistToXML(src))
	if len(got.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(got.Items))
	}
	if got.Items[0].Text != "cat" || got.Items[0].Image != "cat.png" {
		t.Fatalf("unexpected first item %+v", got.Items[0])
	}
	if got.Items[1].PartOfSpeech != "Noun" {
		t.Fatalf("unexpected part of speech %q", got.Items[1].PartOfSpeech)
	}
	if got.Items[2].PartOfSpeech != "" {
		t.Fatalf("default part of speech should decode empty, got %q", got.Items[2].PartOfSpeech)
	}
}

func TestExtractWordlistsSkipsPagesWithout(t *testing.T) {
	data := buildContainer(t, map[string]string{
		"Grids/Home/grid.xml": minimalGrid,
		"Grids/Food/grid.xml": `<Grid Name="Food"><Cells/>
  <WordList><Items>
    <WordListItem><Text>apple</Text></WordListItem>
    <WordListItem><Text>pear</Text></WordListItem>
  </Items></WordList>
</Grid>`,
	})
	lists, err := ExtractWordlists(data, testOpts(t))
	if err != nil {
		t.Fatalf("unable to extract word lists: %v", err)
	}
	if len(lists) != 1 {
		t.Fatalf("expected 1 list, got %d", len(lists))
	}
	wl, ok := lists["Food"]
	if !ok || len(wl.Items) != 2 || wl.Items[0].Text != "apple" {
		t.Fatalf("unexpected list %+v", lists)
	}
}

func TestUpdateWordlistLeavesOtherEntriesUntouched(t *testing.T) {
	data := buildContainer(t, map[string]string{
		"Grids/Home/grid.xml": minimalGrid,
		"Grids/Food/grid.xml": `<Grid Name="Food"><Cells/></Grid>`,
		settingsPath:          `<GridSetSettings><StartGrid>Home</StartGrid></GridSetSettings>`,
	})

	wl := board.WordListFromStrings([]string{"soup", "bread"})
	updated, err := UpdateWordlist(data, "Food", wl, testOpts(t))
	if err != nil {
		t.Fatalf("unable to update word list: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(updated), int64(len(updated)))
	if err != nil {
		t.Fatalf("updated container is not a valid archive: %v", err)
	}
	contents := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("unable to open entry %s: %v", f.Name, err)
		}
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			t.Fatalf("unable to read entry %s: %v", f.Name, err)
		}
		rc.Close()
		contents[f.Name] = buf.String()
	}

	if contents["Grids/Home/grid.xml"] != minimalGrid {
		t.Fatal("unrelated grid document changed during word list update")
	}
	lists, err := ExtractWordlists(updated, testOpts(t))
	if err != nil {
		t.Fatalf("unable to extract word lists: %v", err)
	}
	got := lists["Food"]
	if got == nil || len(got.Items) != 2 || got.Items[0].Text != "soup" {
		t.Fatalf("word list not updated, got %+v", got)
	}
}

func TestUpdateWordlistUnknownGrid(t *testing.T) {
	data := buildContainer(t, map[string]string{
		"Grids/Home/grid.xml": minimalGrid,
	})
	_, err := UpdateWordlist(data, "Missing", board.WordListFromStrings([]string{"x"}), testOpts(t))
	var notFound *convert.GridNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected grid-not-found error, got %v", err)
	}
	if notFound.Grid != "Missing" {
		t.Fatalf("error should name the grid, got %q", notFound.Grid)
	}
}

func TestExtractTextCollectsInOrder(t *testing.T) {
	data := buildContainer(t, map[string]string{
		settingsPath: `<GridSetSettings><Description>My board</Description></GridSetSettings>`,
		"Grids/Home/grid.xml": `<Grid Name="Home">
  <Cells>
    <Cell X="0" Y="0">
      <Content>
        <CaptionAndImage><Caption>hello</Caption></CaptionAndImage>
        <Commands>
          <Command ID="Action.Speak">
            <Parameter Key="text"><p><s><r>good</r></s><s><r><![CDATA[ ]]></r></s><s><r>morning</r></s></p></Parameter>
          </Command>
        </Commands>
      </Content>
    </Cell>
  </Cells>
  <WordList><Items><WordListItem><Text>hello</Text></WordListItem></Items></WordList>
</Grid>`,
	})
	texts, err := New().ExtractText(data, testOpts(t))
	if err != nil {
		t.Fatalf("unable to extract texts: %v", err)
	}
	want := []string{"My board", "hello", "good morning"}
	if len(texts) != len(want) {
		t.Fatalf("expected %v, got %v", want, texts)
	}
	for i := range want {
		if texts[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, texts)
		}
	}
}

func TestExtractTextSeesEncodedWordlist(t *testing.T) {
	src := board.NewDocument()
	src.AddPage(&board.Page{
		ID:    "p1",
		Name:  "Vegetables",
		Words: board.WordListFromStrings([]string{"zucchini", "quinoa"}),
	})

	opts := testOpts(t)
	data, err := New().Encode(src, opts)
	if err != nil {
		t.Fatalf("unable to encode container: %v", err)
	}
	texts, err := New().ExtractText(data, opts)
	if err != nil {
		t.Fatalf("unable to extract texts: %v", err)
	}
	found := make(map[string]bool)
	for _, s := range texts {
		found[s] = true
	}
	if !found["zucchini"] || !found["quinoa"] {
		t.Fatalf("word list items missing from extracted texts %v", texts)
	}
}

func TestApplyTranslations(t *testing.T) {
	data := buildContainer(t, map[string]string{
		settingsPath:          `<GridSetSettings><Description>My board</Description></GridSetSettings>`,
		"Grids/Home/grid.xml": minimalGrid,
	})
	opts := testOpts(t)
	opts.TargetLanguage = "es"
	out, err := New().ApplyTranslations(data, map[string]string{"hello": "hola"}, opts)
	if err != nil {
		t.Fatalf("unable to apply translations: %v", err)
	}

	doc, err := New().Decode(out, testOpts(t))
	if err != nil {
		t.Fatalf("unable to decode translated container: %v", err)
	}
	p, _ := doc.Root()
	if p.Buttons[0].Label != "hola" {
		t.Fatalf("caption not translated, got %q", p.Buttons[0].Label)
	}

	texts, err := New().ExtractText(out, testOpts(t))
	if err != nil {
		t.Fatalf("unable to extract texts: %v", err)
	}
	for _, s := range texts {
		if s == "hello" {
			t.Fatal("source text survived translation")
		}
	}
}

func TestMapLanguageCode(t *testing.T) {
	cases := []struct{ in, want string }{
		{"en", "en-GB"},
		{"no", "nb-NO"},
		{"pt", "pt-PT"},
		{"zh", "zh-CN"},
		{"fa", "ar-SA"},
		{"en-US", "en-US"},
		{"xx-YY", "xx-YY"},
	}
	for _, c := range cases {
		if got := MapLanguageCode(c.in); got != c.want {
			t.Fatalf("MapLanguageCode(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestResolveCellImage(t *testing.T) {
	png := string([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0})
	data := buildContainer(t, map[string]string{
		"Grids/Home/grid.xml":          minimalGrid,
		"Grids/Home/Images/smile.png":  png,
		"Grids/Home/1-2-generated.png": png,
		"Grids/Home/3-3.png":           png,
		"Grids/Home/0-1.png":           "not an image",
	})
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("unable to open archive: %v", err)
	}

	if got, ok := ResolveCellImage(zr, ImageRequest{BaseDir: "Grids/Home", ImageName: "smile.png"}); !ok || got != "Grids/Home/Images/smile.png" {
		t.Fatalf("explicit name lookup failed: %q %v", got, ok)
	}
	req := ImageRequest{BaseDir: "Grids/Home", X: 1, Y: 2, DynamicFiles: []string{"1-2-generated.png"}}
	if got, ok := ResolveCellImage(zr, req); !ok || got != "Grids/Home/1-2-generated.png" {
		t.Fatalf("dynamic name lookup failed: %q %v", got, ok)
	}
	if got, ok := ResolveCellImage(zr, ImageRequest{BaseDir: "Grids/Home", X: 3, Y: 3}); !ok || got != "Grids/Home/3-3.png" {
		t.Fatalf("coordinate guess failed: %q %v", got, ok)
	}
	if _, ok := ResolveCellImage(zr, ImageRequest{BaseDir: "Grids/Home", X: 0, Y: 1}); ok {
		t.Fatal("non-image content should not resolve")
	}
	if _, ok := ResolveCellImage(zr, ImageRequest{BaseDir: "Grids/Home", X: 9, Y: 9}); ok {
		t.Fatal("missing image should not resolve")
	}
}
