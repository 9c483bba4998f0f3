package archive

import (
	"archive/zip"
	"bytes"
	"testing"
)

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create entry %q: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write entry %q: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestOpenRejectsGarbage(t *testing.T) {
	if _, err := Open([]byte("not a zip at all")); err == nil {
		t.Fatalf("expected error for invalid archive")
	}
}

func TestWalkMatchesPrefix(t *testing.T) {
	data := buildZip(t, map[string]string{
		"Grids/Home/grid.xml": "<Grid/>",
		"Grids/Food/grid.xml": "<Grid/>",
		"Settings0/settings.xml": "<GridSetSettings/>",
	})
	zr, err := Open(data)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	var seen int
	if err := Walk(zr, "Grids/", func(f *zip.File) error {
		seen++
		return nil
	}); err != nil {
		t.Fatalf("walk: %v", err)
	}
	if seen != 2 {
		t.Fatalf("expected 2 grid entries, saw %d", seen)
	}
}

func TestWalkRejectsTraversal(t *testing.T) {
	data := buildZip(t, map[string]string{"../evil.xml": "boom"})
	zr, err := Open(data)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := Walk(zr, "", func(*zip.File) error { return nil }); err == nil {
		t.Fatalf("expected unsafe path error")
	}
}

func TestReadFileNormalizesSeparators(t *testing.T) {
	data := buildZip(t, map[string]string{`Grids\Home\grid.xml`: "<Grid/>"})
	zr, err := Open(data)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	content, found, err := ReadFile(zr, "Grids/Home/grid.xml")
	if err != nil || !found {
		t.Fatalf("expected entry to be found, err=%v", err)
	}
	if string(content) != "<Grid/>" {
		t.Fatalf("unexpected content %q", content)
	}
	if _, found, _ := ReadFile(zr, "Grids/Missing/grid.xml"); found {
		t.Fatalf("unexpected hit for missing entry")
	}
	if !Has(zr, `Grids\Home\grid.xml`) {
		t.Fatalf("Has should match windows separators")
	}
}
