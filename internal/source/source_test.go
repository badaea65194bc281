package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/korean"

	"github.com/franz/tune2spot/internal/ledger"
)

func writeFile(t *testing.T, path string, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestParseFilename(t *testing.T) {
	tests := []struct {
		path   string
		title  string
		artist string
	}{
		{"/music/Taylor Swift - Love Story.mp3", "Love Story", "Taylor Swift"},
		{"/music/03. Taylor Swift - Love Story.mp3", "Love Story", "Taylor Swift"},
		{"/music/Love Story.mp3", "Love Story", ""},
		{"/music/01 Love Story.flac", "Love Story", ""},
	}

	for _, tt := range tests {
		title, artist := parseFilename(tt.path)
		if title != tt.title || artist != tt.artist {
			t.Errorf("parseFilename(%q) = (%q, %q), expected (%q, %q)",
				tt.path, title, artist, tt.title, tt.artist)
		}
	}
}

func TestDirScannerFallsBackToFilenames(t *testing.T) {
	dir := t.TempDir()
	// Not real audio; tag reading fails and the filename is used.
	writeFile(t, filepath.Join(dir, "Taylor Swift - Love Story.mp3"), "x")
	writeFile(t, filepath.Join(dir, "Shake It Off.mp3"), "x")
	writeFile(t, filepath.Join(dir, "notes.txt"), "not audio")

	items, err := NewDirScanner(dir, false).Items(context.Background())
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, expected 2: %+v", len(items), items)
	}
	// Sorted by path, so "Shake It Off" comes first.
	if items[0].Title != "Shake It Off" || items[0].Artist != "" {
		t.Errorf("item 0 = %+v", items[0])
	}
	if items[1].Title != "Love Story" || items[1].Artist != "Taylor Swift" {
		t.Errorf("item 1 = %+v", items[1])
	}
	for _, it := range items {
		if it.SourceID == "" {
			t.Errorf("item %q has no source id", it.Title)
		}
	}
}

func TestDirScannerRecursion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "top.mp3"), "x")
	writeFile(t, filepath.Join(dir, "nested", "deep.mp3"), "x")

	flat, err := NewDirScanner(dir, false).Items(context.Background())
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(flat) != 1 || flat[0].Title != "top" {
		t.Fatalf("non-recursive items = %+v", flat)
	}

	deep, err := NewDirScanner(dir, true).Items(context.Background())
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(deep) != 2 {
		t.Fatalf("recursive items = %+v", deep)
	}
}

func TestDirScannerRejectsNonDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "a.mp3")
	writeFile(t, file, "x")
	if _, err := NewDirScanner(file, false).Items(context.Background()); err == nil {
		t.Fatalf("expected error for non-directory root")
	}
}

func TestLinesFileParsesEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "songs.txt")
	writeFile(t, path, "# my list\n"+
		"Taylor Swift - Love Story\n"+
		"\n"+
		"Shake It Off\n")

	items, err := NewLinesFile(path).Items(context.Background())
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, expected 2: %+v", len(items), items)
	}
	if items[0].Artist != "Taylor Swift" || items[0].Title != "Love Story" {
		t.Errorf("item 0 = %+v", items[0])
	}
	if items[1].Artist != "" || items[1].Title != "Shake It Off" {
		t.Errorf("item 1 = %+v", items[1])
	}
	if items[0].SourceID == items[1].SourceID {
		t.Errorf("line items share a source id: %q", items[0].SourceID)
	}
}

// mojibake renders s the way it appears when its EUC-KR bytes are
// misread as Latin-1.
func mojibake(t *testing.T, s string) string {
	t.Helper()
	raw, err := korean.EUCKR.NewEncoder().String(s)
	if err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}
	var b strings.Builder
	for _, c := range []byte(raw) {
		b.WriteRune(rune(c))
	}
	return b.String()
}

func TestLinesFileRepairsMojibake(t *testing.T) {
	path := filepath.Join(t.TempDir(), "songs.txt")
	line := mojibake(t, "김장훈") + " - " + mojibake(t, "거북이")
	writeFile(t, path, line+"\n")

	items, err := NewLinesFile(path).Items(context.Background())
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, expected 1", len(items))
	}
	if items[0].Artist != "김장훈" || items[0].Title != "거북이" {
		t.Errorf("item = %+v, expected repaired Korean fields", items[0])
	}
}

func TestLedgerSourceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failed.tsv")
	entries := []ledger.Entry{
		{SourceID: "a.mp3", Title: "One", Artist: "A"},
		{SourceID: "b.mp3", Title: "Two", Artist: ""},
	}
	if err := ledger.WriteFile(path, entries); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	items, err := (&LedgerSource{Path: path}).Items(context.Background())
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(items) != 2 || items[0].Title != "One" || items[1].Artist != "" {
		t.Fatalf("items = %+v", items)
	}
}

func TestLedgerSourceRepairsMojibake(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failed.tsv")
	entries := []ledger.Entry{
		{SourceID: "a.mp3", Title: mojibake(t, "사랑"), Artist: mojibake(t, "김장훈")},
	}
	if err := ledger.WriteFile(path, entries); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	items, err := NewLedgerSource(path).Items(context.Background())
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, expected 1", len(items))
	}
	if items[0].Title != "사랑" || items[0].Artist != "김장훈" {
		t.Errorf("item = %+v, expected repaired Korean fields", items[0])
	}
	// The source id is an opaque identifier and must survive verbatim.
	if items[0].SourceID != "a.mp3" {
		t.Errorf("source id = %q", items[0].SourceID)
	}
}

func TestLedgerSourceMissingFile(t *testing.T) {
	items, err := (&LedgerSource{Path: filepath.Join(t.TempDir(), "nope.tsv")}).Items(context.Background())
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("items = %+v, expected none", items)
	}
}
