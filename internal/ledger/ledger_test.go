package ledger

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadParsesRecords(t *testing.T) {
	data := []byte("song1.mp3\tLove Story\tTaylor Swift\n" +
		"song2.mp3\t거북이\t김장훈\n" +
		"\n" +
		"song3.mp3\tNo Artist\t\n")

	entries, skipped := Load(data)
	if skipped != 0 {
		t.Fatalf("skipped = %d, expected 0", skipped)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, expected 3", len(entries))
	}
	if entries[0].SourceID != "song1.mp3" || entries[0].Title != "Love Story" || entries[0].Artist != "Taylor Swift" {
		t.Errorf("entry 0 = %+v", entries[0])
	}
	if entries[2].Artist != "" {
		t.Errorf("entry 2 artist = %q, expected empty", entries[2].Artist)
	}
}

func TestLoadSkipsMalformedLines(t *testing.T) {
	data := []byte("good.mp3\tTitle\tArtist\n" +
		"only-two-fields\tTitle\n" +
		"four\tfields\there\tnow\n" +
		"empty-title.mp3\t  \tArtist\n")

	entries, skipped := Load(data)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, expected 1", len(entries))
	}
	if skipped != 3 {
		t.Errorf("skipped = %d, expected 3", skipped)
	}
}

func TestMarshalSanitizesFields(t *testing.T) {
	entries := []Entry{
		{SourceID: "a.mp3", Title: "Title\twith tab", Artist: "Artist\nwith newline"},
	}

	loaded, skipped := Load(Marshal(entries))
	if skipped != 0 {
		t.Fatalf("round trip skipped %d line(s)", skipped)
	}
	if len(loaded) != 1 {
		t.Fatalf("got %d entries, expected 1", len(loaded))
	}
	if loaded[0].Title != "Title with tab" || loaded[0].Artist != "Artist with newline" {
		t.Errorf("sanitized entry = %+v", loaded[0])
	}
}

func TestWriteFileReplacesContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failed.tsv")

	first := []Entry{
		{SourceID: "a.mp3", Title: "One", Artist: "A"},
		{SourceID: "b.mp3", Title: "Two", Artist: "B"},
	}
	if err := WriteFile(path, first); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	// A second write with fewer entries must not retain old records.
	second := []Entry{{SourceID: "b.mp3", Title: "Two", Artist: "B"}}
	if err := WriteFile(path, second); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	entries, skipped, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if skipped != 0 || len(entries) != 1 || entries[0].SourceID != "b.mp3" {
		t.Fatalf("reloaded = %+v (skipped %d)", entries, skipped)
	}
}

func TestWriteFileEmptyTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failed.tsv")
	if err := WriteFile(path, []Entry{{SourceID: "a", Title: "T", Artist: "A"}}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := WriteFile(path, nil); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("expected empty file, got %q", data)
	}
}

func TestLoadFileMissingIsEmpty(t *testing.T) {
	entries, skipped, err := LoadFile(filepath.Join(t.TempDir(), "nope.tsv"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if entries != nil || skipped != 0 {
		t.Errorf("entries = %v, skipped = %d", entries, skipped)
	}
}

func TestDisplayName(t *testing.T) {
	if got := (Entry{Title: "Love Story", Artist: "Taylor Swift"}).DisplayName(); got != "Taylor Swift - Love Story" {
		t.Errorf("DisplayName = %q", got)
	}
	if got := (Entry{Title: "Love Story"}).DisplayName(); got != "Love Story" {
		t.Errorf("DisplayName = %q", got)
	}
}
