package strategy

import "testing"

func tags(s *Sequencer) []Tag {
	s.Reset()
	var out []Tag
	for {
		q, ok := s.Next()
		if !ok {
			return out
		}
		out = append(out, q.Tag)
	}
}

func TestCleanPairYieldsNearSingleton(t *testing.T) {
	s := New("Shake It Off", "Taylor Swift")

	got := tags(s)
	want := []Tag{TagExact, TagTitleOnly}
	if len(got) != len(want) {
		t.Fatalf("expected tags %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected tags %v, got %v", want, got)
		}
	}
}

func TestEmptyArtistYieldsSingleton(t *testing.T) {
	s := New("Shake It Off", "")
	got := tags(s)
	if len(got) != 1 || got[0] != TagExact {
		t.Fatalf("expected [exact], got %v", got)
	}
}

func TestBracketStrippedRequiresBrackets(t *testing.T) {
	with := New("Love Story (Taylor's Version)", "Taylor Swift")
	without := New("Love Story", "Taylor Swift")

	if !hasTag(with, TagBracketStripped) {
		t.Errorf("expected bracket-stripped variant for bracketed title")
	}
	if hasTag(without, TagBracketStripped) {
		t.Errorf("unexpected bracket-stripped variant for plain title")
	}
}

func TestFeatStrippedFromTitleAndArtist(t *testing.T) {
	fromTitle := New("Song feat. Guest", "Artist")
	fromArtist := New("Song", "Artist feat. Guest")
	plain := New("Song", "Artist")

	if !hasTag(fromTitle, TagFeatStripped) {
		t.Errorf("expected feat-stripped variant for title feat. clause")
	}
	if !hasTag(fromArtist, TagFeatStripped) {
		t.Errorf("expected feat-stripped variant for artist feat. clause")
	}
	if hasTag(plain, TagFeatStripped) {
		t.Errorf("unexpected feat-stripped variant without feat. pattern")
	}
}

func TestArtistSwappedOnlyForConflatedTitle(t *testing.T) {
	conflated := New("Taylor Swift - Love Story", "")
	s := conflated
	s.Reset()

	var swapped *Query
	for {
		q, ok := s.Next()
		if !ok {
			break
		}
		if q.Tag == TagArtistSwapped {
			qq := q
			swapped = &qq
		}
	}
	if swapped == nil {
		t.Fatalf("expected artist-swapped variant for conflated title")
	}
	if swapped.Artist != "Taylor Swift" || swapped.Title != "Love Story" {
		t.Errorf("artist-swapped = (%q, %q), expected split fields", swapped.Title, swapped.Artist)
	}

	// An explicit artist means the title separator is part of the title.
	if hasTag(New("Taylor Swift - Love Story", "Taylor Swift"), TagArtistSwapped) {
		t.Errorf("unexpected artist-swapped variant when artist tag is present")
	}
}

func TestDuplicateOutputsAreSuppressed(t *testing.T) {
	// Bracket stripping and feat stripping produce the same text here;
	// only one remote query should be attempted for it.
	s := New("Song (feat. Guest)", "Artist")

	s.Reset()
	seen := make(map[string]int)
	for {
		q, ok := s.Next()
		if !ok {
			break
		}
		seen[q.Title+"|"+q.Artist]++
	}
	for key, n := range seen {
		if n > 1 {
			t.Errorf("query %q produced %d times", key, n)
		}
	}
}

func TestResetRestartsSequence(t *testing.T) {
	s := New("Song (Live)", "Artist")

	first, ok := s.Next()
	if !ok {
		t.Fatalf("expected at least one variant")
	}
	for {
		if _, ok := s.Next(); !ok {
			break
		}
	}

	s.Reset()
	again, ok := s.Next()
	if !ok || again != first {
		t.Errorf("Reset did not restart sequence: %+v != %+v", again, first)
	}
}

func TestQueryText(t *testing.T) {
	q := Query{Title: "Love Story", Artist: "Taylor Swift"}
	if got := q.Text(); got != "track:Love Story artist:Taylor Swift" {
		t.Errorf("Text() = %q", got)
	}
	q = Query{Title: "Love Story"}
	if got := q.Text(); got != "track:Love Story" {
		t.Errorf("Text() = %q", got)
	}
}

func hasTag(s *Sequencer, tag Tag) bool {
	for _, got := range tags(s) {
		if got == tag {
			return true
		}
	}
	return false
}
