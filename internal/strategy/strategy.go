// Package strategy turns one raw (title, artist) pair into an ordered
// sequence of search queries of decreasing specificity. The sequence is
// finite, restartable, and consumed pull-based so the caller can stop
// on the first accepted match.
package strategy

import (
	"fmt"

	"github.com/franz/tune2spot/internal/normalize"
)

// Tag identifies which text relaxation produced a query variant.
type Tag string

const (
	TagExact           Tag = "exact"
	TagBracketStripped Tag = "bracket-stripped"
	TagFeatStripped    Tag = "feat-stripped"
	TagTitleOnly       Tag = "title-only"
	TagArtistSwapped   Tag = "artist-swapped"
)

// Query is one normalized search attempt.
type Query struct {
	Title  string
	Artist string
	Tag    Tag
}

// Text renders the query for the catalog search endpoint. Field filters
// are used whenever an artist term is present; title-only queries fall
// back to a bare track filter.
func (q Query) Text() string {
	if q.Artist != "" {
		return fmt.Sprintf("track:%s artist:%s", q.Title, q.Artist)
	}
	return fmt.Sprintf("track:%s", q.Title)
}

// Sequencer yields the applicable query variants for one item, in fixed
// priority order: exact, bracket-stripped, feat-stripped, title-only,
// artist-swapped. Variants whose precondition does not hold, or whose
// output duplicates an earlier variant, are omitted, so remote call
// volume stays proportional to actual ambiguity.
type Sequencer struct {
	queries []Query
	pos     int
}

// New builds the sequence for a raw title/artist pair. All transforms
// are purely textual; nothing here performs network calls.
func New(rawTitle, rawArtist string) *Sequencer {
	title := normalize.Clean(rawTitle)
	artist := normalize.Clean(rawArtist)

	s := &Sequencer{}
	seen := make(map[string]struct{})

	add := func(t, a string, tag Tag) {
		t = normalize.CollapseWhitespace(t)
		a = normalize.CollapseWhitespace(a)
		if t == "" {
			return
		}
		key := normalize.Key(t) + "\x00" + normalize.Key(a)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		s.queries = append(s.queries, Query{Title: t, Artist: a, Tag: tag})
	}

	// 1. exact: trimmed, case-preserved title+artist as given
	add(title, artist, TagExact)

	// 2. bracket-stripped: drop parenthetical/bracketed title suffixes
	if stripped := normalize.StripBrackets(title); stripped != "" {
		add(stripped, artist, TagBracketStripped)
	}

	// 3. feat-stripped: drop a feat./ft. clause from title or artist
	if stripped, ok := normalize.StripFeat(title); ok {
		add(stripped, artist, TagFeatStripped)
	}
	if stripped, ok := normalize.StripFeat(artist); ok {
		add(title, stripped, TagFeatStripped)
		if bare := normalize.StripBrackets(title); bare != "" {
			add(bare, stripped, TagFeatStripped)
		}
	}

	// 4. title-only: last textual resort when artist terms keep failing.
	// With an empty artist this is identical to exact and deduped away.
	if artist != "" {
		add(title, "", TagTitleOnly)
	}

	// 5. artist-swapped: a conflated "Artist - Title" field, common in
	// filename-derived metadata with no artist tag
	if artist == "" {
		if swappedArtist, swappedTitle, ok := normalize.SplitArtistTitle(title); ok {
			add(swappedTitle, swappedArtist, TagArtistSwapped)
		}
	}

	return s
}

// Next returns the next query in priority order. ok is false when the
// sequence is exhausted.
func (s *Sequencer) Next() (q Query, ok bool) {
	if s.pos >= len(s.queries) {
		return Query{}, false
	}
	q = s.queries[s.pos]
	s.pos++
	return q, true
}

// Reset rewinds the sequence to the first variant.
func (s *Sequencer) Reset() {
	s.pos = 0
}

// Len reports how many variants the sequence holds.
func (s *Sequencer) Len() int {
	return len(s.queries)
}
