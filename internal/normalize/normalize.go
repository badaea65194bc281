// Package normalize provides the purely textual transforms behind the
// search strategies: comparison keys, bracket and feat.-clause
// stripping, and artist/title splitting for conflated fields. None of
// these touch the network.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	parenRe       = regexp.MustCompile(`\([^)]*\)`)
	bracketRe     = regexp.MustCompile(`\[[^\]]*\]`)
	featRe        = regexp.MustCompile(`(?i)[(\[]?\s*(?:feat|ft|featuring)\.?\s+[^)\]]*[)\]]?`)
	featProbeRe   = regexp.MustCompile(`(?i)\b(?:feat|ft|featuring)\b\.?`)
	trackNumberRe = regexp.MustCompile(`^\d{1,3}[.\-\s]+\s*`)
)

// separators that commonly conflate "Artist - Title" into one field,
// in order of preference
var titleSeparators = []string{" - ", " — ", " – ", "_-_"}

// Clean performs basic string cleaning: Unicode NFC, trim, collapse
// whitespace. Case is preserved; queries sent to the catalog keep the
// original casing.
func Clean(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFC.String(s)
	return CollapseWhitespace(s)
}

// Key normalizes a string into a comparison key: NFC, lowercase,
// punctuation stripped, whitespace collapsed. Two strings with equal
// keys are considered the same text for scoring and deduplication.
func Key(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFC.String(s)
	s = strings.ToLower(s)
	s = removePunctuation(s)
	return CollapseWhitespace(s)
}

// StripBrackets removes parenthesized and bracketed content from a
// title (e.g. "(Remastered 2011)", "[Live]"). Returns the empty string
// when nothing was removed or removal consumed the whole title, so
// callers can skip the redundant strategy.
func StripBrackets(title string) string {
	clean := parenRe.ReplaceAllString(title, "")
	clean = bracketRe.ReplaceAllString(clean, "")
	clean = CollapseWhitespace(clean)
	if clean == "" || clean == CollapseWhitespace(title) {
		return ""
	}
	return clean
}

// StripFeat removes a "feat./ft./featuring ..." clause. The second
// return value is false when no feat. pattern is present or stripping
// would not change the string, which is the strategy precondition.
func StripFeat(s string) (string, bool) {
	if !featProbeRe.MatchString(s) {
		return "", false
	}
	clean := CollapseWhitespace(featRe.ReplaceAllString(s, ""))
	if clean == "" || clean == CollapseWhitespace(s) {
		return "", false
	}
	return clean, true
}

// SplitArtistTitle splits a conflated "Artist - Title" field on the
// first recognized separator. Returns false when no separator is found
// or either side would be empty.
func SplitArtistTitle(s string) (artist, title string, ok bool) {
	for _, sep := range titleSeparators {
		if before, after, found := strings.Cut(s, sep); found {
			artist = CollapseWhitespace(before)
			title = CollapseWhitespace(after)
			if artist != "" && title != "" {
				return artist, title, true
			}
			return "", "", false
		}
	}
	return "", "", false
}

// StripTrackNumber removes a leading track number like "01 ", "01. ",
// "01 - " from a filename-derived title.
func StripTrackNumber(s string) string {
	return CollapseWhitespace(trackNumberRe.ReplaceAllString(s, ""))
}

// CollapseWhitespace replaces runs of whitespace with a single space
// and trims the ends.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// removePunctuation removes common punctuation for comparison keys.
// Hyphens and underscores become spaces so "Song-Title" and "Song
// Title" compare equal; "&" becomes "and".
func removePunctuation(s string) string {
	replacer := strings.NewReplacer(
		".", "",
		",", "",
		"!", "",
		"?", "",
		"'", "",
		"\"", "",
		":", "",
		";", "",
		"(", " ",
		")", " ",
		"[", " ",
		"]", " ",
		"-", " ",
		"_", " ",
		"&", "and",
		"/", "",
	)
	return replacer.Replace(s)
}
