// Package encoding recovers mojibake text produced when tags written in
// a legacy single-byte-default encoding (CP949/EUC-KR, Shift_JIS, ...)
// were misread as Latin-1. The misread is lossless in one direction, so
// the original bytes can be reconstructed and re-decoded with the real
// encoding once it is detected.
package encoding

import (
	"strings"
	"unicode/utf8"

	"github.com/gogs/chardet"
	stdenc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/korean"
)

const (
	// DefaultMinConfidence is the minimum chardet confidence (0-100)
	// required to trust a detected charset. Below this the fallback
	// encoding is assumed.
	DefaultMinConfidence = 70
)

// Repairer detects and repairs mis-decoded legacy-encoded text.
// The zero value is not usable; construct with NewRepairer.
type Repairer struct {
	detector      *chardet.Detector
	fallback      stdenc.Encoding
	minConfidence int
}

// NewRepairer creates a Repairer with EUC-KR as the low-confidence
// fallback (the most common legacy encoding in affected libraries).
func NewRepairer() *Repairer {
	return &Repairer{
		detector:      chardet.NewTextDetector(),
		fallback:      korean.EUCKR,
		minConfidence: DefaultMinConfidence,
	}
}

// NewRepairerWithFallback creates a Repairer with a specific fallback
// encoding, looked up by IANA name (e.g. "EUC-KR", "Shift_JIS").
// Unknown names keep the EUC-KR default.
func NewRepairerWithFallback(name string) *Repairer {
	r := NewRepairer()
	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		r.fallback = enc
	}
	return r
}

// Repair recovers a mojibake string by reversing the Latin-1 misread:
// re-encode to the original raw bytes, detect their real charset, and
// decode again. Returns the input unchanged when no repair is needed or
// possible; this function never fails on malformed input.
func (r *Repairer) Repair(text string) string {
	if text == "" {
		return text
	}

	// Already-correct ASCII never needs reinterpretation.
	if isASCII(text) {
		return text
	}

	// Reconstruct the raw bytes. Characters above U+00FF mean the text
	// is already proper Unicode, not a Latin-1 misread.
	raw, ok := latin1Bytes(text)
	if !ok {
		return text
	}

	enc := r.detect(raw)
	if decoded, ok := decode(enc, raw); ok {
		return decoded
	}
	if enc != r.fallback {
		if decoded, ok := decode(r.fallback, raw); ok {
			return decoded
		}
	}
	return text
}

// RepairLine repairs a song line in "Artist - Title" format, fixing
// each side independently. Partial corruption is common: an artist tag
// can be garbled while the title survived.
func (r *Repairer) RepairLine(line string) string {
	line = strings.TrimSpace(line)
	if line == "" {
		return line
	}

	if artist, title, found := strings.Cut(line, " - "); found {
		return r.Repair(strings.TrimSpace(artist)) + " - " + r.Repair(strings.TrimSpace(title))
	}
	return r.Repair(line)
}

// detect runs statistical charset detection over raw bytes, falling
// back to the configured default below the confidence threshold.
func (r *Repairer) detect(raw []byte) stdenc.Encoding {
	result, err := r.detector.DetectBest(raw)
	if err != nil || result == nil || result.Confidence < r.minConfidence {
		return r.fallback
	}

	enc, err := ianaindex.IANA.Encoding(result.Charset)
	if err != nil || enc == nil {
		return r.fallback
	}
	return enc
}

// decode decodes raw bytes, rejecting results that contain replacement
// runes (the decoder hit byte sequences invalid for that encoding).
func decode(enc stdenc.Encoding, raw []byte) (string, bool) {
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil || !utf8.Valid(decoded) {
		return "", false
	}
	s := string(decoded)
	if strings.ContainsRune(s, utf8.RuneError) {
		return "", false
	}
	return s, true
}

// latin1Bytes maps each rune back to its Latin-1 byte. Returns false if
// any rune is outside the 0x00-0xFF range.
func latin1Bytes(s string) ([]byte, bool) {
	raw := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xFF {
			return nil, false
		}
		raw = append(raw, byte(r))
	}
	return raw, true
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
