// Package ledger persists the songs a run failed to resolve, so a later
// run can retry exactly those. The format is one tab-delimited record
// per line; tabs cannot appear in stored fields, they are replaced with
// spaces on write.
package ledger

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/franz/tune2spot/internal/util"
)

// Entry is one unresolved song.
type Entry struct {
	SourceID string // provider-scoped identifier, e.g. the file path
	Title    string
	Artist   string
}

// DisplayName renders the entry for logs and summaries.
func (e Entry) DisplayName() string {
	if e.Artist == "" {
		return e.Title
	}
	return e.Artist + " - " + e.Title
}

// Load parses ledger lines from a reader-produced byte slice. Malformed
// lines (wrong field count, empty title) are skipped and counted rather
// than failing the whole file; a hand-edited ledger with one bad line
// should not block a retry run.
func Load(data []byte) (entries []Entry, skipped int) {
	sc := bufio.NewScanner(strings.NewReader(string(data)))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 3 || strings.TrimSpace(fields[1]) == "" {
			skipped++
			continue
		}
		entries = append(entries, Entry{
			SourceID: strings.TrimSpace(fields[0]),
			Title:    strings.TrimSpace(fields[1]),
			Artist:   strings.TrimSpace(fields[2]),
		})
	}
	return entries, skipped
}

// LoadFile reads a ledger from disk. A missing file is not an error; it
// simply means there is nothing to retry.
func LoadFile(path string) (entries []Entry, skipped int, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("reading ledger %s: %w", path, err)
	}
	entries, skipped = Load(data)
	if skipped > 0 {
		util.WarnLog("Skipped %d malformed line(s) in %s", skipped, path)
	}
	return entries, skipped, nil
}

// Marshal renders entries in file format. Field order is stable and
// tabs inside fields are sanitized to spaces so the record stays
// three-column.
func Marshal(entries []Entry) []byte {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(sanitize(e.SourceID))
		b.WriteByte('\t')
		b.WriteString(sanitize(e.Title))
		b.WriteByte('\t')
		b.WriteString(sanitize(e.Artist))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// WriteFile replaces the ledger on disk with exactly the given entries.
// An empty slice truncates the file, marking a fully clean run. The
// write goes through a temp file and rename so a crash cannot leave a
// half-written ledger.
func WriteFile(path string, entries []Entry) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".ledger-*")
	if err != nil {
		return fmt.Errorf("creating ledger temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(Marshal(entries)); err != nil {
		tmp.Close()
		return fmt.Errorf("writing ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing ledger temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing ledger %s: %w", path, err)
	}
	return nil
}

func sanitize(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
