package source

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/franz/tune2spot/internal/encoding"
	"github.com/franz/tune2spot/internal/normalize"
)

// LinesFile feeds a run from a plain text file with one song per line,
// in "Artist - Title" or bare-title form. Lines starting with '#' are
// comments.
type LinesFile struct {
	Path     string
	Repairer *encoding.Repairer
}

// NewLinesFile creates a lines provider with the default repairer.
func NewLinesFile(path string) *LinesFile {
	return &LinesFile{Path: path, Repairer: encoding.NewRepairer()}
}

// Items reads and parses the file. Each line is mojibake-repaired
// before splitting so a garbled separator byte does not defeat the
// artist/title split.
func (l *LinesFile) Items(ctx context.Context) ([]Item, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		return nil, fmt.Errorf("opening song list %s: %w", l.Path, err)
	}
	defer f.Close()

	var items []Item
	lineNo := 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if l.Repairer != nil {
			line = l.Repairer.RepairLine(line)
		}

		item := Item{SourceID: fmt.Sprintf("%s:%d", l.Path, lineNo)}
		if artist, title, ok := normalize.SplitArtistTitle(line); ok {
			item.Artist = artist
			item.Title = title
		} else {
			item.Title = normalize.CollapseWhitespace(line)
		}
		if item.Title == "" {
			continue
		}
		items = append(items, item)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading song list %s: %w", l.Path, err)
	}
	return items, nil
}
