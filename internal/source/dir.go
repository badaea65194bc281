package source

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dhowden/tag"
	"github.com/franz/tune2spot/internal/encoding"
	"github.com/franz/tune2spot/internal/normalize"
	"github.com/franz/tune2spot/internal/util"
)

// audioExtensions are the file types the scanner picks up.
var audioExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".m4a":  true,
	".ogg":  true,
	".wav":  true,
}

// DirScanner walks a music directory and produces one item per audio
// file. Metadata comes from embedded tags when present, otherwise from
// the filename; both paths go through mojibake repair.
type DirScanner struct {
	Root      string
	Recursive bool
	Repairer  *encoding.Repairer
}

// NewDirScanner creates a scanner over root with the default repairer.
func NewDirScanner(root string, recursive bool) *DirScanner {
	return &DirScanner{
		Root:      root,
		Recursive: recursive,
		Repairer:  encoding.NewRepairer(),
	}
}

// Items walks the directory and returns one item per audio file, sorted
// by path so runs over the same directory are deterministic.
func (d *DirScanner) Items(ctx context.Context) ([]Item, error) {
	info, err := os.Stat(d.Root)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", d.Root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scanning %s: %w: not a directory", d.Root, util.ErrInvalidConfig)
	}

	var paths []string
	err = filepath.WalkDir(d.Root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			util.WarnLog("Skipping %s: %v", path, err)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if entry.IsDir() {
			if !d.Recursive && path != d.Root {
				return fs.SkipDir
			}
			return nil
		}
		if audioExtensions[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	items := make([]Item, 0, len(paths))
	for _, path := range paths {
		item := d.readItem(path)
		if item.Title == "" {
			util.WarnLog("No usable metadata in %s, skipping", path)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// readItem extracts title and artist for one file. Tag read failures
// are expected (untagged files, unsupported tag versions) and fall back
// to filename parsing rather than erroring.
func (d *DirScanner) readItem(path string) Item {
	item := Item{SourceID: path}

	if title, artist, ok := readTags(path); ok {
		item.Title = d.repair(title)
		item.Artist = d.repair(artist)
		return item
	}

	util.DebugLog("No tags in %s, parsing filename", filepath.Base(path))
	title, artist := parseFilename(path)
	item.Title = d.repair(title)
	item.Artist = d.repair(artist)
	return item
}

func (d *DirScanner) repair(s string) string {
	if d.Repairer == nil || s == "" {
		return s
	}
	return d.Repairer.Repair(s)
}

// readTags reads embedded metadata. ok is false when the file has no
// readable tags or the title field is empty.
func readTags(path string) (title, artist string, ok bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", false
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return "", "", false
	}
	title = strings.TrimSpace(m.Title())
	if title == "" {
		return "", "", false
	}
	return title, strings.TrimSpace(m.Artist()), true
}

// parseFilename derives title and artist from the file name: strip the
// extension and a leading track number, then split on "Artist - Title"
// if a separator is present.
func parseFilename(path string) (title, artist string) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name = normalize.StripTrackNumber(name)

	if a, t, ok := normalize.SplitArtistTitle(name); ok {
		return t, a
	}
	return normalize.CollapseWhitespace(name), ""
}
