package spotify

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	spotifyapi "github.com/zmb3/spotify/v2"

	"github.com/franz/tune2spot/internal/match"
	"github.com/franz/tune2spot/internal/util"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"unauthorized", spotifyapi.Error{Status: 401, Message: "invalid token"}, util.ErrAuth},
		{"forbidden", spotifyapi.Error{Status: 403, Message: "bad scope"}, util.ErrAuth},
		{"rate limited", spotifyapi.Error{Status: 429, Message: "slow down"}, util.ErrTransient},
		{"server error", spotifyapi.Error{Status: 503, Message: "unavailable"}, util.ErrTransient},
		{"not found", spotifyapi.Error{Status: 404, Message: "gone"}, util.ErrNotFound},
		{"token rejection", errors.New(`oauth2: "invalid_client" error`), util.ErrAuth},
	}

	for _, tt := range tests {
		got := classify(tt.err)
		if !errors.Is(got, tt.sentinel) {
			t.Errorf("%s: classify(%v) = %v, expected to wrap %v", tt.name, tt.err, got, tt.sentinel)
		}
	}

	if classify(nil) != nil {
		t.Errorf("classify(nil) should be nil")
	}
	plain := errors.New("some validation problem")
	if got := classify(plain); got != plain {
		t.Errorf("classify passed-through error changed: %v", got)
	}
	if got := classify(spotifyapi.Error{Status: 400, Message: "bad request"}); errors.Is(got, util.ErrAuth) || errors.Is(got, util.ErrTransient) {
		t.Errorf("400 should not be classified: %v", got)
	}
}

func TestChunkIDs(t *testing.T) {
	ids := make([]string, 0, 205)
	for i := 0; i < 205; i++ {
		ids = append(ids, string(rune('a'+i%26)))
	}

	chunks := chunkIDs(ids, 100)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, expected 3", len(chunks))
	}
	if len(chunks[0]) != 100 || len(chunks[1]) != 100 || len(chunks[2]) != 5 {
		t.Errorf("chunk sizes = %d/%d/%d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
	if string(chunks[0][0]) != ids[0] || string(chunks[2][4]) != ids[204] {
		t.Errorf("chunking reordered ids")
	}

	if chunkIDs(nil, 100) != nil {
		t.Errorf("chunking nil should be nil")
	}
}

func TestDuplicatePositions(t *testing.T) {
	entries := []PlaylistEntry{
		{TrackID: "a", Position: 0},
		{TrackID: "b", Position: 1},
		{TrackID: "a", Position: 2},
		{TrackID: "a", Position: 3},
		{TrackID: "c", Position: 4},
	}

	dupes := duplicatePositions(entries)
	if len(dupes) != 1 {
		t.Fatalf("dupes = %v, expected only track a", dupes)
	}
	got := dupes["a"]
	if len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Errorf("positions for a = %v, expected [2 3]", got)
	}
}

func TestBackupRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")
	entries := []PlaylistEntry{
		{TrackID: "t1", Title: "Love Story", Artists: []string{"Taylor Swift"}, Position: 0},
		{TrackID: "t2", Title: "거북이", Artists: []string{"김장훈"}, Position: 1},
	}

	if err := WriteBackup(path, "pl1", entries); err != nil {
		t.Fatalf("WriteBackup: %v", err)
	}
	b, err := ReadBackup(path)
	if err != nil {
		t.Fatalf("ReadBackup: %v", err)
	}
	if b.PlaylistID != "pl1" || len(b.Entries) != 2 {
		t.Fatalf("backup = %+v", b)
	}
	if b.Entries[1].Title != "거북이" {
		t.Errorf("entry 1 = %+v", b.Entries[1])
	}
	if b.TakenAt.IsZero() {
		t.Errorf("backup missing timestamp")
	}
}

func TestReadBackupRejectsCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")
	if err := writeRaw(path, "{not json"); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadBackup(path); !errors.Is(err, util.ErrCorrupt) {
		t.Errorf("expected ErrCorrupt, got %v", err)
	}
}

func writeRaw(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o644)
}

func TestSearchCacheRoundTrip(t *testing.T) {
	cache, err := OpenSearchCache(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("OpenSearchCache: %v", err)
	}
	defer cache.Close()

	if _, ok := cache.Get("track:Love Story"); ok {
		t.Fatalf("unexpected hit on empty cache")
	}

	stored := []match.Candidate{
		{ID: "t1", Title: "Love Story", Artists: []string{"Taylor Swift"}, DurationMs: 235000},
	}
	cache.Put("track:Love Story", stored)

	got, ok := cache.Get("track:Love Story")
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if len(got) != 1 || got[0].ID != "t1" || got[0].DurationMs != 235000 {
		t.Errorf("cached candidates = %+v", got)
	}

	// Empty result sets are cached as a hit with zero candidates.
	cache.Put("track:Nothing", nil)
	empty, ok := cache.Get("track:Nothing")
	if !ok || len(empty) != 0 {
		t.Errorf("negative cache = (%v, %v)", empty, ok)
	}

	entries, hits, err := cache.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if entries != 2 || hits < 2 {
		t.Errorf("stats = (%d entries, %d hits)", entries, hits)
	}
}

func TestLoadCredentialsRequiresAppSecrets(t *testing.T) {
	t.Setenv("SPOTIFY_ID", "")
	t.Setenv("SPOTIFY_SECRET", "")
	if _, err := LoadCredentials(); !errors.Is(err, util.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}

	t.Setenv("SPOTIFY_ID", "id")
	t.Setenv("SPOTIFY_SECRET", "secret")
	t.Setenv("SPOTIFY_REFRESH_TOKEN", "rt")
	c, err := LoadCredentials()
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if c.ClientID != "id" || c.RefreshToken != "rt" {
		t.Errorf("credentials = %+v", c)
	}
}
