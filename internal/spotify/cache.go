package spotify

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/franz/tune2spot/internal/match"
	"github.com/franz/tune2spot/internal/util"
)

// SearchCache persists search results in a local sqlite database so
// repeat runs (retry runs in particular) do not re-query the catalog
// for the same text. Empty result sets are cached too; a song the
// catalog does not have stays absent between runs.
type SearchCache struct {
	db *sql.DB
}

const cacheSchema = `
CREATE TABLE IF NOT EXISTS search_cache (
	query      TEXT PRIMARY KEY,
	candidates TEXT NOT NULL,
	hit_count  INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL,
	last_hit   TIMESTAMP
);
`

// OpenSearchCache opens or creates the cache database at path.
func OpenSearchCache(path string) (*SearchCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening search cache %s: %w", path, err)
	}
	if _, err := db.Exec(cacheSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing search cache: %w", err)
	}
	return &SearchCache{db: db}, nil
}

// Get returns the cached candidates for a query. ok is false on miss or
// on a corrupt row (the row is then evicted so the next Put repairs it).
func (s *SearchCache) Get(query string) (candidates []match.Candidate, ok bool) {
	var raw string
	err := s.db.QueryRow(
		`SELECT candidates FROM search_cache WHERE query = ?`, query).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false
	}
	if err != nil {
		util.DebugLog("Cache read failed: %v", err)
		return nil, false
	}

	if err := json.Unmarshal([]byte(raw), &candidates); err != nil {
		util.WarnLog("Evicting corrupt cache row for %q: %v", query, err)
		s.evict(query)
		return nil, false
	}

	if _, err := s.db.Exec(
		`UPDATE search_cache SET hit_count = hit_count + 1, last_hit = ? WHERE query = ?`,
		time.Now().UTC(), query); err != nil {
		util.DebugLog("Cache hit bookkeeping failed: %v", err)
	}
	return candidates, true
}

// Put stores the candidates for a query, replacing any previous row.
// Cache writes are best-effort; failures are logged and swallowed.
func (s *SearchCache) Put(query string, candidates []match.Candidate) {
	if candidates == nil {
		candidates = []match.Candidate{}
	}
	raw, err := json.Marshal(candidates)
	if err != nil {
		util.DebugLog("Cache encode failed: %v", err)
		return
	}
	if _, err := s.db.Exec(
		`INSERT INTO search_cache (query, candidates, hit_count, created_at)
		 VALUES (?, ?, 0, ?)
		 ON CONFLICT(query) DO UPDATE SET candidates = excluded.candidates`,
		query, string(raw), time.Now().UTC()); err != nil {
		util.DebugLog("Cache write failed: %v", err)
	}
}

// Stats reports row count and accumulated hits.
func (s *SearchCache) Stats() (entries, hits int, err error) {
	err = s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(hit_count), 0) FROM search_cache`).Scan(&entries, &hits)
	if err != nil {
		return 0, 0, fmt.Errorf("reading cache stats: %w", err)
	}
	return entries, hits, nil
}

func (s *SearchCache) evict(query string) {
	if _, err := s.db.Exec(`DELETE FROM search_cache WHERE query = ?`, query); err != nil {
		util.DebugLog("Cache evict failed: %v", err)
	}
}

// Close closes the underlying database.
func (s *SearchCache) Close() error {
	return s.db.Close()
}
