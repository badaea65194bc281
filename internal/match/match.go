// Package match decides whether a catalog search result is "the same
// song" as a query. Scoring is purely textual over normalized fields;
// acceptance is conservative: a false positive silently corrupts a
// curated playlist, a false negative is visibly retriable.
package match

import (
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/franz/tune2spot/internal/normalize"
	"github.com/franz/tune2spot/internal/strategy"
)

// Candidate is one remote search result. IDs are the catalog's own
// identifiers and are never rewritten.
type Candidate struct {
	ID         string
	Title      string
	Artists    []string
	Album      string
	DurationMs int
	Popularity int // catalog ranking signal; kept but never decisive
}

// DisplayName renders "Artist - Title" for progress output.
func (c Candidate) DisplayName() string {
	if len(c.Artists) == 0 {
		return c.Title
	}
	return c.Artists[0] + " - " + c.Title
}

// Config holds the product tuning parameters of the decision policy.
type Config struct {
	// Threshold is the minimum similarity score for acceptance.
	Threshold float64
	// Margin is the minimum gap between best and second-best score for
	// an unambiguous accept.
	Margin float64
	// TitleWeight blends title similarity against artist similarity
	// when the query carries an artist term.
	TitleWeight float64
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		Threshold:   0.80,
		Margin:      0.05,
		TitleWeight: 0.6,
	}
}

// Decision is the outcome of evaluating one query against a candidate set.
type Decision struct {
	Accepted  bool
	Candidate Candidate
	Score     float64
	RunnerUp  float64 // second-best score, 0 when absent
	Reason    string  // reject reason for diagnostics
}

// Engine applies the scoring and acceptance policy.
type Engine struct {
	cfg Config
}

// NewEngine creates a decision engine. Zero-valued config fields fall
// back to the defaults.
func NewEngine(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.Threshold <= 0 || cfg.Threshold > 1 {
		cfg.Threshold = def.Threshold
	}
	if cfg.Margin < 0 || cfg.Margin >= 1 {
		cfg.Margin = def.Margin
	}
	if cfg.TitleWeight <= 0 || cfg.TitleWeight > 1 {
		cfg.TitleWeight = def.TitleWeight
	}
	return &Engine{cfg: cfg}
}

type scored struct {
	candidate Candidate
	score     float64
}

// Decide accepts the highest-scoring candidate if it clears the
// threshold and is unambiguously the best. Ties within the margin are
// broken by an exact (case-insensitive) artist match; unresolved ties
// are rejected so the sequencer can relax the query instead.
func (e *Engine) Decide(q strategy.Query, candidates []Candidate) Decision {
	if len(candidates) == 0 {
		return Decision{Reason: "no candidates"}
	}

	ranked := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, scored{candidate: c, score: e.Score(q, c)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	best := ranked[0]
	decision := Decision{Candidate: best.candidate, Score: best.score}
	if len(ranked) > 1 {
		decision.RunnerUp = ranked[1].score
	}

	if best.score < e.cfg.Threshold {
		decision.Candidate = Candidate{}
		decision.Reason = "below threshold"
		return decision
	}

	if len(ranked) == 1 || best.score-ranked[1].score >= e.cfg.Margin {
		decision.Accepted = true
		return decision
	}

	// Ambiguous: collect everything within the margin of the best that
	// also clears the threshold, and prefer an exact artist match.
	var exact []scored
	for _, s := range ranked {
		if best.score-s.score > e.cfg.Margin || s.score < e.cfg.Threshold {
			break
		}
		if q.Artist != "" && artistExact(q.Artist, s.candidate) {
			exact = append(exact, s)
		}
	}
	if len(exact) == 1 {
		decision.Accepted = true
		decision.Candidate = exact[0].candidate
		decision.Score = exact[0].score
		return decision
	}

	decision.Candidate = Candidate{}
	decision.Reason = "ambiguous within margin"
	return decision
}

// Score computes the bounded [0,1] similarity between the query and a
// candidate. With no artist term the title similarity stands alone.
func (e *Engine) Score(q strategy.Query, c Candidate) float64 {
	titleScore := Similarity(q.Title, c.Title)
	if q.Artist == "" {
		return titleScore
	}

	artistScore := Similarity(q.Artist, strings.Join(c.Artists, " "))
	for _, a := range c.Artists {
		if s := Similarity(q.Artist, a); s > artistScore {
			artistScore = s
		}
	}

	w := e.cfg.TitleWeight
	return w*titleScore + (1-w)*artistScore
}

// Similarity scores two strings over their normalized comparison keys.
// It is symmetric, scores identical keys as 1.0, and is monotonically
// non-increasing as edit distance grows: the maximum of a normalized
// Levenshtein ratio and a token-set overlap, so word reordering is not
// over-punished.
func Similarity(a, b string) float64 {
	ka, kb := normalize.Key(a), normalize.Key(b)
	if ka == kb {
		if ka == "" {
			return 0
		}
		return 1
	}
	if ka == "" || kb == "" {
		return 0
	}

	lev := strutil.Similarity(ka, kb, metrics.NewLevenshtein())
	if tok := tokenOverlap(ka, kb); tok > lev {
		return tok
	}
	return lev
}

// tokenOverlap is the Jaccard index over whitespace-separated tokens.
func tokenOverlap(a, b string) float64 {
	ta := strings.Fields(a)
	tb := strings.Fields(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	set := make(map[string]struct{}, len(ta))
	for _, tok := range ta {
		set[tok] = struct{}{}
	}
	union := make(map[string]struct{}, len(ta)+len(tb))
	for _, tok := range ta {
		union[tok] = struct{}{}
	}
	common := 0
	for _, tok := range tb {
		if _, ok := union[tok]; !ok {
			union[tok] = struct{}{}
			continue
		}
		if _, ok := set[tok]; ok {
			common++
			delete(set, tok) // count each shared token once
		}
	}
	return float64(common) / float64(len(union))
}

// artistExact reports whether any candidate artist equals the query
// artist under key normalization (case-insensitive, punctuation-blind).
func artistExact(queryArtist string, c Candidate) bool {
	key := normalize.Key(queryArtist)
	if key == "" {
		return false
	}
	for _, a := range c.Artists {
		if normalize.Key(a) == key {
			return true
		}
	}
	return false
}
