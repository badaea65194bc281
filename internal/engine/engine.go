// Package engine drives one run: for each source item, walk the search
// strategies in order, decide on the candidates, and collect matched
// track IDs and unresolved entries. Items are processed strictly in
// source order and results preserve that order.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/franz/tune2spot/internal/ledger"
	"github.com/franz/tune2spot/internal/match"
	"github.com/franz/tune2spot/internal/normalize"
	"github.com/franz/tune2spot/internal/report"
	"github.com/franz/tune2spot/internal/source"
	"github.com/franz/tune2spot/internal/strategy"
	"github.com/franz/tune2spot/internal/util"
)

// Searcher is the one remote capability the engine needs.
type Searcher interface {
	SearchTracks(ctx context.Context, query string) ([]match.Candidate, error)
}

// Status of one item after the run.
type Status string

const (
	StatusMatched         Status = "matched"
	StatusAlreadyIncluded Status = "already_included"
	StatusFailed          Status = "failed"
)

// Outcome records what happened to one item.
type Outcome struct {
	Item     source.Item
	Status   Status
	TrackID  string
	Strategy strategy.Tag
	Score    float64
	Reason   string // failure reason, empty otherwise
}

// Result aggregates a whole run.
type Result struct {
	Outcomes []Outcome
	// TrackIDs are the matched IDs in source order, each at most once.
	TrackIDs []string
	// Failed holds the unresolved items in ledger form, including items
	// never reached when a run aborts.
	Failed []ledger.Entry

	Matched         int
	AlreadyIncluded int
	FailedCount     int

	Aborted     bool
	AbortReason string
	Duration    time.Duration
}

// Summary converts the result for rendering.
func (r *Result) Summary() report.RunSummary {
	return report.RunSummary{
		Total:           len(r.Outcomes) + abortedRemainder(r),
		Matched:         r.Matched,
		AlreadyIncluded: r.AlreadyIncluded,
		Failed:          r.FailedCount,
		Duration:        r.Duration,
		Aborted:         r.Aborted,
		AbortReason:     r.AbortReason,
	}
}

func abortedRemainder(r *Result) int {
	// Items never processed appear in Failed but not in Outcomes.
	return len(r.Failed) - r.FailedCount
}

// Config tunes one engine instance.
type Config struct {
	Match match.Config
	// KnownTrackIDs marks tracks already present in the destination, so
	// rematches are reported instead of re-added.
	KnownTrackIDs []string
	// Progress, when set, is called after each processed item.
	Progress func(done, total int)
}

// Engine is single-use: New, then one Run.
type Engine struct {
	searcher Searcher
	decider  *match.Engine
	sink     report.Sink
	cfg      Config

	seenIDs   map[string]bool
	seenNames map[string]bool
}

// New creates an engine. A nil sink disables event output.
func New(searcher Searcher, sink report.Sink, cfg Config) *Engine {
	if sink == nil {
		sink = report.NullSink{}
	}
	seen := make(map[string]bool, len(cfg.KnownTrackIDs))
	for _, id := range cfg.KnownTrackIDs {
		seen[id] = true
	}
	return &Engine{
		searcher:  searcher,
		decider:   match.NewEngine(cfg.Match),
		sink:      sink,
		cfg:       cfg,
		seenIDs:   seen,
		seenNames: make(map[string]bool),
	}
}

// Run processes the items in order. A credential failure aborts the
// run: the current and all remaining items go to Failed so a retry run
// picks them up, and the error is returned. Context cancellation
// behaves the same way.
func (e *Engine) Run(ctx context.Context, items []source.Item) (*Result, error) {
	start := time.Now()
	result := &Result{}

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			e.abort(result, items[i:], "cancelled")
			result.Duration = time.Since(start)
			return result, err
		}

		outcome, err := e.resolve(ctx, item)
		if err != nil {
			if errors.Is(err, util.ErrAuth) {
				util.ErrorLog("Credential failure, aborting run: %v", err)
				e.sink.Emit(report.Event{Type: report.EventRunFatal, Detail: err.Error()})
				e.abort(result, items[i:], "authentication failed")
				result.Duration = time.Since(start)
				return result, err
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				e.abort(result, items[i:], "cancelled")
				result.Duration = time.Since(start)
				return result, err
			}
			// Unexpected error from the searcher. The item is recorded
			// as unresolved and the run continues.
			util.WarnLog("Giving up on %q: %v", item.DisplayName(), err)
			outcome = Outcome{Item: item, Status: StatusFailed, Reason: "search failed"}
		}

		e.record(result, outcome)
		e.sink.Emit(report.Event{Type: report.EventProgress, Index: i + 1, Total: len(items)})
		if e.cfg.Progress != nil {
			e.cfg.Progress(i+1, len(items))
		}
	}

	result.Duration = time.Since(start)
	e.sink.Emit(result.Summary().Event())
	return result, nil
}

// resolve walks the strategy sequence for one item until a decision
// accepts or the sequence is exhausted.
func (e *Engine) resolve(ctx context.Context, item source.Item) (Outcome, error) {
	seq := strategy.New(item.Title, item.Artist)

	for {
		q, ok := seq.Next()
		if !ok {
			return Outcome{Item: item, Status: StatusFailed, Reason: "all strategies exhausted"}, nil
		}

		candidates, err := e.searcher.SearchTracks(ctx, q.Text())
		if err != nil {
			if errors.Is(err, util.ErrAuth) ||
				errors.Is(err, context.Canceled) ||
				errors.Is(err, context.DeadlineExceeded) {
				return Outcome{}, err
			}
			// Transport retries for this query are spent; that rejects
			// this one attempt, not the item. The next strategy gets a
			// fresh set of attempts.
			util.WarnLog("Search failed for %q via %s: %v", item.DisplayName(), q.Tag, err)
			continue
		}

		decision := e.decider.Decide(q, candidates)
		if !decision.Accepted {
			util.DebugLog("Strategy %s for %q: %s", q.Tag, item.DisplayName(), decision.Reason)
			continue
		}

		outcome := Outcome{
			Item:     item,
			TrackID:  decision.Candidate.ID,
			Strategy: q.Tag,
			Score:    decision.Score,
		}
		// Suppress by track ID and by normalized name, so the same
		// recording under two catalog IDs is still added only once.
		nameKey := normalize.Key(decision.Candidate.DisplayName())
		if e.seenIDs[decision.Candidate.ID] || e.seenNames[nameKey] {
			outcome.Status = StatusAlreadyIncluded
		} else {
			outcome.Status = StatusMatched
		}
		e.seenIDs[decision.Candidate.ID] = true
		e.seenNames[nameKey] = true
		return outcome, nil
	}
}

func (e *Engine) record(result *Result, o Outcome) {
	result.Outcomes = append(result.Outcomes, o)

	switch o.Status {
	case StatusMatched:
		result.Matched++
		result.TrackIDs = append(result.TrackIDs, o.TrackID)
		util.SuccessLog("Matched %q via %s (%.2f)", o.Item.DisplayName(), o.Strategy, o.Score)
		e.sink.Emit(report.Event{
			Type:     report.EventMatch,
			SourceID: o.Item.SourceID,
			Song:     o.Item.DisplayName(),
			Strategy: string(o.Strategy),
			TrackID:  o.TrackID,
			Score:    o.Score,
		})
	case StatusAlreadyIncluded:
		result.AlreadyIncluded++
		util.InfoLog("Already included: %q", o.Item.DisplayName())
		e.sink.Emit(report.Event{
			Type:     report.EventAlreadyIncluded,
			SourceID: o.Item.SourceID,
			Song:     o.Item.DisplayName(),
			TrackID:  o.TrackID,
		})
	case StatusFailed:
		result.FailedCount++
		result.Failed = append(result.Failed, toEntry(o.Item))
		util.WarnLog("No match for %q", o.Item.DisplayName())
		e.sink.Emit(report.Event{
			Type:     report.EventNoMatch,
			SourceID: o.Item.SourceID,
			Song:     o.Item.DisplayName(),
			Reason:   o.Reason,
		})
	}
}

// abort records every unprocessed item as unresolved so the retry
// ledger stays complete.
func (e *Engine) abort(result *Result, remaining []source.Item, reason string) {
	result.Aborted = true
	result.AbortReason = reason
	for _, item := range remaining {
		result.Failed = append(result.Failed, toEntry(item))
	}
	e.sink.Emit(result.Summary().Event())
}

func toEntry(item source.Item) ledger.Entry {
	return ledger.Entry{SourceID: item.SourceID, Title: item.Title, Artist: item.Artist}
}
