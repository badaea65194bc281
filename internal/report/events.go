// Package report carries run observability: a structured event stream
// written as JSON Lines, and the end-of-run summary. Event emission is
// best-effort; a failed write never fails the run.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/franz/tune2spot/internal/util"
)

// Event types emitted during a run.
const (
	EventMatch           = "match"
	EventNoMatch         = "no_match"
	EventAlreadyIncluded = "already_included"
	EventLedgerSkipped   = "ledger_skipped"
	EventProgress        = "progress"
	EventRunFatal        = "run_fatal"
	EventSummary         = "summary"
)

// Event is one structured record in the run event stream.
type Event struct {
	Time     time.Time `json:"time"`
	Type     string    `json:"type"`
	SourceID string    `json:"source_id,omitempty"`
	Song     string    `json:"song,omitempty"`
	Strategy string    `json:"strategy,omitempty"`
	TrackID  string    `json:"track_id,omitempty"`
	Score    float64   `json:"score,omitempty"`
	Reason   string    `json:"reason,omitempty"`
	Index    int       `json:"index,omitempty"`
	Total    int       `json:"total,omitempty"`
	Detail   string    `json:"detail,omitempty"`
}

// Sink receives events in emission order.
type Sink interface {
	Emit(ev Event)
	Close() error
}

// EventLogger writes events as JSON Lines to a file.
type EventLogger struct {
	mu  sync.Mutex
	w   io.WriteCloser
	enc *json.Encoder
}

// NewEventLogger opens (appends to) the event log at path.
func NewEventLogger(path string) (*EventLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening event log %s: %w", path, err)
	}
	return &EventLogger{w: f, enc: json.NewEncoder(f)}, nil
}

// NewEventWriter wraps an arbitrary writer, mainly for tests.
func NewEventWriter(w io.Writer) *EventLogger {
	return &EventLogger{w: nopCloser{w}, enc: json.NewEncoder(w)}
}

// Emit writes one event. Encoding or write failures are logged and
// swallowed.
func (l *EventLogger) Emit(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enc.Encode(ev); err != nil {
		util.DebugLog("Event log write failed: %v", err)
	}
}

// Close flushes and closes the underlying file.
func (l *EventLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Close()
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// NullSink drops all events. Used when no event log is configured.
type NullSink struct{}

func (NullSink) Emit(Event) {}

func (NullSink) Close() error { return nil }
