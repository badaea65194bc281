package report

import (
	"fmt"
	"strings"
	"time"
)

// RunSummary aggregates the outcome counts of one run.
type RunSummary struct {
	Total           int
	Matched         int
	AlreadyIncluded int
	Failed          int
	LedgerSkipped   int
	Added           int
	Duration        time.Duration
	LedgerPath      string
	Aborted         bool
	AbortReason     string
}

// Render formats the summary for terminal output.
func (s RunSummary) Render() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("Run summary\n")
	b.WriteString(fmt.Sprintf("  Songs processed:   %d\n", s.Total))
	b.WriteString(fmt.Sprintf("  Matched:           %d\n", s.Matched))
	if s.AlreadyIncluded > 0 {
		b.WriteString(fmt.Sprintf("  Already included:  %d\n", s.AlreadyIncluded))
	}
	b.WriteString(fmt.Sprintf("  Not found:         %d\n", s.Failed))
	if s.LedgerSkipped > 0 {
		b.WriteString(fmt.Sprintf("  Malformed skipped: %d\n", s.LedgerSkipped))
	}
	if s.Added > 0 {
		b.WriteString(fmt.Sprintf("  Added to playlist: %d\n", s.Added))
	}
	if s.Failed > 0 && s.LedgerPath != "" {
		b.WriteString(fmt.Sprintf("  Retry ledger:      %s\n", s.LedgerPath))
	}
	if s.Duration > 0 {
		b.WriteString(fmt.Sprintf("  Duration:          %s\n", s.Duration.Round(time.Millisecond)))
	}
	if s.Aborted {
		b.WriteString(fmt.Sprintf("  ABORTED: %s\n", s.AbortReason))
	}
	return b.String()
}

// Event converts the summary into its event-stream record.
func (s RunSummary) Event() Event {
	detail := fmt.Sprintf("matched=%d already=%d failed=%d skipped=%d added=%d",
		s.Matched, s.AlreadyIncluded, s.Failed, s.LedgerSkipped, s.Added)
	if s.Aborted {
		detail += " aborted=" + s.AbortReason
	}
	return Event{Type: EventSummary, Total: s.Total, Detail: detail}
}
