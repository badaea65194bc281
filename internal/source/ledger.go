package source

import (
	"context"

	"github.com/franz/tune2spot/internal/encoding"
	"github.com/franz/tune2spot/internal/ledger"
)

// LedgerSource feeds a run from a previous run's unresolved entries.
// Reloaded titles and artists go through mojibake repair: a ledger
// written by another tool or hand-edited in a legacy encoding would
// otherwise stay garbled and unmatched forever.
type LedgerSource struct {
	Path     string
	Repairer *encoding.Repairer

	// Skipped counts malformed lines dropped by the last Items call.
	Skipped int
}

// NewLedgerSource creates a ledger provider with the default repairer.
func NewLedgerSource(path string) *LedgerSource {
	return &LedgerSource{Path: path, Repairer: encoding.NewRepairer()}
}

// Items loads the ledger. A missing file yields an empty run, not an
// error.
func (l *LedgerSource) Items(ctx context.Context) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, skipped, err := ledger.LoadFile(l.Path)
	if err != nil {
		return nil, err
	}
	l.Skipped = skipped
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, Item{
			SourceID: e.SourceID,
			Title:    l.repair(e.Title),
			Artist:   l.repair(e.Artist),
		})
	}
	return items, nil
}

func (l *LedgerSource) repair(s string) string {
	if l.Repairer == nil || s == "" {
		return s
	}
	return l.Repairer.Repair(s)
}
