// Package source supplies the songs a run operates on. Providers
// enumerate items in a stable order; downstream processing preserves
// that order end to end.
package source

import "context"

// Item is one song to resolve. Title and Artist are raw as read from
// the provider; repair and normalization happen downstream.
type Item struct {
	SourceID string // provider-scoped identifier, e.g. the file path
	Title    string
	Artist   string
}

// DisplayName renders the item for logs and progress output.
func (i Item) DisplayName() string {
	if i.Artist == "" {
		return i.Title
	}
	return i.Artist + " - " + i.Title
}

// Provider enumerates items. Items returns the full slice in provider
// order; implementations must not return partial results alongside a
// non-nil error.
type Provider interface {
	Items(ctx context.Context) ([]Item, error)
}
