package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/franz/tune2spot/internal/util"
)

// Backup is a JSON snapshot of playlist contents taken before a
// destructive operation.
type Backup struct {
	PlaylistID string          `json:"playlist_id"`
	TakenAt    time.Time       `json:"taken_at"`
	Entries    []PlaylistEntry `json:"entries"`
}

// WriteBackup snapshots the entries to path as JSON.
func WriteBackup(path, playlistID string, entries []PlaylistEntry) error {
	b := Backup{
		PlaylistID: playlistID,
		TakenAt:    time.Now().UTC(),
		Entries:    entries,
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding backup: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing backup %s: %w", path, err)
	}
	return nil
}

// ReadBackup loads a backup file.
func ReadBackup(path string) (Backup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Backup{}, fmt.Errorf("reading backup %s: %w", path, err)
	}
	var b Backup
	if err := json.Unmarshal(data, &b); err != nil {
		return Backup{}, fmt.Errorf("%w: backup %s: %v", util.ErrCorrupt, path, err)
	}
	if b.PlaylistID == "" {
		return Backup{}, fmt.Errorf("%w: backup %s has no playlist id", util.ErrCorrupt, path)
	}
	return b, nil
}

// RestoreBackup re-adds the backed-up tracks to the playlist in their
// original order. It appends rather than replaces, so existing playlist
// contents are preserved.
func (c *Client) RestoreBackup(ctx context.Context, path string) (int, error) {
	b, err := ReadBackup(path)
	if err != nil {
		return 0, err
	}
	ids := make([]string, 0, len(b.Entries))
	for _, e := range b.Entries {
		ids = append(ids, e.TrackID)
	}
	util.InfoLog("Restoring %d entries to playlist %s", len(ids), b.PlaylistID)
	return c.AddTracks(ctx, b.PlaylistID, ids)
}
