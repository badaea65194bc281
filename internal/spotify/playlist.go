package spotify

import (
	"context"
	"fmt"
	"strings"

	spotifyapi "github.com/zmb3/spotify/v2"

	"github.com/franz/tune2spot/internal/util"
)

const (
	// addBatchSize is the API ceiling for one add-tracks request.
	addBatchSize = 100

	pageSize = 50
)

// PlaylistInfo describes one of the user's playlists.
type PlaylistInfo struct {
	ID     string
	Name   string
	Tracks int
}

// PlaylistEntry is one track occurrence at a position in a playlist.
type PlaylistEntry struct {
	TrackID  string
	Title    string
	Artists  []string
	Position int
}

// CurrentUserID returns the authenticated user's ID.
func (c *Client) CurrentUserID(ctx context.Context) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	user, err := util.RetryWithBackoff(ctx, c.retry, func() (*spotifyapi.PrivateUser, error) {
		u, err := c.api.CurrentUser(ctx)
		return u, classify(err)
	}, "current user")
	if err != nil {
		return "", fmt.Errorf("resolving current user: %w", err)
	}
	return user.ID, nil
}

// UserPlaylists lists the current user's playlists.
func (c *Client) UserPlaylists(ctx context.Context) ([]PlaylistInfo, error) {
	var out []PlaylistInfo
	offset := 0
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		page, err := util.RetryWithBackoff(ctx, c.retry, func() (*spotifyapi.SimplePlaylistPage, error) {
			p, err := c.api.CurrentUsersPlaylists(ctx, spotifyapi.Limit(pageSize), spotifyapi.Offset(offset))
			return p, classify(err)
		}, "list playlists")
		if err != nil {
			return nil, fmt.Errorf("listing playlists: %w", err)
		}
		for _, p := range page.Playlists {
			out = append(out, PlaylistInfo{
				ID:     string(p.ID),
				Name:   p.Name,
				Tracks: int(p.Tracks.Total),
			})
		}
		if len(page.Playlists) < pageSize {
			return out, nil
		}
		offset += pageSize
	}
}

// EnsurePlaylist finds the user's playlist with the given name
// (case-insensitive) or creates a private one. created reports whether
// a new playlist was made.
func (c *Client) EnsurePlaylist(ctx context.Context, name string) (id string, created bool, err error) {
	playlists, err := c.UserPlaylists(ctx)
	if err != nil {
		return "", false, err
	}
	for _, p := range playlists {
		if strings.EqualFold(p.Name, name) {
			util.DebugLog("Using existing playlist %q (%s)", p.Name, p.ID)
			return p.ID, false, nil
		}
	}

	userID, err := c.CurrentUserID(ctx)
	if err != nil {
		return "", false, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", false, err
	}
	playlist, err := util.RetryWithBackoff(ctx, c.retry, func() (*spotifyapi.FullPlaylist, error) {
		p, err := c.api.CreatePlaylistForUser(ctx, userID, name, "", false, false)
		return p, classify(err)
	}, "create playlist")
	if err != nil {
		return "", false, fmt.Errorf("creating playlist %q: %w", name, err)
	}
	util.InfoLog("Created playlist %q", name)
	return string(playlist.ID), true, nil
}

// AddTracks appends tracks to a playlist in API-sized batches,
// preserving order. Returns how many were added; on error the count
// covers the batches that succeeded.
func (c *Client) AddTracks(ctx context.Context, playlistID string, trackIDs []string) (int, error) {
	added := 0
	for _, batch := range chunkIDs(trackIDs, addBatchSize) {
		if err := c.limiter.Wait(ctx); err != nil {
			return added, err
		}
		ids := batch
		err := util.Retry(ctx, c.retry, func() error {
			_, err := c.api.AddTracksToPlaylist(ctx, spotifyapi.ID(playlistID), ids...)
			return classify(err)
		}, "add tracks")
		if err != nil {
			return added, fmt.Errorf("adding %d track(s): %w", len(ids), err)
		}
		added += len(ids)
	}
	return added, nil
}

// PlaylistEntries fetches all track occurrences of a playlist in
// playlist order. Episodes and unplayable local files are skipped.
func (c *Client) PlaylistEntries(ctx context.Context, playlistID string) ([]PlaylistEntry, error) {
	var out []PlaylistEntry
	offset := 0
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		page, err := util.RetryWithBackoff(ctx, c.retry, func() (*spotifyapi.PlaylistItemPage, error) {
			p, err := c.api.GetPlaylistItems(ctx, spotifyapi.ID(playlistID),
				spotifyapi.Limit(pageSize), spotifyapi.Offset(offset))
			return p, classify(err)
		}, "playlist items")
		if err != nil {
			return nil, fmt.Errorf("reading playlist %s: %w", playlistID, err)
		}
		for i, item := range page.Items {
			track := item.Track.Track
			if track == nil || track.ID == "" {
				continue
			}
			artists := make([]string, 0, len(track.Artists))
			for _, a := range track.Artists {
				artists = append(artists, a.Name)
			}
			out = append(out, PlaylistEntry{
				TrackID:  string(track.ID),
				Title:    track.Name,
				Artists:  artists,
				Position: offset + i,
			})
		}
		if len(page.Items) < pageSize {
			return out, nil
		}
		offset += pageSize
	}
}

// RemoveDuplicateOccurrences removes every repeated occurrence of a
// track from a playlist, keeping the first. The playlist contents are
// backed up to backupPath before any mutation, so a bad run can be
// restored. Returns how many occurrences were removed.
func (c *Client) RemoveDuplicateOccurrences(ctx context.Context, playlistID, backupPath string) (int, error) {
	entries, err := c.PlaylistEntries(ctx, playlistID)
	if err != nil {
		return 0, err
	}

	dupes := duplicatePositions(entries)
	if len(dupes) == 0 {
		util.InfoLog("No duplicates in playlist %s", playlistID)
		return 0, nil
	}

	if backupPath != "" {
		if err := WriteBackup(backupPath, playlistID, entries); err != nil {
			return 0, err
		}
		util.InfoLog("Backed up %d entries to %s", len(entries), backupPath)
	}

	removed := 0
	for trackID, positions := range dupes {
		if err := c.limiter.Wait(ctx); err != nil {
			return removed, err
		}
		toRemove := []spotifyapi.TrackToRemove{spotifyapi.NewTrackToRemove(trackID, positions)}
		err := util.Retry(ctx, c.retry, func() error {
			_, err := c.api.RemoveTracksFromPlaylistOpt(ctx, spotifyapi.ID(playlistID), toRemove, "")
			return classify(err)
		}, "remove duplicates")
		if err != nil {
			return removed, fmt.Errorf("removing duplicates of %s: %w", trackID, err)
		}
		removed += len(positions)
	}
	return removed, nil
}

// duplicatePositions maps each track with repeats to the positions of
// its second and later occurrences.
func duplicatePositions(entries []PlaylistEntry) map[string][]int {
	firstSeen := make(map[string]bool, len(entries))
	dupes := make(map[string][]int)
	for _, e := range entries {
		if firstSeen[e.TrackID] {
			dupes[e.TrackID] = append(dupes[e.TrackID], e.Position)
			continue
		}
		firstSeen[e.TrackID] = true
	}
	return dupes
}

// chunkIDs splits IDs into batches of at most size.
func chunkIDs(ids []string, size int) [][]spotifyapi.ID {
	if len(ids) == 0 {
		return nil
	}
	var chunks [][]spotifyapi.ID
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunk := make([]spotifyapi.ID, 0, end-start)
		for _, id := range ids[start:end] {
			chunk = append(chunk, spotifyapi.ID(id))
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}
