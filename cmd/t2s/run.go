package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/franz/tune2spot/internal/engine"
	"github.com/franz/tune2spot/internal/ledger"
	"github.com/franz/tune2spot/internal/match"
	"github.com/franz/tune2spot/internal/report"
	"github.com/franz/tune2spot/internal/source"
	"github.com/franz/tune2spot/internal/spotify"
	"github.com/franz/tune2spot/internal/util"
)

// resolveOptions are shared by every command that resolves songs
// (scan, import, retry).
type resolveOptions struct {
	Playlist   string
	DryRun     bool
	FailedPath string
	EventsPath string
	NoCache    bool
}

func addResolveFlags(cmd *cobra.Command, opts *resolveOptions) {
	cmd.Flags().StringVar(&opts.Playlist, "playlist", "", "destination playlist name (default from config)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "match only, do not touch any playlist")
	cmd.Flags().StringVar(&opts.FailedPath, "failed", "", "retry ledger path (default from config)")
	cmd.Flags().StringVar(&opts.EventsPath, "events", "", "write a JSON Lines event log to this path")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "bypass the local search cache")
}

func (o *resolveOptions) applyDefaults() {
	if o.Playlist == "" {
		o.Playlist = viper.GetString("playlist")
	}
	if o.FailedPath == "" {
		o.FailedPath = viper.GetString("failed_path")
	}
}

// runResolve is the common resolve pipeline: enumerate items, match
// each against the catalog, flush the retry ledger, and (unless dry
// run) append matches to the playlist.
func runResolve(ctx context.Context, provider source.Provider, opts resolveOptions) error {
	opts.applyDefaults()

	items, err := provider.Items(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		util.InfoLog("Nothing to process")
		return nil
	}
	util.InfoLog("Resolving %d song(s)", len(items))

	creds, err := spotify.LoadCredentials()
	if err != nil {
		return err
	}

	var client *spotify.Client
	var playlistID string
	var known []string
	if opts.DryRun {
		client = spotify.NewSearchClient(ctx, creds)
	} else {
		client, err = spotify.NewUserClient(ctx, creds)
		if err != nil {
			return err
		}
		var created bool
		playlistID, created, err = client.EnsurePlaylist(ctx, opts.Playlist)
		if err != nil {
			return err
		}
		if !created {
			entries, err := client.PlaylistEntries(ctx, playlistID)
			if err != nil {
				return err
			}
			for _, e := range entries {
				known = append(known, e.TrackID)
			}
			util.DebugLog("Playlist %q already holds %d track(s)", opts.Playlist, len(known))
		}
	}

	if !opts.NoCache {
		cachePath := viper.GetString("cache_path")
		if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
			util.WarnLog("Search cache disabled: %v", err)
		} else if cache, err := spotify.OpenSearchCache(cachePath); err != nil {
			util.WarnLog("Search cache disabled: %v", err)
		} else {
			defer cache.Close()
			client.WithCache(cache)
		}
	}

	var sink report.Sink = report.NullSink{}
	if opts.EventsPath != "" {
		logger, err := report.NewEventLogger(opts.EventsPath)
		if err != nil {
			return err
		}
		defer logger.Close()
		sink = logger
	}

	cfg := engine.Config{
		Match: match.Config{
			Threshold: viper.GetFloat64("threshold"),
			Margin:    viper.GetFloat64("margin"),
		},
		KnownTrackIDs: known,
	}
	if !flagVerbose && !flagQuiet && util.StderrIsTerminal() {
		bar := progressbar.NewOptions(len(items),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("matching"),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionShowCount(),
		)
		cfg.Progress = func(done, total int) { _ = bar.Set(done) }
	}

	eng := engine.New(client, sink, cfg)
	result, runErr := eng.Run(ctx, items)

	// The ledger is flushed even when the run aborted, so every
	// unresolved and unprocessed song is retriable.
	if err := ledger.WriteFile(opts.FailedPath, result.Failed); err != nil {
		util.ErrorLog("Could not write retry ledger: %v", err)
	}

	summary := result.Summary()
	summary.LedgerPath = opts.FailedPath
	if ls, ok := provider.(*source.LedgerSource); ok && ls.Skipped > 0 {
		summary.LedgerSkipped = ls.Skipped
		sink.Emit(report.Event{
			Type:   report.EventLedgerSkipped,
			Detail: fmt.Sprintf("%d malformed ledger line(s) skipped", ls.Skipped),
		})
	}

	if !opts.DryRun && len(result.TrackIDs) > 0 {
		added, err := client.AddTracks(ctx, playlistID, result.TrackIDs)
		summary.Added = added
		if err != nil {
			util.ErrorLog("Adding tracks failed after %d: %v", added, err)
			if runErr == nil {
				runErr = err
			}
		}
	}

	fmt.Print(summary.Render())
	return runErr
}
