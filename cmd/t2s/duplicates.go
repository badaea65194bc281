package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/franz/tune2spot/internal/spotify"
	"github.com/franz/tune2spot/internal/util"
)

func init() {
	var backupPath string
	var restorePath string
	var listOnly bool

	duplicatesCmd := &cobra.Command{
		Use:   "duplicates <playlist-id>",
		Short: "Remove repeated tracks from a playlist",
		Long: `Duplicates removes every second and later occurrence of a track from
a playlist, keeping the first. The playlist is backed up as JSON before
anything is removed; --restore re-adds a backup's tracks after a bad
run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			creds, err := spotify.LoadCredentials()
			if err != nil {
				return err
			}
			client, err := spotify.NewUserClient(ctx, creds)
			if err != nil {
				return err
			}

			if restorePath != "" {
				added, err := client.RestoreBackup(ctx, restorePath)
				if err != nil {
					return err
				}
				util.SuccessLog("Restored %d track(s) from %s", added, restorePath)
				return nil
			}

			if len(args) == 0 {
				return fmt.Errorf("%w: playlist id required", util.ErrInvalidConfig)
			}
			playlistID := args[0]

			if listOnly {
				entries, err := client.PlaylistEntries(ctx, playlistID)
				if err != nil {
					return err
				}
				seen := make(map[string]bool)
				found := 0
				for _, e := range entries {
					if seen[e.TrackID] {
						fmt.Printf("%4d  %s\n", e.Position, e.Title)
						found++
					}
					seen[e.TrackID] = true
				}
				util.InfoLog("%d duplicate occurrence(s)", found)
				return nil
			}

			removed, err := client.RemoveDuplicateOccurrences(ctx, playlistID, backupPath)
			if err != nil {
				return err
			}
			util.SuccessLog("Removed %d duplicate occurrence(s)", removed)
			return nil
		},
	}

	duplicatesCmd.Flags().StringVar(&backupPath, "backup", "playlist_backup.json", "backup file written before removal")
	duplicatesCmd.Flags().StringVar(&restorePath, "restore", "", "restore tracks from this backup instead of removing")
	duplicatesCmd.Flags().BoolVar(&listOnly, "list", false, "list duplicate occurrences without removing")
	rootCmd.AddCommand(duplicatesCmd)
}
