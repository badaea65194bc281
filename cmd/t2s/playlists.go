package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/franz/tune2spot/internal/spotify"
)

func init() {
	playlistsCmd := &cobra.Command{
		Use:   "playlists",
		Short: "List your playlists with their IDs",
		Args:  cobra.NoArgs,
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

			playlists, err := client.UserPlaylists(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTRACKS\tNAME")
			for _, p := range playlists {
				fmt.Fprintf(w, "%s\t%d\t%s\n", p.ID, p.Tracks, p.Name)
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(playlistsCmd)
}
