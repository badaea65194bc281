package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/franz/tune2spot/internal/encoding"
	"github.com/franz/tune2spot/internal/source"
)

func init() {
	opts := resolveOptions{}
	var encodingFallback string

	importCmd := &cobra.Command{
		Use:   "import <songs.txt>",
		Short: "Resolve songs from a text file, one per line",
		Long: `Import reads a plain text file with one song per line, in
"Artist - Title" or bare-title form, and resolves each line against the
catalog. Lines starting with '#' are ignored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lines := source.NewLinesFile(args[0])
			if encodingFallback == "" {
				encodingFallback = viper.GetString("encoding_fallback")
			}
			lines.Repairer = encoding.NewRepairerWithFallback(encodingFallback)
			return runResolve(cmd.Context(), lines, opts)
		},
	}

	addResolveFlags(importCmd, &opts)
	importCmd.Flags().StringVar(&encodingFallback, "encoding", "", "fallback charset for garbled lines (default EUC-KR)")
	rootCmd.AddCommand(importCmd)
}
