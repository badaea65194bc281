package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/franz/tune2spot/internal/encoding"
	"github.com/franz/tune2spot/internal/source"
)

func init() {
	opts := resolveOptions{}
	var recursive bool
	var encodingFallback string

	scanCmd := &cobra.Command{
		Use:   "scan <directory>",
		Short: "Scan a music directory and resolve each file",
		Long: `Scan walks a directory of audio files, reads their tags (falling back
to filename parsing), repairs garbled legacy-encoded metadata, and
resolves every song against the catalog.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scanner := source.NewDirScanner(args[0], recursive)
			if encodingFallback == "" {
				encodingFallback = viper.GetString("encoding_fallback")
			}
			scanner.Repairer = encoding.NewRepairerWithFallback(encodingFallback)
			return runResolve(cmd.Context(), scanner, opts)
		},
	}

	addResolveFlags(scanCmd, &opts)
	scanCmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "descend into subdirectories")
	scanCmd.Flags().StringVar(&encodingFallback, "encoding", "", "fallback charset for garbled tags (default EUC-KR)")
	rootCmd.AddCommand(scanCmd)
}
