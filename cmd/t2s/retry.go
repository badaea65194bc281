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

	retryCmd := &cobra.Command{
		Use:   "retry",
		Short: "Retry the songs a previous run could not resolve",
		Long: `Retry reloads the retry ledger written by a previous run and attempts
each entry again. The ledger is rewritten with whatever still fails, so
repeated retries shrink it monotonically.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// The input ledger and the rewritten output are the same file.
			opts.applyDefaults()
			provider := source.NewLedgerSource(opts.FailedPath)
			if encodingFallback == "" {
				encodingFallback = viper.GetString("encoding_fallback")
			}
			provider.Repairer = encoding.NewRepairerWithFallback(encodingFallback)
			return runResolve(cmd.Context(), provider, opts)
		},
	}

	addResolveFlags(retryCmd, &opts)
	retryCmd.Flags().StringVar(&encodingFallback, "encoding", "", "fallback charset for garbled ledger entries (default EUC-KR)")
	rootCmd.AddCommand(retryCmd)
}
