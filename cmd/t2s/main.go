// t2s resolves a local music collection against the Spotify catalog
// and maintains a playlist from the matches.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/franz/tune2spot/internal/util"
)

var (
	flagVerbose bool
	flagQuiet   bool
	flagNoColor bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "t2s",
	Short: "Match local songs against the Spotify catalog",
	Long: `t2s scans a music directory or song list, finds each song in the
Spotify catalog using progressively relaxed search strategies, and adds
the matches to a playlist. Songs it cannot resolve are written to a
retry ledger for a later run.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		util.SetVerbose(flagVerbose)
		util.SetQuiet(flagQuiet)
		if flagNoColor || !util.StderrIsTerminal() {
			util.SetColors(false)
		}
		return initConfig()
	},
}

func initConfig() error {
	viper.SetDefault("playlist", "tune2spot")
	viper.SetDefault("failed_path", "failed_matches.tsv")
	viper.SetDefault("cache_path", cacheDefaultPath())
	viper.SetDefault("threshold", 0.80)
	viper.SetDefault("margin", 0.05)
	viper.SetDefault("encoding_fallback", "EUC-KR")

	viper.SetEnvPrefix("T2S")
	viper.AutomaticEnv()

	if flagConfig != "" {
		viper.SetConfigFile(flagConfig)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", flagConfig, err)
		}
		return nil
	}

	viper.SetConfigName("t2s")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home + "/.config/t2s")
	}
	if err := viper.ReadInConfig(); err == nil {
		util.DebugLog("Using config file %s", viper.ConfigFileUsed())
	}
	return nil
}

func cacheDefaultPath() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir + "/t2s/search.db"
	}
	return "search.db"
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug output")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "errors only")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ./t2s.yaml)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		util.ErrorLog("%v", err)
		os.Exit(1)
	}
}
