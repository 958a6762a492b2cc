// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the gameasset-dl CLI. It searches free
// game-asset catalogs (itch.io, Kenney, OpenGameArt) and downloads results
// by index from the last search.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/gameasset-dl/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// cfg holds the effective configuration, loaded before each command runs.
var cfg = types.DefaultConfig()

// rootCmd is the base command for the gameasset-dl CLI.
var rootCmd = &cobra.Command{
	Use:   "gameasset-dl",
	Short: "Search and download free game assets",
	Long: `gameasset-dl searches free game-asset catalogs and downloads what it finds.

Search one source with --source or all registered sources at once. Results
are numbered; download them later by number with the download command. The
last search is kept in the working directory so it survives between runs.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = loaded

		logger, err := newLogger(cfg.Log)
		if err != nil {
			return err
		}
		cmd.SetContext(log.WithContext(cmd.Context(), logger))
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./gameasset-dl.yaml or ~/.config/gameasset-dl/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("cloudflare", false, "use a browser-like TLS fingerprint for sites behind Cloudflare")

	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("http.cloudflare_bypass", rootCmd.PersistentFlags().Lookup("cloudflare"))

	setDefaults(viper.GetViper(), types.DefaultConfig())
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("gameasset-dl")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "gameasset-dl"))
		}
	}

	viper.SetEnvPrefix("GAMEASSET_DL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so env overrides apply to keys
// absent from the config file.
func setDefaults(v *viper.Viper, d types.Config) {
	v.SetDefault("http.user_agent", d.HTTP.UserAgent)
	v.SetDefault("http.fetch_timeout", d.HTTP.FetchTimeout)
	v.SetDefault("http.download_timeout", d.HTTP.DownloadTimeout)
	v.SetDefault("http.max_redirects", d.HTTP.MaxRedirects)
	v.SetDefault("http.cloudflare_bypass", d.HTTP.CloudflareBypass)
	v.SetDefault("search.limit", d.Search.Limit)
	v.SetDefault("search.enrich_concurrency", d.Search.EnrichConcurrency)
	v.SetDefault("download.output_dir", d.Download.OutputDir)
	v.SetDefault("download.descriptor_ttl", d.Download.DescriptorTTL)
	v.SetDefault("store.dir", d.Store.Dir)
	v.SetDefault("store.results_file", d.Store.ResultsFile)
	v.SetDefault("store.last_search_file", d.Store.LastSearchFile)
	v.SetDefault("store.history_db", d.Store.HistoryDB)
	v.SetDefault("store.record_history", d.Store.RecordHistory)
	v.SetDefault("log.level", d.Log.Level)
}

func loadConfig() (types.Config, error) {
	c := types.DefaultConfig()
	if err := viper.Unmarshal(&c); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return c, nil
}

func newLogger(lc types.LogConfig) (*log.Logger, error) {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})
	if lc.Level == "" {
		return logger, nil
	}
	level, err := log.ParseLevel(lc.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", lc.Level, err)
	}
	logger.SetLevel(level)
	return logger, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
