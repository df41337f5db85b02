// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kani/internal/config"
	"kani/internal/console"
	"kani/internal/httputil"
	"kani/internal/session"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagShow      string
	flagEpisodes  string
	flagQuality   string
	flagDub       string
	flagServer    int
	flagOldSubs   bool
	flagMP4       bool
	flagMuxSubs   bool
	flagSubsLang  string
	flagTitle     string
	flagEpNum     string
	flagSuffix    string
	flagNoCleanup bool
	flagProxy     string
	flagSkipDL    bool
	flagSkipSubs  bool
	flagSkipMux   bool
	flagDebug     bool
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

// client is the shared HTTP client, built once per invocation.
var client *httputil.Client

var rootCmd = &cobra.Command{
	Use:   "kani",
	Short: "Download episodes from the catalog into playable files",
	Long: `Kani resolves catalog entries into locally playable media files:
it matches an episode selection against the show's feed, picks a stream
quality and server, downloads the video, fetches and converts the
subtitles, and muxes everything into an mkv or mp4.`,
	PersistentPreRunE: loadConfig,
	RunE:              showRun,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagShow, "show", "s", "", "Show feed id to download from")
	pf.StringVarP(&flagEpisodes, "episodes", "e", "", "Episode selection, e.g. E05 or E01-E10,S02")
	pf.StringVarP(&flagQuality, "quality", "q", "", "Video quality: 240p | 360p | 480p | 720p | 1080p | max")
	pf.StringVar(&flagDub, "dub", "", "Audio language fallback code, e.g. jpn")
	pf.IntVarP(&flagServer, "server", "x", 0, "Delivery server index (1-based, preferred servers first)")
	pf.BoolVar(&flagOldSubs, "oldsubs", false, "Use the legacy encrypted subtitle API")
	pf.BoolVar(&flagMP4, "mp4", false, "Mux to mp4 with ffmpeg instead of mkv")
	pf.BoolVar(&flagMuxSubs, "mks", false, "Mux subtitle tracks into the output")
	pf.StringVarP(&flagSubsLang, "subs", "a", "", "Subtitle language filter: all | none | one code")
	pf.StringVarP(&flagTitle, "title", "t", "", "Override the series title in output names")
	pf.StringVar(&flagEpNum, "ep", "", "Override the episode number in the output name (single episode only)")
	pf.StringVar(&flagSuffix, "suffix", "", "Output name suffix, SIZEp expands to the resolution")
	pf.BoolVar(&flagNoCleanup, "nocleanup", false, "Move intermediate files to trash instead of deleting")
	pf.StringVar(&flagProxy, "proxy", "", "HTTP proxy host:port for page requests")
	pf.BoolVar(&flagSkipDL, "skipdl", false, "Skip the video download stage")
	pf.BoolVar(&flagSkipSubs, "skipsubs", false, "Skip the subtitle stage")
	pf.BoolVar(&flagSkipMux, "skipmux", false, "Skip the mux stage")
	pf.BoolVar(&flagDebug, "debug", false, "Debug logging to stderr")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file values
	if flagQuality != "" {
		cfg.CLI.Quality = flagQuality
	}
	if flagDub != "" {
		cfg.CLI.DubLanguage = flagDub
	}
	if flagServer != 0 {
		cfg.CLI.Server = flagServer
	}
	if flagOldSubs {
		cfg.CLI.OldSubs = true
	}
	if flagMP4 {
		cfg.CLI.MP4 = true
	}
	if cmd.Flags().Changed("mks") {
		cfg.CLI.MuxSubs = flagMuxSubs
	}
	if flagSubsLang != "" {
		cfg.CLI.SubsLanguage = flagSubsLang
	}
	if flagSuffix != "" {
		cfg.CLI.Suffix = flagSuffix
	}
	if flagNoCleanup {
		cfg.CLI.NoCleanup = true
	}
	if flagProxy != "" {
		cfg.Net.Proxy = flagProxy
	}
	if flagDebug {
		cfg.Debug = true
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	console.SetDebug(cfg.Debug)

	if err := enterContentDir(); err != nil {
		return err
	}

	sessPath, err := session.Path()
	if err != nil {
		return fmt.Errorf("resolving session path: %w", err)
	}
	sess, err := session.Load(sessPath)
	if err != nil {
		console.Warnf("loading session: %v, continuing without one", err)
		sess = &session.Session{}
	}
	client, err = httputil.New(sess, cfg.Net.Proxy)
	if err != nil {
		return fmt.Errorf("building HTTP client: %w", err)
	}
	return nil
}

// enterContentDir makes the content directory the working directory.
// Not being able to write output is a process-level failure, not a
// per-episode one.
func enterContentDir() error {
	dir, err := config.ExpandDir(cfg.Dirs.Content)
	if err != nil {
		return fmt.Errorf("resolving content dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating content dir: %w", err)
	}
	if err := os.Chdir(dir); err != nil {
		return fmt.Errorf("entering content dir: %w", err)
	}
	cfg.Dirs.Content = dir
	return nil
}
