package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/himanishpuri/LyricIndex/internal/config"
	"github.com/himanishpuri/LyricIndex/pkg/logger"
	"github.com/himanishpuri/LyricIndex/pkg/lyricindex"
)

// Global flags
var (
	libraryDir string
	chords     bool
	verbose    bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "lyricindex",
	Short: "Index and search a directory of song lyric files",
	Long: `lyricindex keeps a full-text index of a directory of song files
(OpenLyrics, internal XML/JSON and legacy SongDataSet documents) and
searches it by phrase, all words or any word.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("library") {
			cfg.Library = libraryDir
		}
		if cmd.Flags().Changed("chords") {
			cfg.Chords = chords
		}
		if verbose {
			cfg.LogLevel = "DEBUG"
		}
		setupLogger(cfg)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.GetLogger().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&libraryDir, "library", "l", ".", "Library directory (env: LYRICINDEX_LIBRARY)")
	rootCmd.PersistentFlags().BoolVar(&chords, "chords", false, "Keep chord symbols in verse text (env: LYRICINDEX_CHORDS)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func setupLogger(c *config.Config) {
	lc := logger.DefaultConfig()
	lc.Level = logger.ParseLevel(c.LogLevel)
	lc.Output = os.Stderr
	lc.File = c.LogFile
	logger.SetDefault(logger.New(lc))
}

// openLibrary opens the configured library; the caller must Close it.
func openLibrary(ctx context.Context) (lyricindex.Library, error) {
	opts := []lyricindex.Option{
		lyricindex.WithLogger(logger.GetLogger()),
		lyricindex.WithChords(cfg.Chords),
		lyricindex.WithMaxResults(cfg.MaxResults),
		lyricindex.WithWatchDebounce(cfg.WatchDebounce),
	}
	if cfg.Workers > 0 {
		opts = append(opts, lyricindex.WithParseWorkers(cfg.Workers))
	}
	if cfg.IndexDir != "" {
		opts = append(opts, lyricindex.WithIndexDir(cfg.IndexDir))
	}
	if cfg.MetadataDir != "" {
		opts = append(opts, lyricindex.WithMetadataDir(cfg.MetadataDir))
	}

	lib, err := lyricindex.Open(ctx, cfg.Library, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open library %s: %w", cfg.Library, err)
	}
	return lib, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
