package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/himanishpuri/LyricIndex/pkg/lyricindex"
	"github.com/himanishpuri/LyricIndex/pkg/models"
	"github.com/himanishpuri/LyricIndex/pkg/utils"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show <id|file>",
	Short: "Print a song by catalog id or library file name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		lib, err := openLibrary(ctx)
		if err != nil {
			return err
		}
		defer lib.Close()

		var song *models.Song
		if utils.IsUUID(args[0]) {
			song, err = lib.Song(ctx, args[0])
		} else {
			song, err = lib.SongByPath(ctx, args[0])
		}
		if errors.Is(err, lyricindex.ErrNotFound) {
			return fmt.Errorf("no song %q in %s", args[0], lib.Dir())
		}
		if err != nil {
			return err
		}

		if showJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(song)
		}
		printSong(song)
		return nil
	},
}

func printSong(song *models.Song) {
	lyrics := song.DefaultLyrics()
	if lyrics == nil {
		return
	}
	fmt.Printf("🎵 %s\n", lyrics.Title)
	if len(lyrics.Authors) > 0 {
		names := make([]string, len(lyrics.Authors))
		for i, a := range lyrics.Authors {
			names[i] = a.Name
		}
		fmt.Printf("   %s\n", strings.Join(names, ", "))
	}
	if song.Copyright != "" {
		fmt.Printf("   © %s\n", song.Copyright)
	}
	if song.ID != "" {
		fmt.Printf("   ID: %s\n", song.ID)
	}
	for _, v := range lyrics.Verses {
		fmt.Printf("\n[%s]\n%s\n", v.Name, v.Text)
	}
	if n := len(song.Lyrics) - 1; n > 0 {
		fmt.Printf("\n(%d more language version(s), use --json to see them)\n", n)
	}
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Print the canonical song as JSON")
	rootCmd.AddCommand(showCmd)
}
