package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the songs in the library catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary(cmd.Context())
		if err != nil {
			return err
		}
		defer lib.Close()

		songs, err := lib.Songs(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list songs: %w", err)
		}

		if listJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(songs)
		}

		if len(songs) == 0 {
			fmt.Println("\n📭 No songs in library")
			return nil
		}

		fmt.Printf("\n📚 Found %d song(s):\n\n", len(songs))
		for i, s := range songs {
			fmt.Printf("%d. %s (ID: %s)\n", i+1, s.Title, s.ID)
			fmt.Printf("   %s, %s, %d verse(s), %s\n", s.Path, s.Format, s.Verses, humanize.Bytes(uint64(s.Size)))
			if !s.DateAdded.IsZero() {
				fmt.Printf("   Added %s\n", humanize.Time(s.DateAdded))
			}
		}
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print the catalog as JSON")
	rootCmd.AddCommand(listCmd)
}
