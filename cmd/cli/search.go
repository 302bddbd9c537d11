package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/himanishpuri/LyricIndex/pkg/lyricindex"
)

var (
	searchMode string
	searchMax  int
)

var searchCmd = &cobra.Command{
	Use:   "search <words...>",
	Short: "Search titles, verses and keywords",
	Example: `  lyricindex search --mode phrase "thou art"
  lyricindex search -m any wretch grace`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := lyricindex.ParseSearchMode(normalizeMode(searchMode))
		if err != nil {
			return err
		}
		text := strings.Join(args, " ")

		lib, err := openLibrary(cmd.Context())
		if err != nil {
			return err
		}
		defer lib.Close()

		fmt.Printf("🔍 Searching for %q (%s)\n", text, mode)
		results, err := lib.Search(cmd.Context(), text, mode, searchMax)
		if err != nil {
			return err
		}

		if len(results) == 0 {
			fmt.Println("\n📭 No matches")
			return nil
		}

		fmt.Printf("\n🎵 %d match(es):\n\n", len(results))
		for i, r := range results {
			fmt.Printf("%d. %s  [%s]  score %.3f\n", i+1, r.Title, r.Path, r.Score)
			for _, snippet := range []string{r.TitleSnippet, r.VerseSnippet, r.KeywordSnippet} {
				if snippet != "" {
					fmt.Printf("   %s\n", highlight(snippet))
				}
			}
			fmt.Println()
		}
		return nil
	},
}

// normalizeMode accepts the short names phrase, all and any.
func normalizeMode(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "phrase":
		return lyricindex.Phrase.String()
	case "all", "all-words", "all_words":
		return lyricindex.AllWords.String()
	case "any", "any-word", "any_word":
		return lyricindex.AnyWord.String()
	}
	return s
}

var snippetMarks = strings.NewReplacer("<mark>", "\033[1m", "</mark>", "\033[0m", "\n", " / ")

func highlight(snippet string) string {
	return snippetMarks.Replace(snippet)
}

func init() {
	searchCmd.Flags().StringVarP(&searchMode, "mode", "m", "any", "Match mode: phrase, all or any")
	searchCmd.Flags().IntVarP(&searchMax, "max", "n", 0, "Maximum results (default from LYRICINDEX_MAX_RESULTS)")
	rootCmd.AddCommand(searchCmd)
}
