package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/himanishpuri/LyricIndex/pkg/logger"
)

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Import song documents or zip archives into the library",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.GetLogger()
		ctx := cmd.Context()

		lib, err := openLibrary(ctx)
		if err != nil {
			return err
		}
		defer lib.Close()

		var imported, skipped int
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				fmt.Printf("❌ %s: %v\n", path, err)
				log.Errorf("Reading %s failed: %v", path, err)
				skipped++
				continue
			}

			fmt.Printf("📥 %s (%s)\n", path, humanize.Bytes(uint64(len(data))))
			result, err := lib.Import(ctx, filepath.Base(path), data)
			if err != nil {
				fmt.Printf("   ❌ %v\n", err)
				skipped++
				continue
			}
			for _, s := range result.Imported {
				fmt.Printf("   ✅ %s -> %s (%s, id %s)\n", s.Title, s.Path, s.Format, s.ID)
			}
			for _, s := range result.Skipped {
				fmt.Printf("   ⚠️  %s: %v\n", s.Entry, s.Err)
			}
			imported += len(result.Imported)
			skipped += len(result.Skipped)
		}

		fmt.Printf("\nImported %d song(s), skipped %d\n", imported, skipped)
		if imported == 0 && skipped > 0 {
			return fmt.Errorf("nothing imported")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
