package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Reconcile the index with the library directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		fmt.Println("🔧 Opening library...")
		lib, err := openLibrary(ctx)
		if err != nil {
			return err
		}
		defer lib.Close()

		// Open already reconciled; this pass reports what it finds now.
		report, err := lib.Reindex(ctx)
		if err != nil {
			return fmt.Errorf("reindex failed: %w", err)
		}

		fmt.Printf("\n✅ Indexed %s song(s) in %v\n", humanize.Comma(int64(report.Indexed)), report.Duration)
		if report.CreatedMetadata > 0 {
			fmt.Printf("   New:     %d\n", report.CreatedMetadata)
		}
		if report.Removed > 0 {
			fmt.Printf("   Removed: %d\n", report.Removed)
		}
		if report.Failed > 0 {
			fmt.Printf("\n❌ %d file(s) could not be parsed:\n", report.Failed)
			for _, f := range report.Failures {
				fmt.Printf("   %s: %v\n", f.Path, f.Err)
			}
		}
		for _, w := range report.Warnings {
			fmt.Printf("⚠️  %s\n", w)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
