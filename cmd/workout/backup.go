// ABOUTME: CLI command for copying the workout database to a backup file.
// ABOUTME: Supports a dry run that only reports what would be copied.
package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/config"
	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/storage"
)

var backupDryRun bool

var backupCmd = &cobra.Command{
	Use:   "backup [path]",
	Short: "Back up the workout database",
	Long: `Write a consistent copy of the workout database to another file.

The default destination is next to the live database, named with the
current date. An existing file is never overwritten.

USAGE:

  workout backup --dry-run          # Preview what would be copied
  workout backup                    # workout-YYYYMMDD-HHMMSS.db in the data dir
  workout backup ~/sync/workout.db  # Explicit destination`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if backupDryRun {
			color.Yellow("Dry run mode - no changes will be made")
			fmt.Println()
			summary, err := repo.BackupPreview()
			if err != nil {
				return fmt.Errorf("failed to preview backup: %w", err)
			}
			printBackupSummary(summary)
			return nil
		}

		dst := filepath.Join(filepath.Dir(repo.Path()),
			fmt.Sprintf("workout-%s.db", time.Now().Format("20060102-150405")))
		if len(args) == 1 {
			dst = config.ExpandPath(args[0])
		}

		summary, err := repo.Backup(dst)
		if err != nil {
			return fmt.Errorf("failed to back up database: %w", err)
		}
		color.Green("✓ Backed up database to %s", summary.Path)
		printBackupSummary(summary)
		return nil
	},
}

func printBackupSummary(s *storage.BackupSummary) {
	fmt.Printf("  Exercises:    %d\n", s.Exercises)
	fmt.Printf("  Templates:    %d\n", s.Templates)
	fmt.Printf("  Sessions:     %d\n", s.Sessions)
	fmt.Printf("  Sets:         %d\n", s.Sets)
	fmt.Printf("  Body weights: %d\n", s.BodyWeights)
}

func init() {
	backupCmd.Flags().BoolVar(&backupDryRun, "dry-run", false, "preview backup without writing a file")
	rootCmd.AddCommand(backupCmd)
}
