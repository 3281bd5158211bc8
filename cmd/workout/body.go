// ABOUTME: CLI commands for the body-weight log.
// ABOUTME: Supports add, list, and delete subcommands.
package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/models"
)

var (
	bodyUnit  string
	bodyAt    string
	bodyLimit int
)

var bodyCmd = &cobra.Command{
	Use:   "body",
	Short: "Track body weight",
	Long: `Track body weight, independent of sessions.

Examples:
  workout body add 82.5
  workout body add 181 --unit lb --at "2026-03-01 07:30"
  workout body list`,
}

var bodyAddCmd = &cobra.Command{
	Use:   "add <weight>",
	Short: "Record body weight",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		weight, err := parseWeight(args[0])
		if err != nil {
			return err
		}

		u := unit
		if bodyUnit != "" {
			u, err = models.ParseUnit(bodyUnit)
			if err != nil {
				return err
			}
		}

		var measuredAt time.Time
		if bodyAt != "" {
			measuredAt, err = parseTime(bodyAt)
			if err != nil {
				return fmt.Errorf("invalid timestamp: %s (use YYYY-MM-DD HH:MM)", bodyAt)
			}
		}

		id, err := repo.AddBodyWeight(weight, u, measuredAt)
		if err != nil {
			return fmt.Errorf("failed to record body weight: %w", err)
		}

		color.Green("✓ Recorded %s %s (ID: %d)", formatWeight(weight), u, id)
		return nil
	},
}

var bodyListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List body-weight entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := repo.ListBodyWeights(bodyLimit)
		if err != nil {
			return fmt.Errorf("failed to list body weights: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("No body-weight entries found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, e := range entries {
			fmt.Printf("%s %s %s %s\n",
				faint.Sprintf("%4d", e.ID),
				faint.Sprint(e.MeasuredAt.Local().Format("2006-01-02 15:04")),
				formatWeight(e.Weight),
				e.Unit)
		}
		return nil
	},
}

var bodyDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a body-weight entry",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "entry")
		if err != nil {
			return err
		}

		if err := repo.DeleteBodyWeight(id); err != nil {
			return fmt.Errorf("failed to delete entry: %w", err)
		}

		color.Green("✓ Deleted entry %d", id)
		return nil
	},
}

func init() {
	bodyAddCmd.Flags().StringVar(&bodyUnit, "unit", "", "kg or lb (defaults to config)")
	bodyAddCmd.Flags().StringVar(&bodyAt, "at", "", "timestamp (YYYY-MM-DD HH:MM)")
	bodyListCmd.Flags().IntVarP(&bodyLimit, "limit", "n", 20, "max number of results")

	bodyCmd.AddCommand(bodyAddCmd)
	bodyCmd.AddCommand(bodyListCmd)
	bodyCmd.AddCommand(bodyDeleteCmd)
	rootCmd.AddCommand(bodyCmd)
}
