// ABOUTME: CLI commands for training analytics.
// ABOUTME: Totals, per-template stats, weekly muscle volume, streak, e1RM trend, PRs and workout days.
package main

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Training analytics",
	Long: `Training analytics over finalized sessions.

Only completed, non-warm-up sets count. Volume is weight x reps.

COMMANDS:

  overall     Totals and the last 7 days
  templates   Sessions, sets and volume per template
  volume      Sets and volume per muscle over the last 7 days
  streak      Consecutive training days
  e1rm        Best estimated 1RM per session for an exercise
  prs         Personal records of a session
  days        Sessions per calendar day`,
}

var statsOverallCmd = &cobra.Command{
	Use:   "overall",
	Short: "Totals and the last 7 days",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := repo.OverallStats()
		if err != nil {
			return fmt.Errorf("failed to get stats: %w", err)
		}

		bold := color.New(color.Bold)
		bold.Println("All time")
		fmt.Printf("  Sessions: %d\n  Sets:     %d\n  Volume:   %s\n", s.TotalSessions, s.TotalSets, formatWeight(s.TotalVolume))
		bold.Println("Last 7 days")
		fmt.Printf("  Sessions: %d\n  Sets:     %d\n  Volume:   %s\n", s.Last7Sessions, s.Last7Sets, formatWeight(s.Last7Volume))
		return nil
	},
}

var statsTemplatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Stats per template",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := repo.PerTemplateStats()
		if err != nil {
			return fmt.Errorf("failed to get template stats: %w", err)
		}

		if len(stats) == 0 {
			fmt.Println("No templates found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, t := range stats {
			last := "never"
			if t.LastPerformedAt != nil {
				last = t.LastPerformedAt.Local().Format("2006-01-02")
			}
			fmt.Printf("%s %3d sessions %4d sets %10s vol %s\n",
				padRight(truncate(t.TemplateName, 20), 20),
				t.Sessions, t.CompletedSets, formatWeight(t.TotalVolume),
				faint.Sprintf("last %s", last))
		}
		return nil
	},
}

var statsVolumeCmd = &cobra.Command{
	Use:   "volume",
	Short: "Weekly volume by muscle",
	RunE: func(cmd *cobra.Command, args []string) error {
		muscles, err := repo.WeeklyVolumeByMuscle()
		if err != nil {
			return fmt.Errorf("failed to get muscle volume: %w", err)
		}

		if len(muscles) == 0 {
			fmt.Println("No training in the last 7 days.")
			return nil
		}

		for _, m := range muscles {
			fmt.Printf("%s %3d sets %10s vol\n", padRight(m.Muscle, 16), m.Sets, formatWeight(m.Volume))
		}
		return nil
	},
}

var statsStreakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Current training streak",
	RunE: func(cmd *cobra.Command, args []string) error {
		streak, err := repo.CurrentStreak()
		if err != nil {
			return fmt.Errorf("failed to get streak: %w", err)
		}

		if streak == 0 {
			fmt.Println("No active streak.")
			return nil
		}
		days := "days"
		if streak == 1 {
			days = "day"
		}
		color.Green("🔥 %d %s in a row", streak, days)
		return nil
	},
}

var statsE1RMCmd = &cobra.Command{
	Use:   "e1rm <exercise>",
	Short: "Estimated 1RM per session for an exercise",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ex, err := resolveExercise(args[0])
		if err != nil {
			return fmt.Errorf("failed to find exercise: %w", err)
		}

		points, err := repo.E1RMHistory(ex.ID)
		if err != nil {
			return fmt.Errorf("failed to get e1RM history: %w", err)
		}

		if len(points) == 0 {
			fmt.Printf("No e1RM history for %s.\n", ex.Name)
			return nil
		}

		faint := color.New(color.Faint)
		for _, p := range points {
			fmt.Printf("%s %.1f %s\n",
				p.PerformedAt.Local().Format("2006-01-02"),
				p.E1RM,
				faint.Sprintf("(session %d)", p.SessionID))
		}
		return nil
	},
}

var statsPRsCmd = &cobra.Command{
	Use:   "prs [session]",
	Short: "Personal records of a session",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := resolveLatestSession(optionalArg(args, 0))
		if err != nil {
			return err
		}

		prs, err := repo.GetSessionPRs(id)
		if err != nil {
			return fmt.Errorf("failed to get PRs: %w", err)
		}

		if len(prs) == 0 {
			fmt.Println("No personal records in this session.")
			return nil
		}
		printPRs(prs)
		return nil
	},
}

var statsDaysCmd = &cobra.Command{
	Use:   "days",
	Short: "Sessions per calendar day",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, err := repo.WorkoutDaysMap()
		if err != nil {
			return fmt.Errorf("failed to get workout days: %w", err)
		}

		if len(days) == 0 {
			fmt.Println("No sessions found.")
			return nil
		}

		keys := make([]string, 0, len(days))
		for k := range days {
			keys = append(keys, k)
		}
		sort.Sort(sort.Reverse(sort.StringSlice(keys)))
		for _, k := range keys {
			fmt.Printf("%s %d\n", k, days[k])
		}
		return nil
	},
}

// resolveLatestSession resolves ref, defaulting to the most recent finalized session.
func resolveLatestSession(ref string) (int64, error) {
	if ref != "" {
		return repo.ResolveSessionRef(ref)
	}
	history, err := repo.ListHistory(1)
	if err != nil {
		return 0, fmt.Errorf("failed to list history: %w", err)
	}
	if len(history) == 0 {
		return 0, fmt.Errorf("no finalized sessions")
	}
	return history[0].ID, nil
}

func init() {
	statsCmd.AddCommand(statsOverallCmd)
	statsCmd.AddCommand(statsTemplatesCmd)
	statsCmd.AddCommand(statsVolumeCmd)
	statsCmd.AddCommand(statsStreakCmd)
	statsCmd.AddCommand(statsE1RMCmd)
	statsCmd.AddCommand(statsPRsCmd)
	statsCmd.AddCommand(statsDaysCmd)
	rootCmd.AddCommand(statsCmd)
}
