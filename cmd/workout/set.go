// ABOUTME: CLI commands for the set ledger: log, replace, delete, complete, warm-ups, drops.
// ABOUTME: Sets belong to a slot choice; 'workout session show' prints choice and set IDs.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/models"
)

var (
	setRPE   float64
	setRest  int
	setNotes string
	setDone  bool
	setUndo  bool

	warmupUnit string
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Log and edit sets",
	Long: `Log and edit the sets of a slot choice.

Find choice and set IDs with 'workout session show'.

COMMANDS:

  log       Record or update one set
  replace   Replace all working sets of a choice
  list      List the sets of a choice
  delete    Delete one set
  done      Mark a set completed (or --undo)
  warmup    Generate warm-up sets ahead of the working sets
  drop      Add, update, delete or list drop segments of a set`,
}

var setLogCmd = &cobra.Command{
	Use:   "log <choice-id> <set-index> <weight> <reps>",
	Short: "Record or update a set",
	Long: `Record a set, or update the set already at that index.

Examples:
  workout set log 4 1 100 5 --done
  workout set log 4 2 100 5 --rpe 8.5 --rest 180`,
	Args: cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		choiceID, err := parseID(args[0], "choice")
		if err != nil {
			return err
		}
		setIndex, err := parseIndex(args[1])
		if err != nil {
			return err
		}
		weight, err := parseWeight(args[2])
		if err != nil {
			return err
		}
		reps, err := parseReps(args[3])
		if err != nil {
			return err
		}

		in := models.SetInput{Weight: weight, Reps: reps}
		if cmd.Flags().Changed("rpe") {
			in.RPE = &setRPE
		}
		if cmd.Flags().Changed("rest") {
			in.RestSeconds = &setRest
		}
		if setNotes != "" {
			in.Notes = &setNotes
		}

		id, err := repo.UpsertSet(choiceID, setIndex, in)
		if err != nil {
			return fmt.Errorf("failed to log set: %w", err)
		}

		if setDone {
			if err := repo.ToggleSetCompleted(id, true); err != nil {
				return fmt.Errorf("failed to complete set: %w", err)
			}
		}

		color.Green("✓ Set %d: %s x %d (ID: %d)", setIndex, formatWeight(weight), reps, id)
		return nil
	},
}

var setReplaceCmd = &cobra.Command{
	Use:   "replace <choice-id> <WEIGHTxREPS>...",
	Short: "Replace all working sets of a choice",
	Long: `Replace every working set of a choice in one step. Warm-ups stay in place.

Example:
  workout set replace 4 100x5 100x5 100x5`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		choiceID, err := parseID(args[0], "choice")
		if err != nil {
			return err
		}

		sets := make([]models.SetInput, 0, len(args)-1)
		for _, spec := range args[1:] {
			in, err := parseSetSpec(spec)
			if err != nil {
				return err
			}
			sets = append(sets, in)
		}

		if err := repo.ReplaceSets(choiceID, sets); err != nil {
			return fmt.Errorf("failed to replace sets: %w", err)
		}

		color.Green("✓ Replaced working sets of choice %d with %d sets", choiceID, len(sets))
		return nil
	},
}

var setListCmd = &cobra.Command{
	Use:     "list <choice-id>",
	Aliases: []string{"ls"},
	Short:   "List the sets of a choice",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		choiceID, err := parseID(args[0], "choice")
		if err != nil {
			return err
		}

		sets, err := repo.ListSetsForChoice(choiceID)
		if err != nil {
			return fmt.Errorf("failed to list sets: %w", err)
		}

		if len(sets) == 0 {
			fmt.Println("No sets found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, s := range sets {
			mark := " "
			if s.Completed {
				mark = color.GreenString("x")
			}
			kind := ""
			if s.IsWarmup {
				kind = faint.Sprint(" warm-up")
			}
			fmt.Printf("%s %2d [%s] %s%s\n", faint.Sprintf("%5d", s.ID), s.SetIndex, mark, formatSet(s), kind)
		}
		return nil
	},
}

var setDeleteCmd = &cobra.Command{
	Use:     "delete <choice-id> <set-index>",
	Aliases: []string{"rm"},
	Short:   "Delete a set",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		choiceID, err := parseID(args[0], "choice")
		if err != nil {
			return err
		}
		setIndex, err := parseIndex(args[1])
		if err != nil {
			return err
		}

		if err := repo.DeleteSet(choiceID, setIndex); err != nil {
			return fmt.Errorf("failed to delete set: %w", err)
		}

		color.Green("✓ Deleted set %d", setIndex)
		return nil
	},
}

var setDoneCmd = &cobra.Command{
	Use:   "done <set-id>",
	Short: "Mark a set completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		setID, err := parseID(args[0], "set")
		if err != nil {
			return err
		}

		if err := repo.ToggleSetCompleted(setID, !setUndo); err != nil {
			return fmt.Errorf("failed to update set: %w", err)
		}

		if setUndo {
			color.Green("✓ Set %d marked not completed", setID)
		} else {
			color.Green("✓ Set %d completed", setID)
		}
		return nil
	},
}

var setWarmupCmd = &cobra.Command{
	Use:   "warmup <choice-id> <working-weight>",
	Short: "Generate warm-up sets",
	Long: `Generate warm-up sets ramping up to the working weight.

Existing warm-ups of the choice are replaced and the working sets move
after the new ramp. Weights are rounded to loadable plates and never go
below the empty bar.

Examples:
  workout set warmup 4 100
  workout set warmup 4 225 --unit lb`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		choiceID, err := parseID(args[0], "choice")
		if err != nil {
			return err
		}
		working, err := parseWeight(args[1])
		if err != nil {
			return err
		}

		u := unit
		if warmupUnit != "" {
			u, err = models.ParseUnit(warmupUnit)
			if err != nil {
				return err
			}
		}

		sets, err := repo.GenerateWarmupSets(choiceID, working, u)
		if err != nil {
			return fmt.Errorf("failed to generate warm-ups: %w", err)
		}

		warmups := 0
		for _, s := range sets {
			if s.IsWarmup {
				warmups++
				fmt.Printf("  %dw %s\n", s.SetIndex, formatSet(s))
			}
		}
		if warmups == 0 {
			color.Yellow("⚠ %s %s is too light for warm-ups", formatWeight(working), u)
			return nil
		}
		color.Green("✓ Added %d warm-up sets", warmups)
		return nil
	},
}

var setDropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Manage drop segments of a set",
}

var setDropAddCmd = &cobra.Command{
	Use:   "add <set-id> <weight> <reps>",
	Short: "Append a drop segment to a set",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		setID, err := parseID(args[0], "set")
		if err != nil {
			return err
		}
		weight, err := parseWeight(args[1])
		if err != nil {
			return err
		}
		reps, err := parseReps(args[2])
		if err != nil {
			return err
		}

		id, err := repo.AddDropSegment(setID, weight, reps)
		if err != nil {
			return fmt.Errorf("failed to add drop: %w", err)
		}

		color.Green("✓ Added drop %s x %d (ID: %d)", formatWeight(weight), reps, id)
		return nil
	},
}

var setDropUpdateCmd = &cobra.Command{
	Use:   "update <segment-id> <weight> <reps>",
	Short: "Update a drop segment",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		segmentID, err := parseID(args[0], "drop")
		if err != nil {
			return err
		}
		weight, err := parseWeight(args[1])
		if err != nil {
			return err
		}
		reps, err := parseReps(args[2])
		if err != nil {
			return err
		}

		if err := repo.UpdateDropSegment(segmentID, weight, reps); err != nil {
			return fmt.Errorf("failed to update drop: %w", err)
		}

		color.Green("✓ Updated drop %d", segmentID)
		return nil
	},
}

var setDropDeleteCmd = &cobra.Command{
	Use:     "delete <segment-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a drop segment",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		segmentID, err := parseID(args[0], "drop")
		if err != nil {
			return err
		}

		if err := repo.DeleteDropSegment(segmentID); err != nil {
			return fmt.Errorf("failed to delete drop: %w", err)
		}

		color.Green("✓ Deleted drop %d", segmentID)
		return nil
	},
}

var setDropListCmd = &cobra.Command{
	Use:     "list <set-id>",
	Aliases: []string{"ls"},
	Short:   "List the drop segments of a set",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		setID, err := parseID(args[0], "set")
		if err != nil {
			return err
		}

		drops, err := repo.ListDropSegments(setID)
		if err != nil {
			return fmt.Errorf("failed to list drops: %w", err)
		}

		if len(drops) == 0 {
			fmt.Println("No drops found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, d := range drops {
			fmt.Printf("%s %d. %s x %d\n", faint.Sprintf("%5d", d.ID), d.SegmentIndex, formatWeight(d.Weight), d.Reps)
		}
		return nil
	},
}

func init() {
	setLogCmd.Flags().Float64Var(&setRPE, "rpe", 0, "rate of perceived exertion (1-10)")
	setLogCmd.Flags().IntVar(&setRest, "rest", 0, "rest after the set in seconds")
	setLogCmd.Flags().StringVar(&setNotes, "notes", "", "notes for the set")
	setLogCmd.Flags().BoolVar(&setDone, "done", false, "mark the set completed")
	setDoneCmd.Flags().BoolVar(&setUndo, "undo", false, "mark the set not completed")
	setWarmupCmd.Flags().StringVar(&warmupUnit, "unit", "", "kg or lb (defaults to config)")

	setDropCmd.AddCommand(setDropAddCmd)
	setDropCmd.AddCommand(setDropUpdateCmd)
	setDropCmd.AddCommand(setDropDeleteCmd)
	setDropCmd.AddCommand(setDropListCmd)

	setCmd.AddCommand(setLogCmd)
	setCmd.AddCommand(setReplaceCmd)
	setCmd.AddCommand(setListCmd)
	setCmd.AddCommand(setDeleteCmd)
	setCmd.AddCommand(setDoneCmd)
	setCmd.AddCommand(setWarmupCmd)
	setCmd.AddCommand(setDropCmd)
	rootCmd.AddCommand(setCmd)
}
