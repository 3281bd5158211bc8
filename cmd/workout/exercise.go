// ABOUTME: CLI commands for the exercise catalog.
// ABOUTME: Supports add, list, option, and delete subcommands.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var exerciseMuscle string

var exerciseCmd = &cobra.Command{
	Use:     "exercise",
	Aliases: []string{"ex"},
	Short:   "Manage the exercise catalog",
	Long: `Manage exercises and their variants.

Exercises are referenced by template slots and recorded sessions. Variants
(e.g. "Dumbbell", "Paused") let one exercise appear in several forms.

COMMANDS:

  add      Add an exercise with its primary muscle
  list     List exercises and their variants
  option   Add a variant to an exercise
  delete   Delete an unused exercise`,
}

var exerciseAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add an exercise",
	Long: `Add an exercise to the catalog.

Examples:
  workout exercise add "Bench Press" --muscle chest
  workout exercise add Squat -m quads`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := repo.CreateExercise(args[0], exerciseMuscle)
		if err != nil {
			return fmt.Errorf("failed to add exercise: %w", err)
		}

		color.Green("✓ Added exercise %s (ID: %d)", args[0], id)
		return nil
	},
}

var exerciseListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List exercises",
	RunE: func(cmd *cobra.Command, args []string) error {
		exercises, err := repo.ListExercises()
		if err != nil {
			return fmt.Errorf("failed to list exercises: %w", err)
		}

		if len(exercises) == 0 {
			fmt.Println("No exercises found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, e := range exercises {
			options, err := repo.ListExerciseOptions(e.ID)
			if err != nil {
				return fmt.Errorf("failed to list options: %w", err)
			}
			variants := ""
			if len(options) > 0 {
				names := make([]string, 0, len(options))
				for _, o := range options {
					names = append(names, fmt.Sprintf("%s #%d", o.Name, o.ID))
				}
				variants = faint.Sprintf(" [%s]", strings.Join(names, ", "))
			}
			fmt.Printf("%s %s %s%s\n",
				faint.Sprintf("%4d", e.ID),
				padRight(e.Name, 24),
				faint.Sprint(e.PrimaryMuscle),
				variants)
		}
		return nil
	},
}

var exerciseOptionCmd = &cobra.Command{
	Use:   "option <exercise> <variant>",
	Short: "Add a variant to an exercise",
	Long: `Add a named variant to an exercise.

Examples:
  workout exercise option "Bench Press" Dumbbell
  workout exercise option 3 Paused`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ex, err := resolveExercise(args[0])
		if err != nil {
			return fmt.Errorf("failed to find exercise: %w", err)
		}

		id, err := repo.AddExerciseOption(ex.ID, args[1])
		if err != nil {
			return fmt.Errorf("failed to add variant: %w", err)
		}

		color.Green("✓ Added variant %s to %s (ID: %d)", args[1], ex.Name, id)
		return nil
	},
}

var exerciseDeleteCmd = &cobra.Command{
	Use:     "delete <exercise>",
	Aliases: []string{"rm"},
	Short:   "Delete an exercise",
	Long: `Delete an exercise and its variants.

Exercises still offered by a template or recorded in a session are kept.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ex, err := resolveExercise(args[0])
		if err != nil {
			return fmt.Errorf("failed to find exercise: %w", err)
		}

		deleted, err := repo.DeleteExercise(ex.ID)
		if err != nil {
			return fmt.Errorf("failed to delete exercise: %w", err)
		}
		if !deleted {
			color.Yellow("⚠ %s is still used by a template or session; not deleted", ex.Name)
			return nil
		}

		color.Green("✓ Deleted exercise %s", ex.Name)
		return nil
	},
}

func init() {
	exerciseAddCmd.Flags().StringVarP(&exerciseMuscle, "muscle", "m", "", "primary muscle group")

	exerciseCmd.AddCommand(exerciseAddCmd)
	exerciseCmd.AddCommand(exerciseListCmd)
	exerciseCmd.AddCommand(exerciseOptionCmd)
	exerciseCmd.AddCommand(exerciseDeleteCmd)
	rootCmd.AddCommand(exerciseCmd)
}
