// ABOUTME: CLI commands for workout templates, their slots, options and prescriptions.
// ABOUTME: Templates are referenced by ID or name; slots and options by ID.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/models"
)

var (
	optionVariant     string
	templateDeleteYes bool

	prescribeWeight float64
	prescribeReps   int
	prescribeRPE    float64
	prescribeRest   int
	prescribeNotes  string
	prescribeClear  bool
)

var templateCmd = &cobra.Command{
	Use:     "template",
	Aliases: []string{"t"},
	Short:   "Manage workout templates",
	Long: `Manage workout templates.

A template is an ordered list of slots. Each slot offers one or more
interchangeable exercises; the first option is the default for new sessions
until you pick another one. Slots can carry prescribed sets.

WORKFLOW:

  1. Create a template:   workout template create "Push Day"
  2. Add a slot:          workout template slot add "Push Day" "Main press"
  3. Offer exercises:     workout template option add 1 "Bench Press"
                          workout template option add 1 "Bench Press" --variant Dumbbell
  4. Prescribe sets:      workout template prescribe 1 1 --weight 100 --reps 5
  5. Review:              workout template show "Push Day"`,
}

var templateCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := repo.CreateTemplate(args[0])
		if err != nil {
			return fmt.Errorf("failed to create template: %w", err)
		}

		color.Green("✓ Created template %s (ID: %d)", args[0], id)
		return nil
	},
}

var templateListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		templates, err := repo.ListTemplates()
		if err != nil {
			return fmt.Errorf("failed to list templates: %w", err)
		}

		if len(templates) == 0 {
			fmt.Println("No templates found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, t := range templates {
			fmt.Printf("%s %s\n", faint.Sprintf("%4d", t.ID), t.Name)
		}
		return nil
	},
}

var templateShowCmd = &cobra.Command{
	Use:   "show <template>",
	Short: "Show a template with its slots",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := resolveTemplate(args[0])
		if err != nil {
			return err
		}

		detail, err := repo.GetTemplate(id)
		if err != nil {
			return fmt.Errorf("failed to get template: %w", err)
		}

		faint := color.New(color.Faint)
		bold := color.New(color.Bold)

		bold.Printf("%s\n", detail.Name)
		fmt.Printf("ID: %d\n", detail.ID)

		if len(detail.Slots) == 0 {
			faint.Println("\nNo slots yet.")
			return nil
		}

		for _, slot := range detail.Slots {
			name := "(unnamed)"
			if slot.Name != nil {
				name = *slot.Name
			}
			fmt.Printf("\n%d. %s %s\n", slot.SlotIndex, name, faint.Sprintf("[slot %d]", slot.ID))
			for _, o := range slot.Options {
				fmt.Printf("   - %s %s\n", o.Label(), faint.Sprintf("[option %d]", o.ID))
			}
			for _, p := range slot.Prescribed {
				fmt.Printf("   %s %s\n", faint.Sprintf("set %d:", p.SetIndex), describePrescription(p))
			}
		}
		return nil
	},
}

var templateRenameCmd = &cobra.Command{
	Use:   "rename <template> <new-name>",
	Short: "Rename a template",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := resolveTemplate(args[0])
		if err != nil {
			return err
		}

		if err := repo.RenameTemplate(id, args[1]); err != nil {
			return fmt.Errorf("failed to rename template: %w", err)
		}

		color.Green("✓ Renamed template to %s", args[1])
		return nil
	},
}

var templateDeleteCmd = &cobra.Command{
	Use:     "delete <template>",
	Aliases: []string{"rm"},
	Short:   "Delete a template",
	Long: `Delete a template with its slots and prescriptions.

Recorded sessions keep their sets and stay in history. Asks for
confirmation unless --yes is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := resolveTemplate(args[0])
		if err != nil {
			return err
		}

		if !templateDeleteYes {
			ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Delete template %d?", id))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Canceled.")
				return nil
			}
		}

		if err := repo.DeleteTemplate(id); err != nil {
			return fmt.Errorf("failed to delete template: %w", err)
		}

		color.Green("✓ Deleted template %d", id)
		return nil
	},
}

var templateSlotCmd = &cobra.Command{
	Use:   "slot",
	Short: "Add or delete template slots",
}

var templateSlotAddCmd = &cobra.Command{
	Use:   "add <template> [name]",
	Short: "Append a slot to a template",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		templateID, err := resolveTemplate(args[0])
		if err != nil {
			return err
		}

		id, err := repo.AddSlot(templateID, optionalArg(args, 1))
		if err != nil {
			return fmt.Errorf("failed to add slot: %w", err)
		}

		color.Green("✓ Added slot (ID: %d)", id)
		return nil
	},
}

var templateSlotDeleteCmd = &cobra.Command{
	Use:     "delete <slot-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a slot",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slotID, err := parseID(args[0], "slot")
		if err != nil {
			return err
		}

		if err := repo.DeleteSlot(slotID); err != nil {
			return fmt.Errorf("failed to delete slot: %w", err)
		}

		color.Green("✓ Deleted slot %d", slotID)
		return nil
	},
}

var templateOptionCmd = &cobra.Command{
	Use:   "option",
	Short: "Add or delete the exercises a slot offers",
}

var templateOptionAddCmd = &cobra.Command{
	Use:   "add <slot-id> <exercise>",
	Short: "Offer an exercise in a slot",
	Long: `Offer an exercise, optionally a specific variant, in a slot.

Examples:
  workout template option add 1 "Bench Press"
  workout template option add 1 "Bench Press" --variant Dumbbell`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		slotID, err := parseID(args[0], "slot")
		if err != nil {
			return err
		}

		ex, err := resolveExercise(args[1])
		if err != nil {
			return fmt.Errorf("failed to find exercise: %w", err)
		}

		var variantID *int64
		if optionVariant != "" {
			options, err := repo.ListExerciseOptions(ex.ID)
			if err != nil {
				return fmt.Errorf("failed to list variants: %w", err)
			}
			for _, o := range options {
				if strings.EqualFold(o.Name, optionVariant) {
					id := o.ID
					variantID = &id
					break
				}
			}
			if variantID == nil {
				return fmt.Errorf("%s has no variant %q", ex.Name, optionVariant)
			}
		}

		id, err := repo.AddSlotOption(slotID, ex.ID, variantID)
		if err != nil {
			return fmt.Errorf("failed to add option: %w", err)
		}

		color.Green("✓ Added option %s to slot %d (ID: %d)", ex.Name, slotID, id)
		return nil
	},
}

var templateOptionDeleteCmd = &cobra.Command{
	Use:     "delete <option-id>",
	Aliases: []string{"rm"},
	Short:   "Stop offering an exercise in a slot",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		optionID, err := parseID(args[0], "option")
		if err != nil {
			return err
		}

		if err := repo.DeleteSlotOption(optionID); err != nil {
			return fmt.Errorf("failed to delete option: %w", err)
		}

		color.Green("✓ Deleted option %d", optionID)
		return nil
	},
}

var templatePrescribeCmd = &cobra.Command{
	Use:   "prescribe <slot-id> <set-index>",
	Short: "Set or clear a prescribed set",
	Long: `Set the planned values of one set in a slot.

New sessions create one set per prescribed set. Weights and reps last
performed take precedence over prescribed ones.

Examples:
  workout template prescribe 1 1 --weight 100 --reps 5
  workout template prescribe 1 2 --reps 8 --rpe 8 --rest 120
  workout template prescribe 1 2 --clear`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		slotID, err := parseID(args[0], "slot")
		if err != nil {
			return err
		}
		setIndex, err := parseIndex(args[1])
		if err != nil {
			return err
		}

		if prescribeClear {
			if err := repo.DeletePrescribedSet(slotID, setIndex); err != nil {
				return fmt.Errorf("failed to clear prescribed set: %w", err)
			}
			color.Green("✓ Cleared set %d of slot %d", setIndex, slotID)
			return nil
		}

		p := models.PrescribedSet{TemplateSlotID: slotID, SetIndex: setIndex}
		flags := cmd.Flags()
		if flags.Changed("weight") {
			p.Weight = &prescribeWeight
		}
		if flags.Changed("reps") {
			p.Reps = &prescribeReps
		}
		if flags.Changed("rpe") {
			p.RPE = &prescribeRPE
		}
		if flags.Changed("rest") {
			p.RestSeconds = &prescribeRest
		}
		if prescribeNotes != "" {
			p.Notes = &prescribeNotes
		}

		if err := repo.UpsertPrescribedSet(p); err != nil {
			return fmt.Errorf("failed to prescribe set: %w", err)
		}

		color.Green("✓ Set %d of slot %d: %s", setIndex, slotID, describePrescription(p))
		return nil
	},
}

func describePrescription(p models.PrescribedSet) string {
	var parts []string
	if p.Weight != nil {
		parts = append(parts, formatWeight(*p.Weight))
	}
	if p.Reps != nil {
		parts = append(parts, fmt.Sprintf("x %d", *p.Reps))
	}
	if p.RPE != nil {
		parts = append(parts, "@"+formatWeight(*p.RPE))
	}
	if p.RestSeconds != nil {
		parts = append(parts, fmt.Sprintf("rest %ds", *p.RestSeconds))
	}
	if p.Notes != nil {
		parts = append(parts, fmt.Sprintf("(%s)", *p.Notes))
	}
	if len(parts) == 0 {
		return "open"
	}
	return strings.Join(parts, " ")
}

func init() {
	templateOptionAddCmd.Flags().StringVar(&optionVariant, "variant", "", "exercise variant name")

	templatePrescribeCmd.Flags().Float64Var(&prescribeWeight, "weight", 0, "prescribed weight")
	templatePrescribeCmd.Flags().IntVar(&prescribeReps, "reps", 0, "prescribed reps")
	templatePrescribeCmd.Flags().Float64Var(&prescribeRPE, "rpe", 0, "target RPE (1-10)")
	templatePrescribeCmd.Flags().IntVar(&prescribeRest, "rest", 0, "rest after the set in seconds")
	templatePrescribeCmd.Flags().StringVar(&prescribeNotes, "notes", "", "notes for the set")
	templatePrescribeCmd.Flags().BoolVar(&prescribeClear, "clear", false, "remove the prescribed set")

	templateSlotCmd.AddCommand(templateSlotAddCmd)
	templateSlotCmd.AddCommand(templateSlotDeleteCmd)
	templateOptionCmd.AddCommand(templateOptionAddCmd)
	templateOptionCmd.AddCommand(templateOptionDeleteCmd)

	templateCmd.AddCommand(templateCreateCmd)
	templateCmd.AddCommand(templateListCmd)
	templateCmd.AddCommand(templateShowCmd)
	templateCmd.AddCommand(templateRenameCmd)
	templateDeleteCmd.Flags().BoolVarP(&templateDeleteYes, "yes", "y", false, "Skip confirmation prompt")
	templateCmd.AddCommand(templateDeleteCmd)
	templateCmd.AddCommand(templateSlotCmd)
	templateCmd.AddCommand(templateOptionCmd)
	templateCmd.AddCommand(templatePrescribeCmd)
	rootCmd.AddCommand(templateCmd)
}
