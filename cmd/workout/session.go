// ABOUTME: CLI commands for the session lifecycle: start, show, select, finish, discard.
// ABOUTME: Also lists history and edits session notes.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/models"
)

var historyLimit int

var sessionCmd = &cobra.Command{
	Use:     "session",
	Aliases: []string{"s"},
	Short:   "Run and review workout sessions",
	Long: `Run workout sessions from templates.

Only one draft session can be active at a time. A new draft copies every
template slot and pre-fills its sets with the weights and reps you last
performed for the same exercise option.

WORKFLOW:

  1. Start a draft:        workout session start "Push Day"
  2. Review it:            workout session show
  3. Swap an exercise:     workout session select <slot-id> <option-id>
  4. Log sets:             workout set log <choice-id> 1 100 5 --done
  5. Finish it:            workout session finish
     or throw it away:     workout session discard

Sessions are referenced by numeric ID or UUID prefix; commands default to
the active draft.`,
}

var sessionStartCmd = &cobra.Command{
	Use:   "start <template>",
	Short: "Start a draft session from a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		templateID, err := resolveTemplate(args[0])
		if err != nil {
			return err
		}

		id, err := repo.CreateDraftFromTemplate(templateID)
		if err != nil {
			return fmt.Errorf("failed to start session: %w", err)
		}

		color.Green("✓ Started session %d", id)
		fmt.Println()
		return printSession(id)
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show [session]",
	Short: "Show a session with its slots and sets",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := resolveSession(optionalArg(args, 0))
		if err != nil {
			return err
		}
		return printSession(id)
	},
}

var sessionSelectCmd = &cobra.Command{
	Use:   "select <slot-id> <option-id>",
	Short: "Switch a draft slot to another exercise option",
	Long: `Switch a draft slot to another of its exercise options.

Switching to an option for the first time creates its sets from the last
performance of that option. Switching back keeps whatever you logged.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		slotID, err := parseID(args[0], "slot")
		if err != nil {
			return err
		}
		optionID, err := parseID(args[1], "option")
		if err != nil {
			return err
		}

		choiceID, err := repo.SelectSlotChoice(slotID, optionID)
		if err != nil {
			return fmt.Errorf("failed to select option: %w", err)
		}

		color.Green("✓ Slot %d now uses choice %d", slotID, choiceID)
		return nil
	},
}

var sessionDiscardCmd = &cobra.Command{
	Use:   "discard [session]",
	Short: "Discard a draft session",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := resolveSession(optionalArg(args, 0))
		if err != nil {
			return err
		}

		if err := repo.DiscardDraft(id); err != nil {
			return fmt.Errorf("failed to discard session: %w", err)
		}

		color.Green("✓ Discarded session %d", id)
		return nil
	},
}

var sessionFinishCmd = &cobra.Command{
	Use:   "finish [session]",
	Short: "Finalize a draft session and detect PRs",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := resolveSession(optionalArg(args, 0))
		if err != nil {
			return err
		}

		if err := repo.FinalizeSession(id); err != nil {
			return fmt.Errorf("failed to finalize session: %w", err)
		}
		color.Green("✓ Finished session %d", id)

		prs, err := repo.DetectAndRecordPRs(id)
		if err != nil {
			return fmt.Errorf("failed to detect PRs: %w", err)
		}
		printPRs(prs)
		return nil
	},
}

var sessionHistoryCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"hist"},
	Short:   "List finalized sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := repo.ListHistory(historyLimit)
		if err != nil {
			return fmt.Errorf("failed to list history: %w", err)
		}

		if len(history) == 0 {
			fmt.Println("No sessions found.")
			return nil
		}

		prCounts, err := repo.PRCountsBySession()
		if err != nil {
			return fmt.Errorf("failed to count PRs: %w", err)
		}

		faint := color.New(color.Faint)
		yellow := color.New(color.FgYellow)
		for _, h := range history {
			name := "(no template)"
			if h.TemplateName != nil {
				name = *h.TemplateName
			}
			prs := ""
			if n := prCounts[h.ID]; n > 0 {
				prs = yellow.Sprintf(" ★%d", n)
			}
			fmt.Printf("%s %s %s %3d sets %8s vol%s %s\n",
				faint.Sprint(h.UUID.String()[:8]),
				faint.Sprint(h.PerformedAt.Local().Format("2006-01-02 15:04")),
				padRight(truncate(name, 20), 20),
				h.CompletedSets,
				formatWeight(h.TotalVolume),
				prs,
				faint.Sprint(strings.Join(h.Exercises, ", ")))
		}
		return nil
	},
}

var sessionNotesCmd = &cobra.Command{
	Use:   "notes <session> <text>",
	Short: "Set or clear session notes",
	Long: `Set the notes of a session. Pass "" to clear them.

Examples:
  workout session notes 12 "Felt strong"
  workout session notes 3f2a ""`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := resolveSession(args[0])
		if err != nil {
			return err
		}

		if err := repo.UpdateSessionNotes(id, args[1]); err != nil {
			return fmt.Errorf("failed to update notes: %w", err)
		}

		color.Green("✓ Updated notes for session %d", id)
		return nil
	},
}

func printSession(id int64) error {
	detail, err := repo.GetSessionDetail(id)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	faint := color.New(color.Faint)
	bold := color.New(color.Bold)

	title := "Session"
	if detail.TemplateName != nil {
		title = *detail.TemplateName
	}
	bold.Printf("%s", title)
	fmt.Printf(" %s\n", faint.Sprintf("[%s, %s]", detail.Status, detail.UUID.String()[:8]))
	fmt.Printf("ID: %d\n", detail.ID)
	if !detail.IsDraft() {
		fmt.Printf("Performed: %s\n", detail.PerformedAt.Local().Format("2006-01-02 15:04"))
	}
	if detail.Notes != nil {
		fmt.Printf("Notes: %s\n", *detail.Notes)
	}

	for _, slot := range detail.Slots {
		fmt.Printf("\n%d. %s %s\n", slot.SlotIndex, slotLabel(slot.SessionSlotView),
			faint.Sprintf("[slot %d, choice %d]", slot.ID, slot.ChoiceID))

		if detail.IsDraft() {
			if err := printSlotOptions(slot.SessionSlotView); err != nil {
				return err
			}
		}

		if len(slot.Sets) == 0 {
			faint.Println("   no sets")
			continue
		}
		for _, s := range slot.Sets {
			mark := "[ ]"
			if s.Completed {
				mark = color.GreenString("[x]")
			}
			label := fmt.Sprintf("%d", s.SetIndex)
			if s.IsWarmup {
				label += "w"
			}
			fmt.Printf("   %s %s %s %s\n", mark, padRight(label, 3), formatSet(s), faint.Sprintf("#%d", s.ID))
		}
	}

	prs, err := repo.GetSessionPRs(id)
	if err != nil {
		return fmt.Errorf("failed to get PRs: %w", err)
	}
	if len(prs) > 0 {
		fmt.Println()
		printPRs(prs)
	}
	return nil
}

func printSlotOptions(slot models.SessionSlotView) error {
	faint := color.New(color.Faint)

	options, err := repo.ListSessionSlotOptions(slot.ID)
	if err != nil {
		return fmt.Errorf("failed to list slot options: %w", err)
	}
	if len(options) > 1 {
		labels := make([]string, 0, len(options))
		for _, o := range options {
			l := fmt.Sprintf("%s #%d", o.Label(), o.ID)
			if o.Selected {
				l = "*" + l
			}
			labels = append(labels, l)
		}
		faint.Printf("   options: %s\n", strings.Join(labels, ", "))
	}

	if slot.TemplateSlotOptionID == nil {
		return nil
	}
	last, err := repo.LastTimeForOption(*slot.TemplateSlotOptionID)
	if err != nil {
		return fmt.Errorf("failed to load last performance: %w", err)
	}
	if last != nil && len(last.Sets) > 0 {
		sets := make([]string, 0, len(last.Sets))
		for _, s := range last.Sets {
			sets = append(sets, formatSet(s))
		}
		faint.Printf("   last time (%s): %s\n", last.PerformedAt.Local().Format("2006-01-02"), strings.Join(sets, ", "))
	}
	return nil
}

func printPRs(prs []models.PersonalRecord) {
	yellow := color.New(color.FgYellow, color.Bold)
	faint := color.New(color.Faint)
	for _, pr := range prs {
		prev := "first"
		if pr.PreviousValue != nil {
			prev = "was " + formatWeight(*pr.PreviousValue)
		}
		yellow.Printf("★ %s %s PR: %.1f", pr.ExerciseName, pr.Type, pr.Value)
		fmt.Printf(" %s\n", faint.Sprintf("(%s)", prev))
	}
}

func init() {
	sessionHistoryCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "max number of sessions")

	sessionCmd.AddCommand(sessionStartCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionSelectCmd)
	sessionCmd.AddCommand(sessionDiscardCmd)
	sessionCmd.AddCommand(sessionFinishCmd)
	sessionCmd.AddCommand(sessionHistoryCmd)
	sessionCmd.AddCommand(sessionNotesCmd)
	rootCmd.AddCommand(sessionCmd)
}
