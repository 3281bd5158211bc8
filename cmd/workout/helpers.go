// ABOUTME: Shared CLI helpers: argument parsing, reference resolution and formatting.
// ABOUTME: References accept numeric IDs or names so commands read naturally.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/models"
	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/storage"
	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/training"
)

// confirm asks a yes/no question on out and reads the answer from in.
// Anything but y or yes, including end of input, is a no.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read response: %w", err)
	}
	fmt.Fprintln(out)
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02",
	}
	for _, f := range formats {
		if t, err := time.ParseInLocation(f, s, time.Local); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized time format")
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID: %s", what, s)
	}
	return id, nil
}

func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid set index: %s", s)
	}
	return n, nil
}

func parseWeight(s string) (float64, error) {
	w, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid weight: %s", s)
	}
	return w, nil
}

func parseReps(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid reps: %s", s)
	}
	return n, nil
}

// parseSetSpec reads "WEIGHTxREPS", e.g. "100x5" or "62.5X8".
func parseSetSpec(s string) (models.SetInput, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "x")
	if len(parts) != 2 {
		return models.SetInput{}, fmt.Errorf("invalid set %q: use WEIGHTxREPS", s)
	}
	w, err := parseWeight(parts[0])
	if err != nil {
		return models.SetInput{}, err
	}
	r, err := parseReps(parts[1])
	if err != nil {
		return models.SetInput{}, err
	}
	return models.SetInput{Weight: w, Reps: r}, nil
}

// resolveExercise accepts an exercise ID or name.
func resolveExercise(ref string) (*models.Exercise, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return repo.GetExercise(id)
	}
	return repo.FindExercise(ref)
}

// resolveTemplate accepts a template ID or name.
func resolveTemplate(ref string) (int64, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return id, nil
	}
	templates, err := repo.ListTemplates()
	if err != nil {
		return 0, err
	}
	want := training.NormalizeName(ref)
	for _, t := range templates {
		if t.NormalizedName == want {
			return t.ID, nil
		}
	}
	return 0, fmt.Errorf("template %q: %w", ref, storage.ErrNotFound)
}

// resolveSession maps an ID or UUID prefix to a session, defaulting to the
// active draft when ref is empty.
func resolveSession(ref string) (int64, error) {
	if strings.TrimSpace(ref) != "" {
		return repo.ResolveSessionRef(ref)
	}
	draft, err := repo.GetActiveDraft()
	if err != nil {
		return 0, err
	}
	if draft == nil {
		return 0, errors.New("no active session (start one with 'workout session start')")
	}
	return draft.ID, nil
}

func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}

func formatSet(s models.SetRecord) string {
	out := fmt.Sprintf("%s x %d", formatWeight(s.Weight), s.Reps)
	for _, d := range s.Drops {
		out += fmt.Sprintf(" + %sx%d", formatWeight(d.Weight), d.Reps)
	}
	if s.RPE != nil {
		out += fmt.Sprintf(" @%s", formatWeight(*s.RPE))
	}
	return out
}

func slotLabel(v models.SessionSlotView) string {
	label := v.ExerciseName
	if v.OptionName != nil && *v.OptionName != "" {
		label = fmt.Sprintf("%s (%s)", label, *v.OptionName)
	}
	if v.Name != nil && *v.Name != "" {
		label = fmt.Sprintf("%s: %s", *v.Name, label)
	}
	return label
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}
