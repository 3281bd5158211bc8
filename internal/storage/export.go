// ABOUTME: Read-only training log export of finalized sessions and body weights.
// ABOUTME: Supports YAML and Markdown; there is no import path.
package storage

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/models"
)

// ExportData is the training log: finalized sessions oldest first with the
// sets of each selected choice, plus body-weight entries.
type ExportData struct {
	Version     string
	ExportedAt  time.Time
	Tool        string
	Sessions    []*models.SessionDetail
	BodyWeights []models.BodyWeightEntry
}

// GetAllData collects finalized sessions performed at or after since (all
// when nil) and the matching body-weight entries.
func (d *DB) GetAllData(since *time.Time) (*ExportData, error) {
	history, err := d.ListHistory(0)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	data := &ExportData{
		Version:    fmt.Sprintf("%d", LatestSchemaVersion()),
		ExportedAt: d.nowUTC(),
		Tool:       "workout",
	}
	// history is newest first
	for i := len(history) - 1; i >= 0; i-- {
		if since != nil && history[i].PerformedAt.Before(*since) {
			continue
		}
		detail, err := d.GetSessionDetail(history[i].ID)
		if err != nil {
			return nil, fmt.Errorf("session %d: %w", history[i].ID, err)
		}
		data.Sessions = append(data.Sessions, detail)
	}

	weights, err := d.ListBodyWeights(0)
	if err != nil {
		return nil, fmt.Errorf("list body weights: %w", err)
	}
	for i := len(weights) - 1; i >= 0; i-- {
		if since != nil && weights[i].MeasuredAt.Before(*since) {
			continue
		}
		data.BodyWeights = append(data.BodyWeights, weights[i])
	}
	return data, nil
}

type yamlLog struct {
	Version     string           `yaml:"version"`
	ExportedAt  string           `yaml:"exported_at"`
	Tool        string           `yaml:"tool"`
	Sessions    []yamlSession    `yaml:"sessions"`
	BodyWeights []yamlBodyWeight `yaml:"body_weights,omitempty"`
}

type yamlSession struct {
	ID          string         `yaml:"id"`
	PerformedAt string         `yaml:"performed_at"`
	Template    string         `yaml:"template,omitempty"`
	Notes       string         `yaml:"notes,omitempty"`
	Exercises   []yamlExercise `yaml:"exercises"`
}

type yamlExercise struct {
	Name    string    `yaml:"name"`
	Variant string    `yaml:"variant,omitempty"`
	Sets    []yamlSet `yaml:"sets"`
}

type yamlSet struct {
	Index     int      `yaml:"index"`
	Weight    float64  `yaml:"weight"`
	Reps      int      `yaml:"reps"`
	RPE       *float64 `yaml:"rpe,omitempty"`
	Warmup    bool     `yaml:"warmup,omitempty"`
	Completed bool     `yaml:"completed"`
	Drops     []string `yaml:"drops,omitempty"`
}

type yamlBodyWeight struct {
	Weight     float64 `yaml:"weight"`
	Unit       string  `yaml:"unit"`
	MeasuredAt string  `yaml:"measured_at"`
}

// ExportYAML renders the training log as YAML.
func (d *DB) ExportYAML(since *time.Time) ([]byte, error) {
	data, err := d.GetAllData(since)
	if err != nil {
		return nil, err
	}

	out := yamlLog{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		Sessions:   make([]yamlSession, 0, len(data.Sessions)),
	}
	for _, s := range data.Sessions {
		ys := yamlSession{
			ID:          s.UUID.String()[:8],
			PerformedAt: s.PerformedAt.Format(time.RFC3339),
		}
		if s.TemplateName != nil {
			ys.Template = *s.TemplateName
		}
		if s.Notes != nil {
			ys.Notes = *s.Notes
		}
		for _, slot := range s.Slots {
			ye := yamlExercise{Name: slot.ExerciseName}
			if slot.OptionName != nil {
				ye.Variant = *slot.OptionName
			}
			for _, set := range slot.Sets {
				yset := yamlSet{
					Index:     set.SetIndex,
					Weight:    set.Weight,
					Reps:      set.Reps,
					RPE:       set.RPE,
					Warmup:    set.IsWarmup,
					Completed: set.Completed,
				}
				for _, drop := range set.Drops {
					yset.Drops = append(yset.Drops, fmt.Sprintf("%gx%d", drop.Weight, drop.Reps))
				}
				ye.Sets = append(ye.Sets, yset)
			}
			ys.Exercises = append(ys.Exercises, ye)
		}
		out.Sessions = append(out.Sessions, ys)
	}
	for _, bw := range data.BodyWeights {
		out.BodyWeights = append(out.BodyWeights, yamlBodyWeight{
			Weight:     bw.Weight,
			Unit:       string(bw.Unit),
			MeasuredAt: bw.MeasuredAt.Format(time.RFC3339),
		})
	}

	return yaml.Marshal(out)
}

// ExportMarkdown renders the training log as Markdown, one section per session.
func (d *DB) ExportMarkdown(since *time.Time) (string, error) {
	data, err := d.GetAllData(since)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	now := data.ExportedAt.In(d.loc)
	sb.WriteString(fmt.Sprintf("# Training Log - %s\n\n", now.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	for _, s := range data.Sessions {
		title := "Workout"
		if s.TemplateName != nil {
			title = *s.TemplateName
		}
		sb.WriteString(fmt.Sprintf("## %s - %s\n\n", s.PerformedAt.In(d.loc).Format("2006-01-02 15:04"), title))
		if s.Notes != nil {
			sb.WriteString(*s.Notes + "\n\n")
		}
		for _, slot := range s.Slots {
			name := slot.ExerciseName
			if slot.OptionName != nil {
				name += " (" + *slot.OptionName + ")"
			}
			sb.WriteString(fmt.Sprintf("### %s\n\n", name))
			if len(slot.Sets) == 0 {
				sb.WriteString("_no sets_\n\n")
				continue
			}
			sb.WriteString("| Set | Weight | Reps | RPE | Done |\n")
			sb.WriteString("|-----|--------|------|-----|------|\n")
			for _, set := range slot.Sets {
				label := fmt.Sprintf("%d", set.SetIndex)
				if set.IsWarmup {
					label += "w"
				}
				rpe := ""
				if set.RPE != nil {
					rpe = fmt.Sprintf("%g", *set.RPE)
				}
				done := ""
				if set.Completed {
					done = "x"
				}
				reps := fmt.Sprintf("%d", set.Reps)
				for _, drop := range set.Drops {
					reps += fmt.Sprintf(" + %gx%d", drop.Weight, drop.Reps)
				}
				sb.WriteString(fmt.Sprintf("| %s | %g | %s | %s | %s |\n", label, set.Weight, reps, rpe, done))
			}
			sb.WriteString("\n")
		}
	}

	if len(data.BodyWeights) > 0 {
		sb.WriteString("## Body Weight\n\n")
		sb.WriteString("| Date | Weight |\n")
		sb.WriteString("|------|--------|\n")
		for _, bw := range data.BodyWeights {
			sb.WriteString(fmt.Sprintf("| %s | %g %s |\n",
				bw.MeasuredAt.In(d.loc).Format("2006-01-02 15:04"), bw.Weight, bw.Unit))
		}
	}

	return sb.String(), nil
}
