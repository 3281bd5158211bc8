// ABOUTME: Analytics queries: e1RM trend, overall/per-template stats, weekly muscle volume, streak.
// ABOUTME: Rows are loaded as training samples and aggregated by the pure training package.
package storage

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/models"
	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/training"
)

// weekWindow is the trailing window used for "last 7" and weekly figures.
const weekWindow = 7 * 24 * time.Hour

// UnspecifiedMuscle groups exercises recorded without a primary muscle.
const UnspecifiedMuscle = "unspecified"

// loadSamples returns completed working sets of the selected choice in each
// slot of finalized sessions. filter is ANDed onto the base conditions.
func loadSamples(q querier, filter string, args ...any) ([]training.Sample, error) {
	query := `
		SELECT s.id, c.exercise_id, e.primary_muscle, s.template_id, s.performed_at, st.weight, st.reps
		FROM sets st
		JOIN session_slot_choices c ON c.id = st.session_slot_choice_id
		JOIN session_slots ss ON ss.selected_session_slot_choice_id = c.id
		JOIN sessions s ON s.id = ss.session_id
		JOIN exercises e ON e.id = c.exercise_id
		WHERE s.status = 'final' AND st.completed = 1 AND st.is_warmup = 0`
	if filter != "" {
		query += " AND " + filter
	}
	query += " ORDER BY s.performed_at, s.id, ss.slot_index, st.set_index"

	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("load samples: %w", err)
	}
	defer rows.Close()

	var out []training.Sample
	for rows.Next() {
		var s training.Sample
		var templateID sql.NullInt64
		var performedAt string
		if err := rows.Scan(&s.SessionID, &s.ExerciseID, &s.Muscle, &templateID, &performedAt, &s.Weight, &s.Reps); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		s.TemplateID = nullInt64(templateID)
		s.PerformedAt = parseTime(performedAt)
		out = append(out, s)
	}
	return out, rows.Err()
}

// finalSessionTimes returns performed_at of every finalized session.
func finalSessionTimes(q querier) ([]time.Time, error) {
	rows, err := q.Query(`SELECT performed_at FROM sessions WHERE status = 'final' ORDER BY performed_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list session times: %w", err)
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var performedAt string
		if err := rows.Scan(&performedAt); err != nil {
			return nil, fmt.Errorf("scan session time: %w", err)
		}
		out = append(out, parseTime(performedAt))
	}
	return out, rows.Err()
}

// E1RMHistory returns an exercise's per-session best e1RM in chronological order.
func (d *DB) E1RMHistory(exerciseID int64) ([]models.E1RMPoint, error) {
	samples, err := loadSamples(d.db, "c.exercise_id = ?", exerciseID)
	if err != nil {
		return nil, err
	}
	return training.E1RMTrend(samples), nil
}

// OverallStats returns lifetime totals and the same figures for the trailing week.
func (d *DB) OverallStats() (*models.OverallStats, error) {
	times, err := finalSessionTimes(d.db)
	if err != nil {
		return nil, err
	}
	samples, err := loadSamples(d.db, "")
	if err != nil {
		return nil, err
	}

	since := d.nowUTC().Add(-weekWindow)
	stats := &models.OverallStats{TotalSessions: len(times)}
	for _, t := range times {
		if !t.Before(since) {
			stats.Last7Sessions++
		}
	}
	for _, s := range samples {
		stats.TotalSets++
		stats.TotalVolume += s.Volume()
		if !s.PerformedAt.Before(since) {
			stats.Last7Sets++
			stats.Last7Volume += s.Volume()
		}
	}
	return stats, nil
}

// PerTemplateStats returns finalized-session totals for every template,
// including templates never performed.
func (d *DB) PerTemplateStats() ([]models.TemplateStats, error) {
	rows, err := d.db.Query(`
		SELECT t.id, t.name, COUNT(s.id), MAX(s.performed_at)
		FROM templates t
		LEFT JOIN sessions s ON s.template_id = t.id AND s.status = 'final'
		GROUP BY t.id
		ORDER BY t.normalized_name`)
	if err != nil {
		return nil, fmt.Errorf("template stats: %w", err)
	}

	var out []models.TemplateStats
	index := make(map[int64]int)
	for rows.Next() {
		var ts models.TemplateStats
		var last sql.NullString
		if err := rows.Scan(&ts.TemplateID, &ts.TemplateName, &ts.Sessions, &last); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan template stats: %w", err)
		}
		if last.Valid {
			t := parseTime(last.String)
			ts.LastPerformedAt = &t
		}
		index[ts.TemplateID] = len(out)
		out = append(out, ts)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	samples, err := loadSamples(d.db, "s.template_id IS NOT NULL")
	if err != nil {
		return nil, err
	}
	for _, s := range samples {
		i, ok := index[*s.TemplateID]
		if !ok {
			continue
		}
		out[i].CompletedSets++
		out[i].TotalVolume += s.Volume()
	}
	return out, nil
}

// WeeklyVolumeByMuscle returns the trailing week's sets and volume per
// primary muscle, highest volume first.
func (d *DB) WeeklyVolumeByMuscle() ([]models.MuscleVolume, error) {
	since := d.nowUTC().Add(-weekWindow)
	samples, err := loadSamples(d.db, "s.performed_at >= ?", formatTime(since))
	if err != nil {
		return nil, err
	}

	byMuscle := make(map[string]*models.MuscleVolume)
	for _, s := range samples {
		muscle := s.Muscle
		if muscle == "" {
			muscle = UnspecifiedMuscle
		}
		mv, ok := byMuscle[muscle]
		if !ok {
			mv = &models.MuscleVolume{Muscle: muscle}
			byMuscle[muscle] = mv
		}
		mv.Sets++
		mv.Volume += s.Volume()
	}

	out := make([]models.MuscleVolume, 0, len(byMuscle))
	for _, mv := range byMuscle {
		out = append(out, *mv)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Volume != out[j].Volume {
			return out[i].Volume > out[j].Volume
		}
		return out[i].Muscle < out[j].Muscle
	})
	return out, nil
}

// WorkoutDaysMap returns the number of finalized sessions per local calendar
// day, keyed YYYY-MM-DD.
func (d *DB) WorkoutDaysMap() (map[string]int, error) {
	times, err := finalSessionTimes(d.db)
	if err != nil {
		return nil, err
	}
	return training.DayCounts(times, d.loc), nil
}

// CurrentStreak returns the number of consecutive training days ending today
// or yesterday.
func (d *DB) CurrentStreak() (int, error) {
	times, err := finalSessionTimes(d.db)
	if err != nil {
		return 0, err
	}
	return training.Streak(times, d.now(), d.loc), nil
}
