// ABOUTME: Personal record detection against lifetime bests, and PR lookups.
// ABOUTME: Detection is idempotent: a session that already has PR rows gets them back unchanged.
package storage

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/models"
	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/training"
)

// DetectAndRecordPRs compares each exercise's best e1RM and heaviest weight in
// a finalized session with its best across all other finalized sessions, and
// records a PR row for each metric that improved. An exercise's first
// eligible session is always a PR with no previous value.
func (d *DB) DetectAndRecordPRs(sessionID int64) ([]models.PersonalRecord, error) {
	var records []models.PersonalRecord
	inserted := 0
	err := d.withTx(func(tx *sql.Tx) error {
		s, err := getSession(tx, sessionID)
		if err != nil {
			return err
		}
		if s.IsDraft() {
			return invalid(fmt.Errorf("session %d is not finalized", sessionID))
		}

		existing, err := listPRs(tx, sessionID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			records = existing
			return nil
		}

		current, err := loadSamples(tx, "s.id = ?", sessionID)
		if err != nil {
			return err
		}
		bests := training.BestByExercise(current)

		exerciseIDs := make([]int64, 0, len(bests))
		for id := range bests {
			exerciseIDs = append(exerciseIDs, id)
		}
		sort.Slice(exerciseIDs, func(i, j int) bool { return exerciseIDs[i] < exerciseIDs[j] })

		createdAt := formatTime(d.nowUTC())
		for _, exerciseID := range exerciseIDs {
			prior, err := loadSamples(tx, "c.exercise_id = ? AND s.id != ?", exerciseID, sessionID)
			if err != nil {
				return err
			}
			var lifetime training.Best
			for _, p := range prior {
				lifetime.Add(p)
			}

			cur := bests[exerciseID]
			candidates := []struct {
				prType   models.PRType
				value    float64
				previous float64
			}{
				{models.PRTypeE1RM, cur.E1RM, lifetime.E1RM},
				{models.PRTypeWeight, cur.Weight, lifetime.Weight},
			}
			for _, c := range candidates {
				if lifetime.Found && c.value <= c.previous {
					continue
				}
				var previous *float64
				if lifetime.Found {
					v := c.previous
					previous = &v
				}
				res, err := tx.Exec(`
					INSERT INTO personal_records (exercise_id, session_id, pr_type, value, previous_value, created_at)
					VALUES (?, ?, ?, ?, ?, ?)
					ON CONFLICT(session_id, exercise_id, pr_type) DO NOTHING`,
					exerciseID, sessionID, string(c.prType), c.value, previous, createdAt)
				if err != nil {
					return fmt.Errorf("insert personal record: %w", err)
				}
				if n, _ := res.RowsAffected(); n > 0 {
					inserted++
				}
			}
		}

		records, err = listPRs(tx, sessionID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if inserted > 0 {
		d.log.WithFields(logrus.Fields{"session_id": sessionID, "records": inserted}).Info("recorded personal records")
	}
	return records, nil
}

// GetSessionPRs returns the PR rows recorded for a session.
func (d *DB) GetSessionPRs(sessionID int64) ([]models.PersonalRecord, error) {
	return listPRs(d.db, sessionID)
}

// PRCountsBySession returns how many PR rows each session holds. Sessions
// without PRs are absent.
func (d *DB) PRCountsBySession() (map[int64]int, error) {
	rows, err := d.db.Query(`SELECT session_id, COUNT(*) FROM personal_records GROUP BY session_id`)
	if err != nil {
		return nil, fmt.Errorf("count personal records: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]int)
	for rows.Next() {
		var sessionID int64
		var n int
		if err := rows.Scan(&sessionID, &n); err != nil {
			return nil, fmt.Errorf("scan personal record count: %w", err)
		}
		out[sessionID] = n
	}
	return out, rows.Err()
}

func listPRs(q querier, sessionID int64) ([]models.PersonalRecord, error) {
	rows, err := q.Query(`
		SELECT pr.id, pr.exercise_id, e.name, pr.session_id, pr.pr_type, pr.value, pr.previous_value, pr.created_at
		FROM personal_records pr
		JOIN exercises e ON e.id = pr.exercise_id
		WHERE pr.session_id = ?
		ORDER BY e.name, pr.pr_type`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list personal records: %w", err)
	}
	defer rows.Close()

	var out []models.PersonalRecord
	for rows.Next() {
		var pr models.PersonalRecord
		var prType, createdAt string
		var previous sql.NullFloat64
		if err := rows.Scan(&pr.ID, &pr.ExerciseID, &pr.ExerciseName, &pr.SessionID, &prType,
			&pr.Value, &previous, &createdAt); err != nil {
			return nil, fmt.Errorf("scan personal record: %w", err)
		}
		pr.Type = models.PRType(prType)
		pr.PreviousValue = nullFloat(previous)
		pr.CreatedAt = parseTime(createdAt)
		out = append(out, pr)
	}
	return out, rows.Err()
}
