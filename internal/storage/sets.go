// ABOUTME: Set ledger: performed sets per session choice, warm-up generation and drop segments.
// ABOUTME: Sets are keyed by (choice, set_index); warm-ups always occupy the lowest indexes.
package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/models"
	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/training"
)

const setColumns = `id, session_slot_choice_id, set_index, weight, reps, rpe, rest_seconds, notes,
	completed, is_warmup, created_at`

// ListSetsForChoice returns all sets of a choice, warm-ups included, with their drop segments.
func (d *DB) ListSetsForChoice(choiceID int64) ([]models.SetRecord, error) {
	return listSets(d.db, choiceID)
}

// UpsertSet inserts or replaces the set at (choice, set index) and returns its ID.
// Zero weight and zero reps are accepted as placeholders.
func (d *DB) UpsertSet(choiceID int64, setIndex int, in models.SetInput) (int64, error) {
	if setIndex < 1 {
		return 0, invalid(fmt.Errorf("set index must be >= 1, got %d", setIndex))
	}
	if err := validateSetInput(in, false); err != nil {
		return 0, err
	}
	if err := requireChoice(d.db, choiceID); err != nil {
		return 0, err
	}

	_, err := d.db.Exec(`
		INSERT INTO sets (session_slot_choice_id, set_index, weight, reps, rpe, rest_seconds, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_slot_choice_id, set_index) DO UPDATE SET
			weight = excluded.weight,
			reps = excluded.reps,
			rpe = excluded.rpe,
			rest_seconds = excluded.rest_seconds,
			notes = excluded.notes`,
		choiceID, setIndex, in.Weight, in.Reps, in.RPE, in.RestSeconds, in.Notes, formatTime(d.nowUTC()))
	if err != nil {
		return 0, wrapConstraint("upsert set", err)
	}

	var id int64
	if err := d.db.QueryRow(`SELECT id FROM sets WHERE session_slot_choice_id = ? AND set_index = ?`,
		choiceID, setIndex).Scan(&id); err != nil {
		return 0, fmt.Errorf("read upserted set: %w", err)
	}
	return id, nil
}

// ReplaceSets swaps all working sets of a choice for the given ones in a
// single transaction. Warm-ups are kept and the new sets follow them.
// Every set must have a positive weight and 1..200 reps.
func (d *DB) ReplaceSets(choiceID int64, sets []models.SetInput) error {
	for i, in := range sets {
		if err := validateSetInput(in, true); err != nil {
			return fmt.Errorf("set %d: %w", i+1, err)
		}
	}

	return d.withTx(func(tx *sql.Tx) error {
		if err := requireChoice(tx, choiceID); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM sets WHERE session_slot_choice_id = ? AND is_warmup = 0`, choiceID); err != nil {
			return fmt.Errorf("clear working sets: %w", err)
		}

		var base int
		if err := tx.QueryRow(`SELECT COALESCE(MAX(set_index), 0) FROM sets WHERE session_slot_choice_id = ?`,
			choiceID).Scan(&base); err != nil {
			return fmt.Errorf("find warm-up count: %w", err)
		}

		createdAt := formatTime(d.nowUTC())
		for i, in := range sets {
			if _, err := tx.Exec(`
				INSERT INTO sets (session_slot_choice_id, set_index, weight, reps, rpe, rest_seconds, notes, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				choiceID, base+i+1, in.Weight, in.Reps, in.RPE, in.RestSeconds, in.Notes, createdAt); err != nil {
				return wrapConstraint("insert set", err)
			}
		}
		return nil
	})
}

// DeleteSet removes the set at (choice, set index). Other indexes are left as they are.
func (d *DB) DeleteSet(choiceID int64, setIndex int) error {
	res, err := d.db.Exec(`DELETE FROM sets WHERE session_slot_choice_id = ? AND set_index = ?`, choiceID, setIndex)
	if err != nil {
		return fmt.Errorf("delete set: %w", err)
	}
	return requireAffected(res, "set", fmt.Sprintf("%d/%d", choiceID, setIndex))
}

// ToggleSetCompleted sets the completion flag of one set.
func (d *DB) ToggleSetCompleted(setID int64, completed bool) error {
	res, err := d.db.Exec(`UPDATE sets SET completed = ? WHERE id = ?`, boolToInt(completed), setID)
	if err != nil {
		return fmt.Errorf("toggle set: %w", err)
	}
	return requireAffected(res, "set", setID)
}

// GenerateWarmupSets replaces any warm-ups of a choice with a fresh ramp
// toward workingWeight. Warm-ups take indexes 1..n and the working sets are
// shifted to follow them in their existing order.
func (d *DB) GenerateWarmupSets(choiceID int64, workingWeight float64, unit models.Unit) ([]models.SetRecord, error) {
	if err := training.ValidateWeight(workingWeight, true); err != nil {
		return nil, invalid(err)
	}
	steps := training.WarmupRamp(workingWeight, unit)

	err := d.withTx(func(tx *sql.Tx) error {
		if err := requireChoice(tx, choiceID); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM sets WHERE session_slot_choice_id = ? AND is_warmup = 1`, choiceID); err != nil {
			return fmt.Errorf("clear warm-ups: %w", err)
		}

		ids, err := workingSetIDs(tx, choiceID)
		if err != nil {
			return err
		}
		// Park working sets on negative indexes so the renumbering never
		// collides with the unique (choice, set_index) key.
		if _, err := tx.Exec(`UPDATE sets SET set_index = -set_index WHERE session_slot_choice_id = ?`, choiceID); err != nil {
			return fmt.Errorf("park working sets: %w", err)
		}
		for i, id := range ids {
			if _, err := tx.Exec(`UPDATE sets SET set_index = ? WHERE id = ?`, len(steps)+i+1, id); err != nil {
				return fmt.Errorf("renumber set %d: %w", id, err)
			}
		}

		createdAt := formatTime(d.nowUTC())
		for i, step := range steps {
			if _, err := tx.Exec(`
				INSERT INTO sets (session_slot_choice_id, set_index, weight, reps, is_warmup, created_at)
				VALUES (?, ?, ?, ?, 1, ?)`,
				choiceID, i+1, step.Weight, step.Reps, createdAt); err != nil {
				return wrapConstraint("insert warm-up", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	d.log.WithField("choice_id", choiceID).WithField("warmups", len(steps)).Debug("generated warm-up sets")
	return listSets(d.db, choiceID)
}

// AddDropSegment appends a drop segment after a set and returns its ID.
func (d *DB) AddDropSegment(setID int64, weight float64, reps int) (int64, error) {
	if err := validateDrop(weight, reps); err != nil {
		return 0, err
	}

	var id int64
	err := d.withTx(func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRow(`SELECT 1 FROM sets WHERE id = ?`, setID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return notFound("set", setID)
			}
			return fmt.Errorf("lookup set: %w", err)
		}

		var next int
		if err := tx.QueryRow(`SELECT COALESCE(MAX(segment_index), 0) + 1 FROM drop_segments WHERE set_id = ?`,
			setID).Scan(&next); err != nil {
			return fmt.Errorf("next segment index: %w", err)
		}
		res, err := tx.Exec(`INSERT INTO drop_segments (set_id, segment_index, weight, reps) VALUES (?, ?, ?, ?)`,
			setID, next, weight, reps)
		if err != nil {
			return wrapConstraint("add drop segment", err)
		}
		id, err = res.LastInsertId()
		return err
	})
	return id, err
}

// UpdateDropSegment replaces a segment's weight and reps.
func (d *DB) UpdateDropSegment(segmentID int64, weight float64, reps int) error {
	if err := validateDrop(weight, reps); err != nil {
		return err
	}
	res, err := d.db.Exec(`UPDATE drop_segments SET weight = ?, reps = ? WHERE id = ?`, weight, reps, segmentID)
	if err != nil {
		return fmt.Errorf("update drop segment: %w", err)
	}
	return requireAffected(res, "drop segment", segmentID)
}

// DeleteDropSegment removes one segment. Remaining segments keep their indexes.
func (d *DB) DeleteDropSegment(segmentID int64) error {
	res, err := d.db.Exec(`DELETE FROM drop_segments WHERE id = ?`, segmentID)
	if err != nil {
		return fmt.Errorf("delete drop segment: %w", err)
	}
	return requireAffected(res, "drop segment", segmentID)
}

// ListDropSegments returns a set's segments in order.
func (d *DB) ListDropSegments(setID int64) ([]models.DropSegment, error) {
	rows, err := d.db.Query(`
		SELECT id, set_id, segment_index, weight, reps FROM drop_segments
		WHERE set_id = ? ORDER BY segment_index`, setID)
	if err != nil {
		return nil, fmt.Errorf("list drop segments: %w", err)
	}
	defer rows.Close()

	var out []models.DropSegment
	for rows.Next() {
		var seg models.DropSegment
		if err := rows.Scan(&seg.ID, &seg.SetID, &seg.SegmentIndex, &seg.Weight, &seg.Reps); err != nil {
			return nil, fmt.Errorf("scan drop segment: %w", err)
		}
		out = append(out, seg)
	}
	return out, rows.Err()
}

func validateSetInput(in models.SetInput, strict bool) error {
	if err := training.ValidateWeight(in.Weight, strict); err != nil {
		return invalid(err)
	}
	if err := training.ValidateReps(in.Reps, !strict); err != nil {
		return invalid(err)
	}
	if err := training.ValidateRPE(in.RPE); err != nil {
		return invalid(err)
	}
	if err := training.ValidateRest(in.RestSeconds); err != nil {
		return invalid(err)
	}
	return nil
}

func validateDrop(weight float64, reps int) error {
	if err := training.ValidateWeight(weight, false); err != nil {
		return invalid(err)
	}
	if err := training.ValidateReps(reps, true); err != nil {
		return invalid(err)
	}
	return nil
}

func requireChoice(q querier, choiceID int64) error {
	var exists int
	err := q.QueryRow(`SELECT 1 FROM session_slot_choices WHERE id = ?`, choiceID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound("choice", choiceID)
	}
	if err != nil {
		return fmt.Errorf("lookup choice: %w", err)
	}
	return nil
}

func workingSetIDs(q querier, choiceID int64) ([]int64, error) {
	rows, err := q.Query(`
		SELECT id FROM sets WHERE session_slot_choice_id = ? AND is_warmup = 0 ORDER BY set_index`, choiceID)
	if err != nil {
		return nil, fmt.Errorf("list working sets: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan set id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// listSets reads a choice's sets ordered by index, then attaches drop segments.
func listSets(q querier, choiceID int64) ([]models.SetRecord, error) {
	sets, err := querySets(q, `SELECT `+setColumns+` FROM sets
		WHERE session_slot_choice_id = ? ORDER BY set_index`, choiceID)
	if err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		return sets, nil
	}

	rows, err := q.Query(`
		SELECT d.id, d.set_id, d.segment_index, d.weight, d.reps
		FROM drop_segments d
		JOIN sets s ON s.id = d.set_id
		WHERE s.session_slot_choice_id = ?
		ORDER BY d.set_id, d.segment_index`, choiceID)
	if err != nil {
		if isMissingSchema(err) {
			return sets, nil
		}
		return nil, fmt.Errorf("list drop segments: %w", err)
	}
	defer rows.Close()

	bySet := make(map[int64][]models.DropSegment)
	for rows.Next() {
		var seg models.DropSegment
		if err := rows.Scan(&seg.ID, &seg.SetID, &seg.SegmentIndex, &seg.Weight, &seg.Reps); err != nil {
			return nil, fmt.Errorf("scan drop segment: %w", err)
		}
		bySet[seg.SetID] = append(bySet[seg.SetID], seg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range sets {
		sets[i].Drops = bySet[sets[i].ID]
	}
	return sets, nil
}

func querySets(q querier, query string, args ...any) ([]models.SetRecord, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sets: %w", err)
	}
	defer rows.Close()

	var out []models.SetRecord
	for rows.Next() {
		var s models.SetRecord
		var rpe sql.NullFloat64
		var rest sql.NullInt64
		var notes sql.NullString
		var completed, warmup int
		var createdAt string
		if err := rows.Scan(&s.ID, &s.ChoiceID, &s.SetIndex, &s.Weight, &s.Reps, &rpe, &rest, &notes,
			&completed, &warmup, &createdAt); err != nil {
			return nil, fmt.Errorf("scan set: %w", err)
		}
		s.RPE = nullFloat(rpe)
		s.RestSeconds = nullInt(rest)
		s.Notes = nullString(notes)
		s.Completed = completed == 1
		s.IsWarmup = warmup == 1
		s.CreatedAt = parseTime(createdAt)
		out = append(out, s)
	}
	return out, rows.Err()
}
