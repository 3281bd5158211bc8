// ABOUTME: Exercise catalog CRUD: exercises and their named variants.
// ABOUTME: Deleting an exercise that is still referenced reports false instead of failing.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/models"
	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/training"
)

// CreateExercise adds an exercise to the catalog. Names are unique ignoring
// case and spacing.
func (d *DB) CreateExercise(name, primaryMuscle string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, invalid(fmt.Errorf("exercise name is required"))
	}
	res, err := d.db.Exec(`
		INSERT INTO exercises (name, normalized_name, primary_muscle, created_at)
		VALUES (?, ?, ?, ?)`,
		name, training.NormalizeName(name), training.NormalizeName(primaryMuscle), formatTime(d.nowUTC()))
	if err != nil {
		return 0, wrapConstraint("create exercise", err)
	}
	return res.LastInsertId()
}

// GetExercise retrieves an exercise by ID.
func (d *DB) GetExercise(id int64) (*models.Exercise, error) {
	return scanExercise(d.db.QueryRow(`
		SELECT id, name, primary_muscle, created_at FROM exercises WHERE id = ?`, id), id)
}

// FindExercise looks an exercise up by name, ignoring case and spacing.
func (d *DB) FindExercise(name string) (*models.Exercise, error) {
	return scanExercise(d.db.QueryRow(`
		SELECT id, name, primary_muscle, created_at FROM exercises WHERE normalized_name = ?`,
		training.NormalizeName(name)), name)
}

// ListExercises returns the catalog ordered by name.
func (d *DB) ListExercises() ([]models.Exercise, error) {
	rows, err := d.db.Query(`
		SELECT id, name, primary_muscle, created_at FROM exercises ORDER BY normalized_name`)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	defer rows.Close()

	var out []models.Exercise
	for rows.Next() {
		var e models.Exercise
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Name, &e.PrimaryMuscle, &createdAt); err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

// AddExerciseOption adds a named variant to an exercise.
func (d *DB) AddExerciseOption(exerciseID int64, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, invalid(fmt.Errorf("option name is required"))
	}
	if _, err := d.GetExercise(exerciseID); err != nil {
		return 0, err
	}
	res, err := d.db.Exec(`INSERT INTO exercise_options (exercise_id, name) VALUES (?, ?)`, exerciseID, name)
	if err != nil {
		return 0, wrapConstraint("add exercise option", err)
	}
	return res.LastInsertId()
}

// ListExerciseOptions returns the variants of an exercise ordered by name.
func (d *DB) ListExerciseOptions(exerciseID int64) ([]models.ExerciseOption, error) {
	rows, err := d.db.Query(`
		SELECT id, exercise_id, name FROM exercise_options WHERE exercise_id = ? ORDER BY name`, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("list exercise options: %w", err)
	}
	defer rows.Close()

	var out []models.ExerciseOption
	for rows.Next() {
		var o models.ExerciseOption
		if err := rows.Scan(&o.ID, &o.ExerciseID, &o.Name); err != nil {
			return nil, fmt.Errorf("scan exercise option: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// DeleteExercise removes an exercise and its variants. It returns false,
// leaving the row intact, when a template slot option or recorded history
// still references the exercise.
func (d *DB) DeleteExercise(id int64) (bool, error) {
	deleted := false
	err := d.withTx(func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRow(`SELECT 1 FROM exercises WHERE id = ?`, id).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return notFound("exercise", id)
			}
			return fmt.Errorf("lookup exercise: %w", err)
		}

		var inUse int
		err := tx.QueryRow(`
			SELECT
				EXISTS(SELECT 1 FROM template_slot_options WHERE exercise_id = ?) OR
				EXISTS(SELECT 1 FROM session_slot_choices WHERE exercise_id = ?) OR
				EXISTS(SELECT 1 FROM personal_records WHERE exercise_id = ?)`,
			id, id, id).Scan(&inUse)
		if err != nil {
			return fmt.Errorf("check exercise references: %w", err)
		}
		if inUse != 0 {
			return nil
		}

		if _, err := tx.Exec(`DELETE FROM exercise_options WHERE exercise_id = ?`, id); err != nil {
			return fmt.Errorf("delete exercise options: %w", err)
		}
		if _, err := tx.Exec(`DELETE FROM exercises WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete exercise: %w", err)
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func scanExercise(row *sql.Row, ref any) (*models.Exercise, error) {
	var e models.Exercise
	var createdAt string
	if err := row.Scan(&e.ID, &e.Name, &e.PrimaryMuscle, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("exercise", ref)
		}
		return nil, fmt.Errorf("scan exercise: %w", err)
	}
	e.CreatedAt = parseTime(createdAt)
	return &e, nil
}
