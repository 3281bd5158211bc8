// ABOUTME: Body-weight log, independent of workout sessions.
package storage

import (
	"fmt"
	"time"

	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/models"
	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/training"
)

// AddBodyWeight records a measurement. A zero measuredAt means now.
func (d *DB) AddBodyWeight(weight float64, unit models.Unit, measuredAt time.Time) (int64, error) {
	if err := training.ValidateWeight(weight, true); err != nil {
		return 0, invalid(err)
	}
	if unit != models.UnitKg && unit != models.UnitLb {
		return 0, invalid(fmt.Errorf("unknown unit %q", unit))
	}
	if measuredAt.IsZero() {
		measuredAt = d.nowUTC()
	}

	res, err := d.db.Exec(`INSERT INTO body_weights (weight, unit, measured_at) VALUES (?, ?, ?)`,
		weight, string(unit), formatTime(measuredAt))
	if err != nil {
		return 0, fmt.Errorf("add body weight: %w", err)
	}
	return res.LastInsertId()
}

// ListBodyWeights returns measurements newest first. limit <= 0 returns all.
func (d *DB) ListBodyWeights(limit int) ([]models.BodyWeightEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := d.db.Query(`
		SELECT id, weight, unit, measured_at FROM body_weights
		ORDER BY measured_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list body weights: %w", err)
	}
	defer rows.Close()

	var out []models.BodyWeightEntry
	for rows.Next() {
		var e models.BodyWeightEntry
		var unit, measuredAt string
		if err := rows.Scan(&e.ID, &e.Weight, &unit, &measuredAt); err != nil {
			return nil, fmt.Errorf("scan body weight: %w", err)
		}
		e.Unit = models.Unit(unit)
		e.MeasuredAt = parseTime(measuredAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteBodyWeight removes one measurement.
func (d *DB) DeleteBodyWeight(id int64) error {
	res, err := d.db.Exec(`DELETE FROM body_weights WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete body weight: %w", err)
	}
	return requireAffected(res, "body weight", id)
}
