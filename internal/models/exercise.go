// ABOUTME: Exercise catalog models and weight units.
// ABOUTME: Exercises are referenced by template slot options and session choices, never owned.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Unit is the unit a weight is recorded in.
type Unit string

const (
	UnitKg Unit = "kg"
	UnitLb Unit = "lb"
)

// ParseUnit accepts kg/lb and their common spellings.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "kg", "kgs", "kilo", "kilos":
		return UnitKg, nil
	case "lb", "lbs", "pound", "pounds":
		return UnitLb, nil
	default:
		return "", fmt.Errorf("unknown unit: %q", s)
	}
}

// Exercise is a catalog entry such as "Bench Press".
type Exercise struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	PrimaryMuscle string    `json:"primary_muscle,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ExerciseOption is a named variant of an exercise, e.g. "Dumbbell".
type ExerciseOption struct {
	ID         int64  `json:"id"`
	ExerciseID int64  `json:"exercise_id"`
	Name       string `json:"name"`
}

// BodyWeightEntry is a body-weight measurement, independent of sessions.
type BodyWeightEntry struct {
	ID         int64     `json:"id"`
	Weight     float64   `json:"weight"`
	Unit       Unit      `json:"unit"`
	MeasuredAt time.Time `json:"measured_at"`
}
