// ABOUTME: Analytics models: personal records, e1RM trend points, aggregate stats.
// ABOUTME: Produced by the storage analytics queries; personal records are append-only.
package models

import "time"

// PRType is the metric a personal record was set on.
type PRType string

const (
	PRTypeE1RM   PRType = "e1rm"
	PRTypeWeight PRType = "weight"
)

// PersonalRecord is one improvement over the lifetime best for an exercise.
type PersonalRecord struct {
	ID            int64     `json:"id"`
	ExerciseID    int64     `json:"exercise_id"`
	ExerciseName  string    `json:"exercise_name"`
	SessionID     int64     `json:"session_id"`
	Type          PRType    `json:"pr_type"`
	Value         float64   `json:"value"`
	PreviousValue *float64  `json:"previous_value,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// E1RMPoint is the best estimated one-rep max of an exercise in one session.
type E1RMPoint struct {
	SessionID   int64     `json:"session_id"`
	PerformedAt time.Time `json:"performed_at"`
	E1RM        float64   `json:"e1rm"`
}

// OverallStats aggregates completed working sets of finalized sessions.
type OverallStats struct {
	TotalSessions int     `json:"total_sessions"`
	TotalSets     int     `json:"total_sets"`
	TotalVolume   float64 `json:"total_volume"`
	Last7Sessions int     `json:"last7_sessions"`
	Last7Sets     int     `json:"last7_sets"`
	Last7Volume   float64 `json:"last7_volume"`
}

// TemplateStats aggregates finalized sessions started from one template.
type TemplateStats struct {
	TemplateID      int64      `json:"template_id"`
	TemplateName    string     `json:"template_name"`
	Sessions        int        `json:"sessions"`
	CompletedSets   int        `json:"completed_sets"`
	TotalVolume     float64    `json:"total_volume"`
	LastPerformedAt *time.Time `json:"last_performed_at,omitempty"`
}

// MuscleVolume is the trailing-week work for one primary muscle.
type MuscleVolume struct {
	Muscle string  `json:"muscle"`
	Sets   int     `json:"sets"`
	Volume float64 `json:"volume"`
}
