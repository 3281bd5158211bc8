// ABOUTME: Estimated one-rep max math and per-exercise bests over working sets.
// ABOUTME: Pure functions; callers load samples from storage and pass them in.
package training

import (
	"sort"
	"time"

	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/models"
)

// Sets outside this rep range are too noisy for the Epley estimate.
const (
	MinE1RMReps = 1
	MaxE1RMReps = 12
)

// E1RM is the Epley estimate weight x (1 + reps/30).
func E1RM(weight float64, reps int) float64 {
	return weight * (1 + float64(reps)/30)
}

// Eligible reports whether a set counts toward e1RM and PR calculations.
func Eligible(weight float64, reps int) bool {
	return weight > 0 && reps >= MinE1RMReps && reps <= MaxE1RMReps
}

// Sample is one completed, non-warm-up set of a finalized session.
type Sample struct {
	SessionID   int64
	ExerciseID  int64
	Muscle      string
	TemplateID  *int64
	PerformedAt time.Time
	Weight      float64
	Reps        int
}

// Volume is weight x reps.
func (s Sample) Volume() float64 {
	return s.Weight * float64(s.Reps)
}

// Best is the best e1RM and the heaviest weight across eligible samples.
type Best struct {
	E1RM   float64
	Weight float64
	Found  bool
}

// Add folds a sample into the best, ignoring ineligible sets.
func (b *Best) Add(s Sample) {
	if !Eligible(s.Weight, s.Reps) {
		return
	}
	e := E1RM(s.Weight, s.Reps)
	if !b.Found || e > b.E1RM {
		b.E1RM = e
	}
	if !b.Found || s.Weight > b.Weight {
		b.Weight = s.Weight
	}
	b.Found = true
}

// BestByExercise groups samples by exercise and keeps each exercise's best.
// Exercises without a single eligible set are absent from the result.
func BestByExercise(samples []Sample) map[int64]Best {
	out := make(map[int64]Best)
	for _, s := range samples {
		b := out[s.ExerciseID]
		b.Add(s)
		if b.Found {
			out[s.ExerciseID] = b
		}
	}
	return out
}

// E1RMTrend returns one point per session, the max e1RM of its eligible
// sets, ordered by performed time then session id.
func E1RMTrend(samples []Sample) []models.E1RMPoint {
	bySession := make(map[int64]*models.E1RMPoint)
	for _, s := range samples {
		if !Eligible(s.Weight, s.Reps) {
			continue
		}
		e := E1RM(s.Weight, s.Reps)
		p, ok := bySession[s.SessionID]
		if !ok {
			bySession[s.SessionID] = &models.E1RMPoint{SessionID: s.SessionID, PerformedAt: s.PerformedAt, E1RM: e}
			continue
		}
		if e > p.E1RM {
			p.E1RM = e
		}
	}

	points := make([]models.E1RMPoint, 0, len(bySession))
	for _, p := range bySession {
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool {
		if !points[i].PerformedAt.Equal(points[j].PerformedAt) {
			return points[i].PerformedAt.Before(points[j].PerformedAt)
		}
		return points[i].SessionID < points[j].SessionID
	})
	return points
}
