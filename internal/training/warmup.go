// ABOUTME: Warm-up ramp generation with unit-aware plate rounding.
// ABOUTME: Produces ascending percentages of the working weight, never below the bar.
package training

import (
	"math"

	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/models"
)

// WarmupStep is one generated warm-up set.
type WarmupStep struct {
	Percent float64
	Weight  float64
	Reps    int
}

var (
	lightRamp = []WarmupStep{
		{Percent: 0.50, Reps: 8},
		{Percent: 0.75, Reps: 3},
	}
	standardRamp = []WarmupStep{
		{Percent: 0.40, Reps: 8},
		{Percent: 0.60, Reps: 5},
		{Percent: 0.80, Reps: 3},
	}
	heavyRamp = []WarmupStep{
		{Percent: 0.40, Reps: 8},
		{Percent: 0.60, Reps: 5},
		{Percent: 0.75, Reps: 3},
		{Percent: 0.90, Reps: 1},
	}
)

// BarWeight is the empty Olympic bar in the given unit.
func BarWeight(u models.Unit) float64 {
	if u == models.UnitLb {
		return 45
	}
	return 20
}

// PlateIncrement is the smallest loadable jump: two of the smallest common plates.
func PlateIncrement(u models.Unit) float64 {
	if u == models.UnitLb {
		return 5
	}
	return 2.5
}

func heavyThreshold(u models.Unit) float64 {
	if u == models.UnitLb {
		return 315
	}
	return 140
}

// RoundToPlate rounds w to the nearest loadable weight.
func RoundToPlate(w float64, u models.Unit) float64 {
	inc := PlateIncrement(u)
	return math.Round(w/inc) * inc
}

// WarmupRamp returns the warm-up sets for a working weight. Light working
// weights get two steps, heavy ones four. Weights at or above the working
// weight and repeated weights after rounding are dropped.
func WarmupRamp(working float64, u models.Unit) []WarmupStep {
	bar := BarWeight(u)
	if working <= bar {
		return nil
	}

	ramp := standardRamp
	switch {
	case working < 2*bar:
		ramp = lightRamp
	case working >= heavyThreshold(u):
		ramp = heavyRamp
	}

	steps := make([]WarmupStep, 0, len(ramp))
	last := 0.0
	for _, s := range ramp {
		w := RoundToPlate(working*s.Percent, u)
		if w < bar {
			w = bar
		}
		if w >= working || w <= last {
			continue
		}
		steps = append(steps, WarmupStep{Percent: s.Percent, Weight: w, Reps: s.Reps})
		last = w
	}
	return steps
}
