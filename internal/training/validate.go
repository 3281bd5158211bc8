// ABOUTME: Input validation for set values and name normalization.
// ABOUTME: Storage wraps these errors with its ErrInvalid sentinel.
package training

import (
	"fmt"
	"math"
	"strings"
)

// MaxReps is the highest rep count accepted for a set.
const MaxReps = 200

// ValidateRPE accepts nil or a value in [1,10] in half-point steps.
func ValidateRPE(rpe *float64) error {
	if rpe == nil {
		return nil
	}
	v := *rpe
	if math.IsNaN(v) || v < 1 || v > 10 {
		return fmt.Errorf("rpe must be between 1 and 10, got %v", v)
	}
	if math.Mod(v*2, 1) != 0 {
		return fmt.Errorf("rpe must be in steps of 0.5, got %v", v)
	}
	return nil
}

// ValidateReps accepts 1..MaxReps, or 0 when a blank placeholder is allowed.
func ValidateReps(reps int, allowZero bool) error {
	if reps == 0 && allowZero {
		return nil
	}
	if reps < 1 || reps > MaxReps {
		return fmt.Errorf("reps must be between 1 and %d, got %d", MaxReps, reps)
	}
	return nil
}

// ValidateWeight rejects negative weights; strict also rejects zero.
func ValidateWeight(w float64, strict bool) error {
	if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return fmt.Errorf("weight must be a non-negative number, got %v", w)
	}
	if strict && w == 0 {
		return fmt.Errorf("weight must be greater than 0")
	}
	return nil
}

// ValidateRest accepts nil or a non-negative number of seconds.
func ValidateRest(rest *int) error {
	if rest != nil && *rest < 0 {
		return fmt.Errorf("rest seconds must be >= 0, got %d", *rest)
	}
	return nil
}

// NormalizeName lower-cases, trims and collapses inner whitespace.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
