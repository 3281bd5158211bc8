// ABOUTME: Template models: ordered slots, selectable exercise options, prescribed sets.
// ABOUTME: A template is the reusable plan a draft session is materialized from.
package models

import "time"

// Template is a reusable, ordered list of exercise slots.
type Template struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	NormalizedName string    `json:"normalized_name"`
	CreatedAt      time.Time `json:"created_at"`
}

// TemplateSlot is one position in a template. SlotIndex is 1-based.
type TemplateSlot struct {
	ID         int64   `json:"id"`
	TemplateID int64   `json:"template_id"`
	SlotIndex  int     `json:"slot_index"`
	Name       *string `json:"name,omitempty"`
}

// TemplateSlotOption is one selectable exercise/variant for a slot.
type TemplateSlotOption struct {
	ID               int64   `json:"id"`
	TemplateSlotID   int64   `json:"template_slot_id"`
	ExerciseID       int64   `json:"exercise_id"`
	ExerciseOptionID *int64  `json:"exercise_option_id,omitempty"`
	OrderIndex       int     `json:"order_index"`
	ExerciseName     string  `json:"exercise_name"`
	OptionName       *string `json:"option_name,omitempty"`
}

// Label returns "Exercise (Variant)" or just the exercise name.
func (o TemplateSlotOption) Label() string {
	if o.OptionName != nil && *o.OptionName != "" {
		return o.ExerciseName + " (" + *o.OptionName + ")"
	}
	return o.ExerciseName
}

// PrescribedSet is the planned structure of one set in a template slot.
type PrescribedSet struct {
	TemplateSlotID int64    `json:"template_slot_id"`
	SetIndex       int      `json:"set_index"`
	Weight         *float64 `json:"weight,omitempty"`
	Reps           *int     `json:"reps,omitempty"`
	RPE            *float64 `json:"rpe,omitempty"`
	RestSeconds    *int     `json:"rest_seconds,omitempty"`
	Notes          *string  `json:"notes,omitempty"`
}

// TemplateDetail is a template with its slots, options and prescriptions.
type TemplateDetail struct {
	Template
	Slots []TemplateSlotDetail `json:"slots"`
}

// TemplateSlotDetail is a slot with its options and prescribed sets.
type TemplateSlotDetail struct {
	TemplateSlot
	Options    []TemplateSlotOption `json:"options"`
	Prescribed []PrescribedSet      `json:"prescribed"`
}
