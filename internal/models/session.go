// ABOUTME: Session models: sessions, slots, choices, performed sets and drop segments.
// ABOUTME: Also holds the read models used by history and session detail views.
package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of a session.
type SessionStatus string

const (
	StatusDraft SessionStatus = "draft"
	StatusFinal SessionStatus = "final"
)

// Session is one workout. PerformedAt drives all chronological ordering.
type Session struct {
	ID          int64         `json:"id"`
	UUID        uuid.UUID     `json:"uuid"`
	PerformedAt time.Time     `json:"performed_at"`
	Notes       *string       `json:"notes,omitempty"`
	Status      SessionStatus `json:"status"`
	TemplateID  *int64        `json:"template_id,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// IsDraft reports whether the session is still in progress.
func (s *Session) IsDraft() bool {
	return s.Status == StatusDraft
}

// SessionSlot is a template slot copied into a session.
type SessionSlot struct {
	ID               int64   `json:"id"`
	SessionID        int64   `json:"session_id"`
	TemplateSlotID   *int64  `json:"template_slot_id,omitempty"`
	SlotIndex        int     `json:"slot_index"`
	Name             *string `json:"name,omitempty"`
	SelectedChoiceID *int64  `json:"selected_choice_id,omitempty"`
}

// SessionSlotChoice is "this slot, with this exercise/variant selected".
// ExerciseID and ExerciseOptionID snapshot the option's identity so history
// survives template edits.
type SessionSlotChoice struct {
	ID                   int64     `json:"id"`
	SessionSlotID        int64     `json:"session_slot_id"`
	TemplateSlotOptionID *int64    `json:"template_slot_option_id,omitempty"`
	ExerciseID           int64     `json:"exercise_id"`
	ExerciseOptionID     *int64    `json:"exercise_option_id,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

// SetRecord is one performed (or planned-to-perform) set.
type SetRecord struct {
	ID          int64         `json:"id"`
	ChoiceID    int64         `json:"choice_id"`
	SetIndex    int           `json:"set_index"`
	Weight      float64       `json:"weight"`
	Reps        int           `json:"reps"`
	RPE         *float64      `json:"rpe,omitempty"`
	RestSeconds *int          `json:"rest_seconds,omitempty"`
	Notes       *string       `json:"notes,omitempty"`
	Completed   bool          `json:"completed"`
	IsWarmup    bool          `json:"is_warmup"`
	CreatedAt   time.Time     `json:"created_at"`
	Drops       []DropSegment `json:"drops,omitempty"`
}

// Volume is weight x reps for the set itself, excluding drop segments.
func (s SetRecord) Volume() float64 {
	return s.Weight * float64(s.Reps)
}

// SetInput carries the mutable fields of a set for upserts and bulk replaces.
type SetInput struct {
	Weight      float64  `json:"weight"`
	Reps        int      `json:"reps"`
	RPE         *float64 `json:"rpe,omitempty"`
	RestSeconds *int     `json:"rest_seconds,omitempty"`
	Notes       *string  `json:"notes,omitempty"`
}

// DropSegment is a reduced-weight continuation appended after a set.
type DropSegment struct {
	ID           int64   `json:"id"`
	SetID        int64   `json:"set_id"`
	SegmentIndex int     `json:"segment_index"`
	Weight       float64 `json:"weight"`
	Reps         int     `json:"reps"`
}

// SessionSlotView is a session slot joined with its selected choice.
type SessionSlotView struct {
	SessionSlot
	ChoiceID             int64   `json:"choice_id"`
	TemplateSlotOptionID *int64  `json:"template_slot_option_id,omitempty"`
	ExerciseID           int64   `json:"exercise_id"`
	ExerciseName         string  `json:"exercise_name"`
	OptionName           *string `json:"option_name,omitempty"`
}

// SlotOptionView is a template slot option as seen from a session slot.
type SlotOptionView struct {
	TemplateSlotOption
	ChoiceID *int64 `json:"choice_id,omitempty"`
	Selected bool   `json:"selected"`
}

// SessionSummary is one row of the history list.
type SessionSummary struct {
	ID            int64     `json:"id"`
	UUID          uuid.UUID `json:"uuid"`
	PerformedAt   time.Time `json:"performed_at"`
	Notes         *string   `json:"notes,omitempty"`
	TemplateID    *int64    `json:"template_id,omitempty"`
	TemplateName  *string   `json:"template_name,omitempty"`
	CompletedSets int       `json:"completed_sets_count"`
	TotalVolume   float64   `json:"total_volume"`
	Exercises     []string  `json:"exercises"`
}

// SessionDetail is a session with every slot and the sets of its selected choice.
type SessionDetail struct {
	Session
	TemplateName *string             `json:"template_name,omitempty"`
	Slots        []SessionSlotDetail `json:"slots"`
}

// SessionSlotDetail is a slot view with its sets.
type SessionSlotDetail struct {
	SessionSlotView
	Sets []SetRecord `json:"sets"`
}

// LastPerformance is the most recent finalized performance of a slot option.
type LastPerformance struct {
	SessionID   int64       `json:"session_id"`
	ChoiceID    int64       `json:"choice_id"`
	PerformedAt time.Time   `json:"performed_at"`
	Sets        []SetRecord `json:"sets"`
}
