// ABOUTME: MCP tool implementations for the workout tracker.
// ABOUTME: Drives the draft session lifecycle, set logging and analytics over the Repository.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/models"
	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/storage"
)

func (s *Server) registerTools() {
	// list_templates
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_templates",
		Description: "List workout templates",
	}, s.handleListTemplates)

	// get_template
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_template",
		Description: "Get a template with its slots, exercise options and prescribed sets",
	}, s.handleGetTemplate)

	// start_session
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "start_session",
		Description: "Start a draft session from a template, pre-filled with the weights last performed",
	}, s.handleStartSession)

	// get_active_session
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_active_session",
		Description: "Get the active draft session with its slots, options and sets",
	}, s.handleGetActiveSession)

	// select_exercise
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "select_exercise",
		Description: "Switch a draft slot to another of its exercise options",
	}, s.handleSelectExercise)

	// log_set
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_set",
		Description: "Record or update a set for a slot choice",
	}, s.handleLogSet)

	// complete_set
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "complete_set",
		Description: "Mark a set as completed (or not completed)",
	}, s.handleCompleteSet)

	// add_warmups
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_warmups",
		Description: "Generate warm-up sets ahead of the working sets for a slot choice",
	}, s.handleAddWarmups)

	// finish_session
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "finish_session",
		Description: "Finalize a draft session and detect personal records",
	}, s.handleFinishSession)

	// discard_session
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "discard_session",
		Description: "Discard a draft session and everything recorded in it",
	}, s.handleDiscardSession)

	// list_history
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_history",
		Description: "List finalized sessions, most recent first, with set counts and volume",
	}, s.handleListHistory)

	// get_session
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_session",
		Description: "Get a session with every slot and its sets",
	}, s.handleGetSession)

	// get_stats
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_stats",
		Description: "Get overall, per-template and weekly per-muscle training stats",
	}, s.handleGetStats)

	// get_streak
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_streak",
		Description: "Get the current consecutive-day training streak and sessions per day",
	}, s.handleGetStreak)

	// get_session_prs
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_session_prs",
		Description: "Get the personal records set in a session",
	}, s.handleGetSessionPRs)

	// get_e1rm_history
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_e1rm_history",
		Description: "Get the best estimated one-rep max per session for an exercise",
	}, s.handleGetE1RMHistory)

	// log_body_weight
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_body_weight",
		Description: "Record a body-weight measurement",
	}, s.handleLogBodyWeight)
}

// Tool input/output types

type emptyInput struct{}

type templateInput struct {
	TemplateID int64 `json:"template_id" jsonschema:"Template ID"`
}

type sessionRefInput struct {
	Session string `json:"session,omitempty" jsonschema:"Session ID or UUID prefix, defaults to the active draft"`
}

type selectExerciseInput struct {
	SessionSlotID        int64 `json:"session_slot_id" jsonschema:"Session slot ID"`
	TemplateSlotOptionID int64 `json:"template_slot_option_id" jsonschema:"Exercise option of the slot to switch to"`
}

type logSetInput struct {
	ChoiceID    int64    `json:"choice_id" jsonschema:"Slot choice ID the set belongs to"`
	SetIndex    int      `json:"set_index" jsonschema:"Position of the set, starting at 1"`
	Weight      float64  `json:"weight" jsonschema:"Weight lifted"`
	Reps        int      `json:"reps" jsonschema:"Repetitions performed"`
	RPE         *float64 `json:"rpe,omitempty" jsonschema:"Rate of perceived exertion, 1 to 10"`
	RestSeconds *int     `json:"rest_seconds,omitempty" jsonschema:"Rest after the set in seconds"`
	Notes       string   `json:"notes,omitempty" jsonschema:"Optional notes"`
	Completed   bool     `json:"completed,omitempty" jsonschema:"Also mark the set as completed"`
}

type completeSetInput struct {
	SetID int64 `json:"set_id" jsonschema:"Set ID"`
	Undo  bool  `json:"undo,omitempty" jsonschema:"Mark the set as not completed instead"`
}

type addWarmupsInput struct {
	ChoiceID      int64   `json:"choice_id" jsonschema:"Slot choice ID"`
	WorkingWeight float64 `json:"working_weight" jsonschema:"Working weight to ramp up to"`
	Unit          string  `json:"unit,omitempty" jsonschema:"kg or lb, defaults to the configured unit"`
}

type listHistoryInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max results (default 10)"`
}

type exerciseInput struct {
	Exercise string `json:"exercise" jsonschema:"Exercise name"`
}

type bodyWeightInput struct {
	Weight     float64 `json:"weight" jsonschema:"Body weight"`
	Unit       string  `json:"unit,omitempty" jsonschema:"kg or lb, defaults to the configured unit"`
	MeasuredAt string  `json:"measured_at,omitempty" jsonschema:"Timestamp (ISO 8601), defaults to now"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type draftSlot struct {
	SessionSlotID int64                   `json:"session_slot_id"`
	SlotIndex     int                     `json:"slot_index"`
	Name          *string                 `json:"name,omitempty"`
	ChoiceID      int64                   `json:"choice_id"`
	Exercise      string                  `json:"exercise"`
	Options       []models.SlotOptionView `json:"options"`
	Sets          []models.SetRecord      `json:"sets"`
	LastTime      *models.LastPerformance `json:"last_time,omitempty"`
}

type draftOutput struct {
	SessionID  int64       `json:"session_id"`
	UUID       string      `json:"uuid"`
	TemplateID *int64      `json:"template_id,omitempty"`
	Slots      []draftSlot `json:"slots"`
	Message    string      `json:"message"`
}

type choiceOutput struct {
	ChoiceID int64              `json:"choice_id"`
	Sets     []models.SetRecord `json:"sets"`
	Message  string             `json:"message"`
}

type setOutput struct {
	SetID   int64  `json:"set_id"`
	Message string `json:"message"`
}

type finishOutput struct {
	SessionID       int64                   `json:"session_id"`
	PersonalRecords []models.PersonalRecord `json:"personal_records"`
	Message         string                  `json:"message"`
}

type sessionOutput struct {
	Session         *models.SessionDetail   `json:"session"`
	PersonalRecords []models.PersonalRecord `json:"personal_records"`
}

type statsOutput struct {
	Overall      *models.OverallStats   `json:"overall"`
	Templates    []models.TemplateStats `json:"templates"`
	WeeklyMuscle []models.MuscleVolume  `json:"weekly_muscle_volume"`
}

type streakOutput struct {
	Streak int            `json:"streak"`
	Days   map[string]int `json:"days"`
}

// Tool handlers

func (s *Server) handleListTemplates(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	templates, err := s.repo.ListTemplates()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list templates: %w", err)
	}

	if len(templates) == 0 {
		return nil, map[string]interface{}{"message": "No templates found."}, nil
	}

	return nil, templates, nil
}

func (s *Server) handleGetTemplate(ctx context.Context, req *mcp.CallToolRequest, input templateInput) (*mcp.CallToolResult, any, error) {
	detail, err := s.repo.GetTemplate(input.TemplateID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get template: %w", err)
	}

	return nil, detail, nil
}

func (s *Server) handleStartSession(ctx context.Context, req *mcp.CallToolRequest, input templateInput) (*mcp.CallToolResult, any, error) {
	id, err := s.repo.CreateDraftFromTemplate(input.TemplateID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start session: %w", err)
	}

	out, err := s.draftView(id)
	if err != nil {
		return nil, nil, err
	}
	out.Message = fmt.Sprintf("Started session %d with %d slots", id, len(out.Slots))

	return nil, out, nil
}

func (s *Server) handleGetActiveSession(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	draft, err := s.repo.GetActiveDraft()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get active session: %w", err)
	}

	if draft == nil {
		return nil, map[string]interface{}{"message": "No active session."}, nil
	}

	out, err := s.draftView(draft.ID)
	if err != nil {
		return nil, nil, err
	}
	out.Message = fmt.Sprintf("Session %d in progress", draft.ID)

	return nil, out, nil
}

func (s *Server) handleSelectExercise(ctx context.Context, req *mcp.CallToolRequest, input selectExerciseInput) (*mcp.CallToolResult, any, error) {
	choiceID, err := s.repo.SelectSlotChoice(input.SessionSlotID, input.TemplateSlotOptionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to select exercise: %w", err)
	}

	sets, err := s.repo.ListSetsForChoice(choiceID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list sets: %w", err)
	}

	return nil, choiceOutput{
		ChoiceID: choiceID,
		Sets:     sets,
		Message:  fmt.Sprintf("Selected choice %d with %d sets", choiceID, len(sets)),
	}, nil
}

func (s *Server) handleLogSet(ctx context.Context, req *mcp.CallToolRequest, input logSetInput) (*mcp.CallToolResult, setOutput, error) {
	in := models.SetInput{
		Weight:      input.Weight,
		Reps:        input.Reps,
		RPE:         input.RPE,
		RestSeconds: input.RestSeconds,
	}
	if notes := strings.TrimSpace(input.Notes); notes != "" {
		in.Notes = &notes
	}

	id, err := s.repo.UpsertSet(input.ChoiceID, input.SetIndex, in)
	if err != nil {
		return nil, setOutput{}, fmt.Errorf("failed to log set: %w", err)
	}

	if input.Completed {
		if err := s.repo.ToggleSetCompleted(id, true); err != nil {
			return nil, setOutput{}, fmt.Errorf("failed to complete set: %w", err)
		}
	}

	return nil, setOutput{
		SetID:   id,
		Message: fmt.Sprintf("Logged set %d: %g x %d", input.SetIndex, input.Weight, input.Reps),
	}, nil
}

func (s *Server) handleCompleteSet(ctx context.Context, req *mcp.CallToolRequest, input completeSetInput) (*mcp.CallToolResult, simpleOutput, error) {
	if err := s.repo.ToggleSetCompleted(input.SetID, !input.Undo); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to update set: %w", err)
	}

	state := "completed"
	if input.Undo {
		state = "not completed"
	}
	return nil, simpleOutput{
		Message: fmt.Sprintf("Set %d marked %s", input.SetID, state),
	}, nil
}

func (s *Server) handleAddWarmups(ctx context.Context, req *mcp.CallToolRequest, input addWarmupsInput) (*mcp.CallToolResult, any, error) {
	unit, err := s.parseUnit(input.Unit)
	if err != nil {
		return nil, nil, err
	}

	sets, err := s.repo.GenerateWarmupSets(input.ChoiceID, input.WorkingWeight, unit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to add warm-ups: %w", err)
	}

	return nil, sets, nil
}

func (s *Server) handleFinishSession(ctx context.Context, req *mcp.CallToolRequest, input sessionRefInput) (*mcp.CallToolResult, any, error) {
	id, err := s.resolveSession(input.Session)
	if err != nil {
		return nil, nil, err
	}

	if err := s.repo.FinalizeSession(id); err != nil {
		return nil, nil, fmt.Errorf("failed to finalize session: %w", err)
	}

	prs, err := s.repo.DetectAndRecordPRs(id)
	if err != nil {
		return nil, nil, fmt.Errorf("session %d finalized but PR detection failed: %w", id, err)
	}

	msg := fmt.Sprintf("Finished session %d", id)
	if len(prs) > 0 {
		msg += fmt.Sprintf(" with %d personal records", len(prs))
	}
	return nil, finishOutput{
		SessionID:       id,
		PersonalRecords: prs,
		Message:         msg,
	}, nil
}

func (s *Server) handleDiscardSession(ctx context.Context, req *mcp.CallToolRequest, input sessionRefInput) (*mcp.CallToolResult, simpleOutput, error) {
	id, err := s.resolveSession(input.Session)
	if err != nil {
		return nil, simpleOutput{}, err
	}

	if err := s.repo.DiscardDraft(id); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to discard session: %w", err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Discarded session %d", id),
	}, nil
}

func (s *Server) handleListHistory(ctx context.Context, req *mcp.CallToolRequest, input listHistoryInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 10
	}

	history, err := s.repo.ListHistory(input.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list history: %w", err)
	}

	if len(history) == 0 {
		return nil, map[string]interface{}{"message": "No sessions found."}, nil
	}

	return nil, history, nil
}

func (s *Server) handleGetSession(ctx context.Context, req *mcp.CallToolRequest, input sessionRefInput) (*mcp.CallToolResult, any, error) {
	id, err := s.resolveSession(input.Session)
	if err != nil {
		return nil, nil, err
	}

	detail, err := s.repo.GetSessionDetail(id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get session: %w", err)
	}

	prs, err := s.repo.GetSessionPRs(id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get personal records: %w", err)
	}

	return nil, sessionOutput{Session: detail, PersonalRecords: prs}, nil
}

func (s *Server) handleGetStats(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	overall, err := s.repo.OverallStats()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get overall stats: %w", err)
	}

	templates, err := s.repo.PerTemplateStats()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get template stats: %w", err)
	}

	muscles, err := s.repo.WeeklyVolumeByMuscle()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get muscle volume: %w", err)
	}

	return nil, statsOutput{
		Overall:      overall,
		Templates:    templates,
		WeeklyMuscle: muscles,
	}, nil
}

func (s *Server) handleGetStreak(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, streakOutput, error) {
	streak, err := s.repo.CurrentStreak()
	if err != nil {
		return nil, streakOutput{}, fmt.Errorf("failed to get streak: %w", err)
	}

	days, err := s.repo.WorkoutDaysMap()
	if err != nil {
		return nil, streakOutput{}, fmt.Errorf("failed to get workout days: %w", err)
	}

	return nil, streakOutput{Streak: streak, Days: days}, nil
}

func (s *Server) handleGetSessionPRs(ctx context.Context, req *mcp.CallToolRequest, input sessionRefInput) (*mcp.CallToolResult, any, error) {
	id, err := s.resolveSession(input.Session)
	if err != nil {
		return nil, nil, err
	}

	prs, err := s.repo.GetSessionPRs(id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get personal records: %w", err)
	}

	if len(prs) == 0 {
		return nil, map[string]interface{}{"message": "No personal records in this session."}, nil
	}

	return nil, prs, nil
}

func (s *Server) handleGetE1RMHistory(ctx context.Context, req *mcp.CallToolRequest, input exerciseInput) (*mcp.CallToolResult, any, error) {
	ex, err := s.repo.FindExercise(input.Exercise)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find exercise: %w", err)
	}

	points, err := s.repo.E1RMHistory(ex.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get e1RM history: %w", err)
	}

	if len(points) == 0 {
		return nil, map[string]interface{}{"message": fmt.Sprintf("No e1RM history for %s.", ex.Name)}, nil
	}

	return nil, points, nil
}

func (s *Server) handleLogBodyWeight(ctx context.Context, req *mcp.CallToolRequest, input bodyWeightInput) (*mcp.CallToolResult, simpleOutput, error) {
	unit, err := s.parseUnit(input.Unit)
	if err != nil {
		return nil, simpleOutput{}, err
	}

	var measuredAt time.Time
	if input.MeasuredAt != "" {
		t, err := time.Parse(time.RFC3339, input.MeasuredAt)
		if err != nil {
			t, err = time.ParseInLocation("2006-01-02 15:04", input.MeasuredAt, time.Local)
		}
		if err != nil {
			return nil, simpleOutput{}, fmt.Errorf("invalid measured_at %q: use ISO 8601", input.MeasuredAt)
		}
		measuredAt = t
	}

	id, err := s.repo.AddBodyWeight(input.Weight, unit, measuredAt)
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to log body weight: %w", err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Logged body weight %g %s (ID: %d)", input.Weight, unit, id),
	}, nil
}

// resolveSession maps a session reference to an ID, falling back to the
// active draft when the reference is empty.
func (s *Server) resolveSession(ref string) (int64, error) {
	if strings.TrimSpace(ref) != "" {
		id, err := s.repo.ResolveSessionRef(ref)
		if err != nil {
			return 0, fmt.Errorf("failed to resolve session: %w", err)
		}
		return id, nil
	}

	draft, err := s.repo.GetActiveDraft()
	if err != nil {
		return 0, fmt.Errorf("failed to get active session: %w", err)
	}
	if draft == nil {
		return 0, errors.New("no active session; pass a session ID")
	}
	return draft.ID, nil
}

func (s *Server) parseUnit(raw string) (models.Unit, error) {
	if strings.TrimSpace(raw) == "" {
		return s.unit, nil
	}
	return models.ParseUnit(raw)
}

// draftView assembles a session's slots with their options, sets and the
// last finalized performance of the selected option.
func (s *Server) draftView(sessionID int64) (draftOutput, error) {
	session, err := s.repo.GetSession(sessionID)
	if err != nil {
		return draftOutput{}, fmt.Errorf("failed to get session: %w", err)
	}

	slots, err := s.repo.ListDraftSlots(sessionID)
	if err != nil {
		return draftOutput{}, fmt.Errorf("failed to list slots: %w", err)
	}

	out := draftOutput{
		SessionID:  session.ID,
		UUID:       session.UUID.String(),
		TemplateID: session.TemplateID,
		Slots:      make([]draftSlot, 0, len(slots)),
	}

	for _, slot := range slots {
		ds := draftSlot{
			SessionSlotID: slot.ID,
			SlotIndex:     slot.SlotIndex,
			Name:          slot.Name,
			ChoiceID:      slot.ChoiceID,
			Exercise:      exerciseLabel(slot),
			Sets:          []models.SetRecord{},
		}

		ds.Options, err = s.repo.ListSessionSlotOptions(slot.ID)
		if err != nil {
			return draftOutput{}, fmt.Errorf("failed to list slot options: %w", err)
		}

		if slot.ChoiceID != 0 {
			sets, err := s.repo.ListSetsForChoice(slot.ChoiceID)
			if err != nil {
				return draftOutput{}, fmt.Errorf("failed to list sets: %w", err)
			}
			if sets != nil {
				ds.Sets = sets
			}
		}

		if slot.TemplateSlotOptionID != nil {
			last, err := s.repo.LastTimeForOption(*slot.TemplateSlotOptionID)
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				return draftOutput{}, fmt.Errorf("failed to load last performance: %w", err)
			}
			ds.LastTime = last
		}

		out.Slots = append(out.Slots, ds)
	}

	return out, nil
}

func exerciseLabel(v models.SessionSlotView) string {
	if v.OptionName != nil && *v.OptionName != "" {
		return fmt.Sprintf("%s (%s)", v.ExerciseName, *v.OptionName)
	}
	return v.ExerciseName
}
