// ABOUTME: Tests for the session lifecycle: draft creation, carry-forward, choice
// ABOUTME: switching, discard cascades, finalization and session references.
package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/models"
)

func TestCreateDraftFromTemplate(t *testing.T) {
	db, _ := setupTestDB(t)
	p := seedPushDay(t, db)

	draft, err := db.GetActiveDraft()
	require.NoError(t, err)
	assert.Nil(t, draft)

	sessionID, err := db.CreateDraftFromTemplate(p.templateID)
	require.NoError(t, err)

	draft, err = db.GetActiveDraft()
	require.NoError(t, err)
	require.NotNil(t, draft)
	assert.Equal(t, sessionID, draft.ID)
	assert.True(t, draft.IsDraft())
	assert.True(t, draft.CreatedAt.Equal(baseTime))
	assert.Equal(t, p.templateID, *draft.TemplateID)

	slots, err := db.ListDraftSlots(sessionID)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "Bench Press", slots[0].ExerciseName)
	assert.Equal(t, p.benchOpt, *slots[0].TemplateSlotOptionID, "lowest order index wins without history")
	assert.Nil(t, slots[0].OptionName)
	assert.Equal(t, "Overhead Press", slots[1].ExerciseName)

	recorded, err := db.ListSetsForChoice(slots[0].ChoiceID)
	require.NoError(t, err)
	assert.Empty(t, recorded, "no prescription and no history means no sets")

	_, err = db.CreateDraftFromTemplate(p.templateID)
	assert.ErrorIs(t, err, ErrDraftExists)
	_, err = db.CreateDraftFromTemplate(9999)
	assert.ErrorIs(t, err, ErrDraftExists)
}

func TestCreateDraftUnknownTemplate(t *testing.T) {
	db, _ := setupTestDB(t)

	_, err := db.CreateDraftFromTemplate(9999)
	assert.ErrorIs(t, err, ErrNotFound)

	draft, err := db.GetActiveDraft()
	require.NoError(t, err)
	assert.Nil(t, draft, "failed creation leaves no draft behind")
}

func TestCreateDraftSkipsSlotsWithoutOptions(t *testing.T) {
	db, _ := setupTestDB(t)
	p := seedPushDay(t, db)
	_, err := db.AddSlot(p.templateID, "Finisher")
	require.NoError(t, err)

	sessionID, err := db.CreateDraftFromTemplate(p.templateID)
	require.NoError(t, err)

	slots, err := db.ListDraftSlots(sessionID)
	require.NoError(t, err)
	assert.Len(t, slots, 2)
	assert.Equal(t, 2, countRows(t, db, `SELECT COUNT(*) FROM session_slots WHERE session_id = ?`, sessionID))
}

func TestCarryForwardFromLastFinalSession(t *testing.T) {
	db, clock := setupTestDB(t)
	p := seedPushDay(t, db)

	first := performPushDay(t, db, p, sets(100, 10, 110, 8, 120, 5), nil)
	clock.Advance(24 * time.Hour)

	last, err := db.LastTimeForOption(p.benchOpt)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, first, last.SessionID)
	assert.Len(t, last.Sets, 3)

	sessionID, err := db.CreateDraftFromTemplate(p.templateID)
	require.NoError(t, err)
	slots, err := db.ListDraftSlots(sessionID)
	require.NoError(t, err)

	recorded, err := db.ListSetsForChoice(slots[0].ChoiceID)
	require.NoError(t, err)
	require.Len(t, recorded, 3)

	want := []struct {
		weight float64
		reps   int
	}{{100, 10}, {110, 8}, {120, 5}}
	for i, w := range want {
		assert.Equal(t, i+1, recorded[i].SetIndex)
		assert.Equal(t, w.weight, recorded[i].Weight)
		assert.Equal(t, w.reps, recorded[i].Reps)
		assert.False(t, recorded[i].Completed)
		assert.False(t, recorded[i].IsWarmup)
	}
}

func TestCarryForwardIgnoresDraftsAndUnknownOptions(t *testing.T) {
	db, _ := setupTestDB(t)
	p := seedPushDay(t, db)

	last, err := db.LastTimeForOption(p.benchOpt)
	require.NoError(t, err)
	assert.Nil(t, last)

	sessionID, err := db.CreateDraftFromTemplate(p.templateID)
	require.NoError(t, err)
	slots, err := db.ListDraftSlots(sessionID)
	require.NoError(t, err)
	logAndComplete(t, db, slots[0].ChoiceID, sets(100, 5))

	last, err = db.LastTimeForOption(p.benchOpt)
	require.NoError(t, err)
	assert.Nil(t, last, "drafts are not history")
}

func TestCarryForwardExcludesWarmups(t *testing.T) {
	db, clock := setupTestDB(t)
	p := seedPushDay(t, db)

	sessionID, err := db.CreateDraftFromTemplate(p.templateID)
	require.NoError(t, err)
	slots, err := db.ListDraftSlots(sessionID)
	require.NoError(t, err)
	logAndComplete(t, db, slots[0].ChoiceID, sets(100, 10, 110, 8, 120, 5))
	warmups, err := db.GenerateWarmupSets(slots[0].ChoiceID, 120, models.UnitKg)
	require.NoError(t, err)
	require.Len(t, warmups, 6)
	require.NoError(t, db.FinalizeSession(sessionID))

	clock.Advance(24 * time.Hour)
	next, err := db.CreateDraftFromTemplate(p.templateID)
	require.NoError(t, err)
	slots, err = db.ListDraftSlots(next)
	require.NoError(t, err)

	recorded, err := db.ListSetsForChoice(slots[0].ChoiceID)
	require.NoError(t, err)
	require.Len(t, recorded, 3)
	for _, s := range recorded {
		assert.False(t, s.IsWarmup)
	}
	assert.Equal(t, []float64{100, 110, 120}, []float64{recorded[0].Weight, recorded[1].Weight, recorded[2].Weight})
	assert.Equal(t, 4, recorded[0].SetIndex, "historical indexes are preserved")
}

func TestPrescriptionFixesSetCountAndHistoryFillsValues(t *testing.T) {
	db, clock := setupTestDB(t)
	p := seedPushDay(t, db)

	w50, w55, r10, r8, r6, rpe8 := 50.0, 55.0, 10, 8, 6, 8.0
	require.NoError(t, db.UpsertPrescribedSet(models.PrescribedSet{TemplateSlotID: p.ohpSlot, SetIndex: 1, Weight: &w50, Reps: &r10}))
	require.NoError(t, db.UpsertPrescribedSet(models.PrescribedSet{TemplateSlotID: p.ohpSlot, SetIndex: 2, Reps: &r8}))
	require.NoError(t, db.UpsertPrescribedSet(models.PrescribedSet{TemplateSlotID: p.ohpSlot, SetIndex: 3, Weight: &w55, Reps: &r6, RPE: &rpe8}))

	sessionID, err := db.CreateDraftFromTemplate(p.templateID)
	require.NoError(t, err)
	slots, err := db.ListDraftSlots(sessionID)
	require.NoError(t, err)

	planned, err := db.ListSetsForChoice(slots[1].ChoiceID)
	require.NoError(t, err)
	require.Len(t, planned, 3)
	assert.Equal(t, 50.0, planned[0].Weight)
	assert.Equal(t, 10, planned[0].Reps)
	assert.Equal(t, 0.0, planned[1].Weight, "missing prescribed weight is a zero placeholder")
	assert.Equal(t, 8, planned[1].Reps)
	require.NotNil(t, planned[2].RPE)
	assert.Equal(t, 8.0, *planned[2].RPE)

	logAndComplete(t, db, slots[1].ChoiceID, sets(60, 10, 65, 8))
	require.NoError(t, db.FinalizeSession(sessionID))

	clock.Advance(48 * time.Hour)
	next, err := db.CreateDraftFromTemplate(p.templateID)
	require.NoError(t, err)
	slots, err = db.ListDraftSlots(next)
	require.NoError(t, err)

	recorded, err := db.ListSetsForChoice(slots[1].ChoiceID)
	require.NoError(t, err)
	require.Len(t, recorded, 3, "prescription defines the count")
	assert.Equal(t, 60.0, recorded[0].Weight)
	assert.Equal(t, 10, recorded[0].Reps)
	assert.Equal(t, 65.0, recorded[1].Weight)
	assert.Equal(t, 8, recorded[1].Reps)
	assert.Equal(t, 55.0, recorded[2].Weight, "no history for set 3 falls back to the prescription")
	assert.Equal(t, 6, recorded[2].Reps)
}

func TestDraftDefaultsToLastSelectedOption(t *testing.T) {
	db, clock := setupTestDB(t)
	p := seedPushDay(t, db)

	sessionID, err := db.CreateDraftFromTemplate(p.templateID)
	require.NoError(t, err)
	slots, err := db.ListDraftSlots(sessionID)
	require.NoError(t, err)
	choiceID, err := db.SelectSlotChoice(slots[0].ID, p.dbBenchOpt)
	require.NoError(t, err)
	logAndComplete(t, db, choiceID, sets(30, 12, 32.5, 10))
	require.NoError(t, db.FinalizeSession(sessionID))

	clock.Advance(24 * time.Hour)
	next, err := db.CreateDraftFromTemplate(p.templateID)
	require.NoError(t, err)
	slots, err = db.ListDraftSlots(next)
	require.NoError(t, err)

	assert.Equal(t, p.dbBenchOpt, *slots[0].TemplateSlotOptionID)
	require.NotNil(t, slots[0].OptionName)
	assert.Equal(t, "Dumbbell", *slots[0].OptionName)

	recorded, err := db.ListSetsForChoice(slots[0].ChoiceID)
	require.NoError(t, err)
	require.Len(t, recorded, 2)
	assert.Equal(t, 32.5, recorded[1].Weight)
}

func TestDraftDefaultFallsBackWhenOptionRemoved(t *testing.T) {
	db, clock := setupTestDB(t)
	p := seedPushDay(t, db)

	sessionID, err := db.CreateDraftFromTemplate(p.templateID)
	require.NoError(t, err)
	slots, err := db.ListDraftSlots(sessionID)
	require.NoError(t, err)
	_, err = db.SelectSlotChoice(slots[0].ID, p.dbBenchOpt)
	require.NoError(t, err)
	require.NoError(t, db.FinalizeSession(sessionID))

	require.NoError(t, db.DeleteSlotOption(p.dbBenchOpt))

	clock.Advance(24 * time.Hour)
	next, err := db.CreateDraftFromTemplate(p.templateID)
	require.NoError(t, err)
	slots, err = db.ListDraftSlots(next)
	require.NoError(t, err)
	assert.Equal(t, p.benchOpt, *slots[0].TemplateSlotOptionID)
}

func TestSelectSlotChoiceIsIdempotent(t *testing.T) {
	db, _ := setupTestDB(t)
	p := seedPushDay(t, db)

	sessionID, err := db.CreateDraftFromTemplate(p.templateID)
	require.NoError(t, err)
	slots, err := db.ListDraftSlots(sessionID)
	require.NoError(t, err)
	original := slots[0].ChoiceID

	switched, err := db.SelectSlotChoice(slots[0].ID, p.dbBenchOpt)
	require.NoError(t, err)
	assert.NotEqual(t, original, switched)
	_, err = db.UpsertSet(switched, 1, models.SetInput{Weight: 30, Reps: 12})
	require.NoError(t, err)

	again, err := db.SelectSlotChoice(slots[0].ID, p.dbBenchOpt)
	require.NoError(t, err)
	assert.Equal(t, switched, again)

	recorded, err := db.ListSetsForChoice(switched)
	require.NoError(t, err)
	assert.Len(t, recorded, 1, "reselecting does not duplicate sets")

	back, err := db.SelectSlotChoice(slots[0].ID, p.benchOpt)
	require.NoError(t, err)
	assert.Equal(t, original, back)
	assert.Equal(t, 2, countRows(t, db, `SELECT COUNT(*) FROM session_slot_choices WHERE session_slot_id = ?`, slots[0].ID))

	options, err := db.ListSessionSlotOptions(slots[0].ID)
	require.NoError(t, err)
	require.Len(t, options, 2)
	assert.True(t, options[0].Selected)
	assert.Equal(t, original, *options[0].ChoiceID)
	assert.False(t, options[1].Selected)
	assert.Equal(t, switched, *options[1].ChoiceID)

	_, err = db.SelectSlotChoice(slots[0].ID, p.ohpOpt)
	assert.ErrorIs(t, err, ErrInvalid, "option from another slot")
	_, err = db.SelectSlotChoice(9999, p.benchOpt)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSelectSlotChoiceRequiresDraft(t *testing.T) {
	db, _ := setupTestDB(t)
	p := seedPushDay(t, db)

	sessionID := performPushDay(t, db, p, sets(100, 5), nil)
	slots, err := db.ListDraftSlots(sessionID)
	require.NoError(t, err)

	_, err = db.SelectSlotChoice(slots[0].ID, p.dbBenchOpt)
	assert.ErrorIs(t, err, ErrNotDraft)
}

func TestDiscardDraftRemovesSubtree(t *testing.T) {
	db, _ := setupTestDB(t)
	p := seedPushDay(t, db)

	sessionID, err := db.CreateDraftFromTemplate(p.templateID)
	require.NoError(t, err)
	slots, err := db.ListDraftSlots(sessionID)
	require.NoError(t, err)
	logAndComplete(t, db, slots[0].ChoiceID, sets(100, 10, 110, 8))
	logAndComplete(t, db, slots[1].ChoiceID, sets(60, 10))
	_, err = db.SelectSlotChoice(slots[0].ID, p.dbBenchOpt)
	require.NoError(t, err)

	recorded, err := db.ListSetsForChoice(slots[0].ChoiceID)
	require.NoError(t, err)
	_, err = db.AddDropSegment(recorded[1].ID, 90, 6)
	require.NoError(t, err)

	require.NoError(t, db.DiscardDraft(sessionID))

	assert.Equal(t, 0, countRows(t, db, `SELECT COUNT(*) FROM session_slots WHERE session_id = ?`, sessionID))
	assert.Equal(t, 0, countRows(t, db, `SELECT COUNT(*) FROM session_slot_choices`))
	assert.Equal(t, 0, countRows(t, db, `SELECT COUNT(*) FROM sets`))
	assert.Equal(t, 0, countRows(t, db, `SELECT COUNT(*) FROM drop_segments`))
	assert.Equal(t, 0, countRows(t, db, `SELECT COUNT(*) FROM sessions`))

	draft, err := db.GetActiveDraft()
	require.NoError(t, err)
	assert.Nil(t, draft)

	assert.ErrorIs(t, db.DiscardDraft(sessionID), ErrNotFound)
}

func TestDiscardDraftToleratesMissingChildTable(t *testing.T) {
	db, _ := setupTestDB(t)
	p := seedPushDay(t, db)

	sessionID, err := db.CreateDraftFromTemplate(p.templateID)
	require.NoError(t, err)
	slots, err := db.ListDraftSlots(sessionID)
	require.NoError(t, err)
	logAndComplete(t, db, slots[0].ChoiceID, sets(100, 10))

	_, err = db.db.Exec(`DROP TABLE drop_segments`)
	require.NoError(t, err)

	require.NoError(t, db.DiscardDraft(sessionID))
	assert.Equal(t, 0, countRows(t, db, `SELECT COUNT(*) FROM sets`))
}

func TestCreateDraftRollsBackOnFailure(t *testing.T) {
	db, _ := setupTestDB(t)
	p := seedPushDay(t, db)

	_, err := db.db.Exec(`
		CREATE TRIGGER fail_second_slot BEFORE INSERT ON session_slot_choices
		WHEN (SELECT slot_index FROM session_slots WHERE id = NEW.session_slot_id) = 2
		BEGIN SELECT RAISE(ABORT, 'choice insert failed'); END`)
	require.NoError(t, err)

	_, err = db.CreateDraftFromTemplate(p.templateID)
	require.Error(t, err)

	draft, err := db.GetActiveDraft()
	require.NoError(t, err)
	assert.Nil(t, draft)
	assert.Equal(t, 0, countRows(t, db, `SELECT COUNT(*) FROM sessions`))
	assert.Equal(t, 0, countRows(t, db, `SELECT COUNT(*) FROM session_slots`))
	assert.Equal(t, 0, countRows(t, db, `SELECT COUNT(*) FROM session_slot_choices`))

	_, err = db.db.Exec(`DROP TRIGGER fail_second_slot`)
	require.NoError(t, err)
	_, err = db.CreateDraftFromTemplate(p.templateID)
	require.NoError(t, err)
}

func TestDiscardDraftRollsBackOnFailure(t *testing.T) {
	db, _ := setupTestDB(t)
	p := seedPushDay(t, db)

	sessionID, err := db.CreateDraftFromTemplate(p.templateID)
	require.NoError(t, err)
	slots, err := db.ListDraftSlots(sessionID)
	require.NoError(t, err)
	logAndComplete(t, db, slots[0].ChoiceID, sets(100, 10, 110, 8))

	_, err = db.db.Exec(`
		CREATE TRIGGER fail_session_delete BEFORE DELETE ON sessions
		BEGIN SELECT RAISE(ABORT, 'session delete failed'); END`)
	require.NoError(t, err)

	require.Error(t, db.DiscardDraft(sessionID))

	draft, err := db.GetActiveDraft()
	require.NoError(t, err)
	require.NotNil(t, draft)
	assert.Equal(t, sessionID, draft.ID)
	assert.Equal(t, 2, countRows(t, db, `SELECT COUNT(*) FROM session_slots WHERE session_id = ?`, sessionID))
	assert.Equal(t, 2, countRows(t, db, `SELECT COUNT(*) FROM sets WHERE session_slot_choice_id = ?`, slots[0].ChoiceID))

	after, err := db.ListDraftSlots(sessionID)
	require.NoError(t, err)
	assert.Equal(t, slots[0].ChoiceID, after[0].ChoiceID, "selection survives the failed discard")
}

func TestDiscardRejectsFinalSession(t *testing.T) {
	db, _ := setupTestDB(t)
	p := seedPushDay(t, db)

	sessionID := performPushDay(t, db, p, sets(100, 5), nil)
	assert.ErrorIs(t, db.DiscardDraft(sessionID), ErrNotDraft)
}

func TestFinalizeSession(t *testing.T) {
	db, clock := setupTestDB(t)
	p := seedPushDay(t, db)

	sessionID, err := db.CreateDraftFromTemplate(p.templateID)
	require.NoError(t, err)

	finishedAt := baseTime.Add(75 * time.Minute)
	clock.Set(finishedAt)
	require.NoError(t, db.FinalizeSession(sessionID))

	s, err := db.GetSession(sessionID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinal, s.Status)
	assert.True(t, s.PerformedAt.Equal(finishedAt))
	assert.True(t, s.CreatedAt.Equal(baseTime))

	clock.Advance(time.Hour)
	require.NoError(t, db.FinalizeSession(sessionID))
	s, err = db.GetSession(sessionID)
	require.NoError(t, err)
	assert.True(t, s.PerformedAt.Equal(finishedAt), "finalizing twice keeps the first stamp")

	draft, err := db.GetActiveDraft()
	require.NoError(t, err)
	assert.Nil(t, draft)

	assert.ErrorIs(t, db.FinalizeSession(9999), ErrNotFound)
}

func TestUpdateSessionNotes(t *testing.T) {
	db, _ := setupTestDB(t)
	p := seedPushDay(t, db)

	sessionID, err := db.CreateDraftFromTemplate(p.templateID)
	require.NoError(t, err)

	require.NoError(t, db.UpdateSessionNotes(sessionID, "  felt strong "))
	s, err := db.GetSession(sessionID)
	require.NoError(t, err)
	require.NotNil(t, s.Notes)
	assert.Equal(t, "felt strong", *s.Notes)

	require.NoError(t, db.UpdateSessionNotes(sessionID, ""))
	s, err = db.GetSession(sessionID)
	require.NoError(t, err)
	assert.Nil(t, s.Notes)

	assert.ErrorIs(t, db.UpdateSessionNotes(9999, "x"), ErrNotFound)
}

func TestResolveSessionRef(t *testing.T) {
	db, _ := setupTestDB(t)
	p := seedPushDay(t, db)

	sessionID := performPushDay(t, db, p, nil, nil)
	s, err := db.GetSession(sessionID)
	require.NoError(t, err)

	id, err := db.ResolveSessionRef("1")
	require.NoError(t, err)
	assert.Equal(t, sessionID, id)

	id, err = db.ResolveSessionRef(s.UUID.String())
	require.NoError(t, err)
	assert.Equal(t, sessionID, id)

	id, err = db.ResolveSessionRef(s.UUID.String()[:8])
	require.NoError(t, err)
	assert.Equal(t, sessionID, id)

	_, err = db.ResolveSessionRef("zzzz")
	assert.ErrorIs(t, err, ErrNotFound)
	for _, ref := range []string{"_", "%", s.UUID.String()[:3] + "_"} {
		_, err = db.ResolveSessionRef(ref)
		assert.ErrorIs(t, err, ErrNotFound, "ref %q is matched literally", ref)
	}
	_, err = db.ResolveSessionRef("  ")
	assert.ErrorIs(t, err, ErrInvalid)
}
