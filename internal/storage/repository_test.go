// ABOUTME: Shared fixtures for storage tests plus schema, catalog and template tests.
// ABOUTME: Uses a real SQLite file in a temp dir and a fixed clock.
package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var baseTime = time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)

type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time { return c.t }

func (c *testClock) Set(t time.Time) { c.t = t }

func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func setupTestDB(t *testing.T) (*DB, *testClock) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "workout-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })

	db, err := Open(filepath.Join(tmpDir, "workout.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	clock := &testClock{t: baseTime}
	db.now = clock.Now
	db.loc = time.UTC
	return db, clock
}

// pushDay is a two-slot template: a press slot offering barbell and
// dumbbell bench, and an overhead press slot.
type pushDay struct {
	templateID int64
	pressSlot  int64
	ohpSlot    int64
	bench      int64
	ohp        int64
	dumbbell   int64
	benchOpt   int64
	dbBenchOpt int64
	ohpOpt     int64
}

func seedPushDay(t *testing.T, db *DB) pushDay {
	t.Helper()
	var p pushDay
	var err error

	p.bench, err = db.CreateExercise("Bench Press", "chest")
	require.NoError(t, err)
	p.ohp, err = db.CreateExercise("Overhead Press", "shoulders")
	require.NoError(t, err)
	p.dumbbell, err = db.AddExerciseOption(p.bench, "Dumbbell")
	require.NoError(t, err)

	p.templateID, err = db.CreateTemplate("Push Day")
	require.NoError(t, err)
	p.pressSlot, err = db.AddSlot(p.templateID, "Main press")
	require.NoError(t, err)
	p.ohpSlot, err = db.AddSlot(p.templateID, "")
	require.NoError(t, err)

	p.benchOpt, err = db.AddSlotOption(p.pressSlot, p.bench, nil)
	require.NoError(t, err)
	p.dbBenchOpt, err = db.AddSlotOption(p.pressSlot, p.bench, &p.dumbbell)
	require.NoError(t, err)
	p.ohpOpt, err = db.AddSlotOption(p.ohpSlot, p.ohp, nil)
	require.NoError(t, err)
	return p
}

func sets(pairs ...float64) []models.SetInput {
	out := make([]models.SetInput, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, models.SetInput{Weight: pairs[i], Reps: int(pairs[i+1])})
	}
	return out
}

// logAndComplete replaces a choice's working sets and marks every set done.
func logAndComplete(t *testing.T, db *DB, choiceID int64, in []models.SetInput) {
	t.Helper()
	require.NoError(t, db.ReplaceSets(choiceID, in))
	recorded, err := db.ListSetsForChoice(choiceID)
	require.NoError(t, err)
	for _, s := range recorded {
		if s.IsWarmup {
			continue
		}
		require.NoError(t, db.ToggleSetCompleted(s.ID, true))
	}
}

// performPushDay runs a whole session from the template and finalizes it at
// the current clock time. Empty inputs leave a slot untouched.
func performPushDay(t *testing.T, db *DB, p pushDay, press, ohp []models.SetInput) int64 {
	t.Helper()
	sessionID, err := db.CreateDraftFromTemplate(p.templateID)
	require.NoError(t, err)
	slots, err := db.ListDraftSlots(sessionID)
	require.NoError(t, err)
	require.Len(t, slots, 2)

	if len(press) > 0 {
		logAndComplete(t, db, slots[0].ChoiceID, press)
	}
	if len(ohp) > 0 {
		logAndComplete(t, db, slots[1].ChoiceID, ohp)
	}
	require.NoError(t, db.FinalizeSession(sessionID))
	return sessionID
}

func countRows(t *testing.T, db *DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.db.QueryRow(query, args...).Scan(&n))
	return n
}

func TestOpenAppliesAllMigrations(t *testing.T) {
	db, _ := setupTestDB(t)

	version, err := db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, LatestSchemaVersion(), version)

	for _, table := range []string{"exercises", "templates", "sessions", "sets", "drop_segments", "personal_records", "body_weights"} {
		ok, err := db.tableExists(db.db, table)
		require.NoError(t, err)
		assert.True(t, ok, "table %s should exist", table)
	}
}

func TestReopenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workout.db")

	db, err := Open(path)
	require.NoError(t, err)
	_, err = db.CreateExercise("Squat", "quads")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, len(migrations), countRows(t, db, `SELECT COUNT(*) FROM schema_migrations`))
	exercises, err := db.ListExercises()
	require.NoError(t, err)
	assert.Len(t, exercises, 1)
}

func TestDefaultDBPathUsesXDGDataHome(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	assert.Equal(t, "/tmp/xdg-data/workout/workout.db", DefaultDBPath())
}

func TestExerciseCatalog(t *testing.T) {
	db, _ := setupTestDB(t)

	id, err := db.CreateExercise("  Bench   Press ", "chest")
	require.NoError(t, err)

	_, err = db.CreateExercise("bench press", "")
	assert.ErrorIs(t, err, ErrDuplicate)
	_, err = db.CreateExercise("   ", "")
	assert.ErrorIs(t, err, ErrInvalid)

	found, err := db.FindExercise("BENCH PRESS")
	require.NoError(t, err)
	assert.Equal(t, id, found.ID)
	assert.Equal(t, "chest", found.PrimaryMuscle)

	_, err = db.AddExerciseOption(id, "Dumbbell")
	require.NoError(t, err)
	_, err = db.AddExerciseOption(id, "Dumbbell")
	assert.ErrorIs(t, err, ErrDuplicate)

	opts, err := db.ListExerciseOptions(id)
	require.NoError(t, err)
	require.Len(t, opts, 1)
	assert.Equal(t, "Dumbbell", opts[0].Name)

	_, err = db.GetExercise(9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteExercise(t *testing.T) {
	db, _ := setupTestDB(t)
	p := seedPushDay(t, db)

	t.Run("referenced by a slot option", func(t *testing.T) {
		deleted, err := db.DeleteExercise(p.bench)
		require.NoError(t, err)
		assert.False(t, deleted)

		e, err := db.GetExercise(p.bench)
		require.NoError(t, err)
		assert.Equal(t, "Bench Press", e.Name)
	})

	t.Run("unreferenced", func(t *testing.T) {
		id, err := db.CreateExercise("Deadlift", "back")
		require.NoError(t, err)
		_, err = db.AddExerciseOption(id, "Sumo")
		require.NoError(t, err)

		deleted, err := db.DeleteExercise(id)
		require.NoError(t, err)
		assert.True(t, deleted)

		_, err = db.GetExercise(id)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, 0, countRows(t, db, `SELECT COUNT(*) FROM exercise_options WHERE exercise_id = ?`, id))
	})

	t.Run("missing", func(t *testing.T) {
		_, err := db.DeleteExercise(9999)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestTemplateStore(t *testing.T) {
	db, _ := setupTestDB(t)
	p := seedPushDay(t, db)

	_, err := db.CreateTemplate("push   day")
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = db.AddSlotOption(p.pressSlot, p.bench, nil)
	assert.ErrorIs(t, err, ErrDuplicate, "same exercise without variant")
	_, err = db.AddSlotOption(p.pressSlot, p.bench, &p.dumbbell)
	assert.ErrorIs(t, err, ErrDuplicate, "same exercise and variant")
	_, err = db.AddSlotOption(p.ohpSlot, p.ohp, &p.dumbbell)
	assert.ErrorIs(t, err, ErrInvalid, "variant of another exercise")

	weight, reps := 50.0, 10
	require.NoError(t, db.UpsertPrescribedSet(models.PrescribedSet{TemplateSlotID: p.ohpSlot, SetIndex: 1, Weight: &weight, Reps: &reps}))
	reps = 8
	require.NoError(t, db.UpsertPrescribedSet(models.PrescribedSet{TemplateSlotID: p.ohpSlot, SetIndex: 1, Weight: &weight, Reps: &reps}))
	bad := 7.3
	assert.ErrorIs(t, db.UpsertPrescribedSet(models.PrescribedSet{TemplateSlotID: p.ohpSlot, SetIndex: 2, RPE: &bad}), ErrInvalid)

	detail, err := db.GetTemplate(p.templateID)
	require.NoError(t, err)
	assert.Equal(t, "Push Day", detail.Name)
	require.Len(t, detail.Slots, 2)
	assert.Equal(t, 1, detail.Slots[0].SlotIndex)
	require.NotNil(t, detail.Slots[0].Name)
	assert.Equal(t, "Main press", *detail.Slots[0].Name)
	assert.Nil(t, detail.Slots[1].Name)
	require.Len(t, detail.Slots[0].Options, 2)
	assert.Equal(t, "Bench Press", detail.Slots[0].Options[0].Label())
	assert.Equal(t, "Bench Press (Dumbbell)", detail.Slots[0].Options[1].Label())
	require.Len(t, detail.Slots[1].Prescribed, 1)
	assert.Equal(t, 8, *detail.Slots[1].Prescribed[0].Reps)

	require.NoError(t, db.RenameTemplate(p.templateID, "Upper Push"))
	templates, err := db.ListTemplates()
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "upper push", templates[0].NormalizedName)

	require.NoError(t, db.DeletePrescribedSet(p.ohpSlot, 1))
	assert.ErrorIs(t, db.DeletePrescribedSet(p.ohpSlot, 1), ErrNotFound)

	require.NoError(t, db.DeleteSlotOption(p.dbBenchOpt))
	opts, err := db.ListSlotOptions(p.pressSlot)
	require.NoError(t, err)
	assert.Len(t, opts, 1)

	slot3, err := db.AddSlot(p.templateID, "Accessory")
	require.NoError(t, err)
	require.NoError(t, db.DeleteSlot(slot3))
	assert.ErrorIs(t, db.DeleteSlot(slot3), ErrNotFound)

	require.NoError(t, db.DeleteTemplate(p.templateID))
	_, err = db.GetTemplate(p.templateID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, countRows(t, db, `SELECT COUNT(*) FROM template_slots`))
}

func TestBodyWeightLog(t *testing.T) {
	db, clock := setupTestDB(t)

	first, err := db.AddBodyWeight(82.5, models.UnitKg, time.Time{})
	require.NoError(t, err)
	clock.Advance(24 * time.Hour)
	_, err = db.AddBodyWeight(181, models.UnitLb, time.Time{})
	require.NoError(t, err)

	_, err = db.AddBodyWeight(0, models.UnitKg, time.Time{})
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = db.AddBodyWeight(80, models.Unit("stone"), time.Time{})
	assert.ErrorIs(t, err, ErrInvalid)

	entries, err := db.ListBodyWeights(0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.UnitLb, entries[0].Unit)
	assert.True(t, entries[1].MeasuredAt.Equal(baseTime))

	require.NoError(t, db.DeleteBodyWeight(first))
	assert.ErrorIs(t, db.DeleteBodyWeight(first), ErrNotFound)

	entries, err = db.ListBodyWeights(1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
