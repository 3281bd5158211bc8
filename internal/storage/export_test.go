// ABOUTME: Tests for the training log export.
// ABOUTME: Verifies YAML structure and Markdown tables for finalized sessions.
package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/models"
)

func TestExportYAML(t *testing.T) {
	db, clock := setupTestDB(t)
	p := seedPushDay(t, db)
	performPushDay(t, db, p, sets(100, 10, 110, 8), sets(60, 10))
	clock.Advance(time.Hour)
	_, err := db.AddBodyWeight(82.5, models.UnitKg, time.Time{})
	require.NoError(t, err)

	// Drafts stay out of the log.
	_, err = db.CreateDraftFromTemplate(p.templateID)
	require.NoError(t, err)

	out, err := db.ExportYAML(nil)
	require.NoError(t, err)

	var parsed yamlLog
	require.NoError(t, yaml.Unmarshal(out, &parsed))
	assert.Equal(t, "workout", parsed.Tool)
	require.Len(t, parsed.Sessions, 1)
	assert.Equal(t, "Push Day", parsed.Sessions[0].Template)
	require.Len(t, parsed.Sessions[0].Exercises, 2)
	assert.Equal(t, "Bench Press", parsed.Sessions[0].Exercises[0].Name)
	assert.Len(t, parsed.Sessions[0].Exercises[0].Sets, 2)
	assert.True(t, parsed.Sessions[0].Exercises[0].Sets[0].Completed)
	require.Len(t, parsed.BodyWeights, 1)
	assert.Equal(t, "kg", parsed.BodyWeights[0].Unit)
}

func TestExportSince(t *testing.T) {
	db, clock := setupTestDB(t)
	p := seedPushDay(t, db)
	performPushDay(t, db, p, sets(100, 10), nil)
	clock.Advance(72 * time.Hour)
	performPushDay(t, db, p, sets(105, 10), nil)

	since := baseTime.Add(24 * time.Hour)
	data, err := db.GetAllData(&since)
	require.NoError(t, err)
	require.Len(t, data.Sessions, 1)
	assert.Equal(t, 105.0, data.Sessions[0].Slots[0].Sets[0].Weight)
}

func TestExportMarkdown(t *testing.T) {
	db, _ := setupTestDB(t)
	p := seedPushDay(t, db)
	sessionID := performPushDay(t, db, p, sets(100, 10), nil)
	require.NoError(t, db.UpdateSessionNotes(sessionID, "new gym"))

	recorded, err := db.GetSessionDetail(sessionID)
	require.NoError(t, err)
	_, err = db.AddDropSegment(recorded.Slots[0].Sets[0].ID, 80, 6)
	require.NoError(t, err)

	md, err := db.ExportMarkdown(nil)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(md, "# Training Log - 2026-03-10"))
	assert.Contains(t, md, "## 2026-03-10 18:00 - Push Day")
	assert.Contains(t, md, "new gym")
	assert.Contains(t, md, "### Bench Press")
	assert.Contains(t, md, "| 1 | 100 | 10 + 80x6 |  | x |")
	assert.Contains(t, md, "### Overhead Press\n\n_no sets_")
}
