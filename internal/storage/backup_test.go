// ABOUTME: Tests for database backups.
// ABOUTME: Verifies the copy opens cleanly and refuses to overwrite an existing file.
package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackup(t *testing.T) {
	db, _ := setupTestDB(t)
	p := seedPushDay(t, db)
	performPushDay(t, db, p, sets(100, 5, 100, 5), sets(60, 8))

	preview, err := db.BackupPreview()
	require.NoError(t, err)
	assert.Equal(t, 1, preview.Sessions)
	assert.Equal(t, 1, preview.Templates)
	assert.Empty(t, preview.Path)

	dst := filepath.Join(t.TempDir(), "backups", "workout-backup.db")
	summary, err := db.Backup(dst)
	require.NoError(t, err)
	assert.Equal(t, dst, summary.Path)
	assert.Equal(t, preview.Sets, summary.Sets)

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	copyDB, err := Open(dst)
	require.NoError(t, err)
	defer copyDB.Close()

	history, err := copyDB.ListHistory(10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.NotNil(t, history[0].TemplateName)
	assert.Equal(t, "Push Day", *history[0].TemplateName)
}

func TestBackupRefusesExistingFile(t *testing.T) {
	db, _ := setupTestDB(t)
	dst := filepath.Join(t.TempDir(), "existing.db")
	require.NoError(t, os.WriteFile(dst, []byte("x"), 0600))

	_, err := db.Backup(dst)
	assert.ErrorIs(t, err, ErrInvalid)
}
