// ABOUTME: Point-in-time copy of the workout database to another file.
// ABOUTME: Uses SQLite VACUUM INTO so the copy is consistent while the source stays open.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// BackupSummary holds row counts captured in a backup.
type BackupSummary struct {
	Path        string
	Exercises   int
	Templates   int
	Sessions    int
	Sets        int
	BodyWeights int
}

// Backup writes a compacted copy of the database to dst. The destination
// must not already exist.
func (d *DB) Backup(dst string) (*BackupSummary, error) {
	summary, err := d.BackupPreview()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(dst); err == nil {
		return nil, invalid(fmt.Errorf("backup destination %q already exists", dst))
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat backup destination: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0750); err != nil {
		return nil, fmt.Errorf("create backup directory: %w", err)
	}

	if _, err := d.db.Exec(`VACUUM INTO ?`, dst); err != nil {
		return nil, fmt.Errorf("vacuum into %q: %w", dst, err)
	}
	if err := os.Chmod(dst, 0600); err != nil {
		return nil, fmt.Errorf("set backup permissions: %w", err)
	}

	summary.Path = dst
	d.log.WithField("path", dst).WithField("sessions", summary.Sessions).Info("database backed up")
	return summary, nil
}

// BackupPreview reports what a backup would contain without writing it.
func (d *DB) BackupPreview() (*BackupSummary, error) {
	summary := &BackupSummary{}
	counts := []struct {
		dst   *int
		query string
	}{
		{&summary.Exercises, `SELECT COUNT(*) FROM exercises`},
		{&summary.Templates, `SELECT COUNT(*) FROM templates`},
		{&summary.Sessions, `SELECT COUNT(*) FROM sessions WHERE status = 'final'`},
		{&summary.Sets, `SELECT COUNT(*) FROM sets`},
		{&summary.BodyWeights, `SELECT COUNT(*) FROM body_weights`},
	}
	for _, c := range counts {
		if err := d.db.QueryRow(c.query).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("count rows: %w", err)
		}
	}
	return summary, nil
}
