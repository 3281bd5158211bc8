// ABOUTME: Versioned schema migrations applied exactly once, in order, at open.
// ABOUTME: Applied versions are recorded in schema_migrations; reopening is a no-op.
package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "catalog_and_templates",
		sql: `
CREATE TABLE IF NOT EXISTS exercises (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	normalized_name TEXT NOT NULL UNIQUE,
	primary_muscle TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS exercise_options (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	exercise_id INTEGER NOT NULL REFERENCES exercises(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	UNIQUE(exercise_id, name)
);

CREATE TABLE IF NOT EXISTS templates (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	normalized_name TEXT NOT NULL UNIQUE,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS template_slots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	template_id INTEGER NOT NULL REFERENCES templates(id) ON DELETE CASCADE,
	slot_index INTEGER NOT NULL CHECK(slot_index >= 1),
	name TEXT,
	UNIQUE(template_id, slot_index)
);

CREATE TABLE IF NOT EXISTS template_slot_options (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	template_slot_id INTEGER NOT NULL REFERENCES template_slots(id) ON DELETE CASCADE,
	exercise_id INTEGER NOT NULL REFERENCES exercises(id),
	exercise_option_id INTEGER REFERENCES exercise_options(id),
	order_index INTEGER NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_slot_options_unique
	ON template_slot_options(template_slot_id, exercise_id, IFNULL(exercise_option_id, 0));

CREATE TABLE IF NOT EXISTS prescribed_sets (
	template_slot_id INTEGER NOT NULL REFERENCES template_slots(id) ON DELETE CASCADE,
	set_index INTEGER NOT NULL CHECK(set_index >= 1),
	weight REAL,
	reps INTEGER,
	rpe REAL,
	rest_seconds INTEGER,
	notes TEXT,
	PRIMARY KEY(template_slot_id, set_index)
);
`,
	},
	{
		version: 2,
		name:    "sessions_and_sets",
		sql: `
CREATE TABLE IF NOT EXISTS sessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	uuid TEXT NOT NULL UNIQUE,
	performed_at TEXT NOT NULL,
	notes TEXT,
	status TEXT NOT NULL CHECK(status IN ('draft', 'final')),
	template_id INTEGER REFERENCES templates(id) ON DELETE SET NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS session_slots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id INTEGER NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	template_slot_id INTEGER REFERENCES template_slots(id) ON DELETE SET NULL,
	slot_index INTEGER NOT NULL,
	name TEXT,
	selected_session_slot_choice_id INTEGER REFERENCES session_slot_choices(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS session_slot_choices (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_slot_id INTEGER NOT NULL REFERENCES session_slots(id) ON DELETE CASCADE,
	template_slot_option_id INTEGER REFERENCES template_slot_options(id) ON DELETE SET NULL,
	exercise_id INTEGER NOT NULL REFERENCES exercises(id),
	exercise_option_id INTEGER REFERENCES exercise_options(id) ON DELETE SET NULL,
	created_at TEXT NOT NULL,
	UNIQUE(session_slot_id, template_slot_option_id)
);

CREATE TABLE IF NOT EXISTS sets (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_slot_choice_id INTEGER NOT NULL REFERENCES session_slot_choices(id) ON DELETE CASCADE,
	set_index INTEGER NOT NULL,
	weight REAL NOT NULL DEFAULT 0,
	reps INTEGER NOT NULL DEFAULT 0,
	rpe REAL,
	rest_seconds INTEGER,
	notes TEXT,
	completed INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	UNIQUE(session_slot_choice_id, set_index)
);

CREATE INDEX IF NOT EXISTS idx_session_slots_session ON session_slots(session_id);
CREATE INDEX IF NOT EXISTS idx_choices_slot ON session_slot_choices(session_slot_id);
CREATE INDEX IF NOT EXISTS idx_choices_option ON session_slot_choices(template_slot_option_id);
`,
	},
	{
		version: 3,
		name:    "personal_records_and_body_weight",
		sql: `
CREATE TABLE IF NOT EXISTS personal_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	exercise_id INTEGER NOT NULL REFERENCES exercises(id),
	session_id INTEGER NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	pr_type TEXT NOT NULL CHECK(pr_type IN ('e1rm', 'weight')),
	value REAL NOT NULL,
	previous_value REAL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS body_weights (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	weight REAL NOT NULL CHECK(weight > 0),
	unit TEXT NOT NULL CHECK(unit IN ('kg', 'lb')),
	measured_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_body_weights_measured ON body_weights(measured_at DESC);
`,
	},
	{
		version: 4,
		name:    "warmups_and_drop_segments",
		sql: `
ALTER TABLE sets ADD COLUMN is_warmup INTEGER NOT NULL DEFAULT 0;

CREATE TABLE IF NOT EXISTS drop_segments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	set_id INTEGER NOT NULL REFERENCES sets(id) ON DELETE CASCADE,
	segment_index INTEGER NOT NULL,
	weight REAL NOT NULL DEFAULT 0,
	reps INTEGER NOT NULL DEFAULT 0,
	UNIQUE(set_id, segment_index)
);
`,
	},
	{
		version: 5,
		name:    "history_indexes",
		sql: `
CREATE INDEX IF NOT EXISTS idx_sessions_status_performed ON sessions(status, performed_at DESC, id DESC);
CREATE INDEX IF NOT EXISTS idx_sessions_template ON sessions(template_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_personal_records_unique
	ON personal_records(session_id, exercise_id, pr_type);
`,
	},
}

// migrate applies every migration newer than the recorded version, each in
// its own transaction.
func (d *DB) migrate() error {
	if _, err := d.db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	applied_at TEXT NOT NULL
);
`); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		var exists int
		err := d.db.QueryRow(`SELECT 1 FROM schema_migrations WHERE version = ?`, m.version).Scan(&exists)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check migration version %d: %w", m.version, err)
		}

		err = d.withTx(func(tx *sql.Tx) error {
			if _, err := tx.Exec(m.sql); err != nil {
				return fmt.Errorf("apply migration version %d (%s): %w", m.version, m.name, err)
			}
			if _, err := tx.Exec(`INSERT INTO schema_migrations(version, name, applied_at) VALUES(?, ?, ?)`,
				m.version, m.name, formatTime(d.nowUTC())); err != nil {
				return fmt.Errorf("record migration version %d: %w", m.version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		d.log.WithFields(logrus.Fields{"version": m.version, "name": m.name}).Info("applied migration")
	}

	return nil
}

// SchemaVersion returns the highest applied migration version.
func (d *DB) SchemaVersion() (int, error) {
	var version sql.NullInt64
	if err := d.db.QueryRow(`SELECT MAX(version) FROM schema_migrations`).Scan(&version); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return int(version.Int64), nil
}

// tableExists reports whether a table exists in the current database.
func (d *DB) tableExists(q querier, name string) (bool, error) {
	var table string
	err := q.QueryRow(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
		name,
	).Scan(&table)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check table %s: %w", name, err)
	}
	return table == name, nil
}

// LatestSchemaVersion is the version a fully migrated database reports.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}
