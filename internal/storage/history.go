// ABOUTME: Finalized session history: summaries, full session detail, and reference resolution.
// ABOUTME: Sessions are referenced by integer ID or by a prefix of their UUID.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/models"
)

// ListHistory returns finalized sessions, newest first. limit <= 0 returns all.
// Counts and volume cover completed working sets of every choice in the session.
func (d *DB) ListHistory(limit int) ([]models.SessionSummary, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := d.db.Query(`
		SELECT s.id, s.uuid, s.performed_at, s.notes, s.template_id, t.name,
			COUNT(st.id), COALESCE(SUM(st.weight * st.reps), 0)
		FROM sessions s
		LEFT JOIN templates t ON t.id = s.template_id
		LEFT JOIN session_slots ss ON ss.session_id = s.id
		LEFT JOIN session_slot_choices c ON c.id = ss.selected_session_slot_choice_id
		LEFT JOIN sets st ON st.session_slot_choice_id = c.id AND st.completed = 1 AND st.is_warmup = 0
		WHERE s.status = 'final'
		GROUP BY s.id
		ORDER BY s.performed_at DESC, s.id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	var out []models.SessionSummary
	for rows.Next() {
		var sum models.SessionSummary
		var id, performedAt string
		var notes, templateName sql.NullString
		var templateID sql.NullInt64
		if err := rows.Scan(&sum.ID, &id, &performedAt, &notes, &templateID, &templateName,
			&sum.CompletedSets, &sum.TotalVolume); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		if sum.UUID, err = uuid.Parse(id); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("parse session uuid %q: %w", id, err)
		}
		sum.PerformedAt = parseTime(performedAt)
		sum.Notes = nullString(notes)
		sum.TemplateID = nullInt64(templateID)
		sum.TemplateName = nullString(templateName)
		out = append(out, sum)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		names, err := sessionExerciseNames(d.db, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Exercises = names
	}
	return out, nil
}

// sessionExerciseNames lists each selected exercise once, in slot order.
func sessionExerciseNames(q querier, sessionID int64) ([]string, error) {
	rows, err := q.Query(`
		SELECT e.name
		FROM session_slot_choices c
		JOIN session_slots ss ON ss.selected_session_slot_choice_id = c.id
		JOIN exercises e ON e.id = c.exercise_id
		WHERE ss.session_id = ?
		ORDER BY ss.slot_index`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list session exercises: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan exercise name: %w", err)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names, rows.Err()
}

// GetSessionDetail returns a session with every slot and the sets of its selected choice.
func (d *DB) GetSessionDetail(sessionID int64) (*models.SessionDetail, error) {
	s, err := getSession(d.db, sessionID)
	if err != nil {
		return nil, err
	}
	detail := &models.SessionDetail{Session: *s}

	if s.TemplateID != nil {
		var name string
		err := d.db.QueryRow(`SELECT name FROM templates WHERE id = ?`, *s.TemplateID).Scan(&name)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("lookup template name: %w", err)
		}
		if err == nil {
			detail.TemplateName = &name
		}
	}

	slots, err := listSessionSlots(d.db, sessionID)
	if err != nil {
		return nil, err
	}
	for _, slot := range slots {
		sd := models.SessionSlotDetail{SessionSlotView: slot, Sets: []models.SetRecord{}}
		if slot.ChoiceID != 0 {
			sets, err := listSets(d.db, slot.ChoiceID)
			if err != nil {
				return nil, err
			}
			if sets != nil {
				sd.Sets = sets
			}
		}
		detail.Slots = append(detail.Slots, sd)
	}
	return detail, nil
}

// ResolveSessionRef turns a user-supplied reference into a session ID. An
// integer matching an existing session wins; anything else is treated as a
// UUID prefix that must match exactly one session.
func (d *DB) ResolveSessionRef(ref string) (int64, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if ref == "" {
		return 0, invalid(fmt.Errorf("session reference is required"))
	}

	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		var exists int
		err := d.db.QueryRow(`SELECT 1 FROM sessions WHERE id = ?`, id).Scan(&exists)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("resolve session: %w", err)
		}
	}

	rows, err := d.db.Query(`SELECT id FROM sessions WHERE substr(uuid, 1, length(?1)) = ?1`, ref)
	if err != nil {
		return 0, fmt.Errorf("resolve session: %w", err)
	}
	defer rows.Close()

	var matches []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("scan session ID: %w", err)
		}
		matches = append(matches, id)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	if len(matches) == 0 {
		return 0, notFound("session", ref)
	}
	if len(matches) > 1 {
		return 0, invalid(fmt.Errorf("ambiguous prefix %s: matches %d sessions", ref, len(matches)))
	}
	return matches[0], nil
}
