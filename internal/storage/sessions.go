// ABOUTME: Session lifecycle: draft creation from templates, exercise choice switching,
// ABOUTME: finalization and discard. Multi-row changes run in a single transaction.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/models"
)

const sessionColumns = `id, uuid, performed_at, notes, status, template_id, created_at`

// GetActiveDraft returns the most recent draft session, or nil when none is active.
func (d *DB) GetActiveDraft() (*models.Session, error) {
	s, err := scanSession(d.db.QueryRow(`SELECT ` + sessionColumns + ` FROM sessions
		WHERE status = 'draft' ORDER BY id DESC LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active draft: %w", err)
	}
	return s, nil
}

// GetSession returns a session by ID.
func (d *DB) GetSession(id int64) (*models.Session, error) {
	return getSession(d.db, id)
}

// CreateDraftFromTemplate starts a draft session from a template. Each slot
// gets a choice for its default option, pre-filled from the prescription and
// the option's last finalized performance. Slots without options are skipped.
func (d *DB) CreateDraftFromTemplate(templateID int64) (int64, error) {
	var sessionID int64
	var slotCount int
	err := d.withTx(func(tx *sql.Tx) error {
		var draftID int64
		err := tx.QueryRow(`SELECT id FROM sessions WHERE status = 'draft' LIMIT 1`).Scan(&draftID)
		if err == nil {
			return fmt.Errorf("session %d: %w", draftID, ErrDraftExists)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check active draft: %w", err)
		}

		var exists int
		if err := tx.QueryRow(`SELECT 1 FROM templates WHERE id = ?`, templateID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return notFound("template", templateID)
			}
			return fmt.Errorf("lookup template: %w", err)
		}

		now := formatTime(d.nowUTC())
		res, err := tx.Exec(`
			INSERT INTO sessions (uuid, performed_at, status, template_id, created_at)
			VALUES (?, ?, 'draft', ?, ?)`, uuid.New().String(), now, templateID, now)
		if err != nil {
			return fmt.Errorf("insert session: %w", err)
		}
		sessionID, err = res.LastInsertId()
		if err != nil {
			return err
		}

		slots, err := listTemplateSlots(tx, templateID)
		if err != nil {
			return err
		}
		for _, slot := range slots {
			added, err := d.materializeSlot(tx, sessionID, templateID, slot)
			if err != nil {
				return fmt.Errorf("slot %d: %w", slot.SlotIndex, err)
			}
			if added {
				slotCount++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	d.log.WithFields(logrus.Fields{
		"session_id":  sessionID,
		"template_id": templateID,
		"slots":       slotCount,
	}).Info("created draft session")
	return sessionID, nil
}

// materializeSlot copies one template slot into the session. It reports
// false when the slot has no options and was left out.
func (d *DB) materializeSlot(tx *sql.Tx, sessionID, templateID int64, slot models.TemplateSlot) (bool, error) {
	res, err := tx.Exec(`
		INSERT INTO session_slots (session_id, template_slot_id, slot_index, name) VALUES (?, ?, ?, ?)`,
		sessionID, slot.ID, slot.SlotIndex, slot.Name)
	if err != nil {
		return false, fmt.Errorf("insert session slot: %w", err)
	}
	sessionSlotID, err := res.LastInsertId()
	if err != nil {
		return false, err
	}

	options, err := listSlotOptions(tx, slot.ID)
	if err != nil {
		return false, err
	}
	if len(options) == 0 {
		if _, err := tx.Exec(`DELETE FROM session_slots WHERE id = ?`, sessionSlotID); err != nil {
			return false, fmt.Errorf("drop empty session slot: %w", err)
		}
		return false, nil
	}

	option, err := defaultOption(tx, templateID, slot.SlotIndex, options)
	if err != nil {
		return false, err
	}
	choiceID, err := d.insertChoice(tx, sessionSlotID, option)
	if err != nil {
		return false, err
	}
	if err := materializeSets(tx, choiceID, &slot.ID, option.ID, formatTime(d.nowUTC())); err != nil {
		return false, err
	}
	if _, err := tx.Exec(`UPDATE session_slots SET selected_session_slot_choice_id = ? WHERE id = ?`,
		choiceID, sessionSlotID); err != nil {
		return false, fmt.Errorf("select choice: %w", err)
	}
	return true, nil
}

// defaultOption prefers the option picked for the same slot index in the
// latest finalized session of the template, when it is still offered.
func defaultOption(q querier, templateID int64, slotIndex int, options []models.TemplateSlotOption) (models.TemplateSlotOption, error) {
	var lastOptionID sql.NullInt64
	err := q.QueryRow(`
		SELECT c.template_slot_option_id
		FROM sessions s
		JOIN session_slots ss ON ss.session_id = s.id
		JOIN session_slot_choices c ON c.id = ss.selected_session_slot_choice_id
		WHERE s.status = 'final' AND s.template_id = ? AND ss.slot_index = ?
		ORDER BY s.performed_at DESC, s.id DESC
		LIMIT 1`, templateID, slotIndex).Scan(&lastOptionID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return models.TemplateSlotOption{}, fmt.Errorf("find previous option: %w", err)
	}

	if lastOptionID.Valid {
		for _, o := range options {
			if o.ID == lastOptionID.Int64 {
				return o, nil
			}
		}
	}
	// options are ordered by order_index
	return options[0], nil
}

func (d *DB) insertChoice(tx *sql.Tx, sessionSlotID int64, option models.TemplateSlotOption) (int64, error) {
	res, err := tx.Exec(`
		INSERT INTO session_slot_choices (session_slot_id, template_slot_option_id, exercise_id, exercise_option_id, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		sessionSlotID, option.ID, option.ExerciseID, option.ExerciseOptionID, formatTime(d.nowUTC()))
	if err != nil {
		return 0, wrapConstraint("insert choice", err)
	}
	return res.LastInsertId()
}

// materializeSets fills a new choice. Prescribed sets fix the count and
// indexes, and each field takes the matching historical value first, then
// the prescribed one. Without a prescription the history is copied as is.
func materializeSets(q querier, choiceID int64, templateSlotID *int64, optionID int64, createdAt string) error {
	var prescribed []models.PrescribedSet
	if templateSlotID != nil {
		var err error
		prescribed, err = listPrescribedSets(q, *templateSlotID)
		if err != nil {
			return err
		}
	}
	history, err := historicalSets(q, optionID)
	if err != nil {
		return err
	}

	insert := func(setIndex int, in models.SetInput) error {
		_, err := q.Exec(`
			INSERT INTO sets (session_slot_choice_id, set_index, weight, reps, rpe, rest_seconds, notes, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			choiceID, setIndex, in.Weight, in.Reps, in.RPE, in.RestSeconds, in.Notes, createdAt)
		if err != nil {
			return wrapConstraint("materialize set", err)
		}
		return nil
	}

	if len(prescribed) > 0 {
		for i, p := range prescribed {
			in := models.SetInput{RPE: p.RPE, RestSeconds: p.RestSeconds, Notes: p.Notes}
			if p.Weight != nil {
				in.Weight = *p.Weight
			}
			if p.Reps != nil {
				in.Reps = *p.Reps
			}
			if i < len(history) {
				h := history[i]
				in.Weight = h.Weight
				in.Reps = h.Reps
				if h.RPE != nil {
					in.RPE = h.RPE
				}
				if h.RestSeconds != nil {
					in.RestSeconds = h.RestSeconds
				}
			}
			if err := insert(p.SetIndex, in); err != nil {
				return err
			}
		}
		return nil
	}

	for _, h := range history {
		in := models.SetInput{Weight: h.Weight, Reps: h.Reps, RPE: h.RPE, RestSeconds: h.RestSeconds}
		if err := insert(h.SetIndex, in); err != nil {
			return err
		}
	}
	return nil
}

// ListDraftSlots returns the slots of a session with their selected exercise.
func (d *DB) ListDraftSlots(sessionID int64) ([]models.SessionSlotView, error) {
	return listSessionSlots(d.db, sessionID)
}

// ListSessionSlotOptions returns the options a session slot can switch to,
// marking the ones already tried and the one selected.
func (d *DB) ListSessionSlotOptions(sessionSlotID int64) ([]models.SlotOptionView, error) {
	var templateSlotID, selected sql.NullInt64
	err := d.db.QueryRow(`
		SELECT template_slot_id, selected_session_slot_choice_id FROM session_slots WHERE id = ?`,
		sessionSlotID).Scan(&templateSlotID, &selected)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("session slot", sessionSlotID)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup session slot: %w", err)
	}
	if !templateSlotID.Valid {
		return nil, nil
	}

	options, err := listSlotOptions(d.db, templateSlotID.Int64)
	if err != nil {
		return nil, err
	}
	choices, err := choicesByOption(d.db, sessionSlotID)
	if err != nil {
		return nil, err
	}

	out := make([]models.SlotOptionView, 0, len(options))
	for _, o := range options {
		view := models.SlotOptionView{TemplateSlotOption: o}
		if choiceID, ok := choices[o.ID]; ok {
			view.ChoiceID = &choiceID
			view.Selected = selected.Valid && selected.Int64 == choiceID
		}
		out = append(out, view)
	}
	return out, nil
}

// SelectSlotChoice switches a draft slot to an option. A choice tried
// earlier in the session is reused with its sets untouched; otherwise a new
// choice is created and pre-filled like a fresh draft slot.
func (d *DB) SelectSlotChoice(sessionSlotID, templateSlotOptionID int64) (int64, error) {
	var choiceID int64
	created := false
	err := d.withTx(func(tx *sql.Tx) error {
		var sessionID int64
		var templateSlotID sql.NullInt64
		var status string
		err := tx.QueryRow(`
			SELECT ss.session_id, ss.template_slot_id, s.status
			FROM session_slots ss JOIN sessions s ON s.id = ss.session_id
			WHERE ss.id = ?`, sessionSlotID).Scan(&sessionID, &templateSlotID, &status)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("session slot", sessionSlotID)
		}
		if err != nil {
			return fmt.Errorf("lookup session slot: %w", err)
		}
		if models.SessionStatus(status) != models.StatusDraft {
			return fmt.Errorf("session %d: %w", sessionID, ErrNotDraft)
		}

		err = tx.QueryRow(`SELECT id FROM session_slot_choices WHERE session_slot_id = ? AND template_slot_option_id = ?`,
			sessionSlotID, templateSlotOptionID).Scan(&choiceID)
		switch {
		case err == nil:
		case errors.Is(err, sql.ErrNoRows):
			option, err := slotOption(tx, templateSlotOptionID)
			if err != nil {
				return err
			}
			if !templateSlotID.Valid || option.TemplateSlotID != templateSlotID.Int64 {
				return invalid(fmt.Errorf("option %d does not belong to this slot", templateSlotOptionID))
			}
			choiceID, err = d.insertChoice(tx, sessionSlotID, option)
			if err != nil {
				return err
			}
			if err := materializeSets(tx, choiceID, &templateSlotID.Int64, option.ID, formatTime(d.nowUTC())); err != nil {
				return err
			}
			created = true
		default:
			return fmt.Errorf("lookup choice: %w", err)
		}

		if _, err := tx.Exec(`UPDATE session_slots SET selected_session_slot_choice_id = ? WHERE id = ?`,
			choiceID, sessionSlotID); err != nil {
			return fmt.Errorf("select choice: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	d.log.WithFields(logrus.Fields{
		"session_slot_id": sessionSlotID,
		"choice_id":       choiceID,
		"created":         created,
	}).Debug("selected slot choice")
	return choiceID, nil
}

// DiscardDraft deletes a draft and everything recorded in it, children first.
// Tables an older schema lacks are skipped.
func (d *DB) DiscardDraft(sessionID int64) error {
	var skipped error
	err := d.withTx(func(tx *sql.Tx) error {
		s, err := getSession(tx, sessionID)
		if err != nil {
			return err
		}
		if !s.IsDraft() {
			return fmt.Errorf("session %d: %w", sessionID, ErrNotDraft)
		}

		const choicesOfSession = `SELECT c.id FROM session_slot_choices c
			JOIN session_slots ss ON ss.id = c.session_slot_id WHERE ss.session_id = ?`

		optional := []string{
			`DELETE FROM drop_segments WHERE set_id IN (
				SELECT id FROM sets WHERE session_slot_choice_id IN (` + choicesOfSession + `))`,
			`DELETE FROM personal_records WHERE session_id = ?`,
		}
		for _, stmt := range optional {
			if _, err := tx.Exec(stmt, sessionID); err != nil {
				if !isMissingSchema(err) {
					return fmt.Errorf("discard cleanup: %w", err)
				}
				skipped = multierr.Append(skipped, err)
			}
		}

		required := []struct {
			what string
			stmt string
		}{
			{"clear selections", `UPDATE session_slots SET selected_session_slot_choice_id = NULL WHERE session_id = ?`},
			{"delete sets", `DELETE FROM sets WHERE session_slot_choice_id IN (` + choicesOfSession + `)`},
			{"delete choices", `DELETE FROM session_slot_choices WHERE session_slot_id IN (
				SELECT id FROM session_slots WHERE session_id = ?)`},
			{"delete slots", `DELETE FROM session_slots WHERE session_id = ?`},
			{"delete session", `DELETE FROM sessions WHERE id = ?`},
		}
		for _, r := range required {
			if _, err := tx.Exec(r.stmt, sessionID); err != nil {
				return fmt.Errorf("%s: %w", r.what, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if skipped != nil {
		d.log.WithError(skipped).Debug("skipped optional discard cleanup")
	}
	d.log.WithField("session_id", sessionID).Info("discarded draft session")
	return nil
}

// FinalizeSession marks a draft final and stamps performed_at with the
// current time. Finalizing a final session changes nothing.
func (d *DB) FinalizeSession(sessionID int64) error {
	s, err := d.GetSession(sessionID)
	if err != nil {
		return err
	}
	if !s.IsDraft() {
		return nil
	}

	if _, err := d.db.Exec(`UPDATE sessions SET status = 'final', performed_at = ? WHERE id = ? AND status = 'draft'`,
		formatTime(d.nowUTC()), sessionID); err != nil {
		return fmt.Errorf("finalize session: %w", err)
	}
	d.log.WithField("session_id", sessionID).Info("finalized session")
	return nil
}

// UpdateSessionNotes replaces a session's notes; blank clears them.
func (d *DB) UpdateSessionNotes(sessionID int64, notes string) error {
	var value *string
	if trimmed := strings.TrimSpace(notes); trimmed != "" {
		value = &trimmed
	}
	res, err := d.db.Exec(`UPDATE sessions SET notes = ? WHERE id = ?`, value, sessionID)
	if err != nil {
		return fmt.Errorf("update session notes: %w", err)
	}
	return requireAffected(res, "session", sessionID)
}

func getSession(q querier, id int64) (*models.Session, error) {
	s, err := scanSession(q.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("session", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*models.Session, error) {
	var s models.Session
	var id, performedAt, status, createdAt string
	var notes sql.NullString
	var templateID sql.NullInt64
	if err := row.Scan(&s.ID, &id, &performedAt, &notes, &status, &templateID, &createdAt); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse session uuid %q: %w", id, err)
	}
	s.UUID = parsed
	s.PerformedAt = parseTime(performedAt)
	s.Notes = nullString(notes)
	s.Status = models.SessionStatus(status)
	s.TemplateID = nullInt64(templateID)
	s.CreatedAt = parseTime(createdAt)
	return &s, nil
}

func slotOption(q querier, optionID int64) (models.TemplateSlotOption, error) {
	var o models.TemplateSlotOption
	var variantID sql.NullInt64
	var variantName sql.NullString
	err := q.QueryRow(`
		SELECT o.id, o.template_slot_id, o.exercise_id, o.exercise_option_id, o.order_index, e.name, eo.name
		FROM template_slot_options o
		JOIN exercises e ON e.id = o.exercise_id
		LEFT JOIN exercise_options eo ON eo.id = o.exercise_option_id
		WHERE o.id = ?`, optionID).
		Scan(&o.ID, &o.TemplateSlotID, &o.ExerciseID, &variantID, &o.OrderIndex, &o.ExerciseName, &variantName)
	if errors.Is(err, sql.ErrNoRows) {
		return o, notFound("slot option", optionID)
	}
	if err != nil {
		return o, fmt.Errorf("get slot option: %w", err)
	}
	o.ExerciseOptionID = nullInt64(variantID)
	o.OptionName = nullString(variantName)
	return o, nil
}

func choicesByOption(q querier, sessionSlotID int64) (map[int64]int64, error) {
	rows, err := q.Query(`
		SELECT id, template_slot_option_id FROM session_slot_choices
		WHERE session_slot_id = ? AND template_slot_option_id IS NOT NULL`, sessionSlotID)
	if err != nil {
		return nil, fmt.Errorf("list choices: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]int64)
	for rows.Next() {
		var choiceID, optionID int64
		if err := rows.Scan(&choiceID, &optionID); err != nil {
			return nil, fmt.Errorf("scan choice: %w", err)
		}
		out[optionID] = choiceID
	}
	return out, rows.Err()
}

// listSessionSlots joins each slot of a session to its selected choice and exercise.
func listSessionSlots(q querier, sessionID int64) ([]models.SessionSlotView, error) {
	rows, err := q.Query(`
		SELECT ss.id, ss.session_id, ss.template_slot_id, ss.slot_index, ss.name, ss.selected_session_slot_choice_id,
			c.template_slot_option_id, c.exercise_id, e.name, eo.name
		FROM session_slots ss
		LEFT JOIN session_slot_choices c ON c.id = ss.selected_session_slot_choice_id
		LEFT JOIN exercises e ON e.id = c.exercise_id
		LEFT JOIN exercise_options eo ON eo.id = c.exercise_option_id
		WHERE ss.session_id = ?
		ORDER BY ss.slot_index, ss.id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list session slots: %w", err)
	}
	defer rows.Close()

	var out []models.SessionSlotView
	for rows.Next() {
		var v models.SessionSlotView
		var templateSlotID, selected, optionID, exerciseID sql.NullInt64
		var name, exerciseName, variantName sql.NullString
		if err := rows.Scan(&v.ID, &v.SessionID, &templateSlotID, &v.SlotIndex, &name, &selected,
			&optionID, &exerciseID, &exerciseName, &variantName); err != nil {
			return nil, fmt.Errorf("scan session slot: %w", err)
		}
		v.TemplateSlotID = nullInt64(templateSlotID)
		v.Name = nullString(name)
		v.SelectedChoiceID = nullInt64(selected)
		v.ChoiceID = selected.Int64
		v.TemplateSlotOptionID = nullInt64(optionID)
		v.ExerciseID = exerciseID.Int64
		v.ExerciseName = exerciseName.String
		v.OptionName = nullString(variantName)
		out = append(out, v)
	}
	return out, rows.Err()
}
