// ABOUTME: Template store: templates, ordered slots, slot exercise options, prescribed sets.
// ABOUTME: Deleting a template keeps history; sessions and choices lose only their template links.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/models"
	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/training"
)

// CreateTemplate stores a new, empty template.
func (d *DB) CreateTemplate(name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, invalid(fmt.Errorf("template name is required"))
	}
	res, err := d.db.Exec(`
		INSERT INTO templates (name, normalized_name, created_at) VALUES (?, ?, ?)`,
		name, training.NormalizeName(name), formatTime(d.nowUTC()))
	if err != nil {
		return 0, wrapConstraint("create template", err)
	}
	return res.LastInsertId()
}

// RenameTemplate changes a template's display and normalized name.
func (d *DB) RenameTemplate(id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid(fmt.Errorf("template name is required"))
	}
	res, err := d.db.Exec(`UPDATE templates SET name = ?, normalized_name = ? WHERE id = ?`,
		name, training.NormalizeName(name), id)
	if err != nil {
		return wrapConstraint("rename template", err)
	}
	return requireAffected(res, "template", id)
}

// ListTemplates returns all templates ordered by name.
func (d *DB) ListTemplates() ([]models.Template, error) {
	rows, err := d.db.Query(`
		SELECT id, name, normalized_name, created_at FROM templates ORDER BY normalized_name`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var out []models.Template
	for rows.Next() {
		var t models.Template
		var createdAt string
		if err := rows.Scan(&t.ID, &t.Name, &t.NormalizedName, &createdAt); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		t.CreatedAt = parseTime(createdAt)
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetTemplate returns a template with its slots, their options and prescribed sets.
func (d *DB) GetTemplate(id int64) (*models.TemplateDetail, error) {
	var detail models.TemplateDetail
	var createdAt string
	err := d.db.QueryRow(`
		SELECT id, name, normalized_name, created_at FROM templates WHERE id = ?`, id).
		Scan(&detail.ID, &detail.Name, &detail.NormalizedName, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("template", id)
		}
		return nil, fmt.Errorf("get template: %w", err)
	}
	detail.CreatedAt = parseTime(createdAt)

	slots, err := listTemplateSlots(d.db, id)
	if err != nil {
		return nil, err
	}
	for _, slot := range slots {
		opts, err := listSlotOptions(d.db, slot.ID)
		if err != nil {
			return nil, err
		}
		prescribed, err := listPrescribedSets(d.db, slot.ID)
		if err != nil {
			return nil, err
		}
		detail.Slots = append(detail.Slots, models.TemplateSlotDetail{
			TemplateSlot: slot,
			Options:      opts,
			Prescribed:   prescribed,
		})
	}
	return &detail, nil
}

// DeleteTemplate removes a template and its slots, options and prescriptions.
func (d *DB) DeleteTemplate(id int64) error {
	res, err := d.db.Exec(`DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return requireAffected(res, "template", id)
}

// AddSlot appends a slot to the end of a template and returns its ID.
func (d *DB) AddSlot(templateID int64, name string) (int64, error) {
	var id int64
	err := d.withTx(func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRow(`SELECT 1 FROM templates WHERE id = ?`, templateID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return notFound("template", templateID)
			}
			return fmt.Errorf("lookup template: %w", err)
		}

		var next int
		if err := tx.QueryRow(`
			SELECT COALESCE(MAX(slot_index), 0) + 1 FROM template_slots WHERE template_id = ?`,
			templateID).Scan(&next); err != nil {
			return fmt.Errorf("next slot index: %w", err)
		}

		res, err := tx.Exec(`INSERT INTO template_slots (template_id, slot_index, name) VALUES (?, ?, ?)`,
			templateID, next, optionalString(name))
		if err != nil {
			return wrapConstraint("add slot", err)
		}
		id, err = res.LastInsertId()
		return err
	})
	return id, err
}

// DeleteSlot removes a slot with its options and prescriptions. Remaining
// slot indexes are not renumbered.
func (d *DB) DeleteSlot(slotID int64) error {
	res, err := d.db.Exec(`DELETE FROM template_slots WHERE id = ?`, slotID)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	return requireAffected(res, "template slot", slotID)
}

// AddSlotOption makes an exercise (optionally a specific variant) selectable
// in a slot. Each (slot, exercise, variant) combination may exist once.
func (d *DB) AddSlotOption(slotID, exerciseID int64, exerciseOptionID *int64) (int64, error) {
	var id int64
	err := d.withTx(func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRow(`SELECT 1 FROM template_slots WHERE id = ?`, slotID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return notFound("template slot", slotID)
			}
			return fmt.Errorf("lookup slot: %w", err)
		}
		if err := tx.QueryRow(`SELECT 1 FROM exercises WHERE id = ?`, exerciseID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return notFound("exercise", exerciseID)
			}
			return fmt.Errorf("lookup exercise: %w", err)
		}
		if exerciseOptionID != nil {
			err := tx.QueryRow(`SELECT 1 FROM exercise_options WHERE id = ? AND exercise_id = ?`,
				*exerciseOptionID, exerciseID).Scan(&exists)
			if errors.Is(err, sql.ErrNoRows) {
				return invalid(fmt.Errorf("option %d is not a variant of exercise %d", *exerciseOptionID, exerciseID))
			}
			if err != nil {
				return fmt.Errorf("lookup exercise option: %w", err)
			}
		}

		var next int
		if err := tx.QueryRow(`
			SELECT COALESCE(MAX(order_index), 0) + 1 FROM template_slot_options WHERE template_slot_id = ?`,
			slotID).Scan(&next); err != nil {
			return fmt.Errorf("next option order: %w", err)
		}

		res, err := tx.Exec(`
			INSERT INTO template_slot_options (template_slot_id, exercise_id, exercise_option_id, order_index)
			VALUES (?, ?, ?, ?)`, slotID, exerciseID, exerciseOptionID, next)
		if err != nil {
			return wrapConstraint("add slot option", err)
		}
		id, err = res.LastInsertId()
		return err
	})
	return id, err
}

// DeleteSlotOption removes a selectable option. Session choices made with it
// keep their exercise and sets.
func (d *DB) DeleteSlotOption(optionID int64) error {
	res, err := d.db.Exec(`DELETE FROM template_slot_options WHERE id = ?`, optionID)
	if err != nil {
		return fmt.Errorf("delete slot option: %w", err)
	}
	return requireAffected(res, "slot option", optionID)
}

// ListSlotOptions returns a slot's options by order index.
func (d *DB) ListSlotOptions(slotID int64) ([]models.TemplateSlotOption, error) {
	return listSlotOptions(d.db, slotID)
}

// UpsertPrescribedSet inserts or replaces the planned set at (slot, set index).
func (d *DB) UpsertPrescribedSet(p models.PrescribedSet) error {
	if p.SetIndex < 1 {
		return invalid(fmt.Errorf("set index must be >= 1, got %d", p.SetIndex))
	}
	if p.Weight != nil {
		if err := training.ValidateWeight(*p.Weight, false); err != nil {
			return invalid(err)
		}
	}
	if p.Reps != nil {
		if err := training.ValidateReps(*p.Reps, true); err != nil {
			return invalid(err)
		}
	}
	if err := training.ValidateRPE(p.RPE); err != nil {
		return invalid(err)
	}
	if err := training.ValidateRest(p.RestSeconds); err != nil {
		return invalid(err)
	}

	_, err := d.db.Exec(`
		INSERT INTO prescribed_sets (template_slot_id, set_index, weight, reps, rpe, rest_seconds, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(template_slot_id, set_index) DO UPDATE SET
			weight = excluded.weight,
			reps = excluded.reps,
			rpe = excluded.rpe,
			rest_seconds = excluded.rest_seconds,
			notes = excluded.notes`,
		p.TemplateSlotID, p.SetIndex, p.Weight, p.Reps, p.RPE, p.RestSeconds, p.Notes)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY") {
			return notFound("template slot", p.TemplateSlotID)
		}
		return fmt.Errorf("upsert prescribed set: %w", err)
	}
	return nil
}

// ListPrescribedSets returns a slot's planned sets by set index.
func (d *DB) ListPrescribedSets(slotID int64) ([]models.PrescribedSet, error) {
	return listPrescribedSets(d.db, slotID)
}

// DeletePrescribedSet removes one planned set.
func (d *DB) DeletePrescribedSet(slotID int64, setIndex int) error {
	res, err := d.db.Exec(`DELETE FROM prescribed_sets WHERE template_slot_id = ? AND set_index = ?`, slotID, setIndex)
	if err != nil {
		return fmt.Errorf("delete prescribed set: %w", err)
	}
	return requireAffected(res, "prescribed set", fmt.Sprintf("%d/%d", slotID, setIndex))
}

func listTemplateSlots(q querier, templateID int64) ([]models.TemplateSlot, error) {
	rows, err := q.Query(`
		SELECT id, template_id, slot_index, name FROM template_slots
		WHERE template_id = ? ORDER BY slot_index`, templateID)
	if err != nil {
		return nil, fmt.Errorf("list template slots: %w", err)
	}
	defer rows.Close()

	var out []models.TemplateSlot
	for rows.Next() {
		var s models.TemplateSlot
		var name sql.NullString
		if err := rows.Scan(&s.ID, &s.TemplateID, &s.SlotIndex, &name); err != nil {
			return nil, fmt.Errorf("scan template slot: %w", err)
		}
		s.Name = nullString(name)
		out = append(out, s)
	}
	return out, rows.Err()
}

func listSlotOptions(q querier, slotID int64) ([]models.TemplateSlotOption, error) {
	rows, err := q.Query(`
		SELECT o.id, o.template_slot_id, o.exercise_id, o.exercise_option_id, o.order_index, e.name, eo.name
		FROM template_slot_options o
		JOIN exercises e ON e.id = o.exercise_id
		LEFT JOIN exercise_options eo ON eo.id = o.exercise_option_id
		WHERE o.template_slot_id = ?
		ORDER BY o.order_index, o.id`, slotID)
	if err != nil {
		return nil, fmt.Errorf("list slot options: %w", err)
	}
	defer rows.Close()

	var out []models.TemplateSlotOption
	for rows.Next() {
		var o models.TemplateSlotOption
		var variantID sql.NullInt64
		var variantName sql.NullString
		if err := rows.Scan(&o.ID, &o.TemplateSlotID, &o.ExerciseID, &variantID, &o.OrderIndex, &o.ExerciseName, &variantName); err != nil {
			return nil, fmt.Errorf("scan slot option: %w", err)
		}
		o.ExerciseOptionID = nullInt64(variantID)
		o.OptionName = nullString(variantName)
		out = append(out, o)
	}
	return out, rows.Err()
}

func listPrescribedSets(q querier, slotID int64) ([]models.PrescribedSet, error) {
	rows, err := q.Query(`
		SELECT template_slot_id, set_index, weight, reps, rpe, rest_seconds, notes
		FROM prescribed_sets WHERE template_slot_id = ? ORDER BY set_index`, slotID)
	if err != nil {
		return nil, fmt.Errorf("list prescribed sets: %w", err)
	}
	defer rows.Close()

	var out []models.PrescribedSet
	for rows.Next() {
		var p models.PrescribedSet
		var weight, rpe sql.NullFloat64
		var reps, rest sql.NullInt64
		var notes sql.NullString
		if err := rows.Scan(&p.TemplateSlotID, &p.SetIndex, &weight, &reps, &rpe, &rest, &notes); err != nil {
			return nil, fmt.Errorf("scan prescribed set: %w", err)
		}
		p.Weight = nullFloat(weight)
		p.Reps = nullInt(reps)
		p.RPE = nullFloat(rpe)
		p.RestSeconds = nullInt(rest)
		p.Notes = nullString(notes)
		out = append(out, p)
	}
	return out, rows.Err()
}

func requireAffected(res sql.Result, what string, id any) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %v: %w", what, id, err)
	}
	if affected == 0 {
		return notFound(what, id)
	}
	return nil
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
