// ABOUTME: Carry-forward resolver: the latest finalized performance of a template slot option.
// ABOUTME: Warm-up sets never count as history, so they never flow into new plans.
package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/models"
)

// LastTimeForOption returns the most recent finalized performance of a slot
// option, or nil when it has never been finalized.
func (d *DB) LastTimeForOption(templateSlotOptionID int64) (*models.LastPerformance, error) {
	return lastPerformance(d.db, templateSlotOptionID)
}

func lastPerformance(q querier, templateSlotOptionID int64) (*models.LastPerformance, error) {
	var lp models.LastPerformance
	var performedAt string
	err := q.QueryRow(`
		SELECT s.id, c.id, s.performed_at
		FROM session_slot_choices c
		JOIN session_slots ss ON ss.selected_session_slot_choice_id = c.id
		JOIN sessions s ON s.id = ss.session_id
		WHERE c.template_slot_option_id = ? AND s.status = 'final'
		ORDER BY s.performed_at DESC, s.id DESC
		LIMIT 1`, templateSlotOptionID).Scan(&lp.SessionID, &lp.ChoiceID, &performedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find last performance: %w", err)
	}
	lp.PerformedAt = parseTime(performedAt)

	sets, err := querySets(q, `SELECT `+setColumns+` FROM sets
		WHERE session_slot_choice_id = ? AND is_warmup = 0 ORDER BY set_index`, lp.ChoiceID)
	if err != nil {
		return nil, err
	}
	lp.Sets = sets
	return &lp, nil
}

// historicalSets is the carried-forward set list for an option, empty when
// there is no finalized history.
func historicalSets(q querier, templateSlotOptionID int64) ([]models.SetRecord, error) {
	lp, err := lastPerformance(q, templateSlotOptionID)
	if err != nil || lp == nil {
		return nil, err
	}
	return lp.Sets, nil
}
