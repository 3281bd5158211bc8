// ABOUTME: Sentinel errors and SQLite error classification.
// ABOUTME: Unique-constraint failures surface as ErrDuplicate for user-facing conflict messages.
package storage

import (
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a uniqueness rule would be violated.
	ErrDuplicate = errors.New("already exists")
	// ErrInvalid is returned for input that fails validation.
	ErrInvalid = errors.New("invalid input")
	// ErrNotDraft is returned when a draft-only operation targets a finalized session.
	ErrNotDraft = errors.New("session is not a draft")
	// ErrDraftExists is returned when starting a session while another draft is active.
	ErrDraftExists = errors.New("a draft session is already active")
)

func notFound(what string, id any) error {
	return fmt.Errorf("%s %v: %w", what, id, ErrNotFound)
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalid, err)
}

// wrapConstraint maps unique violations to ErrDuplicate and otherwise adds context.
func wrapConstraint(op string, err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "PRIMARY KEY constraint failed")
}

// isMissingSchema reports failures caused by a table or column that an
// older schema does not have yet.
func isMissingSchema(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "no such table") || strings.Contains(msg, "no such column")
}
