// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// IsUniqueViolation reports whether err is a unique or primary key violation
// from either driver.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		switch sqErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
		return isConstraint(sqErr) && strings.Contains(sqErr.Error(), "UNIQUE constraint failed")
	}

	return false
}

// IsForeignKeyViolation reports whether err is a foreign key violation,
// which the store reports as a missing parent record.
func IsForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}

	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		if sqErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
			return true
		}
		return isConstraint(sqErr) && strings.Contains(sqErr.Error(), "FOREIGN KEY constraint failed")
	}

	return false
}

// ViolatedConstraint returns the constraint name (PostgreSQL) or the failing
// column list (SQLite) for a unique violation, for callers that need to tell
// two unique constraints on one table apart.
func ViolatedConstraint(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}

	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		msg := sqErr.Error()
		// "constraint failed: UNIQUE constraint failed: voter.name (2067)"
		if i := strings.LastIndex(msg, "constraint failed: "); i >= 0 {
			cols := msg[i+len("constraint failed: "):]
			if j := strings.Index(cols, " ("); j >= 0 {
				cols = cols[:j]
			}
			return strings.TrimSpace(cols)
		}
	}

	return ""
}

// primary result code is the low byte of an extended code
func isConstraint(err *sqlite.Error) bool {
	return err.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}
