package db

import "strings"

// IsUniqueViolation reports whether the provided error is a unique-index
// violation. When column is provided, the helper additionally requires the
// column (or its constraint name) to appear in the driver message, so callers
// can tell a username conflict from an email conflict. Postgres reports
// "duplicate key value violates unique constraint ..."; sqlite (used in
// tests) reports "UNIQUE constraint failed: table.column".
func IsUniqueViolation(err error, column string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if !strings.Contains(msg, "duplicate key value") && !strings.Contains(msg, "UNIQUE constraint failed") {
		return false
	}
	if column == "" {
		return true
	}
	return strings.Contains(msg, column)
}
