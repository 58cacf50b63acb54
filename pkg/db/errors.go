package db

import "strings"

// IsUniqueViolation reports whether err is a unique-constraint failure.
// Matching is textual so it works against both postgres and the sqlite
// driver the repo tests run on; pass a constraint name to target a
// specific index (e.g. the one-awarded-quotation-per-rfq index).
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
