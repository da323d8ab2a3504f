package store

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = errors.New("record not found")

// IsDuplicate reports whether err is a unique-constraint violation. Both the
// pre-insert existence check and this classifier map to the same 409 response;
// the constraint is the authoritative guard against insert races.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // SQLite, Postgres
		strings.Contains(msg, "duplicate key") // Postgres 23505 wording
}
