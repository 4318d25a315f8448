package store

import (
	"errors"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrEmptyName is returned when an item name is blank after trimming.
	ErrEmptyName = errors.New("item name is required")
	// ErrDuplicateName is returned when a direct add or update collides with
	// an existing item name.
	ErrDuplicateName = errors.New("item name already exists")
	// ErrImportFailed wraps any failure inside the import transaction. The
	// batch has been rolled back when it is returned.
	ErrImportFailed = errors.New("import failed")
)

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
