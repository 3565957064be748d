package dbpkg

import (
	"errors"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Violation classifies constraint errors reported by the supported drivers.
type Violation int

// Constraint violations.
const (
	NoViolation Violation = iota
	UniqueViolation
	ForeignKeyViolation
)

// ViolationOf returns the constraint violation carried by err, if any.
func ViolationOf(err error) Violation {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "unique_violation":
			return UniqueViolation
		case "foreign_key_violation":
			return ForeignKeyViolation
		}

		return NoViolation
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
			return UniqueViolation
		case sqlite3.ErrConstraintForeignKey:
			return ForeignKeyViolation
		}
	}

	return NoViolation
}
