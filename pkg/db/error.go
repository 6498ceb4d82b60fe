package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "duplicate key value violates unique constraint"): // postgres 23505
		return true
	case strings.Contains(msg, "Error 1062"): // mysql
		return true
	case strings.Contains(msg, "UNIQUE constraint failed"): // sqlite
		return true
	default:
		return false
	}
}

// IsForeignKeyErr reports whether err is a referential-integrity violation, e.g. deleting a
// row that a RESTRICT foreign key still points at.
func IsForeignKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "violates foreign key constraint"): // postgres 23503
		return true
	case strings.Contains(msg, "Error 1451"), strings.Contains(msg, "Error 1452"): // mysql
		return true
	case strings.Contains(msg, "FOREIGN KEY constraint failed"): // sqlite
		return true
	default:
		return false
	}
}
