package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// IsDuplicateKeyErr reports whether err is a unique-constraint violation,
// normalized across the supported drivers.
func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	// PostgreSQL (error code 23505)
	if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
		return true
	}

	// SQLite (error code 2067)
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return true
	}

	return false
}

// ForUpdate appends a row lock to a raw query on engines that support it.
// SQLite serializes writers on its own, so the clause is omitted there.
func ForUpdate(conn *gorm.DB, query string) string {
	if conn.Dialector.Name() == "sqlite" {
		return query
	}
	return query + " FOR UPDATE"
}
