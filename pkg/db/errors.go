package db

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation    = "23505"
	mysqlDuplicateEntry  = 1062
	sqliteUniqueFailed   = "UNIQUE constraint failed"
	postgresDuplicateKey = "duplicate key value"
)

// IsUniqueViolation reports whether err is a unique constraint failure from
// Postgres, MySQL/TiDB or SQLite. When constraintName is provided, the helper
// also requires the constraint (or column) name to appear in the error text.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}

	matched := false
	var pgErr *pgconn.PgError
	var myErr *mysql.MySQLError
	switch {
	case errors.As(err, &pgErr):
		matched = pgErr.Code == pgUniqueViolation
	case errors.As(err, &myErr):
		matched = myErr.Number == mysqlDuplicateEntry
	default:
		msg := err.Error()
		matched = strings.Contains(msg, postgresDuplicateKey) || strings.Contains(msg, sqliteUniqueFailed)
	}
	if !matched {
		return false
	}
	if constraintName != "" {
		return strings.Contains(err.Error(), constraintName)
	}
	return true
}
