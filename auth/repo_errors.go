package auth

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation    = "23505"
	mysqlDuplicateEntry  = 1062
	sqliteUniqueFragment = "UNIQUE constraint failed"
)

// isDuplicateKey detects unique constraint violations for the supported
// drivers: postgres (pgx), mysql and sqlite.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}

	return strings.Contains(err.Error(), sqliteUniqueFragment)
}

// constraintColumn returns the column or constraint named by a duplicate
// key error when the driver exposes it.
func constraintColumn(err error) string {
	if err == nil {
		return ""
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		// Duplicate entry 'x' for key 'users.email'
		if i := strings.LastIndex(myErr.Message, "for key '"); i >= 0 {
			return strings.TrimSuffix(myErr.Message[i+len("for key '"):], "'")
		}
		return ""
	}

	msg := err.Error()
	if i := strings.Index(msg, sqliteUniqueFragment+": "); i >= 0 {
		rest := msg[i+len(sqliteUniqueFragment)+2:]
		if j := strings.IndexAny(rest, " ("); j >= 0 {
			rest = rest[:j]
		}
		return rest
	}
	return ""
}

// isEmailViolation reports whether a duplicate key error names the email
// column or one of its indexes (users.email, users_email_key, idx_users_email).
func isEmailViolation(err error) bool {
	if !isDuplicateKey(err) {
		return false
	}

	name := strings.ToLower(constraintColumn(err))
	if name == "" {
		return false
	}

	for _, part := range strings.FieldsFunc(name, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	}) {
		if part == "email" {
			return true
		}
	}
	return false
}
