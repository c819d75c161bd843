package auth

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateKey_Drivers(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"postgres unique", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}), true},
		{"postgres fk", &pgconn.PgError{Code: "23503"}, false},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a@b.co' for key 'users.email'"}, true},
		{"mysql other", &mysql.MySQLError{Number: 1452}, false},
		{"sqlite", errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)"), true},
		{"other", errors.New("connection reset"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isDuplicateKey(tt.err))
		})
	}
}

func TestConstraintColumn(t *testing.T) {
	assert.Equal(t, "users_email_key", constraintColumn(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}))
	assert.Equal(t, "users.email", constraintColumn(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a@b.co' for key 'users.email'"}))
	assert.Equal(t, "users.email", constraintColumn(errors.New("UNIQUE constraint failed: users.email")))
	assert.Equal(t, "users.id", constraintColumn(errors.New("constraint failed: UNIQUE constraint failed: users.id (1555)")))
	assert.Equal(t, "", constraintColumn(errors.New("nope")))
	assert.Equal(t, "", constraintColumn(nil))
}

func TestIsEmailViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"postgres default index", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}, true},
		{"postgres primary key", &pgconn.PgError{Code: "23505", ConstraintName: "users_pkey"}, false},
		{"mysql named index", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a@b.co' for key 'users.uq_users_email'"}, true},
		{"mysql primary key", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'x' for key 'users.PRIMARY'"}, false},
		{"sqlite email", errors.New("UNIQUE constraint failed: users.email"), true},
		{"sqlite id", errors.New("UNIQUE constraint failed: users.id"), false},
		{"column that only contains email", &pgconn.PgError{Code: "23505", ConstraintName: "users_backup_emails_key"}, false},
		{"not a duplicate", &pgconn.PgError{Code: "23503", ConstraintName: "users_email_fkey"}, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isEmailViolation(tt.err))
		})
	}
}
