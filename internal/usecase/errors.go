package usecase

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")

	// ErrUserMismatch: the email belongs to a user with a different username
	// or location.
	ErrUserMismatch = errors.New("user with this email already exists with different details")
	// ErrSubmissionExists: the email is known and already holds every
	// submitted skill.
	ErrSubmissionExists = errors.New("submission already exists")
	// ErrConflict: a unique constraint fired, typically a concurrent
	// submission for the same email.
	ErrConflict = errors.New("conflicting submission")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	return false
}
