package pgutils

import (
	"database/sql/driver"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes the repos and the retry loop care about.
const (
	CodeUniqueViolation      = "23505"
	CodeCheckViolation       = "23514"
	CodeSerializationFailure = "40001"
	CodeDeadlockDetected     = "40P01"
	CodeLockNotAvailable     = "55P03"
)

// SQLState returns the Postgres error code carried by err, or "".
func SQLState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	return ""
}

// IsUniqueViolation reports a unique constraint violation.
func IsUniqueViolation(err error) bool {
	return SQLState(err) == CodeUniqueViolation
}

// IsTransient reports whether the unit of work that produced err can be run
// again from the start.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	switch SQLState(err) {
	case CodeSerializationFailure, CodeDeadlockDetected, CodeLockNotAvailable:
		return true
	}

	if errors.Is(err, ErrIndeterminateCommit) || errors.Is(err, driver.ErrBadConn) {
		return true
	}

	return pgconn.SafeToRetry(err)
}
