package database

import (
	"context"
	stderrors "errors"

	"livestream-api/core/constants"

	"github.com/lib/pq"
)

// Classify names the storage failure behind err for logging. It never changes
// what the client sees.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return "deadline_exceeded"
	}
	if stderrors.Is(err, context.Canceled) {
		return "canceled"
	}

	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case constants.PGLockNotAvailable:
			return "lock_timeout"
		case constants.PGQueryCanceled:
			return "statement_timeout"
		case constants.PGSerializationFailure:
			return "serialization_failure"
		case constants.PGDeadlockDetected:
			return "deadlock"
		case constants.PGCheckViolation:
			return "check_violation"
		}
		return "postgres_" + string(pqErr.Code)
	}
	return "unknown"
}

// IsLockTimeout reports whether err is Postgres giving up on a row lock.
func IsLockTimeout(err error) bool {
	var pqErr *pq.Error
	return stderrors.As(err, &pqErr) && string(pqErr.Code) == constants.PGLockNotAvailable
}
