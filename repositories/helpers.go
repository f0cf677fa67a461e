package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	// ErrTxConflict is returned when postgres aborts a transaction because of a
	// serialization failure or a deadlock. The whole unit of work can be retried.
	ErrTxConflict = errors.New("transaction conflict")
	// ErrConstraintViolation covers integrity violations not mapped to a more specific error.
	ErrConstraintViolation = errors.New("constraint violation")
)

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

// mapPQError turns postgres error codes that every repository cares about into
// sentinel errors. Other errors are returned unchanged.
func mapPQError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case "40001", "40P01": // serialization_failure, deadlock_detected
		return fmt.Errorf("%w: %s", ErrTxConflict, pqErr.Message)
	case "23505", "23503", "23514": // unique, foreign key, check
		return fmt.Errorf("%w: %s (%s)", ErrConstraintViolation, pqErr.Message, pqErr.Constraint)
	}
	return err
}

func pqConstraint(err error) (code pq.ErrorCode, constraint string, ok bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code, pqErr.Constraint, true
	}
	return "", "", false
}
