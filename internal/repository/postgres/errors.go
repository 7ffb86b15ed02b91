package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
	ierr "github.com/suicidekings/carclub/internal/errors"
)

const pqUniqueViolation = "23505"

// mapDBError converts driver-level errors into the error taxonomy the
// service layer branches on. Unique violations surface as ErrAlreadyExists
// so idempotent writers can treat them as duplicates rather than failures.
func mapDBError(err error, entity string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ierr.NewErrorf("%s not found", entity).
			Mark(ierr.ErrNotFound)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return ierr.WithError(err).
			WithMessagef("%s already exists", entity).
			Mark(ierr.ErrAlreadyExists)
	}

	return ierr.WithError(err).
		WithMessagef("%s query failed", entity).
		Mark(ierr.ErrDatabase)
}
