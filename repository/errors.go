package repository

import (
	"errors"

	"github.com/lib/pq"
)

// onConstraint maps a Postgres constraint violation on the named constraint
// to a domain error. Any other error passes through unchanged, so unexpected
// store failures bubble to the caller instead of masquerading as conflicts.
func onConstraint(err error, constraint string, domainErr error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Constraint) == constraint {
		return domainErr
	}
	return err
}
