package accounts

import (
	stdErrors "errors"

	"gorm.io/gorm"

	"github.com/monologue-app/monologue-backend/pkg/db"
	"github.com/monologue-app/monologue-backend/pkg/errors"
)

// mapPersistenceError translates storage failures into typed errors. Unique
// violations become conflicts that name the offending field so callers can
// surface it.
func mapPersistenceError(err error, action string) error {
	if err == nil {
		return nil
	}
	if stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.New(errors.CodeNotFound, "account not found")
	}
	if db.IsUniqueViolation(err, "username") {
		return errors.Wrap(errors.CodeConflict, err, "username already taken").
			WithDetails(map[string]string{"field": "username"})
	}
	if db.IsUniqueViolation(err, "email") {
		return errors.Wrap(errors.CodeConflict, err, "email already registered").
			WithDetails(map[string]string{"field": "email"})
	}
	if db.IsUniqueViolation(err, "") {
		return errors.Wrap(errors.CodeConflict, err, "duplicate record")
	}
	return errors.Wrap(errors.CodeInternal, err, action)
}

func stdIsNotFound(err error) bool {
	return stdErrors.Is(err, gorm.ErrRecordNotFound)
}
