package service

import (
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/teacher-archive/pkg/errors"
)

// storeError maps repository failures onto the archive taxonomy. Errors already carrying a
// code pass through unchanged; a missing row becomes NotFound.
func storeError(err error, notFound, failure string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, failure)
}

// validationError wraps a validator failure, naming the first offending field.
func validationError(err error, message string) error {
	wrapped := appErrors.Wrap(err, appErrors.ErrValidation.Code, message)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		wrapped.Field = fieldErrs[0].Field()
	}
	return wrapped
}
