package service

import (
	"errors"

	"communityapp/internal/model"
	"communityapp/internal/repository"

	"gorm.io/gorm"
)

// lookupErr maps a repository read failure to NotFound or Internal.
func lookupErr(err error, notFoundMsg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.NewNotFoundError(notFoundMsg)
	}
	return model.NewInternalError(err)
}

// writeErr maps a repository write failure, turning unique violations into
// a conflict with the given message.
func writeErr(err error, conflictMsg string) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return model.NewConflictError(conflictMsg)
	}
	return model.NewInternalError(err)
}
