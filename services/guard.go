package services

import (
	"context"
	"errors"

	"kidala/auth"
	"kidala/models"
	"kidala/repositories"

	"gorm.io/gorm"
)

// Caller is the resolved identity of a request. A zero UserID means the
// caller presented no usable token (anonymous).
type Caller struct {
	UserID string
	Domain string
	IP     string
}

func (c Caller) Anonymous() bool {
	return c.UserID == ""
}

func (c Caller) AdminDomain() bool {
	return c.Domain == auth.DomainAdmin
}

// canMutate decides whether the caller may mutate the given record:
// the caller must own it, or carry the admin role on their user record.
// Anonymous callers can never mutate.
func canMutate(ctx context.Context, users repositories.UserRepository, caller Caller, file models.File) (bool, error) {
	if caller.Anonymous() {
		return false, nil
	}
	if file.AuthorID != "" && file.AuthorID == caller.UserID {
		return true, nil
	}

	user, err := users.GetByID(ctx, nil, caller.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.IsAdmin(), nil
}
