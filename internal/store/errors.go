package store

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrUsernameTaken is returned when a write collides with the unique username index.
var ErrUsernameTaken = errors.New("username already exists")

const (
	uniqueViolation     pq.ErrorCode = "23505"
	usernameUniqueIndex              = "users_username_key"
)

func mapWriteError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation && pqErr.Constraint == usernameUniqueIndex {
		return ErrUsernameTaken
	}
	return err
}
